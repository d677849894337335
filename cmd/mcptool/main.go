package main

import (
	"log"
	"os"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

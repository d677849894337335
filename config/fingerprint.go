package config

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint derives a stable identity for the Config. The derivation is
// pure and canonical: the transport kind leads as a discriminant, fields
// follow in a fixed order, and unordered maps (env, headers) are rendered as
// sorted key=value pairs, so field ordering never affects the result while
// any value difference does.
func (c *Config) Fingerprint() string {
	var b strings.Builder
	b.WriteString("kind=")
	b.WriteString(c.Transport.Type)
	switch c.Transport.Type {
	case TransportStdio:
		writeField(&b, "command", c.Transport.Command)
		b.WriteString("|args=")
		b.WriteString(strconv.Itoa(len(c.Transport.Arguments)))
		for _, arg := range c.Transport.Arguments {
			b.WriteByte(',')
			b.WriteString(arg)
		}
		writePairs(&b, "env", c.Transport.Env)
	default:
		writeField(&b, "url", c.Transport.URL)
		writeField(&b, "messageURL", c.Transport.MessageURL)
		writePairs(&b, "headers", c.Transport.Headers)
	}
	if c.Auth != nil {
		writeField(&b, "tokenURL", c.Auth.TokenURL)
		writeField(&b, "clientID", c.Auth.ClientID)
		writeField(&b, "clientSecret", c.Auth.ClientSecret)
		writePairs(&b, "scopes", sliceAsPairs(c.Auth.Scopes))
	}
	return hashHex(b.String())
}

func writeField(b *strings.Builder, name, value string) {
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(len(value)))
	b.WriteByte(':')
	b.WriteString(value)
}

func writePairs(b *strings.Builder, name string, pairs map[string]string) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(len(keys)))
	for _, k := range keys {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}
}

func sliceAsPairs(values []string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	ret := make(map[string]string, len(values))
	for i, v := range values {
		ret[strconv.Itoa(i)] = v
	}
	return ret
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

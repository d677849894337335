package mcpnode

import (
	"fmt"
)

// OperationError reports a failed remote operation, naming the JSON-RPC
// method and the session fingerprint it ran against.
type OperationError struct {
	Method      string
	Fingerprint string
	Err         error
}

func (e *OperationError) Error() string {
	fingerprint := e.Fingerprint
	if len(fingerprint) > 12 {
		fingerprint = fingerprint[:12]
	}
	return fmt.Sprintf("%v failed on session %v: %v", e.Method, fingerprint, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

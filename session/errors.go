package session

import (
	"fmt"
)

// HandshakeError reports that a transport or the MCP handshake failed to
// establish a usable client. The session is left broken.
type HandshakeError struct {
	Fingerprint string
	Err         error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("failed to establish session %v: %v", shortFingerprint(e.Fingerprint), e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// WaitTimeoutError reports that a caller gave up waiting for another
// caller's in-flight handshake. The flight itself is unaffected.
type WaitTimeoutError struct {
	Fingerprint string
	Err         error
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("gave up waiting for session %v: %v", shortFingerprint(e.Fingerprint), e.Err)
}

func (e *WaitTimeoutError) Unwrap() error {
	return e.Err
}

func shortFingerprint(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}

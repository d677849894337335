// Package session keeps MCP connections alive between invocations of
// stateless call sites. A Registry maps connection fingerprints to Sessions;
// each Session exclusively owns one transport and one protocol client and
// moves through Empty -> Connecting -> Connected, with Broken as the terminal
// state of that particular connection. Concurrent callers sharing a
// fingerprint observe exactly one Session and at most one in-flight
// handshake; recovery from a broken connection is always a rotation to a
// fresh fingerprint, never an in-place revival.
package session

package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc/transport"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/client"
)

// Status represents the lifecycle of a session's connection.
type Status int

const (
	StatusEmpty Status = iota
	StatusConnecting
	StatusConnected
	StatusBroken
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusBroken:
		return "broken"
	}
	return "unknown"
}

// Conn is the channel a session owns: a jsonrpc transport plus its release
// hook. The session closes it exactly once, on fault, re-dial or eviction.
type Conn interface {
	transport.Transport
	io.Closer
}

// Dialer opens a Conn and builds an un-handshaken protocol client over it.
// It runs outside the session lock and only for the caller that wins the
// single-flight race.
type Dialer func(ctx context.Context) (Conn, *client.Client, error)

// Session binds one fingerprint to one connection and one protocol client.
type Session struct {
	id          string
	fingerprint string
	created     time.Time

	mu        sync.Mutex
	status    Status
	conn      Conn
	client    *client.Client
	err       error
	connectCh chan struct{}
	lastUsed  time.Time
}

func newSession(fingerprint string) *Session {
	now := time.Now()
	return &Session{
		id:          uuid.NewString(),
		fingerprint: fingerprint,
		created:     now,
		lastUsed:    now,
		status:      StatusEmpty,
	}
}

// ID returns the session instance identifier, unique per process.
func (s *Session) ID() string {
	return s.id
}

// Fingerprint returns the connection identity the session is registered under.
func (s *Session) Fingerprint() string {
	return s.fingerprint
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsConnected reports whether the session holds a usable client.
func (s *Session) IsConnected() bool {
	return s.Status() == StatusConnected
}

// Err returns the fault that broke the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Client returns the live protocol client, or false when the session is not
// connected. Callers must check the flag; a broken session never hands out
// its stale client.
func (s *Session) Client() (*client.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusConnected {
		return nil, false
	}
	s.lastUsed = time.Now()
	return s.client, true
}

// Connect returns the session's client, establishing the connection when
// needed. Connected sessions return their client without re-handshaking.
// Concurrent calls perform a single handshake: one caller dials and
// initializes outside the lock while the rest wait on the flight's outcome,
// honoring their own ctx. A failed flight leaves the session broken and
// yields the same *HandshakeError to every waiter.
func (s *Session) Connect(ctx context.Context, dial Dialer) (*client.Client, error) {
	waited := false
	for {
		s.mu.Lock()
		switch s.status {
		case StatusConnected:
			cli := s.client
			s.lastUsed = time.Now()
			s.mu.Unlock()
			return cli, nil
		case StatusConnecting:
			ch := s.connectCh
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, &WaitTimeoutError{Fingerprint: s.fingerprint, Err: ctx.Err()}
			case <-ch:
				waited = true
				continue
			}
		case StatusBroken:
			if waited {
				err := s.err
				s.mu.Unlock()
				return nil, &HandshakeError{Fingerprint: s.fingerprint, Err: err}
			}
		}
		// Empty, or broken with a fresh caller: this caller owns the flight.
		s.status = StatusConnecting
		ch := make(chan struct{})
		s.connectCh = ch
		stale := s.conn
		s.conn, s.client = nil, nil
		s.mu.Unlock()

		if stale != nil {
			_ = stale.Close()
		}
		conn, cli, err := dial(ctx)
		if err == nil {
			_, err = cli.Initialize(ctx)
		}

		s.mu.Lock()
		if err != nil {
			s.status = StatusBroken
			s.err = err
			close(ch)
			s.mu.Unlock()
			if conn != nil {
				_ = conn.Close()
			}
			return nil, &HandshakeError{Fingerprint: s.fingerprint, Err: err}
		}
		s.status = StatusConnected
		s.conn, s.client = conn, cli
		s.err = nil
		s.lastUsed = time.Now()
		close(ch)
		s.mu.Unlock()
		return cli, nil
	}
}

// Fail records an asynchronous transport fault: the session becomes broken,
// its connection is closed and its client is never handed out again. Faults
// reported while a handshake is in flight are ignored; the flight settles
// the state itself.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	if s.status != StatusConnected {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.status = StatusBroken
	s.err = err
	s.conn, s.client = nil, nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// close releases the session's connection, used on eviction and shutdown.
func (s *Session) close() {
	s.mu.Lock()
	conn := s.conn
	s.conn, s.client = nil, nil
	if s.status == StatusConnected {
		s.status = StatusBroken
	}
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (s *Session) idleSince() (time.Time, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed, s.status
}

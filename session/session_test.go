package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/client"
)

// fakeConn is an in-memory Conn whose handshake outcome and latency are
// scripted per test.
type fakeConn struct {
	sendErr   error
	sendDelay time.Duration
	closed    atomic.Int32
}

func (c *fakeConn) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	if c.sendDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.sendDelay):
		}
	}
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	data, _ := json.Marshal(&schema.InitializeResult{ProtocolVersion: schema.LatestProtocolVersion})
	return &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Result: data}, nil
}

func (c *fakeConn) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.closed.Add(1)
	return nil
}

var _ Conn = (*fakeConn)(nil)

type fakeDialer struct {
	dials   atomic.Int32
	conn    func() *fakeConn
	dialErr error
	block   chan struct{} // when set, dial waits for the channel to close
}

func (d *fakeDialer) dial(ctx context.Context) (Conn, *client.Client, error) {
	d.dials.Add(1)
	if d.block != nil {
		<-d.block
	}
	if d.dialErr != nil {
		return nil, nil, d.dialErr
	}
	conn := d.conn()
	return conn, client.New("workflow", "0.1", conn), nil
}

func newFakeDialer(conn *fakeConn) *fakeDialer {
	return &fakeDialer{conn: func() *fakeConn { return conn }}
}

func TestSession_Connect(t *testing.T) {
	conn := &fakeConn{}
	dialer := newFakeDialer(conn)
	s := newSession("fp-1")
	assert.Equal(t, StatusEmpty, s.Status())
	_, ok := s.Client()
	assert.False(t, ok)

	cli, err := s.Connect(context.Background(), dialer.dial)
	require.NoError(t, err)
	require.NotNil(t, cli)
	assert.Equal(t, StatusConnected, s.Status())
	assert.True(t, s.IsConnected())

	// idempotent: no second handshake
	again, err := s.Connect(context.Background(), dialer.dial)
	require.NoError(t, err)
	assert.Same(t, cli, again)
	assert.Equal(t, int32(1), dialer.dials.Load())

	held, ok := s.Client()
	assert.True(t, ok)
	assert.Same(t, cli, held)
}

func TestSession_ConnectSingleFlight(t *testing.T) {
	conn := &fakeConn{sendDelay: 50 * time.Millisecond}
	dialer := newFakeDialer(conn)
	s := newSession("fp-1")

	const callers = 8
	started := time.Now()
	clients := make([]*client.Client, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i], errs[i] = s.Connect(context.Background(), dialer.dial)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), dialer.dials.Load(), "exactly one handshake")
	assert.True(t, time.Since(started) < time.Duration(callers)*50*time.Millisecond/2, "callers must share the flight, not queue")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, clients[0], clients[i])
	}
}

func TestSession_ConnectFailureSharedByWaiters(t *testing.T) {
	block := make(chan struct{})
	dialer := &fakeDialer{dialErr: fmt.Errorf("connection refused"), block: block}
	s := newSession("fp-1")

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Connect(context.Background(), dialer.dial)
		}(i)
	}
	// let every caller either own the flight or park on it, then fail it
	require.Eventually(t, func() bool { return s.Status() == StatusConnecting }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	assert.Equal(t, int32(1), dialer.dials.Load(), "waiters must share the failed flight")
	assert.Equal(t, StatusBroken, s.Status())
	for i := 0; i < callers; i++ {
		var handshakeErr *HandshakeError
		require.True(t, errors.As(errs[i], &handshakeErr), "caller %v: %v", i, errs[i])
	}
	_, ok := s.Client()
	assert.False(t, ok)
}

func TestSession_FailedHandshakeReleasesConn(t *testing.T) {
	conn := &fakeConn{sendErr: fmt.Errorf("connection refused")}
	s := newSession("fp-1")

	_, err := s.Connect(context.Background(), newFakeDialer(conn).dial)
	var handshakeErr *HandshakeError
	require.True(t, errors.As(err, &handshakeErr))
	assert.Equal(t, StatusBroken, s.Status())
	// the partially opened conn was released exactly once
	assert.Equal(t, int32(1), conn.closed.Load())
	_, ok := s.Client()
	assert.False(t, ok)
}

func TestSession_ConnectAfterBrokenRedials(t *testing.T) {
	bad := &fakeConn{sendErr: fmt.Errorf("connection refused")}
	good := &fakeConn{}
	conns := []*fakeConn{bad, good}
	dialer := &fakeDialer{}
	dialer.conn = func() *fakeConn { return conns[int(dialer.dials.Load())-1] }

	s := newSession("fp-1")
	_, err := s.Connect(context.Background(), dialer.dial)
	require.Error(t, err)
	require.Equal(t, StatusBroken, s.Status())

	cli, err := s.Connect(context.Background(), dialer.dial)
	require.NoError(t, err)
	require.NotNil(t, cli)
	assert.Equal(t, StatusConnected, s.Status())
	assert.Equal(t, int32(2), dialer.dials.Load())
}

func TestSession_WaiterTimeout(t *testing.T) {
	block := make(chan struct{})
	conn := &fakeConn{}
	dialer := newFakeDialer(conn)
	dialer.block = block
	s := newSession("fp-1")

	flightDone := make(chan struct{})
	go func() {
		defer close(flightDone)
		_, _ = s.Connect(context.Background(), dialer.dial)
	}()
	// wait until the flight owns the session
	require.Eventually(t, func() bool { return s.Status() == StatusConnecting }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Connect(ctx, dialer.dial)
	var waitErr *WaitTimeoutError
	require.True(t, errors.As(err, &waitErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
	<-flightDone
	assert.Equal(t, StatusConnected, s.Status())
	assert.Equal(t, int32(1), dialer.dials.Load())
}

func TestSession_Fail(t *testing.T) {
	conn := &fakeConn{}
	dialer := newFakeDialer(conn)
	s := newSession("fp-1")
	_, err := s.Connect(context.Background(), dialer.dial)
	require.NoError(t, err)

	fault := fmt.Errorf("broken pipe")
	s.Fail(fault)
	assert.Equal(t, StatusBroken, s.Status())
	assert.False(t, s.IsConnected())
	assert.Same(t, fault, s.Err())
	_, ok := s.Client()
	assert.False(t, ok)
	assert.Equal(t, int32(1), conn.closed.Load())

	// a second fault is a no-op; the conn is closed exactly once
	s.Fail(fmt.Errorf("late fault"))
	assert.Equal(t, int32(1), conn.closed.Load())
	assert.Same(t, fault, s.Err())
}

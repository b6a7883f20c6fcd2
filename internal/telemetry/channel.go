package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mediastudio/internal/clock"
	"mediastudio/internal/logging"
)

const (
	defaultReconnectDelay = 3 * time.Second
	defaultBufferSize     = 50
)

// State is the connection state of a Channel.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("telemetry channel closed")

// Options configures a Channel.
type Options struct {
	URL            string
	Dialer         Dialer
	Clock          clock.Clock
	ReconnectDelay time.Duration
	BufferSize     int
	Logger         *slog.Logger
	// OnEvent is invoked for every decoded event after it is buffered.
	OnEvent func(Event)
	// OnState is invoked on every state transition.
	OnState func(State)
}

// Channel is a self-healing subscription to the telemetry stream.
type Channel struct {
	url     string
	dialer  Dialer
	clock   clock.Clock
	delay   time.Duration
	buffer  *Buffer
	logger  *slog.Logger
	onEvent func(Event)
	onState func(State)

	mu       sync.Mutex
	state    State
	lastErr  error
	started  bool
	closed   bool
	conn     Conn
	timer    clock.Timer
	ctx      context.Context
	cancel   context.CancelFunc
	attempts int
}

// NewChannel constructs a Channel in the disconnected state.
func NewChannel(opts Options) *Channel {
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	size := opts.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = WebSocketDialer{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Channel{
		url:     opts.URL,
		dialer:  dialer,
		clock:   clk,
		delay:   delay,
		buffer:  NewBuffer(size),
		logger:  logging.NewComponentLogger(opts.Logger, "telemetry"),
		onEvent: opts.OnEvent,
		onState: opts.OnState,
		state:   StateDisconnected,
	}
}

// Start begins connecting in the background. Cancelling ctx has the same
// effect as Close.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	runCtx := c.ctx
	c.mu.Unlock()

	go func() {
		<-runCtx.Done()
		_ = c.Close()
	}()
	go c.connect()
	return nil
}

// Close cancels any pending reconnect and closes the live connection.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.setState(StateDisconnected)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error that caused the most recent disconnect, or nil
// once a connection succeeds.
func (c *Channel) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Snapshot returns buffered events, newest first.
func (c *Channel) Snapshot() []Event {
	return c.buffer.Snapshot()
}

// Attempts returns how many dials have been made.
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Channel) connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.attempts++
	ctx := c.ctx
	c.mu.Unlock()

	c.setState(StateConnecting)
	conn, err := c.dialer.Dial(ctx, c.url)
	if err != nil {
		c.drop(err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.lastErr = nil
	c.mu.Unlock()

	c.setState(StateConnected)
	c.logger.Info("telemetry connected", logging.String(logging.FieldEndpoint, c.url))
	c.readLoop(conn)
}

func (c *Channel) readLoop(conn Conn) {
	for {
		frame, err := conn.Receive()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			c.drop(err)
			return
		}
		event, err := DecodeEvent(frame)
		if err != nil {
			c.logger.Warn("skipping undecodable telemetry frame", logging.Error(err))
			continue
		}
		c.buffer.Push(event)
		if c.onEvent != nil {
			c.onEvent(event)
		}
	}
}

// drop records the failure and schedules exactly one reconnect.
func (c *Channel) drop(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.lastErr = err
	changed := c.state != StateDisconnected
	c.state = StateDisconnected
	c.timer = c.clock.AfterFunc(c.delay, func() { go c.connect() })
	c.mu.Unlock()

	if changed && c.onState != nil {
		c.onState(StateDisconnected)
	}
	c.logger.Warn("telemetry disconnected; reconnecting",
		logging.Duration("delay", c.delay),
		logging.Error(err),
	)
}

func (c *Channel) setState(state State) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()
	if c.onState != nil {
		c.onState(state)
	}
}

// Package transport owns the WebSocket connection to the agent
// backend: dialing, the single scheduled reconnect per closure, epoch
// tracking, and stale-frame gating. It carries no message queue; sends
// while disconnected are dropped (at-most-once per connection epoch).
package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pkt.systems/agentdeck/internal/logx"
	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

// DefaultReconnectDelay is the fixed wait before the reconnect attempt
// scheduled after a closure.
const DefaultReconnectDelay = 3 * time.Second

// FrameHandler receives one inbound frame together with the epoch of
// the connection that delivered it.
type FrameHandler func(epoch uint64, frame []byte)

// Options configures a Manager.
type Options struct {
	// BackendURL is the http(s) base URL of the backend. The WebSocket
	// scheme mirrors it: https becomes wss.
	BackendURL string
	ClientID   schema.ClientID
	// ReconnectDelay overrides DefaultReconnectDelay when positive.
	ReconnectDelay time.Duration
	// Handler receives inbound frames. Frames from a stale epoch are
	// dropped before the handler sees them.
	Handler FrameHandler
	// OnState observes every connection state transition. It is invoked
	// synchronously from transport internals and must not call back
	// into the Manager.
	OnState func(schema.ConnEvent)
	Logger  pslog.Logger
	Dialer  *websocket.Dialer
}

// Manager owns the transport lifecycle. One Manager exists per client
// process; the underlying connection is replaced wholesale on
// reconnect.
type Manager struct {
	endpoint       string
	dialer         *websocket.Dialer
	handler        FrameHandler
	onState        func(schema.ConnEvent)
	reconnectDelay time.Duration
	log            pslog.Logger

	mu        sync.Mutex
	writeMu   sync.Mutex
	conn      *websocket.Conn
	epoch     uint64
	state     schema.ConnState
	closed    bool
	reconnect *time.Timer
}

// New constructs a Manager. It does not dial; call Connect.
func New(opts Options) (*Manager, error) {
	if err := schema.ValidateClientID(opts.ClientID); err != nil {
		return nil, err
	}
	endpoint, err := Endpoint(opts.BackendURL, opts.ClientID)
	if err != nil {
		return nil, err
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Manager{
		endpoint:       endpoint,
		dialer:         dialer,
		handler:        opts.Handler,
		onState:        opts.OnState,
		reconnectDelay: delay,
		log:            logger,
		state:          schema.ConnClosed,
	}, nil
}

// Endpoint builds the session-scoped WebSocket URL for a backend base
// URL, mirroring the base scheme (https -> wss).
func Endpoint(backendURL string, clientID schema.ClientID) (string, error) {
	parsed, err := url.Parse(backendURL)
	if err != nil {
		return "", fmt.Errorf("backend url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("backend url scheme %q not supported", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("backend url missing host")
	}
	parsed.Path = "/ws/chat/" + string(clientID)
	parsed.RawQuery = ""
	return parsed.String(), nil
}

// Connect starts a dial attempt. Each attempt, including reconnects,
// increments the epoch. Dial failures are surfaced as a state change
// only; they schedule the next attempt and never return an error to the
// caller.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
	m.epoch++
	epoch := m.epoch
	m.setStateLocked(schema.ConnConnecting, epoch)
	m.mu.Unlock()

	log := logx.WithEpoch(m.log, epoch)
	conn, resp, err := m.dialer.Dial(m.endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	m.mu.Lock()
	if m.closed || m.epoch != epoch {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		log.Warn("dial failed", "err", err)
		m.setStateLocked(schema.ConnClosed, epoch)
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		return
	}
	m.conn = conn
	m.setStateLocked(schema.ConnOpen, epoch)
	m.mu.Unlock()

	log.Info("transport open")
	go m.readLoop(conn, epoch)
}

// Close shuts the transport down permanently. No reconnect is
// scheduled afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
	conn := m.conn
	m.conn = nil
	epoch := m.epoch
	if m.state != schema.ConnClosed {
		m.setStateLocked(schema.ConnClosed, epoch)
	}
	m.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Epoch returns the current connection epoch.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// State returns the current connection state.
func (m *Manager) State() schema.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open reports whether the transport is currently open. Callers that
// must not silently lose an envelope (stop generation in particular)
// check this before Send.
func (m *Manager) Open() bool {
	return m.State() == schema.ConnOpen
}

// Send marshals v as JSON and writes it to the transport. When the
// transport is not open the envelope is dropped and ErrNotConnected is
// returned; nothing is queued.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	conn := m.conn
	open := m.state == schema.ConnOpen
	m.mu.Unlock()
	if !open || conn == nil {
		m.log.Trace("send dropped, transport not open")
		return schema.ErrNotConnected
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (m *Manager) readLoop(conn *websocket.Conn, epoch uint64) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			m.handleClosed(epoch, err)
			return
		}
		m.deliver(epoch, frame)
	}
}

// deliver forwards a frame to the handler unless its epoch is stale: a
// frame read on epoch N racing with a reconnect to epoch N+1 is
// dropped silently.
func (m *Manager) deliver(epoch uint64, frame []byte) {
	m.mu.Lock()
	current := m.epoch
	handler := m.handler
	m.mu.Unlock()
	if epoch != current {
		m.log.Trace("stale frame dropped", "frame_epoch", epoch, "epoch", current)
		return
	}
	if handler != nil {
		handler(epoch, frame)
	}
}

func (m *Manager) handleClosed(epoch uint64, err error) {
	m.mu.Lock()
	if m.closed || m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.setStateLocked(schema.ConnClosed, epoch)
	m.scheduleReconnectLocked()
	m.mu.Unlock()
	logx.WithEpoch(m.log, epoch).Info("transport closed", "err", err)
}

// scheduleReconnectLocked arms exactly one reconnect attempt after the
// fixed delay. Connect cancels a pending timer, so overlapping
// schedules collapse to one attempt.
func (m *Manager) scheduleReconnectLocked() {
	if m.closed || m.reconnect != nil {
		return
	}
	m.reconnect = time.AfterFunc(m.reconnectDelay, func() {
		m.mu.Lock()
		m.reconnect = nil
		m.mu.Unlock()
		m.Connect()
	})
}

func (m *Manager) setStateLocked(state schema.ConnState, epoch uint64) {
	if m.state == state {
		return
	}
	m.state = state
	if m.onState != nil {
		m.onState(schema.ConnEvent{State: state, Epoch: epoch})
	}
}

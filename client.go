package agentdeck

import (
	"context"
	"errors"

	"pkt.systems/agentdeck/backend"
	"pkt.systems/agentdeck/core"
	"pkt.systems/agentdeck/internal/appconfig"
	"pkt.systems/agentdeck/internal/eventbus"
	"pkt.systems/agentdeck/internal/format"
	"pkt.systems/agentdeck/internal/pagemeta"
	"pkt.systems/agentdeck/schema"
	"pkt.systems/agentdeck/transport"
	"pkt.systems/pslog"
)

// ClientConfig configures the compositor.
type ClientConfig struct {
	Config   appconfig.Config
	ClientID schema.ClientID
}

// ClientDeps captures optional dependencies. An extra EventSink is
// fanned out alongside the event bus.
type ClientDeps struct {
	EventSink core.EventSink
	Logger    pslog.Logger
}

// Client composes the transport, the backend REST client, the core
// sync service and the event bus into one connected unit. Surfaces
// subscribe to Bus() and drive the service through Service().
type Client struct {
	cfg       appconfig.Config
	log       pslog.Logger
	bus       *eventbus.Bus
	service   *core.Service
	transport *transport.Manager
	backend   *backend.Client
}

// NewClient wires all components. It does not dial; call Start.
func NewClient(cfg ClientConfig, deps ClientDeps) (*Client, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = schema.NewClientID()
	}
	if err := schema.ValidateClientID(cfg.ClientID); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	c := &Client{
		cfg: cfg.Config,
		log: logger,
		bus: eventbus.New(logger),
	}
	c.backend = backend.New(cfg.Config.BackendURL, logger)

	var titles core.TitleProber
	if cfg.Config.Preview.EnableTitleProbe {
		titles = pagemeta.New(0)
	}

	sinks := []core.EventSink{c.bus}
	if deps.EventSink != nil {
		sinks = append(sinks, deps.EventSink)
	}
	var sink core.EventSink = eventFanout{sinks: sinks}
	if len(sinks) == 1 {
		sink = sinks[0]
	}

	// The transport handler closes over c so the service can be
	// constructed after the manager without a second wiring pass.
	manager, err := transport.New(transport.Options{
		BackendURL:     cfg.Config.BackendURL,
		ClientID:       cfg.ClientID,
		ReconnectDelay: cfg.Config.Timeouts.ReconnectDelay(),
		Handler: func(epoch uint64, frame []byte) {
			c.service.HandleFrame(epoch, frame)
		},
		OnState: func(event schema.ConnEvent) {
			c.service.HandleConn(event.State, event.Epoch)
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	c.transport = manager

	c.service = core.NewService(core.Config{
		DesktopSettle:    cfg.Config.Timeouts.DesktopSettle(),
		LoadTimeout:      cfg.Config.Timeouts.LoadTimeout(),
		DesktopBridgeURL: cfg.Config.Preview.DesktopBridgeURL,
		SandboxMaxLines:  cfg.Config.Limits.SandboxMaxLines,
		LedgerMaxEntries: cfg.Config.Limits.LedgerMaxEntries,
	}, core.ServiceDeps{
		Transport: manager,
		Backend:   c.backend,
		Titles:    titles,
		Renderer:  format.NewTermRenderer(),
		EventSink: sink,
		Logger:    logger,
	})
	return c, nil
}

// Start dials the backend. Connection state flows through the bus.
func (c *Client) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.service == nil {
		return errors.New("client not wired")
	}
	c.log.Info("client start", "backend_url", c.cfg.BackendURL)
	// Connect dials synchronously; run it off the caller so surfaces
	// come up while the first dial is in flight.
	go c.transport.Connect()
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	return nil
}

// Close tears the transport down permanently.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Service exposes the sync layer for surfaces and commands.
func (c *Client) Service() *core.Service {
	return c.service
}

// Bus exposes the surface event bus.
func (c *Client) Bus() *eventbus.Bus {
	return c.bus
}

// Backend exposes the REST client for operations the sync layer does
// not mediate (settings, reminders, memory, sandbox files).
func (c *Client) Backend() *backend.Client {
	return c.backend
}

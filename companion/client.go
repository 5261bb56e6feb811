package companion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"

	"github.com/chazu/kindling/compiler"
)

// DefaultAddr is where the companion process listens for items.
const DefaultAddr = "ws://localhost:31371/codeutilities/item"

var log = commonlog.GetLogger("kindling.companion")

// Option configures a Client or a delivery.
type Option func(*config)

type config struct {
	protocol Protocol
	pace     time.Duration
	dialer   *websocket.Dialer
}

// WithProtocol selects the envelope shape. The default is ProtocolNBT.
func WithProtocol(p Protocol) Option {
	return func(c *config) { c.protocol = p }
}

// WithPace waits d between consecutive lines of a delivery.
func WithPace(d time.Duration) Option {
	return func(c *config) { c.pace = d }
}

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *config) { c.dialer = d }
}

func newConfig(opts []Option) *config {
	cfg := &config{
		protocol: ProtocolNBT,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Client is one open connection to the companion process. A Client is not
// safe for concurrent use; requests are strictly sequential.
type Client struct {
	conn *websocket.Conn
	cfg  *config
}

// Dial connects to the companion process at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	cfg := newConfig(opts)
	if addr == "" {
		addr = DefaultAddr
	}
	conn, _, err := cfg.dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("companion: dial %s: %w", addr, err)
	}
	log.Debugf("connected to %s (%s protocol)", addr, cfg.protocol)
	return &Client{conn: conn, cfg: cfg}, nil
}

// Send writes one artifact and blocks until the companion replies.
// There is no timeout: a silent peer blocks Send indefinitely.
func (c *Client) Send(a compiler.Artifact) ([]byte, error) {
	msg, err := c.cfg.protocol.Encode(a)
	if err != nil {
		return nil, err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return nil, fmt.Errorf("companion: send %q: %w", a.Name, err)
	}
	_, reply, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("companion: await reply for %q: %w", a.Name, err)
	}
	return reply, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Receipt records one delivered artifact and the companion's reply.
type Receipt struct {
	DeliveryID string
	Artifact   compiler.Artifact
	Reply      []byte
}

// Deliver compiles p and sends every line over a single connection, in
// order. Nothing is sent if any line fails to compile. The first I/O error
// aborts the remaining lines; receipts for lines already delivered are
// returned alongside it.
func Deliver(ctx context.Context, addr string, p *compiler.Program, opts ...Option) ([]Receipt, error) {
	arts, err := p.Artifacts()
	if err != nil {
		return nil, err
	}
	return DeliverArtifacts(ctx, addr, arts, opts...)
}

// DeliverArtifacts sends precompiled artifacts over a single connection.
func DeliverArtifacts(ctx context.Context, addr string, arts []compiler.Artifact, opts ...Option) ([]Receipt, error) {
	if len(arts) == 0 {
		return nil, nil
	}
	c, err := Dial(ctx, addr, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	id := uuid.NewString()
	log.Infof("delivery %s: %d line(s)", id, len(arts))

	receipts := make([]Receipt, 0, len(arts))
	for i, a := range arts {
		if i > 0 && c.cfg.pace > 0 {
			select {
			case <-ctx.Done():
				return receipts, ctx.Err()
			case <-time.After(c.cfg.pace):
			}
		}
		if err := ctx.Err(); err != nil {
			return receipts, err
		}
		reply, err := c.Send(a)
		if err != nil {
			log.Errorf("delivery %s: line %d: %s", id, i, err)
			return receipts, err
		}
		log.Debugf("delivery %s: line %d %q acknowledged", id, i, a.Name)
		receipts = append(receipts, Receipt{DeliveryID: id, Artifact: a, Reply: reply})
	}
	return receipts, nil
}

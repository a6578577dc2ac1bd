package mrw

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sync"

	"github.com/matrix-redux-wrap/mrw-go/mrw/internal/wsconn"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const protocolVersion = 1

const (
	frameHello = "hello"
	frameEvent = "event"
	frameError = "error"
)

// syncEnvelope is the wire frame of the sync stream. Server frames
// carry either an emitted event or a protocol error; the single client
// frame is the hello handshake.
type syncEnvelope struct {
	Type  string          `json:"type"`
	Event EmittedType     `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *syncError      `json:"error,omitempty"`
}

type syncError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// helloPayload initiates the session.
type helloPayload struct {
	Protocol int    `json:"protocol,omitempty"`
	Token    string `json:"token,omitempty"`
	User     string `json:"user,omitempty"`
}

// SyncClient is a live event source backed by a websocket sync stream.
// It decodes the event envelope stream into native payloads and fires
// the registered per-type handlers, implementing EventSource for
// WrapSyncClient and WrapSyncClientBatched.
type SyncClient struct {
	cfg    Config
	logger *logrus.Logger
	conn   *wsconn.Conn

	mu        sync.Mutex
	handlers  map[EmittedType][]func(NativeArgs)
	connected bool
	cancel    context.CancelFunc
	onError   func(error)
}

// NewSyncClient constructs a client with the provided config. Use
// DefaultConfig() as a starting point; a nil logger discards logs.
func NewSyncClient(cfg Config, logger *logrus.Logger) *SyncClient {
	if logger == nil {
		logger = discardLogger()
	}
	return &SyncClient{
		cfg:      cfg,
		logger:   logger,
		handlers: make(map[EmittedType][]func(NativeArgs)),
	}
}

// On registers a handler for one emitted type. Implements EventSource.
func (c *SyncClient) On(t EmittedType, fn func(NativeArgs)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.handlers[t] = append(c.handlers[t], fn)
	c.mu.Unlock()
}

// OnError registers a callback for stream-level errors.
func (c *SyncClient) OnError(fn func(error)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

// Connect dials the server, sends hello, and starts the read loop.
func (c *SyncClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return NewError(ErrorConnection, "already connected")
	}
	c.mu.Unlock()

	if c.cfg.URL == "" {
		return NewError(ErrorConnection, "empty URL")
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return WrapError(ErrorConnection, "invalid URL", err)
	}

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return WrapError(ErrorConnection, "dial failed", err)
	}
	c.conn = wsconn.New(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)

	hello := syncEnvelope{Type: frameHello}
	hello.Data, err = json.Marshal(helloPayload{
		Protocol: protocolVersion,
		Token:    c.cfg.Token,
		User:     c.cfg.User,
	})
	if err != nil {
		return WrapError(ErrorSerialization, "encoding hello", err)
	}
	if err := c.conn.WriteJSON(ctx, hello); err != nil {
		_ = c.conn.Close(websocket.StatusInternalError, "handshake error")
		return WrapError(ErrorConnection, "handshake failed", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(runCtx)
	return nil
}

// Close shuts down the client and closes the websocket.
func (c *SyncClient) Close() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.connected = false
	c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *SyncClient) readLoop(ctx context.Context) {
	for {
		var env syncEnvelope
		if err := c.conn.ReadJSON(ctx, &env); err != nil {
			if isExpectedDisconnect(ctx, err) {
				return
			}
			c.fireError(WrapError(ErrorConnection, "read failed", err))
			c.logger.WithError(err).Warn("read loop exit")
			return
		}
		c.handle(env)
	}
}

// handle routes one decoded envelope to the registered handlers.
func (c *SyncClient) handle(env syncEnvelope) {
	switch env.Type {
	case frameError:
		if env.Error != nil {
			c.fireError(NewError(ErrorConnection, env.Error.Code+": "+env.Error.Msg))
		}
	case frameEvent:
		var args NativeArgs
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &args); err != nil {
				c.fireError(WrapError(ErrorSerialization, "decoding event payload", err))
				return
			}
		}
		c.emit(env.Event, args)
	}
}

func (c *SyncClient) emit(t EmittedType, args NativeArgs) {
	c.mu.Lock()
	fns := c.handlers[t]
	c.mu.Unlock()
	if len(fns) == 0 {
		c.logger.WithFields(logrus.Fields{"event": t}).Debug("no handlers for emitted type")
		return
	}
	for _, fn := range fns {
		fn(args)
	}
}

func (c *SyncClient) fireError(err error) {
	c.mu.Lock()
	fn := c.onError
	c.mu.Unlock()
	if fn != nil && err != nil {
		fn(err)
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}

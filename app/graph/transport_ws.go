package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/photoshare/app/models"
	"github.com/gorilla/websocket"
)

// Subprotocol is the subscriptions-transport-ws protocol name.
const Subprotocol = "graphql-ws"

// graphql-ws message types.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionError     = "connection_error"
	msgConnectionKeepAlive = "ka"
	msgConnectionTerminate = "connection_terminate"
	msgStart               = "start"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
	msgStop                = "stop"
)

const (
	DefaultKeepAlive = 15 * time.Second
	writeTimeout     = 10 * time.Second
	outboundBuffer   = 16
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsOutbound struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// WSTransport serves subscriptions over websockets.
type WSTransport struct {
	exec      *Executor
	auth      Authenticator
	upgrader  websocket.Upgrader
	keepAlive time.Duration
	logger    *slog.Logger

	// base is cancelled by Close to end every open connection.
	base   context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
}

// WSOption configures a WSTransport.
type WSOption func(*WSTransport)

// WithKeepAlive sets the ka interval; zero disables keep-alives.
func WithKeepAlive(d time.Duration) WSOption {
	return func(t *WSTransport) { t.keepAlive = d }
}

// WithCheckOrigin sets the upgrader's origin policy.
func WithCheckOrigin(fn func(r *http.Request) bool) WSOption {
	return func(t *WSTransport) { t.upgrader.CheckOrigin = fn }
}

// NewWSTransport creates the websocket transport.
func NewWSTransport(exec *Executor, auth Authenticator, logger *slog.Logger, opts ...WSOption) *WSTransport {
	if logger == nil {
		logger = slog.Default()
	}
	base, cancel := context.WithCancel(context.Background())
	t := &WSTransport{
		exec: exec,
		auth: auth,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{Subprotocol},
			CheckOrigin:  func(r *http.Request) bool { return true },
		},
		keepAlive: DefaultKeepAlive,
		logger:    logger,
		base:      base,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Close ends every open connection and waits for them to finish.
func (t *WSTransport) Close() {
	t.cancel()
	t.conns.Wait()
}

func (t *WSTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if t.base.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.WarnContext(r.Context(), "WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	t.conns.Add(1)
	defer t.conns.Done()

	ctx, cancel := context.WithCancel(t.base)
	c := &wsConn{
		transport: t,
		conn:      conn,
		ctx:       ctx,
		cancel:    cancel,
		out:       make(chan wsOutbound, outboundBuffer),
		ops:       map[string]context.CancelFunc{},
		logger:    t.logger.With(slog.String("remote_addr", r.RemoteAddr)),
	}
	c.serve()
}

// wsConn is one client connection. The reader runs on the serving
// goroutine, a single writer owns the socket's write side, and each
// operation runs on its own goroutine.
type wsConn struct {
	transport *WSTransport
	conn      *websocket.Conn
	ctx       context.Context
	cancel    context.CancelFunc
	out       chan wsOutbound
	logger    *slog.Logger

	mu          sync.Mutex
	ops         map[string]context.CancelFunc
	user        *models.User
	initialized bool
	opsWG       sync.WaitGroup
}

func (c *wsConn) serve() {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	// Unblock the reader when the connection context ends.
	go func() {
		<-c.ctx.Done()
		_ = c.conn.SetReadDeadline(time.Now())
	}()

	c.readLoop()

	c.cancel()
	c.opsWG.Wait()
	<-writerDone
	_ = c.conn.Close()
	c.logger.Debug("WebSocket connection closed")
}

func (c *wsConn) readLoop() {
	for {
		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.ctx.Err() == nil {
				c.logger.Warn("WebSocket read error", slog.Any("error", err))
			}
			return
		}

		switch msg.Type {
		case msgConnectionInit:
			c.handleInit(msg)
		case msgStart:
			c.handleStart(msg)
		case msgStop:
			c.handleStop(msg.ID)
		case msgConnectionTerminate:
			return
		default:
			c.send(wsOutbound{ID: msg.ID, Type: msgError, Payload: []Response{{Message: "unknown message type " + msg.Type}}})
		}
	}
}

func (c *wsConn) writeLoop() {
	var ka <-chan time.Time
	if c.transport.keepAlive > 0 {
		ticker := time.NewTicker(c.transport.keepAlive)
		defer ticker.Stop()
		ka = ticker.C
	}

	for {
		select {
		case msg := <-c.out:
			if err := c.write(msg); err != nil {
				c.cancel()
				return
			}
		case <-ka:
			c.mu.Lock()
			ready := c.initialized
			c.mu.Unlock()
			if ready {
				if err := c.write(wsOutbound{Type: msgConnectionKeepAlive}); err != nil {
					c.cancel()
					return
				}
			}
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

func (c *wsConn) write(msg wsOutbound) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		if c.ctx.Err() == nil {
			c.logger.Warn("WebSocket write error", slog.Any("error", err))
		}
		return err
	}
	return nil
}

// send queues msg for the writer. It reports false once the connection is
// closing.
func (c *wsConn) send(msg wsOutbound) bool {
	select {
	case c.out <- msg:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *wsConn) handleInit(msg wsMessage) {
	var params map[string]interface{}
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &params); err != nil {
			c.send(wsOutbound{Type: msgConnectionError, Payload: Response{Message: "invalid connection params"}})
			return
		}
	}

	var user *models.User
	if token := connectionToken(params); token != "" && c.transport.auth != nil {
		u, err := c.transport.auth.Authenticate(c.ctx, token)
		if err != nil {
			c.logger.Debug("Ignoring invalid session token", slog.Any("error", err))
		} else {
			user = u
		}
	}

	c.mu.Lock()
	c.user = user
	c.initialized = true
	c.mu.Unlock()

	c.send(wsOutbound{Type: msgConnectionAck})
	if c.transport.keepAlive > 0 {
		c.send(wsOutbound{Type: msgConnectionKeepAlive})
	}
}

func connectionToken(params map[string]interface{}) string {
	for _, key := range []string{"Authorization", "authorization"} {
		if v, ok := params[key].(string); ok && v != "" {
			if len(v) > 7 && (v[:7] == "Bearer " || v[:7] == "bearer ") {
				return v[7:]
			}
			return v
		}
	}
	return ""
}

func (c *wsConn) handleStart(msg wsMessage) {
	if msg.ID == "" {
		c.send(wsOutbound{Type: msgError, Payload: []Response{{Message: "start requires an id"}}})
		return
	}

	var req Request
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.send(wsOutbound{ID: msg.ID, Type: msgError, Payload: []Response{{Message: "invalid start payload"}}})
		return
	}

	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		c.send(wsOutbound{ID: msg.ID, Type: msgError, Payload: []Response{{Message: "connection not initialized"}}})
		return
	}
	if _, exists := c.ops[msg.ID]; exists {
		c.mu.Unlock()
		c.send(wsOutbound{ID: msg.ID, Type: msgError, Payload: []Response{{Message: "operation id already in use"}}})
		return
	}
	opCtx, opCancel := context.WithCancel(WithUser(c.ctx, c.user))
	c.ops[msg.ID] = opCancel
	c.opsWG.Add(1)
	c.mu.Unlock()

	go c.runOperation(opCtx, msg.ID, req)
}

// runOperation streams results for one start message. The results channel
// is always drained so the executor can exit.
func (c *wsConn) runOperation(ctx context.Context, id string, req Request) {
	defer c.opsWG.Done()
	defer c.finishOp(id)

	for res := range c.transport.exec.Subscribe(ctx, req) {
		if ctx.Err() != nil {
			continue
		}
		c.send(wsOutbound{ID: id, Type: msgData, Payload: res})
	}

	if ctx.Err() == nil {
		c.send(wsOutbound{ID: id, Type: msgComplete})
	}
}

func (c *wsConn) finishOp(id string) {
	c.mu.Lock()
	cancel, ok := c.ops[id]
	delete(c.ops, id)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *wsConn) handleStop(id string) {
	c.mu.Lock()
	cancel, ok := c.ops[id]
	delete(c.ops, id)
	c.mu.Unlock()
	if !ok {
		return
	}
	cancel()
	c.send(wsOutbound{ID: id, Type: msgComplete})
}

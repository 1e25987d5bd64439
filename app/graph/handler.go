package graph

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/Black-And-White-Club/photoshare/app/models"
	"github.com/gorilla/websocket"
)

const (
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 1 << 20
	// DefaultMaxUploadBytes bounds multipart upload requests.
	DefaultMaxUploadBytes = 50 << 20
)

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Response is a plain JSON message body.
type Response struct {
	Message string `json:"message"`
}

// RespondWithJSON sends payload as a JSON response.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	data, _ := json.Marshal(payload)
	_, _ = w.Write(data)
}

// Handler serves GraphQL over HTTP and hands websocket upgrades to the
// subscription transport.
type Handler struct {
	exec   *Executor
	auth   Authenticator
	ws     http.Handler
	logger *slog.Logger

	maxUpload int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMaxUploadBytes caps the size of a multipart upload request.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// NewHandler creates the /graphql handler. ws may be nil to disable
// subscriptions.
func NewHandler(exec *Executor, auth Authenticator, ws http.Handler, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{exec: exec, auth: auth, ws: ws, logger: logger, maxUpload: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		if h.ws == nil {
			RespondWithJSON(w, http.StatusBadRequest, Response{Message: "subscriptions are not enabled"})
			return
		}
		h.ws.ServeHTTP(w, r)
		return
	}

	var (
		req     Request
		cleanup = func() {}
		err     error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = requestFromQuery(r)
	case http.MethodPost:
		req, cleanup, err = h.requestFromBody(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		RespondWithJSON(w, http.StatusMethodNotAllowed, Response{Message: "method not allowed"})
		return
	}
	defer cleanup()
	if err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		RespondWithJSON(w, code, Response{Message: err.Error()})
		return
	}

	ctx := WithUser(r.Context(), h.currentUser(r.Context(), r.Header.Get("Authorization")))
	res := h.exec.Execute(ctx, req)
	RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) requestFromBody(w http.ResponseWriter, r *http.Request) (Request, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
		return parseMultipart(r)
	}

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, func() {}, errors.New("request body must be a JSON GraphQL request")
	}
	req.Variables = normalizeNumbers(req.Variables)
	return req, func() {}, nil
}

func requestFromQuery(r *http.Request) (Request, error) {
	q := r.URL.Query()
	req := Request{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
		ReadOnly:      true,
	}
	if raw := q.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return Request{}, errors.New("variables must be a JSON object")
		}
	}
	return req, nil
}

// currentUser authenticates a raw or Bearer token. Invalid tokens yield an
// anonymous request rather than an error.
func (h *Handler) currentUser(ctx context.Context, header string) *models.User {
	token := strings.TrimSpace(header)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" || h.auth == nil {
		return nil
	}
	user, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		h.logger.DebugContext(ctx, "Ignoring invalid session token", slog.Any("error", err))
		return nil
	}
	return user
}

// normalizeNumbers converts json.Number values into int when integral and
// float64 otherwise, which is what the executor's scalars accept.
func normalizeNumbers(v map[string]interface{}) map[string]interface{} {
	for k, val := range v {
		v[k] = normalizeValue(val)
	}
	return v
}

func normalizeValue(val interface{}) interface{} {
	switch t := val.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]interface{}:
		return normalizeNumbers(t)
	case []interface{}:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	}
	return val
}

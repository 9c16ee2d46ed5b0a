// Package rpc implements the protocol front-end (C7, spec.md §4.7): a
// single JSON-RPC 2.0 endpoint over HTTP POST, with unary-JSON and
// server-pushed event-stream response modes chosen by content negotiation.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taigrr/vault-gateway/internal/errs"
	"github.com/taigrr/vault-gateway/internal/resource"
	"github.com/taigrr/vault-gateway/internal/tools"
	"github.com/taigrr/vault-gateway/internal/types"
)

// chunkSize is the textual streaming boundary (spec.md §4.7).
const chunkSize = 512

// streamTextThreshold and streamListThreshold are the mandatory-stream
// triggers (spec.md §4.7): the server MUST stream past either, and MAY
// stream below them (this implementation streams only when required, or
// when the client explicitly asks for it).
const (
	streamTextThreshold = 1024
	streamListThreshold = 10
)

// request is the only shape the endpoint accepts.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result"`
	Error   *rpcError `json:"error,omitempty"`
}

// MarshalJSON emits exactly one of "result"/"error" (JSON-RPC 2.0 requires
// the two be mutually exclusive). Marshaling Result through a plain
// omitempty field would drop a legitimately-empty successful result (an
// empty list, a zero count) whenever it happened to box to a nil
// interface; splitting the two response shapes avoids that entirely.
func (r response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			JSONRPC string    `json:"jsonrpc"`
			ID      any       `json:"id,omitempty"`
			Error   *rpcError `json:"error"`
		}{r.JSONRPC, r.ID, r.Error})
	}
	return json.Marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		ID      any    `json:"id,omitempty"`
		Result  any    `json:"result"`
	}{r.JSONRPC, r.ID, r.Result})
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Server is the http.Handler the gateway exposes on its single endpoint.
type Server struct {
	tools     *tools.Registry
	resources *resource.Router
	name      string
	version   string
	log       zerolog.Logger
}

// New constructs a Server.
func New(toolRegistry *tools.Registry, resourceRouter *resource.Router, name, version string, log zerolog.Logger) *Server {
	return &Server{
		tools:     toolRegistry,
		resources: resourceRouter,
		name:      name,
		version:   version,
		log:       log.With().Str("component", "rpc").Logger(),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeUnary(w, response{JSONRPC: "2.0", Error: errorEnvelope(errs.New(errs.KindParseError, "malformed JSON body"))})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeUnary(w, response{JSONRPC: "2.0", ID: req.ID, Error: errorEnvelope(errs.New(errs.KindInvalidRequest, "jsonrpc must be \"2.0\" and method must be set"))})
		return
	}

	result, err := s.dispatch(r.Context(), req.Method, req.Params)
	if err != nil {
		s.writeUnary(w, response{JSONRPC: "2.0", ID: req.ID, Error: errorEnvelope(err)})
		return
	}

	wantsStream := strings.Contains(r.Header.Get("Accept"), "text/event-stream")
	if shouldStream(result, wantsStream) {
		s.writeStream(w, result)
		return
	}
	s.writeUnary(w, response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "ping":
		return s.tools.Dispatch(ctx, "ping", nil)

	case "initialize":
		return s.initialize(ctx), nil

	case "tools/list":
		return toolDescriptors(s.tools.List()), nil

	case "tools/call":
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, errs.New(errs.KindInvalidRequest, "malformed params")
			}
		}
		return s.tools.Dispatch(ctx, p.Name, p.Arguments)

	case "resources/list":
		return s.resources.List(ctx)

	case "resources/read":
		var p struct {
			URI string `json:"uri"`
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, errs.New(errs.KindInvalidRequest, "malformed params")
			}
		}
		return s.resources.Read(ctx, p.URI)

	default:
		return nil, errs.UnknownMethod(method)
	}
}

type toolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toolDescriptors(ts []tools.Tool) []toolDescriptor {
	out := make([]toolDescriptor, len(ts))
	for i, t := range ts {
		out[i] = toolDescriptor{Name: t.Name, Description: t.Description}
	}
	return out
}

func (s *Server) initialize(ctx context.Context) map[string]any {
	resourceCount := 0
	if list, err := s.resources.List(ctx); err == nil {
		resourceCount = len(list)
	}
	return map[string]any{
		"protocolVersion": "2024-11-05",
		"serverName":      s.name,
		"serverVersion":   s.version,
		"toolCount":       len(s.tools.List()),
		"resourceCount":   resourceCount,
	}
}

func errorEnvelope(err error) *rpcError {
	e, ok := errs.As(err)
	if !ok {
		return &rpcError{Code: -32603, Message: err.Error()}
	}
	switch e.Kind {
	case errs.KindParseError:
		return &rpcError{Code: -32700, Message: e.Message}
	case errs.KindInvalidRequest:
		return &rpcError{Code: -32600, Message: e.Message}
	case errs.KindUnknownMethod, errs.KindUnknownTool:
		return &rpcError{Code: -32601, Message: e.Message, Data: e.Data}
	case errs.KindInvalidArgs:
		return &rpcError{Code: -32602, Message: e.Message, Data: e.Data}
	default:
		return &rpcError{Code: -32603, Message: e.Message, Data: e.Data}
	}
}

func (s *Server) writeUnary(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Error != nil {
		w.WriteHeader(http.StatusOK) // JSON-RPC errors are reported in-band, not via HTTP status
	}
	json.NewEncoder(w).Encode(resp)
}

// shouldStream implements the mandatory-streaming rule (spec.md §4.7): the
// textual payload exceeds 1 KiB, or a list payload exceeds 10 items, or the
// client explicitly asked for it.
func shouldStream(result any, clientWantsStream bool) bool {
	if clientWantsStream {
		return true
	}
	if env, ok := result.(types.Envelope); ok {
		for _, part := range env.Content {
			if part.Type == "text" && len(part.Text) > streamTextThreshold {
				return true
			}
			if n, ok := sliceLen(part.Data); ok && n > streamListThreshold {
				return true
			}
		}
		return false
	}
	n, ok := sliceLen(result)
	return ok && n > streamListThreshold
}

// sliceLen reports the length of result if it is a slice or array, via
// reflection — handlers return concretely-typed slices ([]types.NoteMetadata,
// []toolDescriptor, ...), not a uniform []any, so a type switch can't cover
// every case the dispatch table produces.
func sliceLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	default:
		return 0, false
	}
}

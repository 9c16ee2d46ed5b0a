package rpc

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/taigrr/vault-gateway/internal/types"
)

// writeStream implements the server-pushed path (spec.md §4.7): one JSON
// object per line, text chunked at chunkSize boundaries, lists one frame
// per item, always terminated by a {"type":"complete"} frame and the
// "[DONE]" sentinel.
func (s *Server) writeStream(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)
	emit := func(frame any) {
		enc.Encode(frame)
		if canFlush {
			flusher.Flush()
		}
	}

	if env, ok := result.(types.Envelope); ok {
		for _, part := range env.Content {
			if part.Type == "text" {
				emitText(emit, part.Text)
			} else {
				emitList(emit, part.Data)
			}
		}
	} else {
		emitList(emit, result)
	}

	emit(map[string]any{"type": "complete"})
	w.Write([]byte("[DONE]\n"))
}

func emitText(emit func(any), text string) {
	for start := 0; start < len(text); start += chunkSize {
		end := min(start+chunkSize, len(text))
		emit(map[string]any{"type": "chunk", "data": text[start:end]})
	}
}

// emitList streams one frame per element when data is a slice or array;
// a scalar result is emitted as a single item frame.
func emitList(emit func(any), data any) {
	if data == nil {
		return
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		emit(map[string]any{"type": "item", "data": data})
		return
	}
	for i := 0; i < rv.Len(); i++ {
		emit(map[string]any{"type": "item", "data": rv.Index(i).Interface()})
	}
}

package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/stream"
)

// writeError maps a classified error onto its HTTP status and a safe body.
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.Status(err), gin.H{
		"code":    string(apperrors.CodeOf(err)),
		"message": apperrors.PublicMessage(err),
	})
}

// sseWriter emits stream events as server-sent events. Headers are written
// lazily on the first event so a failure before any output can still produce
// a JSON error response.
type sseWriter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	started bool
}

func newSSEWriter(w http.ResponseWriter, flusher http.Flusher) *sseWriter {
	return &sseWriter{
		writer:  w,
		flusher: flusher,
	}
}

// Start writes the SSE headers immediately, for responses that may carry no
// events at all.
func (w *sseWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.start()
}

// Started reports whether any output was produced.
func (w *sseWriter) Started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// Send writes one event frame.
func (w *sseWriter) Send(event stream.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.start()

	if len(event.Data) > 0 {
		fmt.Fprintf(w.writer, "event: %s\ndata: %s\n\n", event.Type, event.Data)
	} else {
		fmt.Fprintf(w.writer, "event: %s\ndata: {}\n\n", event.Type)
	}
	w.flusher.Flush()
}

func (w *sseWriter) start() {
	if w.started {
		return
	}
	w.started = true
	header := w.writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.flusher.Flush()
}

var _ stream.Writer = (*sseWriter)(nil)

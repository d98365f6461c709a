package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// deadlineWriter is handed to the handler goroutine in place of the
// real ResponseWriter. Once the deadline response has gone out, any
// late handler writes are swallowed so the two goroutines never
// interleave on the wire.
type deadlineWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	expired  bool
	started  bool
	lastCode int
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.started {
		return
	}

	dw.lastCode = code
	dw.started = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}

	if !dw.started {
		dw.lastCode = http.StatusOK
		dw.started = true
	}

	return dw.ResponseWriter.Write(b)
}

// expire claims the response for the timeout path. It reports whether
// the handler had already started writing; when it had, the deadline
// body is suppressed and the partial handler response stands.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return dw.started
}

// requestDeadline applies the configured per-request timeout without
// loosening a deadline the caller already set. An already tighter
// upstream deadline is honored rather than extended, matching how the
// repository layer scopes its database calls.
func requestDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// RequestTimeout bounds the wall-clock time a single request may hold
// a handler. The handler runs in its own goroutine against a
// deadlineWriter; when the deadline fires first, the client gets a 503
// and the handler's context is cancelled so in-flight repository calls
// unwind. A client that disconnected gets no body at all.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := requestDeadline(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			dw := &deadlineWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(dw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				started := dw.expire()
				if started || ctx.Err() == context.Canceled {
					// Nothing useful to tell a gone client, and a
					// half-written response cannot be reset.
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"Request timeout"}`))
			}
		})
	}
}

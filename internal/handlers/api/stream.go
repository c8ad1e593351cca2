package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/analysis"
	"aivisibility/internal/metrics"
	"aivisibility/internal/models"
	"aivisibility/internal/sse"
)

// Engine is the analysis engine as seen by the streaming handlers.
type Engine interface {
	IsConfigured() bool
	GeneratePhrases(ctx context.Context, domainID uuid.UUID, req *models.PhraseGenerationRequest, handler analysis.Handler) error
	RunQueries(ctx context.Context, domainID uuid.UUID, req *models.QueryRunRequest, handler analysis.Handler) error
}

var (
	errClientGone = errors.New("client disconnected")
	errPersist    = errors.New("failed to persist streamed record")
)

// heartbeatInterval is how long a stream may stay silent before a comment
// line is sent to check that the client is still there.
var heartbeatInterval = 15 * time.Second

type streamFunc func(ctx context.Context, handler analysis.Handler) error

type persistFunc func(ctx context.Context, ev analysis.Event) error

// relay runs an engine stream and forwards each event to the client as it
// arrives. An event is persisted before it is forwarded, and records already
// persisted are kept when the stream later fails. Failures reach the client
// as an error event. While the engine is quiet, heartbeat comments detect a
// departed client and cancel the engine request.
func relay(c fiber.Ctx, stream string, run streamFunc, persist persistFunc) error {
	sse.SetHeaders(c)

	// The fiber context is recycled once the handler returns, so the stream
	// gets its own.
	ctx, cancel := context.WithCancelCause(context.Background())

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel(nil)

		var (
			mu       sync.Mutex
			lastSent = time.Now()
		)
		send := func(write func() error) error {
			mu.Lock()
			defer mu.Unlock()
			if err := write(); err != nil {
				return errClientGone
			}
			if err := w.Flush(); err != nil {
				return errClientGone
			}
			lastSent = time.Now()
			return nil
		}

		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			ticker := time.NewTicker(heartbeatInterval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					mu.Lock()
					idle := time.Since(lastSent)
					mu.Unlock()
					if idle < heartbeatInterval {
						continue
					}
					if err := send(func() error { return sse.WriteComment(w, "keepalive") }); err != nil {
						cancel(errClientGone)
						return
					}
				}
			}
		}()

		err := run(ctx, func(ev analysis.Event) error {
			if err := persist(ctx, ev); err != nil {
				return fmt.Errorf("%w: %w", errPersist, err)
			}
			metrics.RecordStreamEvent(stream, ev.Name)

			return send(func() error { return sse.Write(w, ev.Name, ev.Data) })
		})
		close(stop)
		<-done

		if err == nil {
			return
		}

		if errors.Is(err, errClientGone) || errors.Is(context.Cause(ctx), errClientGone) {
			slog.Info("stream client disconnected", "stream", stream)
			return
		}

		if errors.Is(err, analysis.ErrRequestFailure) || errors.Is(err, analysis.ErrStreamFailure) {
			metrics.RecordUpstreamFailure(stream)
		}
		slog.Error("stream failed", "stream", stream, "error", err)

		metrics.RecordStreamEvent(stream, models.EventError)
		sse.Write(w, models.EventError, models.ErrorEvent{Message: streamErrorMessage(err)})
		w.Flush()
	})
}

// streamErrorMessage turns a stream failure into a message for the user.
func streamErrorMessage(err error) string {
	var reqErr *analysis.RequestError
	switch {
	case errors.As(err, &reqErr):
		return fmt.Sprintf("analysis engine returned status %d", reqErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "analysis timed out"
	case errors.Is(err, analysis.ErrRequestFailure):
		return "analysis engine is unavailable"
	case errors.Is(err, analysis.ErrStreamFailure):
		return "analysis stream was interrupted"
	case errors.Is(err, errPersist):
		return "failed to save analysis results"
	default:
		return "analysis failed"
	}
}

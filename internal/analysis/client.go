// Package analysis talks to the external analysis engine, which generates
// intent phrases and runs them against AI models. Both operations answer
// with a server-sent event stream.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
	"aivisibility/internal/sse"
)

var (
	// ErrRequestFailure means the engine refused or could not be reached.
	ErrRequestFailure = errors.New("analysis engine request failed")
	// ErrStreamFailure means the stream was malformed or cut short.
	ErrStreamFailure = errors.New("analysis engine stream failed")
)

// RequestError carries the status of a non-2xx engine response.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analysis engine returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis engine returned status %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error { return ErrRequestFailure }

// Stream names, used for routing and metrics labels.
const (
	StreamPhrases = "phrases"
	StreamQueries = "queries"
)

// Event is a decoded engine event. Payload holds the typed value for known
// event names and is nil for anything else, in which case Data is the raw
// payload.
type Event struct {
	Name    string
	Data    json.RawMessage
	Payload any
}

// Handler receives events in stream order. Returning an error stops the
// stream and the error is returned from the call that started it.
type Handler func(Event) error

// Client is an analysis engine client.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.AnalysisEngineURL,
		token:      cfg.AnalysisEngineToken,
		timeout:    cfg.AnalysisStreamTimeout,
		httpClient: &http.Client{},
	}
}

// IsConfigured reports whether an engine URL is set.
func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != ""
}

// GeneratePhrases streams intent phrases for the selected keywords of a
// domain.
func (c *Client) GeneratePhrases(ctx context.Context, domainID uuid.UUID, req *models.PhraseGenerationRequest, handler Handler) error {
	path := fmt.Sprintf("/v1/domains/%s/phrases/generate", domainID)
	return c.stream(ctx, StreamPhrases, path, req, handler)
}

// RunQueries streams model answers for a domain's intent phrases.
func (c *Client) RunQueries(ctx context.Context, domainID uuid.UUID, req *models.QueryRunRequest, handler Handler) error {
	path := fmt.Sprintf("/v1/domains/%s/queries/run", domainID)
	return c.stream(ctx, StreamQueries, path, req, handler)
}

func (c *Client) stream(ctx context.Context, stream, path string, body any, handler Handler) error {
	if !c.IsConfigured() {
		return fmt.Errorf("%w: engine URL is not configured", ErrRequestFailure)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", stream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &RequestError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}

	reader := sse.NewReader(resp.Body)
	for {
		raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrStreamFailure, ctxErr)
			}
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrStreamFailure, ctxErr)
			}
			return fmt.Errorf("%w: %v", ErrStreamFailure, err)
		}

		event, err := Decode(raw.Name, []byte(raw.Data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStreamFailure, err)
		}
		if event.Payload == nil {
			slog.Debug("passing through unknown engine event", "stream", stream, "event", raw.Name)
		}

		if err := handler(event); err != nil {
			return err
		}
		if event.Name == models.EventComplete {
			return nil
		}
	}
}

type validator interface {
	Validate() error
}

// Decode turns a raw event into its typed payload and validates it.
func Decode(name string, data []byte) (Event, error) {
	event := Event{Name: name, Data: json.RawMessage(data)}

	var payload validator
	switch name {
	case models.EventProgress:
		payload = &models.ProgressEvent{}
	case models.EventPhraseGenerated, models.EventPhraseUpdated:
		payload = &models.PhraseEvent{}
	case models.EventResult:
		payload = &models.ResultEvent{}
	case models.EventStats:
		payload = &models.StatsEvent{}
	case models.EventComplete:
		payload = &models.CompleteEvent{}
	case models.EventError:
		payload = &models.ErrorEvent{}
	case models.EventDebug:
		if !json.Valid(data) {
			event.Payload = &models.DebugEvent{Message: string(data)}
			return event, nil
		}
		payload = &models.DebugEvent{}
	default:
		return event, nil
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return event, fmt.Errorf("invalid %s event: %w", name, err)
	}
	if err := payload.Validate(); err != nil {
		return event, fmt.Errorf("invalid %s event: %w", name, err)
	}

	event.Payload = payload
	return event, nil
}

package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		AnalysisEngineURL:     srv.URL,
		AnalysisEngineToken:   "engine-token",
		AnalysisStreamTimeout: 5 * time.Second,
	})
}

func collect(events *[]Event) Handler {
	return func(ev Event) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestGeneratePhrases(t *testing.T) {
	domainID := uuid.New()
	var gotPath, gotAuth string
	var gotBody models.PhraseGenerationRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: progress\ndata: {\"stage\":\"expand\",\"percent\":50}\n\n")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: phrase-generated\ndata: {\"id\":\"p1\",\"keyword\":\"crm\",\"phrase\":\"best crm\",\"intent\":\"commercial\"}\n\n")
		fmt.Fprint(w, "event: debug\ndata: plain text note\n\n")
		fmt.Fprint(w, "event: complete\ndata: {\"total\":1}\n\n")
	})

	req := &models.PhraseGenerationRequest{
		Domain:               "acme.com",
		Keywords:             []models.KeywordTarget{{ID: "k1", Text: "crm"}},
		MaxPhrasesPerKeyword: 5,
	}

	var events []Event
	if err := client.GeneratePhrases(context.Background(), domainID, req, collect(&events)); err != nil {
		t.Fatalf("GeneratePhrases() error = %v", err)
	}

	if want := "/v1/domains/" + domainID.String() + "/phrases/generate"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotAuth != "Bearer engine-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if diff := cmp.Diff(*req, gotBody); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	wantNames := []string{"progress", "phrase-generated", "debug", "complete"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("event names mismatch (-want +got):\n%s", diff)
	}

	phrase, ok := events[1].Payload.(*models.PhraseEvent)
	if !ok {
		t.Fatalf("payload type = %T, want *models.PhraseEvent", events[1].Payload)
	}
	if phrase.ID != "p1" || phrase.Phrase != "best crm" {
		t.Errorf("phrase payload = %+v", phrase)
	}
	debug, ok := events[2].Payload.(*models.DebugEvent)
	if !ok || debug.Message != "plain text note" {
		t.Errorf("debug payload = %+v", events[2].Payload)
	}
}

func TestRunQueries_StopsAtComplete(t *testing.T) {
	domainID := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/domains/"+domainID.String()+"/queries/run" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "event: result\ndata: {\"phrase\":\"best crm\",\"provider\":\"openai\",\"model\":\"gpt-4o\",\"presence\":\"Featured\",\"rank\":1,\"competitors\":[\"hubspot.com\"]}\n\n")
		fmt.Fprint(w, "event: stats\ndata: {\"total\":1,\"completed\":1,\"featured\":1}\n\n")
		fmt.Fprint(w, "event: complete\ndata: {\"total\":1,\"recommendations\":[\"Publish a comparison page\"]}\n\n")
		fmt.Fprint(w, "event: result\ndata: {}\n\n")
	})

	var events []Event
	err := client.RunQueries(context.Background(), domainID, &models.QueryRunRequest{Domain: "acme.com"}, collect(&events))
	if err != nil {
		t.Fatalf("RunQueries() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	result := events[0].Payload.(*models.ResultEvent)
	if result.Presence != models.PresenceFeatured || result.Rank == nil || *result.Rank != 1 {
		t.Errorf("result payload = %+v", result)
	}
	complete := events[2].Payload.(*models.CompleteEvent)
	if diff := cmp.Diff([]string{"Publish a comparison page"}, complete.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestStream_UnknownEventPassesThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: heartbeat\ndata: {\"seq\":1}\n\n")
	})

	var events []Event
	if err := client.RunQueries(context.Background(), uuid.New(), &models.QueryRunRequest{}, collect(&events)); err != nil {
		t.Fatalf("RunQueries() error = %v", err)
	}
	if len(events) != 1 || events[0].Payload != nil || string(events[0].Data) != `{"seq":1}` {
		t.Errorf("events = %+v, want raw heartbeat", events)
	}
}

func TestStream_RequestFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine overloaded", http.StatusServiceUnavailable)
	})

	err := client.RunQueries(context.Background(), uuid.New(), &models.QueryRunRequest{}, func(Event) error {
		t.Error("handler should not be called")
		return nil
	})
	if !errors.Is(err, ErrRequestFailure) {
		t.Fatalf("error = %v, want ErrRequestFailure", err)
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", reqErr.StatusCode)
	}
	if !strings.Contains(reqErr.Message, "engine overloaded") {
		t.Errorf("Message = %q", reqErr.Message)
	}
}

func TestStream_NotConfigured(t *testing.T) {
	client := NewClient(&config.Config{})
	err := client.GeneratePhrases(context.Background(), uuid.New(), &models.PhraseGenerationRequest{}, collect(new([]Event)))
	if !errors.Is(err, ErrRequestFailure) {
		t.Errorf("error = %v, want ErrRequestFailure", err)
	}
}

func TestStream_MalformedEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "event: phrase-generated\ndata: {not json\n\n"},
		{"missing phrase id", "event: phrase-generated\ndata: {\"phrase\":\"x\"}\n\n"},
		{"unknown presence", "event: result\ndata: {\"phrase\":\"x\",\"provider\":\"a\",\"model\":\"b\",\"presence\":\"Maybe\"}\n\n"},
		{"percent out of range", "event: progress\ndata: {\"percent\":140}\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			err := client.RunQueries(context.Background(), uuid.New(), &models.QueryRunRequest{}, collect(new([]Event)))
			if !errors.Is(err, ErrStreamFailure) {
				t.Errorf("error = %v, want ErrStreamFailure", err)
			}
		})
	}
}

func TestStream_HandlerErrorStops(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: progress\ndata: {\"percent\":1}\n\n")
		fmt.Fprint(w, "event: progress\ndata: {\"percent\":2}\n\n")
	})

	stop := errors.New("client went away")
	calls := 0
	err := client.RunQueries(context.Background(), uuid.New(), &models.QueryRunRequest{}, func(Event) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("error = %v, want handler error", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestStream_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: progress\ndata: {\"percent\":1}\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	err := client.RunQueries(ctx, uuid.New(), &models.QueryRunRequest{}, func(Event) error {
		cancel()
		return nil
	})
	if !errors.Is(err, ErrStreamFailure) {
		t.Fatalf("error = %v, want ErrStreamFailure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want wrapped context.Canceled", err)
	}
}

func TestStream_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(&config.Config{AnalysisEngineURL: srv.URL, AnalysisStreamTimeout: 50 * time.Millisecond})
	err := client.RunQueries(context.Background(), uuid.New(), &models.QueryRunRequest{}, collect(new([]Event)))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestDecode(t *testing.T) {
	ev, err := Decode("stats", []byte(`{"total":4,"completed":2,"notFound":1}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := &models.StatsEvent{Total: 4, Completed: 2, NotFound: 1}
	if diff := cmp.Diff(want, ev.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	if _, err := Decode("stats", []byte(`{"total":1,"completed":3}`)); err == nil {
		t.Error("Decode() should reject completed > total")
	}
	if _, err := Decode("error", []byte(`{}`)); err == nil {
		t.Error("Decode() should reject an error event without message")
	}
}

func TestRequestError(t *testing.T) {
	err := error(&RequestError{StatusCode: 502})
	if !errors.Is(err, ErrRequestFailure) {
		t.Error("RequestError should unwrap to ErrRequestFailure")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("Error() = %q", err.Error())
	}
}

package sse

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readAll(t *testing.T, stream string) []Event {
	t.Helper()
	r := NewReader(strings.NewReader(stream))
	var events []Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, ev)
	}
}

func TestReader(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []Event
	}{
		{
			name:   "named event",
			stream: "event: progress\ndata: {\"percent\":10}\n\n",
			want:   []Event{{Name: "progress", Data: `{"percent":10}`}},
		},
		{
			name:   "default name",
			stream: "data: hello\n\n",
			want:   []Event{{Name: "message", Data: "hello"}},
		},
		{
			name:   "multi-line data",
			stream: "event: debug\ndata: line one\ndata: line two\n\n",
			want:   []Event{{Name: "debug", Data: "line one\nline two"}},
		},
		{
			name:   "comments and keepalives ignored",
			stream: ": keepalive\n\n: ping\nevent: stats\ndata: {}\n\n",
			want:   []Event{{Name: "stats", Data: "{}"}},
		},
		{
			name:   "no space after colon",
			stream: "event:result\ndata:{}\n\n",
			want:   []Event{{Name: "result", Data: "{}"}},
		},
		{
			name:   "id carries over",
			stream: "id: 7\ndata: a\n\ndata: b\n\n",
			want:   []Event{{ID: "7", Name: "message", Data: "a"}, {ID: "7", Name: "message", Data: "b"}},
		},
		{
			name:   "event without data is dropped",
			stream: "event: progress\n\nevent: complete\ndata: {}\n\n",
			want:   []Event{{Name: "complete", Data: "{}"}},
		},
		{
			name:   "unterminated event discarded",
			stream: "event: complete\ndata: {}\n\nevent: result\ndata: {",
			want:   []Event{{Name: "complete", Data: "{}"}},
		},
		{
			name:   "crlf line endings",
			stream: "event: progress\r\ndata: x\r\n\r\n",
			want:   []Event{{Name: "progress", Data: "x"}},
		},
		{
			name:   "empty stream",
			stream: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, tt.stream)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  any
		want  string
	}{
		{"json payload", "stats", map[string]int{"total": 3}, "event: stats\ndata: {\"total\":3}\n\n"},
		{"string payload", "debug", "hello", "event: debug\ndata: hello\n\n"},
		{"multi-line string", "debug", "a\nb", "event: debug\ndata: a\ndata: b\n\n"},
		{"unnamed", "", "x", "data: x\n\n"},
		{"bytes payload", "result", []byte(`{"a":1}`), "event: result\ndata: {\"a\":1}\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.event, tt.data); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWrite_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "bad", make(chan int)); err == nil {
		t.Fatal("Write() should fail for a value json cannot encode")
	}
	if buf.Len() != 0 {
		t.Errorf("Write() wrote %q after failing", buf.String())
	}
}

func TestWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "phrase-generated", map[string]string{"id": "p1", "phrase": "best crm"})
	Write(&buf, "debug", "two\nlines")
	Write(&buf, "complete", map[string]int{"total": 1})

	want := []Event{
		{Name: "phrase-generated", Data: `{"id":"p1","phrase":"best crm"}`},
		{Name: "debug", Data: "two\nlines"},
		{Name: "complete", Data: `{"total":1}`},
	}
	if diff := cmp.Diff(want, readAll(t, buf.String())); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteComment(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteComment(&buf, "keepalive"); err != nil {
		t.Fatalf("WriteComment() error = %v", err)
	}
	if err := Write(&buf, "complete", "{}"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if !strings.HasPrefix(buf.String(), ": keepalive\n\n") {
		t.Errorf("stream = %q, want leading comment", buf.String())
	}
	want := []Event{{Name: "complete", Data: "{}"}}
	if diff := cmp.Diff(want, readAll(t, buf.String())); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSetHeaders(t *testing.T) {
	h := http.Header{}
	SetHeaders(h)
	if got := h.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := h.Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q", got)
	}
}

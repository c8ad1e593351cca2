// Package sse reads and writes text/event-stream framing.
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single line of the stream. Result events carry full
// model responses, so the bufio default is too small.
const maxLineSize = 1 << 20

// Event is one dispatched server-sent event.
type Event struct {
	ID   string
	Name string
	Data string
}

// Reader parses events from a stream.
type Reader struct {
	scanner *bufio.Scanner
	lastID  string
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF once the stream ends; an
// event left unterminated at end of stream is discarded.
func (r *Reader) Next() (Event, error) {
	var (
		name    string
		data    bytes.Buffer
		hasData bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if !hasData {
				name = ""
				continue
			}
			if name == "" {
				name = "message"
			}
			return Event{ID: r.lastID, Name: name, Data: strings.TrimSuffix(data.String(), "\n")}, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			name = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// HeaderSetter is satisfied by http.Header and fiber.Ctx.
type HeaderSetter interface {
	Set(key, value string)
}

// SetHeaders marks a response as an unbuffered event stream.
func SetHeaders(h HeaderSetter) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// Write encodes one event. Strings and byte slices are sent as-is, anything
// else as JSON. Multi-line payloads become multiple data lines.
func Write(w io.Writer, event string, data any) error {
	payload, err := marshalPayload(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		fmt.Fprintf(&buf, "data: %s\n", strings.TrimSuffix(line, "\r"))
	}
	buf.WriteByte('\n')

	_, err = w.Write(buf.Bytes())
	return err
}

// WriteComment writes a comment line. Readers skip it.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", strings.ReplaceAll(text, "\n", " "))
	return err
}

func marshalPayload(data any) (string, error) {
	switch payload := data.(type) {
	case string:
		return payload, nil
	case []byte:
		return string(payload), nil
	case json.RawMessage:
		return string(payload), nil
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to encode event data: %w", err)
		}
		return string(b), nil
	}
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// doneFrame terminates every chat stream.
const doneFrame = "data: [DONE]\n\n"

type sseDelta struct {
	Content string `json:"content"`
}

type sseChoice struct {
	Delta sseDelta `json:"delta"`
}

type sseFrame struct {
	Choices []sseChoice `json:"choices"`
}

// setSSEHeaders prepares a response for event streaming.
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// sseWriter frames text as OpenAI-style chat completion deltas.
type sseWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func newSSEWriter(w io.Writer) *sseWriter {
	flusher, _ := w.(http.Flusher)
	return &sseWriter{w: w, flusher: flusher}
}

func (s *sseWriter) writeContent(content string) error {
	data, err := json.Marshal(sseFrame{Choices: []sseChoice{{Delta: sseDelta{Content: content}}}})
	if err != nil {
		return fmt.Errorf("failed to encode chunk: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *sseWriter) writeDone() error {
	if _, err := io.WriteString(s.w, doneFrame); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *sseWriter) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

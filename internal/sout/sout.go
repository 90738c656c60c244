package sout

import (
	"io"
	"jasper/internal/object"
	"log/slog"
	"strings"
	"sync"
)

// SOut writes each print call as one line of space-separated values.
type SOut struct {
	W io.Writer

	mu      sync.Mutex
	written int
}

func New(w io.Writer) *SOut {
	return &SOut{W: w}
}

func (s *SOut) Emit(values ...object.Value) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Inspect()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := io.WriteString(s.W, strings.Join(parts, " ")+"\n")
	s.written += n
	if err != nil {
		slog.Error("failed to write output", slog.Any("error", err))
	}
}

// BytesWritten reports how many bytes Emit has written so far.
func (s *SOut) BytesWritten() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

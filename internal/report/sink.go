// internal/report/sink.go
package report

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Sink receives formatted diagnostic lines.
type Sink interface {
	Line(text string)
	Error(text string)
}

// Emit writes lines to the sink, routing error lines to Error.
func Emit(s Sink, lines []Line) {
	for _, l := range lines {
		if l.Error {
			s.Error(l.Text)
			continue
		}
		s.Line(l.Text)
	}
}

// WriterSink writes lines to plain writers, like console.log and console.error.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewWriterSink creates a sink; errOut may be nil to send everything to out.
func NewWriterSink(out, errOut io.Writer) *WriterSink {
	if errOut == nil {
		errOut = out
	}
	return &WriterSink{out: out, err: errOut}
}

func (s *WriterSink) Line(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, text)
}

func (s *WriterSink) Error(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.err, text)
}

// LogSink sends lines through zap, one entry per line.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("report")}
}

func (s *LogSink) Line(text string) {
	s.logger.Info(text)
}

func (s *LogSink) Error(text string) {
	s.logger.Error(text)
}

type teeSink []Sink

// Tee fans every line out to all sinks in order.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

func (t teeSink) Line(text string) {
	for _, s := range t {
		s.Line(text)
	}
}

func (t teeSink) Error(text string) {
	for _, s := range t {
		s.Error(text)
	}
}

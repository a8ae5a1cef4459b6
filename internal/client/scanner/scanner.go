// Package scanner is the code-scanner capability boundary. A scanner
// yields a stream of scan events; each event is either a decoded string or
// an error. Decoded text is opaque and untrusted: it is forwarded to the
// backend for validation, never interpreted locally.
package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// Event is one scan outcome. Exactly one of Text and Err is set.
type Event struct {
	Text string
	Err  error
}

// Scanner continuously attempts to decode codes until stopped.
//
// Stop must be safe to call multiple times and when not started. Starting
// while already running stops the previous run first: the underlying
// device is exclusive.
type Scanner interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// LineScanner adapts a line-oriented source (a serial or wedge-mode QR
// scanner device, or an interactive prompt) into the Scanner contract.
// Each non-empty line is one decoded code.
//
// Restarting while running closes the previous event stream, but a run
// already blocked reading the source keeps it until that read yields; a
// line it was holding at that point is dropped, not re-delivered. Callers
// wanting every line should read each run's stream to completion before
// starting the next.
type LineScanner struct {
	r io.Reader

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{r: r}
}

func (s *LineScanner) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.stopLocked()
	}

	stop := make(chan struct{})
	events := make(chan Event)
	s.stop = stop
	s.running = true

	go func() {
		defer close(events)
		lines := bufio.NewScanner(s.r)
		for lines.Scan() {
			text := strings.TrimSpace(lines.Text())
			if text == "" {
				continue
			}
			select {
			case events <- Event{Text: text}:
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
		if err := lines.Err(); err != nil {
			select {
			case events <- Event{Err: err}:
			case <-stop:
			case <-ctx.Done():
			}
		}
	}()

	return events, nil
}

func (s *LineScanner) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *LineScanner) stopLocked() {
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
}

// ScanOne starts the scanner, waits for the first event, and stops it.
// A closed stream without any event reports ctx.Err or io.EOF.
func ScanOne(ctx context.Context, s Scanner) (string, error) {
	events, err := s.Start(ctx)
	if err != nil {
		return "", err
	}
	defer s.Stop()

	select {
	case ev, ok := <-events:
		if !ok {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		if ev.Err != nil {
			return "", ev.Err
		}
		return ev.Text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

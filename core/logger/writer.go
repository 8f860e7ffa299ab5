package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter copies log lines to every sink from a single goroutine. Lines
// queued back to back are written as one batch and flushed once.
type asyncWriter struct {
	mu     sync.RWMutex
	closed bool
	lines  chan []byte
	flush  chan chan error
	done   chan struct{}

	out *bufio.Writer

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(sinks []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 << 10
	}
	live := sinks[:0:0]
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	w := &asyncWriter{
		lines: make(chan []byte, 256),
		flush: make(chan chan error),
		done:  make(chan struct{}),
		out:   bufio.NewWriterSize(io.MultiWriter(live...), bufSize),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.record(w.out.Flush())
				return
			}
			w.record(w.batch(line))
		case ack := <-w.flush:
			ack <- w.batch(nil)
		}
	}
}

// batch writes line plus whatever is already queued behind it, then flushes.
func (w *asyncWriter) batch(line []byte) error {
	if _, err := w.out.Write(line); err != nil {
		return err
	}
	for {
		select {
		case next, ok := <-w.lines:
			if !ok {
				return w.out.Flush()
			}
			if _, err := w.out.Write(next); err != nil {
				return err
			}
		default:
			return w.out.Flush()
		}
	}
}

// Write queues a copy of p. It blocks when the queue is full rather than
// dropping lines.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.lines <- line
	return nil
}

// Flush waits until everything queued so far reached the sinks.
func (w *asyncWriter) Flush() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return w.firstErr()
	}
	ack := make(chan error, 1)
	w.flush <- ack
	if err := <-ack; err != nil {
		return err
	}
	return w.firstErr()
}

// Close drains the queue and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) record(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// SimpleSpinner provides a non-Bubbletea spinner for plain CLI output. It
// draws on stderr so stdout stays clean for piped log lines.
type SimpleSpinner struct {
	message string
	frames  []string
	out     io.Writer
	enabled bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSimpleSpinner creates a new simple spinner with a message. It only
// animates when stderr is a terminal.
func NewSimpleSpinner(message string) *SimpleSpinner {
	return newSimpleSpinner(message, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
}

func newSimpleSpinner(message string, out io.Writer, enabled bool) *SimpleSpinner {
	return &SimpleSpinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		out:     out,
		enabled: enabled,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation
func (s *SimpleSpinner) Start() {
	if !s.enabled {
		close(s.done)
		return
	}

	go func() {
		defer close(s.done)
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				// Clear the spinner line
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s %s", s.frames[i%len(s.frames)], s.message)
				i++
			}
		}
	}()
}

// Stop stops the spinner animation and waits for the line to be cleared.
// It is safe to call more than once.
func (s *SimpleSpinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

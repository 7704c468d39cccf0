package ui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SetupSignalHandling routes SIGINT/SIGTERM to the program as SignalCancelMsg
// and calls cancel so in-flight log fetches stop. A second signal, or no exit
// within shutdownTimeout, force-quits with status 130.
// NOTE: this should be called before p.Run(), since it alters the program config
func SetupSignalHandling(p *tea.Program, cancel context.CancelFunc, shutdownTimeout time.Duration) chan<- struct{} {
	if shutdownTimeout == 0 {
		// Bubbletea normally finishes well within this; the program exits first
		shutdownTimeout = 100 * time.Millisecond
	}
	// Remove the bubbletea signal handler when we initialise our own
	tea.WithoutSignalHandler()(p)

	sigChan := make(chan os.Signal, 1)
	doneCh := make(chan struct{})
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)

		var sig os.Signal
		select {
		case sig = <-sigChan:
		case <-doneCh:
			return
		}

		if cancel != nil {
			cancel()
		}
		p.Send(SignalCancelMsg{Signal: sig})

		timer := time.NewTimer(shutdownTimeout)
		defer timer.Stop()

		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nForce quitting...\n")
			os.Exit(130)
		case <-timer.C:
			fmt.Fprintf(os.Stderr, "\nTimeout trying to clean up, force quitting...\n")
			os.Exit(130)
		case <-doneCh:
			return
		}
	}()
	return doneCh
}

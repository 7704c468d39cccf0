package ui

import "os"

// SignalCancelMsg is sent when a termination signal is received (SIGINT, SIGTERM)
type SignalCancelMsg struct {
	Signal os.Signal
}

// LogsFetchedMsg is sent when a fetch from the remote log source returns,
// whether it succeeded or not
type LogsFetchedMsg struct{}

// StreamChangedMsg is sent after the unified log stream was mutated
type StreamChangedMsg struct{}

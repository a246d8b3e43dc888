package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/r55-labs/r55vm/internal/log"
	"github.com/r55-labs/r55vm/internal/trace"
)

// recorder collects one trace.Event per syscall the bridge services,
// via internal/log.Logger.SetOnSyscall, for later replay through
// internal/ui/traceview or a plain JSONL file. Every event carries the
// same session annotation, so JSONL files built by repeated CLI
// invocations (deploy, then call, then call again) against the same
// --state can be told apart once appended together.
type recorder struct {
	sessionID string
	events    []*trace.Event
}

func newRecorder() *recorder {
	return &recorder{sessionID: uuid.NewString()}
}

func (r *recorder) attach(l *log.Logger) {
	l.SetOnSyscall(func(pc uint64, depth int, name, detail string) {
		e := trace.NewEvent(pc, depth, name, detail)
		trace.DefaultEnricher(e)
		e.Annotate("session", r.sessionID)
		r.events = append(r.events, e)
	})
}

// writeJSONL appends r's events to path as one JSON object per line, the
// format the trace subcommand reads back.
func (r *recorder) writeJSONL(path string) error {
	if len(r.events) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("trace: opening %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range r.events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("trace: encoding event: %w", err)
		}
	}
	return w.Flush()
}

// readJSONL loads a previously recorded trace file.
func readJSONL(path string) ([]*trace.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: opening %s: %w", path, err)
	}
	defer f.Close()

	var events []*trace.Event
	dec := json.NewDecoder(f)
	for dec.More() {
		var e trace.Event
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("trace: decoding %s: %w", path, err)
		}
		events = append(events, &e)
	}
	return events, nil
}

package main

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/r55-labs/r55vm/internal/demohost"
)

// loadState reads a gob-encoded demohost.Host snapshot from path. A
// missing file is not an error: it returns a fresh Host with gasLimit
// (0 selects demohost.DefaultGasLimit), the same convention
// internal/config.Load uses for a missing config file.
func loadState(path string, gasLimit uint64) (*demohost.Host, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return demohost.New(gasLimit), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: opening %s: %w", path, err)
	}
	defer f.Close()

	h := demohost.New(gasLimit)
	if err := gob.NewDecoder(f).Decode(h); err != nil {
		return nil, fmt.Errorf("state: decoding %s: %w", path, err)
	}
	return h, nil
}

// saveState writes h's snapshot to path, overwriting any previous
// contents — each r55vm invocation is one step against persisted state,
// not an append-only log.
func saveState(path string, h *demohost.Host) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("state: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(h); err != nil {
		return fmt.Errorf("state: encoding %s: %w", path, err)
	}
	return nil
}

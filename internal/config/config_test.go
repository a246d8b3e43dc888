package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want Default()", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r55vm.yaml")
	content := "authorized_minter: \"0x0000000000000000000000000000000000000007\"\ngas_limit: 1000000\nlog_level: debug\ntrace_sink: trace.jsonl\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := common.HexToAddress("0x0000000000000000000000000000000000000007")
	if cfg.AuthorizedMinter != want {
		t.Fatalf("AuthorizedMinter = %v, want %v", cfg.AuthorizedMinter, want)
	}
	if cfg.GasLimit != 1_000_000 {
		t.Fatalf("GasLimit = %d, want 1000000", cfg.GasLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.TraceSink != "trace.jsonl" {
		t.Fatalf("TraceSink = %q, want trace.jsonl", cfg.TraceSink)
	}
}

func TestResolvePrefersFlag(t *testing.T) {
	t.Setenv(EnvVar, "/env/path.yaml")
	if got := Resolve("/flag/path.yaml"); got != "/flag/path.yaml" {
		t.Fatalf("Resolve = %q, want /flag/path.yaml", got)
	}
	if got := Resolve(""); got != "/env/path.yaml" {
		t.Fatalf("Resolve = %q, want /env/path.yaml", got)
	}
}


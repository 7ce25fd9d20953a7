package startup

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"maslow-go/pkg/gcodeio"
	"maslow-go/pkg/mlog"
	"maslow-go/pkg/nvm"
)

func TestRunExecutesNonEmptySlots(t *testing.T) {
	store := nvm.New(nvm.NewMemoryBackend())
	if err := store.WriteStartupLine(0, "G21"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.WriteStartupLine(2, "G90"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exec := &gcodeio.FakeExecutor{}
	var buf bytes.Buffer
	log := mlog.New("startup")
	log.SetWriter(&buf)

	results := Run(store, exec, log)

	if len(results) != nvm.NStartupLine {
		t.Fatalf("expected %d results, got %d", nvm.NStartupLine, len(results))
	}
	if len(exec.Lines) != 2 || exec.Lines[0] != "G21" || exec.Lines[1] != "G90" {
		t.Fatalf("expected only non-empty slots submitted, got %v", exec.Lines)
	}
	if !results[0].Ran || !results[2].Ran {
		t.Fatalf("expected slots 0 and 2 marked Ran")
	}
	if results[1].Ran {
		t.Fatalf("expected unwritten slot 1 not run")
	}
}

// failFirstReadBackend wraps a Backend and fails only its first ReadAt
// call, simulating a single slot's read failure without needing to know
// the store's internal offset layout.
type failFirstReadBackend struct {
	inner nvm.Backend
	reads int
}

func (b *failFirstReadBackend) ReadAt(offset, length int) ([]byte, error) {
	b.reads++
	if b.reads == 1 {
		return nil, fmt.Errorf("simulated read failure")
	}
	return b.inner.ReadAt(offset, length)
}

func (b *failFirstReadBackend) WriteAt(offset int, data []byte) error {
	return b.inner.WriteAt(offset, data)
}

func TestRunContinuesPastIndividualFailures(t *testing.T) {
	inner := nvm.NewMemoryBackend()
	store := nvm.New(inner)
	if err := store.WriteStartupLine(0, "G21"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.WriteStartupLine(3, "G90"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failing := nvm.New(&failFirstReadBackend{inner: inner})

	exec := &gcodeio.FakeExecutor{}
	var buf bytes.Buffer
	log := mlog.New("startup")
	log.SetWriter(&buf)

	results := Run(failing, exec, log)
	if results[0].ReadErr == nil {
		t.Fatalf("expected slot 0's simulated read failure to surface")
	}
	if !results[3].Ran {
		t.Fatalf("expected slot 3 to still run even if another slot's read failed")
	}
}

func TestSummaryFormatsEveryResult(t *testing.T) {
	results := []LineResult{
		{Slot: 0, Line: "G21", Ran: true, Status: gcodeio.Ok},
		{Slot: 1},
	}
	out := Summary(results)
	if !strings.Contains(out, "N0:") || !strings.Contains(out, "N1:") {
		t.Fatalf("expected a line per slot, got %q", out)
	}
}

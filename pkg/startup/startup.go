// Package startup is the startup-script runner (C7, spec §4.7): at boot
// and after a full homing cycle, it replays every persisted startup
// line through the G-code collaborator, never aborting the sequence on
// an individual slot's failure.
package startup

import (
	"fmt"

	"maslow-go/pkg/gcodeio"
	"maslow-go/pkg/mlog"
	"maslow-go/pkg/nvm"
)

// LineResult records one slot's outcome, mainly for callers that want to
// surface the per-slot report themselves (the dispatcher reports
// Summary of them after a full homing cycle; tests inspect this directly).
type LineResult struct {
	Slot    int
	Line    string
	ReadErr error
	Status  gcodeio.Status
	Ran     bool
}

// Run executes every startup slot in order (spec §4.7): a failed read is
// reported and skipped; a non-empty line is submitted to exec and its
// status recorded; the sequence always runs to completion.
func Run(store *nvm.Store, exec gcodeio.Executor, log *mlog.Logger) []LineResult {
	results := make([]LineResult, 0, nvm.NStartupLine)

	for slot := 0; slot < nvm.NStartupLine; slot++ {
		line, err := store.ReadStartupLine(slot)
		if err != nil {
			log.Warn("startup line %d: read failed: %v", slot, err)
			results = append(results, LineResult{Slot: slot, ReadErr: err})
			continue
		}
		if line == "" {
			results = append(results, LineResult{Slot: slot})
			continue
		}

		status := exec.ExecuteLine(line)
		log.Info("startup line %d: %q -> status %d", slot, line, status)
		results = append(results, LineResult{Slot: slot, Line: line, Status: status, Ran: true})
	}

	return results
}

// Summary renders results as the one-line-per-slot report a boot log
// would show.
func Summary(results []LineResult) string {
	out := ""
	for _, r := range results {
		switch {
		case r.ReadErr != nil:
			out += fmt.Sprintf("N%d: read failed: %v\n", r.Slot, r.ReadErr)
		case r.Ran:
			out += fmt.Sprintf("N%d: %q -> %d\n", r.Slot, r.Line, r.Status)
		default:
			out += fmt.Sprintf("N%d: (empty)\n", r.Slot)
		}
	}
	return out
}

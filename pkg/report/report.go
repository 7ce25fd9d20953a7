// Package report is the reporting collaborator (spec §1 "serial I/O and
// reporting", §4.3/§7 "logged through reporting collaborator" for
// kinematics divergence). This core only needs somewhere to push
// human-readable status lines and machine-position snapshots; it does
// not own the wire protocol a connected UI actually speaks.
package report

import "maslow-go/pkg/kinematics"

// Sink is the narrow interface the core pushes reports through. It
// satisfies pkg/kinematics.Reporter as well, so a Sink can be wired
// directly into a Solver.
type Sink interface {
	Report(message string)
}

// Status is a machine-position/state snapshot pushed on a report tick,
// the payload a connected UI or logger actually wants rather than a raw
// text line.
type Status struct {
	State    string     `json:"state"`
	Position [3]float64 `json:"position"`
	Line     string     `json:"line,omitempty"`
}

// StatusSink additionally accepts structured status pushes. The
// dispatcher's $$ and $# query paths do not use PushStatus; they send
// formatted text through Report.
type StatusSink interface {
	Sink
	PushStatus(Status)
}

// multiSink fans a report out to every wired sink — used when both a
// log and a websocket feed need the same divergence messages.
type multiSink struct {
	sinks []StatusSink
}

// Fan combines sinks into one StatusSink.
func Fan(sinks ...StatusSink) StatusSink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Report(message string) {
	for _, s := range m.sinks {
		s.Report(message)
	}
}

func (m *multiSink) PushStatus(st Status) {
	for _, s := range m.sinks {
		s.PushStatus(st)
	}
}

var _ kinematics.Reporter = Sink(nil)

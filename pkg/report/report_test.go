package report

import "testing"

type recordingSink struct {
	messages []string
	statuses []Status
}

func (r *recordingSink) Report(message string)  { r.messages = append(r.messages, message) }
func (r *recordingSink) PushStatus(st Status)    { r.statuses = append(r.statuses, st) }

func TestFanOutReachesAllSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	fan := Fan(a, b)

	fan.Report("forward kinematics diverged")
	fan.PushStatus(Status{State: "idle", Position: [3]float64{1, 2, 3}})

	for _, s := range []*recordingSink{a, b} {
		if len(s.messages) != 1 || s.messages[0] != "forward kinematics diverged" {
			t.Fatalf("expected message delivered to every sink, got %+v", s.messages)
		}
		if len(s.statuses) != 1 || s.statuses[0].State != "idle" {
			t.Fatalf("expected status delivered to every sink, got %+v", s.statuses)
		}
	}
}

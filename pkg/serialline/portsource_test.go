package serialline

import "testing"

func TestPortSourceSatisfiesLineSource(t *testing.T) {
	var _ LineSource = (*PortSource)(nil)
}

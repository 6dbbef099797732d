package models

import "fmt"

// Hit is one base/reference relationship found by the match engine.
type Hit struct {
	BaseID     string
	RegionType string
	Label      string
	// Distance is 0 for overlaps; negative upstream, positive downstream
	// of the reference relative to its strand.
	Distance int64
	// Order is the position of the hit in match output, used to break ties.
	Order int
}

// AbsDistance returns |Distance|.
func (h Hit) AbsDistance() int64 {
	if h.Distance < 0 {
		return -h.Distance
	}
	return h.Distance
}

// Token renders the hit as label(distance).
func (h Hit) Token() string {
	return fmt.Sprintf("%s(%d)", h.Label, h.Distance)
}

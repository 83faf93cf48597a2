package model

import (
	"fmt"
	"time"
)

// SplitEvent is one historical stock split.
type SplitEvent struct {
	ExecutionDate time.Time `json:"execution_date"`
	SplitFrom     float64   `json:"split_from"`
	SplitTo       float64   `json:"split_to"`
}

// Factor converts a pre-split per-share figure to the post-split basis.
func (s SplitEvent) Factor() float64 {
	if s.SplitFrom == 0 {
		return 0
	}
	return s.SplitTo / s.SplitFrom
}

// Ratio formats the split as "to:from".
func (s SplitEvent) Ratio() string {
	return fmt.Sprintf("%s:%s", trimFloat(s.SplitTo), trimFloat(s.SplitFrom))
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

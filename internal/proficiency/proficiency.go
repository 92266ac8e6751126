// Package proficiency maps a rolling window of recent test percentages to a
// discrete skill level. Pure decision logic, no storage, safe for concurrent use.
package proficiency

import "fmt"

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// WindowSize 分类窗口：最近 3 次测试成绩
const WindowSize = 3

// Bucket thresholds on a 0–100 percentage.
const (
	lowThreshold  = 30.0
	highThreshold = 70.0
)

func (l Level) Valid() bool {
	return l == Beginner || l == Intermediate || l == Advanced
}

func (l Level) String() string {
	return string(l)
}

// ParseLevel validates an externally supplied level (professor override path).
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid proficiency level %q, must be one of beginner/intermediate/advanced", s)
	}
	return l, nil
}

// Classify buckets the three most recent percentages and applies the rule set
// in priority order. Order of the input does not matter, only bucket counts.
// Returns ok=false when fewer than WindowSize scores are available; callers
// skip reclassification in that case. Extra scores beyond the window are ignored.
//
// Rule priority (first match wins):
//
//	all 3 below 30        -> beginner
//	all 3 at or above 70  -> advanced
//	2+ in [30, 70)        -> intermediate
//	2+ at or above 70     -> advanced
//	2+ below 30           -> beginner
//	1-1-1 split           -> intermediate
func Classify(percentages []float64) (Level, bool) {
	if len(percentages) < WindowSize {
		return "", false
	}

	var low, mid, high int
	for _, p := range percentages[:WindowSize] {
		switch {
		case p < lowThreshold:
			low++
		case p < highThreshold:
			mid++
		default:
			high++
		}
	}

	switch {
	case low == WindowSize:
		return Beginner, true
	case high == WindowSize:
		return Advanced, true
	case mid >= 2:
		return Intermediate, true
	case high >= 2:
		return Advanced, true
	case low >= 2:
		return Beginner, true
	default:
		// 1-1-1 平分时保守取中间档
		return Intermediate, true
	}
}

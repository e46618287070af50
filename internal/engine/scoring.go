package engine

import "math"

// round rounds half away from zero for the non-negative values the scorers
// produce, so 0.5 becomes 1
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScoreNumber maps a 1-10 scale answer linearly onto 0-100
func ScoreNumber(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	scaled := ((v - 1) / 9) * 100
	if scaled < 0 {
		return 0, true
	}
	if scaled > 100 {
		return 100, true
	}
	return clamp(round(scaled), 0, 100), true
}

// ScoreSingle maps the position of value within options onto 0-100.
// A single option list always scores 50
func ScoreSingle(value string, options []string) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}
	idx := -1
	for i, o := range options {
		if o == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	if len(options) == 1 {
		return 50, true
	}
	return clamp(round(float64(idx)/float64(len(options)-1)*100), 0, 100), true
}

// ScoreAnswer scores v according to q's type. Text and multiple choice
// questions never produce a score
func ScoreAnswer(q Question, v AnswerValue) (int, bool) {
	if IsEmpty(v) {
		return 0, false
	}
	switch q.Type {
	case TypeNumber:
		n, ok := v.(Number)
		if !ok {
			return 0, false
		}
		return ScoreNumber(float64(n))
	case TypeSingle:
		switch a := v.(type) {
		case Choice:
			return ScoreSingle(string(a), q.Options)
		case Text:
			return ScoreSingle(string(a), q.Options)
		}
	}
	return 0, false
}

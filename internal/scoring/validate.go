package scoring

import (
	"fmt"
	"sort"
)

// RangeError reports an answer outside [0, MaxResponse].
type RangeError struct {
	Code  string
	Value int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("answer %s: value %d outside [0,%d]", e.Code, e.Value, MaxResponse)
}

// ValidateAnswers checks every present answer is within the response scale.
// The engine does not call this; input layers do before scoring. Codes are
// checked in sorted order so the reported error is stable.
func ValidateAnswers(answers Answers) error {
	codes := make([]string, 0, len(answers))
	for code := range answers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		v := answers[code]
		if v == nil {
			continue
		}
		if *v < 0 || *v > MaxResponse {
			return &RangeError{Code: code, Value: *v}
		}
	}
	return nil
}

// Clone returns a copy of answers that shares no pointers with the original.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for code, v := range a {
		if v == nil {
			out[code] = nil
			continue
		}
		n := *v
		out[code] = &n
	}
	return out
}

// Answered counts the non-nil entries.
func (a Answers) Answered() int {
	n := 0
	for _, v := range a {
		if v != nil {
			n++
		}
	}
	return n
}

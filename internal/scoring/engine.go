package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
)

// TotalKey is the synthetic Result key holding the sum of all subscale scores.
const TotalKey = "TOTAL"

// MaxResponse is the top of the 5-point response scale (0 = "Not at all",
// 4 = "Very much"). Reverse-scored items contribute MaxResponse - raw.
const MaxResponse = 4

// Answers maps item codes to raw responses. A nil value means the item was
// skipped, the same as an absent key.
type Answers map[string]*int

// Result maps every subscale key, plus TotalKey, to an integer score.
type Result map[string]int

// Total returns the TOTAL entry.
func (r Result) Total() int { return r[TotalKey] }

// Engine scores answer maps against one catalogue. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	catalogue *questionnaire.Catalogue
}

// NewEngine creates an Engine bound to the given catalogue.
func NewEngine(c *questionnaire.Catalogue) *Engine {
	return &Engine{catalogue: c}
}

// Catalogue returns the catalogue the engine scores against.
func (e *Engine) Catalogue() *questionnaire.Catalogue {
	return e.catalogue
}

// tally returns the number of answered items among items and their summed
// contribution after reverse scoring.
func tally(items []questionnaire.Item, answers Answers) (answered, rawSum int) {
	for _, it := range items {
		v, ok := answers[it.Code]
		if !ok || v == nil {
			continue
		}
		answered++
		if it.Reverse {
			rawSum += MaxResponse - *v
		} else {
			rawSum += *v
		}
	}
	return answered, rawSum
}

// ProratedSubscaleScore computes the unrounded prorated sum of one subscale:
//
//	rawSum * (n / answered)
//
// where n is the subscale's full item count. A subscale with no answered
// items scores 0.
func ProratedSubscaleScore(items []questionnaire.Item, answers Answers) float64 {
	answered, rawSum := tally(items, answers)
	if answered == 0 {
		return 0
	}
	return float64(rawSum) * (float64(len(items)) / float64(answered))
}

// SubscaleScore is ProratedSubscaleScore rounded to the nearest integer.
func SubscaleScore(items []questionnaire.Item, answers Answers) int {
	return Round(ProratedSubscaleScore(items, answers))
}

// Round rounds half away from zero. For the non-negative values the engine
// produces this agrees with floor(x + 0.5).
func Round(v float64) int {
	return int(math.Round(v))
}

// ComputeAll scores every subscale in the catalogue and adds TOTAL.
// Unknown item codes in answers are ignored; answers is not modified.
func (e *Engine) ComputeAll(answers Answers) Result {
	result := make(Result, e.catalogue.Len()+1)
	total := 0
	e.catalogue.EachSubscale(func(key string, items []questionnaire.Item) {
		score := SubscaleScore(items, answers)
		result[key] = score
		total += score
	})
	result[TotalKey] = total
	return result
}

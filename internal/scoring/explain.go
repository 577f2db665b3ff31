package scoring

import (
	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
)

// SubscaleResult captures how one subscale score was derived.
type SubscaleResult struct {
	Key      string              `json:"key"`
	Label    string              `json:"label"`
	Items    int                 `json:"items"`
	Answered int                 `json:"answered"`
	RawSum   int                 `json:"raw_sum"`
	Prorated float64             `json:"prorated"`
	Score    int                 `json:"score"`
	Range    questionnaire.Range `json:"range"`
	// ProratingApplied is true when some but not all items were answered.
	ProratingApplied bool `json:"prorating_applied"`
}

// Breakdown is the full scoring output for one answer map.
type Breakdown struct {
	Subscales []SubscaleResult    `json:"subscales"`
	Total     int                 `json:"total"`
	Range     questionnaire.Range `json:"range"`
}

// Scores flattens a breakdown into a Result.
func (b Breakdown) Scores() Result {
	r := make(Result, len(b.Subscales)+1)
	for _, s := range b.Subscales {
		r[s.Key] = s.Score
	}
	r[TotalKey] = b.Total
	return r
}

// Explain scores every subscale and reports the intermediate values.
// Its Scores() always equal ComputeAll for the same answers.
func (e *Engine) Explain(answers Answers) Breakdown {
	subs := e.catalogue.Subscales()
	b := Breakdown{
		Subscales: make([]SubscaleResult, 0, len(subs)),
		Range:     e.catalogue.TotalRange(),
	}
	for _, s := range subs {
		answered, rawSum := tally(s.Items, answers)
		prorated := ProratedSubscaleScore(s.Items, answers)
		sr := SubscaleResult{
			Key:              s.Key,
			Label:            s.Label,
			Items:            len(s.Items),
			Answered:         answered,
			RawSum:           rawSum,
			Prorated:         prorated,
			Score:            Round(prorated),
			Range:            s.Range,
			ProratingApplied: answered > 0 && answered < len(s.Items),
		}
		b.Total += sr.Score
		b.Subscales = append(b.Subscales, sr)
	}
	return b
}

// Missing lists the codes of non-optional items with no answer, in
// catalogue order. It does not affect scoring.
func (e *Engine) Missing(answers Answers) []string {
	var missing []string
	e.catalogue.EachSubscale(func(_ string, items []questionnaire.Item) {
		for _, it := range items {
			if it.Optional {
				continue
			}
			if v, ok := answers[it.Code]; !ok || v == nil {
				missing = append(missing, it.Code)
			}
		}
	})
	return missing
}

// ProratedSubscales returns the keys of subscales whose score was prorated.
func (e *Engine) ProratedSubscales(answers Answers) []string {
	var keys []string
	e.catalogue.EachSubscale(func(key string, items []questionnaire.Item) {
		answered, _ := tally(items, answers)
		if answered > 0 && answered < len(items) {
			keys = append(keys, key)
		}
	})
	return keys
}

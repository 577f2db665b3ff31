package scoring

import (
	"math"
	"testing"

	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
)

func intPtr(v int) *int { return &v }

func plainItems(n int) []questionnaire.Item {
	items := make([]questionnaire.Item, n)
	for i := range items {
		items[i] = questionnaire.Item{Code: "Q" + string(rune('1'+i))}
	}
	return items
}

func reversedItems(n int) []questionnaire.Item {
	items := plainItems(n)
	for i := range items {
		items[i].Reverse = true
	}
	return items
}

func physicalItems(t *testing.T) []questionnaire.Item {
	t.Helper()
	s, ok := questionnaire.FACTG().Subscale(questionnaire.Physical)
	if !ok {
		t.Fatal("PWB subscale missing")
	}
	return s.Items
}

func TestFullResponseEqualsRawSum(t *testing.T) {
	items := plainItems(5)
	answers := Answers{"Q1": intPtr(0), "Q2": intPtr(1), "Q3": intPtr(2), "Q4": intPtr(3), "Q5": intPtr(4)}
	if got := ProratedSubscaleScore(items, answers); got != 10 {
		t.Errorf("expected raw sum 10, got %f", got)
	}
}

func TestZeroResponseFloor(t *testing.T) {
	tests := []struct {
		name    string
		answers Answers
	}{
		{"nil map", nil},
		{"empty map", Answers{}},
		{"explicit nils", Answers{"Q1": nil, "Q2": nil}},
		{"unrelated codes", Answers{"OTHER": intPtr(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProratedSubscaleScore(plainItems(7), tt.answers)
			if got != 0 {
				t.Errorf("expected 0, got %f", got)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("expected finite score, got %f", got)
			}
		})
	}
}

func TestReverseScoring(t *testing.T) {
	items := reversedItems(1)
	for raw := 0; raw <= MaxResponse; raw++ {
		got := SubscaleScore(items, Answers{"Q1": intPtr(raw)})
		if got != 4-raw {
			t.Errorf("raw %d: expected %d, got %d", raw, 4-raw, got)
		}
	}
}

func TestProratingScaleUp(t *testing.T) {
	got := SubscaleScore(plainItems(7), Answers{"Q1": intPtr(2)})
	if got != 14 {
		t.Errorf("expected 14, got %d", got)
	}
}

func TestPhysicalAllAnsweredOne(t *testing.T) {
	items := physicalItems(t)
	answers := Answers{}
	for _, it := range items {
		answers[it.Code] = intPtr(1)
	}
	if got := ProratedSubscaleScore(items, answers); got != 21 {
		t.Errorf("expected 21, got %f", got)
	}
}

func TestPhysicalSparse(t *testing.T) {
	items := physicalItems(t)

	t.Run("two of seven at zero", func(t *testing.T) {
		answers := Answers{"GP1": intPtr(0), "GP4": intPtr(0)}
		if got := SubscaleScore(items, answers); got != 28 {
			t.Errorf("expected 28, got %d", got)
		}
	})

	t.Run("three of seven raw sum twelve", func(t *testing.T) {
		answers := Answers{"GP1": intPtr(0), "GP2": intPtr(0), "GP3": intPtr(0)}
		if got := SubscaleScore(items, answers); got != 28 {
			t.Errorf("expected 28, got %d", got)
		}
	})
}

func TestProratedNeverExceedsItemMax(t *testing.T) {
	for n := 1; n <= 10; n++ {
		items := plainItems(n)
		for answered := 1; answered <= n; answered++ {
			for raw := 0; raw <= MaxResponse; raw++ {
				answers := Answers{}
				for i := 0; i < answered; i++ {
					answers[items[i].Code] = intPtr(raw)
				}
				prorated := ProratedSubscaleScore(items, answers)
				if prorated > float64(n*MaxResponse)+1e-9 {
					t.Fatalf("n=%d answered=%d raw=%d: prorated %f exceeds %d", n, answered, raw, prorated, n*MaxResponse)
				}
				if score := SubscaleScore(items, answers); score > n*MaxResponse || score < 0 {
					t.Fatalf("n=%d answered=%d raw=%d: score %d outside [0,%d]", n, answered, raw, score, n*MaxResponse)
				}
			}
		}
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.49999999999999994, 0},
		{0.5, 1},
		{1.5, 2},
		{2.5, 3},
		{10.5, 11},
		{27.999999999999996, 28},
		{28.000000000000004, 28},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}

	// 7 items, 2 answered summing to 3: 3 * 3.5 = 10.5
	got := SubscaleScore(plainItems(7), Answers{"Q1": intPtr(1), "Q2": intPtr(2)})
	if got != 11 {
		t.Errorf("expected tie to round up to 11, got %d", got)
	}
}

func TestComputeAllFACTG(t *testing.T) {
	engine := NewEngine(questionnaire.FACTG())

	t.Run("empty", func(t *testing.T) {
		r := engine.ComputeAll(Answers{})
		if len(r) != 5 {
			t.Fatalf("expected 5 entries, got %d: %v", len(r), r)
		}
		for key, v := range r {
			if v != 0 {
				t.Errorf("%s: expected 0, got %d", key, v)
			}
		}
	})

	t.Run("all twos", func(t *testing.T) {
		answers := Answers{}
		engine.Catalogue().EachSubscale(func(_ string, items []questionnaire.Item) {
			for _, it := range items {
				answers[it.Code] = intPtr(2)
			}
		})
		r := engine.ComputeAll(answers)
		want := Result{"PWB": 14, "SWB": 14, "EWB": 12, "FWB": 14, TotalKey: 54}
		for k, v := range want {
			if r[k] != v {
				t.Errorf("%s: expected %d, got %d", k, v, r[k])
			}
		}
	})

	t.Run("optional item skipped is prorated", func(t *testing.T) {
		answers := Answers{"GS7": nil}
		for _, code := range []string{"GS1", "GS2", "GS3", "GS4", "GS5", "GS6"} {
			answers[code] = intPtr(4)
		}
		r := engine.ComputeAll(answers)
		if r["SWB"] != 28 {
			t.Errorf("expected SWB 28, got %d", r["SWB"])
		}
		if r.Total() != 28 {
			t.Errorf("expected total 28, got %d", r.Total())
		}
	})

	t.Run("emotional mixed reverse", func(t *testing.T) {
		// GE2 forward (3) + GE1 reversed (4-1=3) = 6 over 2 of 6 items
		answers := Answers{"GE1": intPtr(1), "GE2": intPtr(3)}
		r := engine.ComputeAll(answers)
		if r["EWB"] != 18 {
			t.Errorf("expected EWB 18, got %d", r["EWB"])
		}
	})
}

func TestComputeAllTotalAdditivity(t *testing.T) {
	engine := NewEngine(questionnaire.FACTG())
	cases := []Answers{
		{},
		{"GP1": intPtr(4)},
		{"GP1": intPtr(3), "GS2": intPtr(1), "GE2": intPtr(2), "GF7": intPtr(0)},
		{"GE1": intPtr(0), "GE3": intPtr(4), "GE5": nil, "unknown": intPtr(9)},
	}
	for i, answers := range cases {
		r := engine.ComputeAll(answers)
		sum := 0
		for _, key := range engine.Catalogue().Keys() {
			v, ok := r[key]
			if !ok {
				t.Fatalf("case %d: missing key %s", i, key)
			}
			sum += v
		}
		if r[TotalKey] != sum {
			t.Errorf("case %d: TOTAL %d != sum %d", i, r[TotalKey], sum)
		}
	}
}

func TestComputeAllDeterministicAndPure(t *testing.T) {
	engine := NewEngine(questionnaire.FACTG())
	answers := Answers{"GP1": intPtr(2), "GP2": nil, "GS3": intPtr(4), "GE4": intPtr(1), "GF1": intPtr(3)}
	before := answers.Clone()

	first := engine.ComputeAll(answers)
	second := engine.ComputeAll(answers)

	if len(first) != len(second) {
		t.Fatalf("result sizes differ: %d vs %d", len(first), len(second))
	}
	for k, v := range first {
		if second[k] != v {
			t.Errorf("%s: %d vs %d", k, v, second[k])
		}
	}

	if len(answers) != len(before) {
		t.Fatalf("answers mutated: %v", answers)
	}
	for code, v := range before {
		got := answers[code]
		if (v == nil) != (got == nil) || (v != nil && *v != *got) {
			t.Errorf("answer %s mutated", code)
		}
	}
}

func TestEngineWithFixtureCatalogue(t *testing.T) {
	c := questionnaire.New("fixture", "1", []questionnaire.Subscale{
		{Key: "ONE", Range: questionnaire.Range{Max: 4}, Items: []questionnaire.Item{{Code: "X", Reverse: true}}},
	})
	r := NewEngine(c).ComputeAll(Answers{"X": intPtr(1)})
	if r["ONE"] != 3 || r.Total() != 3 {
		t.Errorf("unexpected result %v", r)
	}
}

package questionnaire

// Subscale keys of the FACT-G (version 4) instrument.
const (
	Physical   = "PWB"
	Social     = "SWB"
	Emotional  = "EWB"
	Functional = "FWB"
)

var factG = New("FACT-G", "4", []Subscale{
	{
		Key:   Physical,
		Label: "Physical well-being",
		Range: Range{Min: 0, Max: 28},
		Items: []Item{
			{Code: "GP1", Text: "I have a lack of energy", Reverse: true},
			{Code: "GP2", Text: "I have nausea", Reverse: true},
			{Code: "GP3", Text: "Because of my physical condition, I have trouble meeting the needs of my family", Reverse: true},
			{Code: "GP4", Text: "I have pain", Reverse: true},
			{Code: "GP5", Text: "I am bothered by side effects of treatment", Reverse: true},
			{Code: "GP6", Text: "I feel ill", Reverse: true},
			{Code: "GP7", Text: "I am forced to spend time in bed", Reverse: true},
		},
	},
	{
		Key:   Social,
		Label: "Social/Family well-being",
		Range: Range{Min: 0, Max: 28},
		Items: []Item{
			{Code: "GS1", Text: "I feel close to my friends"},
			{Code: "GS2", Text: "I get emotional support from my family"},
			{Code: "GS3", Text: "I get support from my friends"},
			{Code: "GS4", Text: "My family has accepted my illness"},
			{Code: "GS5", Text: "I am satisfied with family communication about my illness"},
			{Code: "GS6", Text: "I feel close to my partner (or the person who is my main support)"},
			{Code: "GS7", Text: "I am satisfied with my sex life", Optional: true},
		},
	},
	{
		Key:   Emotional,
		Label: "Emotional well-being",
		Range: Range{Min: 0, Max: 24},
		Items: []Item{
			{Code: "GE1", Text: "I feel sad", Reverse: true},
			{Code: "GE2", Text: "I am satisfied with how I am coping with my illness"},
			{Code: "GE3", Text: "I am losing hope in the fight against my illness", Reverse: true},
			{Code: "GE4", Text: "I feel nervous", Reverse: true},
			{Code: "GE5", Text: "I worry about dying", Reverse: true},
			{Code: "GE6", Text: "I worry that my condition will get worse", Reverse: true},
		},
	},
	{
		Key:   Functional,
		Label: "Functional well-being",
		Range: Range{Min: 0, Max: 28},
		Items: []Item{
			{Code: "GF1", Text: "I am able to work (include work at home)"},
			{Code: "GF2", Text: "My work (include work at home) is fulfilling"},
			{Code: "GF3", Text: "I am able to enjoy life"},
			{Code: "GF4", Text: "I have accepted my illness"},
			{Code: "GF5", Text: "I am sleeping well"},
			{Code: "GF6", Text: "I am enjoying the things I usually do for fun"},
			{Code: "GF7", Text: "I am content with the quality of my life right now"},
		},
	},
})

// FACTG returns the built-in FACT-G catalogue. The value is shared and
// immutable.
func FACTG() *Catalogue {
	return factG
}

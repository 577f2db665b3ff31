package questionnaire

// Item is a single questionnaire question.
type Item struct {
	Code     string `json:"code" yaml:"code"`
	Text     string `json:"text" yaml:"text"`
	Reverse  bool   `json:"reverse" yaml:"reverse"`
	Optional bool   `json:"optional,omitempty" yaml:"optional"`
}

// Range is the theoretical [Min, Max] score of a subscale. Informational only.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Subscale is a named, ordered group of items summed into one component score.
type Subscale struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Range Range  `json:"range" yaml:"range"`
	Items []Item `json:"items" yaml:"items"`
}

// Catalogue is an immutable, ordered set of subscales. The zero value is an
// empty catalogue. All accessors return copies.
type Catalogue struct {
	name      string
	version   string
	subscales []Subscale
	index     map[string]int
}

// New builds a catalogue from the given subscales. The slice is deep-copied.
// Use Validate on catalogues that did not come from hard-coded data.
func New(name, version string, subscales []Subscale) *Catalogue {
	c := &Catalogue{
		name:      name,
		version:   version,
		subscales: make([]Subscale, len(subscales)),
		index:     make(map[string]int, len(subscales)),
	}
	for i, s := range subscales {
		c.subscales[i] = copySubscale(s)
		c.index[s.Key] = i
	}
	return c
}

func (c *Catalogue) Name() string    { return c.name }
func (c *Catalogue) Version() string { return c.version }
func (c *Catalogue) Len() int        { return len(c.subscales) }

// Subscales returns the subscales in catalogue order.
func (c *Catalogue) Subscales() []Subscale {
	out := make([]Subscale, len(c.subscales))
	for i, s := range c.subscales {
		out[i] = copySubscale(s)
	}
	return out
}

// Subscale looks up a subscale by key.
func (c *Catalogue) Subscale(key string) (Subscale, bool) {
	i, ok := c.index[key]
	if !ok {
		return Subscale{}, false
	}
	return copySubscale(c.subscales[i]), true
}

// Keys returns subscale keys in catalogue order.
func (c *Catalogue) Keys() []string {
	keys := make([]string, len(c.subscales))
	for i, s := range c.subscales {
		keys[i] = s.Key
	}
	return keys
}

// TotalRange sums the ranges of every subscale.
func (c *Catalogue) TotalRange() Range {
	var r Range
	for _, s := range c.subscales {
		r.Min += s.Range.Min
		r.Max += s.Range.Max
	}
	return r
}

// EachSubscale calls fn for every subscale without copying item slices.
// fn must not modify the items it is given.
func (c *Catalogue) EachSubscale(fn func(key string, items []Item)) {
	for _, s := range c.subscales {
		fn(s.Key, s.Items)
	}
}

func copySubscale(s Subscale) Subscale {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

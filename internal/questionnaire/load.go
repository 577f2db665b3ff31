package questionnaire

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the wire/file representation of a catalogue.
type Document struct {
	Name      string     `json:"name" yaml:"name"`
	Version   string     `json:"version,omitempty" yaml:"version"`
	Subscales []Subscale `json:"subscales" yaml:"subscales"`
	Total     *Range     `json:"total,omitempty" yaml:"-"`
}

// ValidationError lists every problem found in a catalogue document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid questionnaire: " + strings.Join(e.Problems, "; ")
}

// Validate checks a document for structural problems: at least one
// subscale, unique non-empty keys and item codes, non-empty item lists and
// ordered ranges.
func (d *Document) Validate() error {
	var problems []string
	if len(d.Subscales) == 0 {
		problems = append(problems, "no subscales")
	}
	keys := make(map[string]bool)
	codes := make(map[string]string)
	for i, s := range d.Subscales {
		if s.Key == "" {
			problems = append(problems, fmt.Sprintf("subscale %d: empty key", i))
		} else if keys[s.Key] {
			problems = append(problems, fmt.Sprintf("subscale %s: duplicate key", s.Key))
		}
		keys[s.Key] = true
		if len(s.Items) == 0 {
			problems = append(problems, fmt.Sprintf("subscale %s: no items", s.Key))
		}
		if s.Range.Min > s.Range.Max {
			problems = append(problems, fmt.Sprintf("subscale %s: range min %d > max %d", s.Key, s.Range.Min, s.Range.Max))
		}
		for j, it := range s.Items {
			if it.Code == "" {
				problems = append(problems, fmt.Sprintf("subscale %s item %d: empty code", s.Key, j))
				continue
			}
			if owner, dup := codes[it.Code]; dup {
				problems = append(problems, fmt.Sprintf("item %s: duplicate code (also in %s)", it.Code, owner))
			}
			codes[it.Code] = s.Key
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Catalogue validates the document and converts it to an immutable catalogue.
func (d *Document) Catalogue() (*Catalogue, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return New(d.Name, d.Version, d.Subscales), nil
}

// ToDocument renders a catalogue in its wire form.
func ToDocument(c *Catalogue) Document {
	total := c.TotalRange()
	return Document{
		Name:      c.Name(),
		Version:   c.Version(),
		Subscales: c.Subscales(),
		Total:     &total,
	}
}

// ParseJSON decodes and validates a JSON catalogue document.
func ParseJSON(data []byte) (*Catalogue, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}
	return doc.Catalogue()
}

// LoadFile reads a YAML (or JSON) catalogue from disk.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questionnaire: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}
	return doc.Catalogue()
}

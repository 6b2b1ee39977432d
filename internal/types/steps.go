package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSteps is returned when steps are neither a string nor a list of step objects.
var ErrInvalidSteps = errors.New("steps must be a string or a list of steps")

// StepMedia references a file previously stored through the media endpoints
type StepMedia struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
}

// Step is one numbered instruction of a recipe
type Step struct {
	StepNumber  int         `json:"step_number"`
	Description string      `json:"description"`
	Media       []StepMedia `json:"media"`
}

// StepsKind tags which shape a Steps value holds
type StepsKind int

const (
	StepsText StepsKind = iota
	StepsList
)

// Steps holds either a free text block or an ordered list of steps.
// The zero value is empty text.
type Steps struct {
	kind StepsKind
	text string
	list []Step
}

// TextSteps wraps a single free text block
func TextSteps(text string) Steps {
	return Steps{kind: StepsText, text: text}
}

// ListSteps wraps a list of step objects. Missing media lists become empty.
func ListSteps(steps []Step) Steps {
	list := make([]Step, len(steps))
	for i, s := range steps {
		if s.Media == nil {
			s.Media = []StepMedia{}
		}
		list[i] = s
	}
	return Steps{kind: StepsList, list: list}
}

func (s Steps) Kind() StepsKind { return s.kind }

func (s Steps) IsText() bool { return s.kind == StepsText }

// Text returns the free text, empty for the list shape.
func (s Steps) Text() string { return s.text }

// List returns the steps, nil for the text shape.
func (s Steps) List() []Step { return s.list }

// Validate checks list entries. Text is accepted verbatim.
func (s Steps) Validate() error {
	if s.kind != StepsList {
		return nil
	}
	for i, step := range s.list {
		for _, m := range step.Media {
			if m.Type != "image" && m.Type != "video" {
				return fmt.Errorf("step %d: media type must be image or video", i+1)
			}
			if m.Filename == "" && m.URL == "" {
				return fmt.Errorf("step %d: media requires a filename or url", i+1)
			}
		}
	}
	return nil
}

// MarshalJSON writes a JSON string or a JSON array of plain step objects.
func (s Steps) MarshalJSON() ([]byte, error) {
	if s.kind == StepsList {
		list := s.list
		if list == nil {
			list = []Step{}
		}
		return json.Marshal(ListSteps(list).list)
	}
	return json.Marshal(s.text)
}

// UnmarshalJSON accepts a JSON string or a JSON array of step objects.
func (s *Steps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidSteps
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return ErrInvalidSteps
		}
		*s = TextSteps(text)
		return nil
	case '[':
		var list []Step
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSteps, err)
		}
		*s = ListSteps(list)
		return nil
	default:
		return ErrInvalidSteps
	}
}

// Value stores steps as JSON in the recipes table.
func (s Steps) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the stored JSON back in its stored shape. Columns holding
// plain text that predate the JSON format are read as text.
func (s *Steps) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = ListSteps(nil)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported steps column type %T", value)
	}

	if err := s.UnmarshalJSON(raw); err != nil {
		*s = TextSteps(string(raw))
	}
	return nil
}

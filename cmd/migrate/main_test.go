package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestNormalizeSteps(t *testing.T) {
	tests := []struct {
		name    string
		raw     *string
		want    string
		changed bool
	}{
		{"null", nil, "[]", true},
		{"blank", strPtr("  \n"), "[]", true},
		{"plain text", strPtr("Boil beets.\nAdd cabbage."), `"Boil beets.\nAdd cabbage."`, true},
		{"already a json string", strPtr(`"Boil beets"`), `"Boil beets"`, false},
		{"already a list", strPtr(`[{"step_number":1,"description":"Boil","media":[]}]`), `[{"step_number":1,"description":"Boil","media":[]}]`, false},
		{"bare number is text", strPtr("42"), `"42"`, true},
		{"text with quotes", strPtr(`Say "enjoy"`), `"Say \"enjoy\""`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeSteps(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

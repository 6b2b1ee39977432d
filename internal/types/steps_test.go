package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsUnmarshalText(t *testing.T) {
	var s Steps
	require.NoError(t, json.Unmarshal([]byte(`"boil and simmer"`), &s))

	assert.True(t, s.IsText())
	assert.Equal(t, "boil and simmer", s.Text())
	assert.Nil(t, s.List())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"boil and simmer"`, string(out))
}

func TestStepsUnmarshalList(t *testing.T) {
	input := `[
		{"step_number": 1, "description": "Chop", "media": [{"type": "image", "filename": "a.jpg", "url": "/static/recipe_steps/a.jpg"}]},
		{"step_number": 2, "description": "Boil"}
	]`

	var s Steps
	require.NoError(t, json.Unmarshal([]byte(input), &s))

	require.Equal(t, StepsList, s.Kind())
	require.Len(t, s.List(), 2)
	assert.Equal(t, "Chop", s.List()[0].Description)
	assert.Len(t, s.List()[0].Media, 1)
	assert.NotNil(t, s.List()[1].Media, "missing media is normalised to an empty list")

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"step_number": 1, "description": "Chop", "media": [{"type": "image", "filename": "a.jpg", "url": "/static/recipe_steps/a.jpg"}]},
		{"step_number": 2, "description": "Boil", "media": []}
	]`, string(out))
}

func TestStepsUnmarshalRejectsOtherShapes(t *testing.T) {
	for _, input := range []string{`42`, `{"step_number": 1}`, `null`, `true`} {
		var s Steps
		err := json.Unmarshal([]byte(input), &s)
		assert.ErrorIs(t, err, ErrInvalidSteps, input)
	}
}

func TestStepsValueScanKeepsShape(t *testing.T) {
	tests := []Steps{
		TextSteps("mix everything"),
		ListSteps([]Step{{StepNumber: 1, Description: "Mix"}}),
		ListSteps(nil),
	}

	for _, in := range tests {
		v, err := in.Value()
		require.NoError(t, err)

		var out Steps
		require.NoError(t, out.Scan(v))
		assert.Equal(t, in.Kind(), out.Kind())
		assert.Equal(t, in.Text(), out.Text())
		assert.Equal(t, len(in.List()), len(out.List()))
	}
}

func TestStepsScanLegacyPlainText(t *testing.T) {
	var s Steps
	require.NoError(t, s.Scan([]byte("Step one. Step two.")))
	assert.True(t, s.IsText())
	assert.Equal(t, "Step one. Step two.", s.Text())
}

func TestStepsValidate(t *testing.T) {
	assert.NoError(t, TextSteps("").Validate())
	assert.NoError(t, ListSteps([]Step{{Media: []StepMedia{{Type: "video", Filename: "v.mp4"}}}}).Validate())
	assert.Error(t, ListSteps([]Step{{Media: []StepMedia{{Type: "audio", Filename: "a.mp3"}}}}).Validate())
	assert.Error(t, ListSteps([]Step{{Media: []StepMedia{{Type: "image"}}}}).Validate())
}

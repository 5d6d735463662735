package interactive

import (
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/layoutcheck/internal/validation"
)

func TestMenuChoices(t *testing.T) {
	called := ""
	options := []MenuOption{
		{Name: "Validate", Description: "Run the layout checks", Action: func() error { called = "validate"; return nil }},
		{Name: "Doctor", Description: "Check prerequisites", Action: func() error { return errors.New("boom") }},
	}

	choices, optionMap := menuChoices(options)

	assert.Equal(t, []string{
		"Validate - Run the layout checks",
		"Doctor - Check prerequisites",
		"Exit",
	}, choices)

	require.NoError(t, dispatch(choices[0], optionMap))
	assert.Equal(t, "validate", called)

	assert.EqualError(t, dispatch(choices[1], optionMap), "boom")
	assert.ErrorIs(t, dispatch("Exit", optionMap), ErrExit)
	assert.ErrorIs(t, dispatch("Something else", optionMap), ErrInvalidSelection)
}

func TestCheckConfigQuestions_UseCurrentValues(t *testing.T) {
	cfg := validation.DefaultConfig()
	cfg.HeightTolerance = 12.5

	questions := checkConfigQuestions(cfg)
	require.Len(t, questions, 6)

	names := make([]string, 0, len(questions))
	for _, q := range questions {
		names = append(names, q.Name)
	}
	assert.Equal(t, []string{"TargetURL", "CardSelector", "SummarySelector", "ReadMoreSelector", "MarkerClass", "HeightTolerance"}, names)

	tolerance, ok := questions[5].Prompt.(*survey.Input)
	require.True(t, ok)
	assert.Equal(t, "12.5", tolerance.Default)
}

func TestValidators(t *testing.T) {
	require.NoError(t, validateClassName("card-summary-content"))
	require.Error(t, validateClassName(".card-summary-content"))
	require.Error(t, validateClassName("two classes"))

	require.NoError(t, validatePositiveNumber("10"))
	require.NoError(t, validatePositiveNumber("2.5"))
	require.Error(t, validatePositiveNumber("0"))
	require.Error(t, validatePositiveNumber("ten"))
}

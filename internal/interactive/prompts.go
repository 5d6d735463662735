package interactive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/ethpandaops/layoutcheck/internal/validation"
)

// Prompter asks for check configuration values on the terminal.
type Prompter struct{}

// PromptCheckConfig asks for each selector and the tolerance, offering the
// current values of cfg as defaults.
func (Prompter) PromptCheckConfig(cfg *validation.Config) error {
	answers := struct {
		TargetURL        string
		CardSelector     string
		SummarySelector  string
		ReadMoreSelector string
		MarkerClass      string
		HeightTolerance  string
	}{}

	if err := survey.Ask(checkConfigQuestions(cfg), &answers); err != nil {
		return err
	}

	tolerance, err := strconv.ParseFloat(answers.HeightTolerance, 64)
	if err != nil {
		return fmt.Errorf("parsing height tolerance: %w", err)
	}

	cfg.TargetURL = answers.TargetURL
	cfg.CardSelector = answers.CardSelector
	cfg.SummarySelector = answers.SummarySelector
	cfg.ReadMoreSelector = answers.ReadMoreSelector
	cfg.MarkerClass = answers.MarkerClass
	cfg.HeightTolerance = tolerance

	return nil
}

// Confirm asks a yes/no question, defaulting to no.
func (Prompter) Confirm(message string) bool {
	return Confirm(message)
}

func checkConfigQuestions(cfg *validation.Config) []*survey.Question {
	return []*survey.Question{
		{
			Name:     "TargetURL",
			Prompt:   &survey.Input{Message: "Page URL:", Default: cfg.TargetURL},
			Validate: survey.Required,
		},
		{
			Name:     "CardSelector",
			Prompt:   &survey.Input{Message: "Card selector:", Default: cfg.CardSelector},
			Validate: survey.Required,
		},
		{
			Name:     "SummarySelector",
			Prompt:   &survey.Input{Message: "Summary selector:", Default: cfg.SummarySelector},
			Validate: survey.Required,
		},
		{
			Name:     "ReadMoreSelector",
			Prompt:   &survey.Input{Message: "Read-more link selector:", Default: cfg.ReadMoreSelector},
			Validate: survey.Required,
		},
		{
			Name:     "MarkerClass",
			Prompt:   &survey.Input{Message: "Marker class:", Default: cfg.MarkerClass},
			Validate: survey.ComposeValidators(survey.Required, validateClassName),
		},
		{
			Name: "HeightTolerance",
			Prompt: &survey.Input{
				Message: "Card height tolerance (px):",
				Default: strconv.FormatFloat(cfg.HeightTolerance, 'f', -1, 64),
			},
			Validate: validatePositiveNumber,
		},
	}
}

func validateClassName(ans interface{}) error {
	s, _ := ans.(string)
	if strings.ContainsAny(s, " \t.") {
		return errors.New("enter a single class name without a leading dot")
	}

	return nil
}

func validatePositiveNumber(ans interface{}) error {
	s, _ := ans.(string)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return errors.New("enter a positive number")
	}

	return nil
}

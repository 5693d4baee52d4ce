package cmd

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// errCancelled is returned by the prompt helpers when the user aborts with
// Ctrl+C or Esc.
var errCancelled = errors.New("cancelled")

// SelectOption is one choice in a select prompt.
type SelectOption[T any] struct {
	Label string
	Value T
}

// filterThreshold: enable type-to-filter only when there are more than this many options.
const filterThreshold = 5

// runForm shows fields as one group with the key help line visible.
func runForm(fields ...huh.Field) error {
	err := huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errCancelled
	}
	return err
}

// promptString asks for one line of text. An empty answer returns
// defaultVal, which is shown as the placeholder. validate, when given, runs
// on the typed value before the form accepts it.
func promptString(title, description, defaultVal string, validate ...func(string) error) (string, error) {
	var value string
	inp := huh.NewInput().
		Title(title).
		Placeholder(defaultVal).
		Value(&value)
	if description != "" {
		inp = inp.Description(description)
	}
	if len(validate) > 0 {
		check := validate[0]
		inp = inp.Validate(func(s string) error {
			if s == "" {
				return nil
			}
			return check(s)
		})
	}

	if err := runForm(inp); err != nil {
		return "", err
	}
	if value == "" {
		return defaultVal, nil
	}
	return value, nil
}

// promptPassword asks for a secret without echoing it.
func promptPassword(title, description string) (string, error) {
	var value string
	inp := huh.NewInput().
		Title(title).
		Description(description).
		EchoMode(huh.EchoModePassword).
		Value(&value)
	if err := runForm(inp); err != nil {
		return "", err
	}
	return value, nil
}

// promptSelect shows a single-choice list with options[defaultIdx] preselected.
func promptSelect[T comparable](title string, options []SelectOption[T], defaultIdx int) (T, error) {
	var value T
	opts := make([]huh.Option[T], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value).Selected(i == defaultIdx)
	}

	sel := huh.NewSelect[T]().
		Title(title).
		Options(opts...).
		Filtering(len(options) > filterThreshold).
		Value(&value)
	if err := runForm(sel); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// promptMultiSelect shows a checklist with the preselected values ticked.
func promptMultiSelect[T comparable](title, description string, options []SelectOption[T], preselected []T) ([]T, error) {
	ticked := make(map[T]bool, len(preselected))
	for _, v := range preselected {
		ticked[v] = true
	}
	opts := make([]huh.Option[T], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value).Selected(ticked[o.Value])
	}

	var values []T
	ms := huh.NewMultiSelect[T]().
		Title(title).
		Description(description).
		Options(opts...).
		Filtering(len(options) > filterThreshold).
		Value(&values)
	if err := runForm(ms); err != nil {
		return nil, err
	}
	return values, nil
}

// promptConfirm asks a yes/no question.
func promptConfirm(title string, defaultYes bool) (bool, error) {
	value := defaultYes
	c := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := runForm(c); err != nil {
		return false, err
	}
	return value, nil
}

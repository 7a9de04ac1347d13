package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// errBadAnswer is shown by promptui while the answer cannot be parsed.
var errBadAnswer = errors.New("responda s o n")

// ParseAnswer interprets a yes/no answer. Spanish and English forms are
// accepted; empty input yields def.
func ParseAnswer(input string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return def, nil
	case "s", "si", "sí", "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, errBadAnswer
	}
}

// Confirm asks a yes/no question labelled "(s/n)".
// Returns ErrAborted if the user presses Ctrl+C.
func Confirm(label string, defaultYes bool) (bool, error) {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s (s/n)", label),
		Validate: func(input string) error {
			_, err := ParseAnswer(input, defaultYes)
			return err
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return false, wrapError(err)
	}
	return ParseAnswer(result, defaultYes)
}

// ConfirmWithForce returns true immediately if force is true,
// otherwise prompts for confirmation.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

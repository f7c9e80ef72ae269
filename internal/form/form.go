package form

import (
	"errors"
	"fmt"
)

var (
	ErrFieldNotFound          = errors.New("form control not found")
	ErrNoChoiceChecked        = errors.New("no option checked")
	ErrMultipleChoicesChecked = errors.New("more than one option checked")
)

// Source exposes the controls of the generator form. Lookups read the value
// at the time of the call.
type Source interface {
	// FieldValue returns the current value of the control with the given element id.
	FieldValue(id string) (string, error)

	// Checked returns the checkbox state of the control with the given element id.
	Checked(id string) (bool, error)

	// CheckedChoice returns the value of the checked control in the named
	// exclusive group.
	CheckedChoice(group string) (string, error)
}

func fieldNotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
}

func pickChoice(group string, checked []string) (string, error) {
	switch len(checked) {
	case 0:
		return "", fmt.Errorf("%w in group %q", ErrNoChoiceChecked, group)
	case 1:
		return checked[0], nil
	default:
		return "", fmt.Errorf("%w in group %q: %v", ErrMultipleChoicesChecked, group, checked)
	}
}

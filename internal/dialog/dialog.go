// Package dialog presents modal prompts to the user and maps their
// responses onto a small outcome vocabulary. Anything that goes wrong while
// presenting (timeout, scripting error, unrecognized button) collapses to the
// prompt kind's default outcome so the reminder flow never stalls on UI
// failures.
package dialog

import "time"

// Kind identifies which prompt is being shown.
type Kind string

const (
	// KindReminder is the due-task prompt with complete/postpone/later
	// choices.
	KindReminder Kind = "reminder"
	// KindCompletionConfirm double-checks a completion before the task is
	// marked done.
	KindCompletionConfirm Kind = "completion-confirm"
)

// Outcome is the interpreted result of a prompt.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomePostpone Outcome = "postpone"
	OutcomeLater    Outcome = "later"
	OutcomeConfirm  Outcome = "confirm"
	OutcomeCancel   Outcome = "cancel"
)

// Button labels shown to the user. The osascript response echoes these back
// verbatim, so mapping is a straight label comparison.
const (
	buttonComplete = "Complete"
	buttonPostpone = "Postpone"
	buttonLater    = "Later"
	buttonConfirm  = "Confirm"
	buttonCancel   = "Cancel"
)

// Request describes one prompt for a Presenter.
type Request struct {
	Title         string
	Message       string
	Buttons       []string
	DefaultButton string
	Timeout       time.Duration
}

// buttons returns the button set and default label for a prompt kind.
func buttons(kind Kind) (labels []string, def string) {
	switch kind {
	case KindCompletionConfirm:
		return []string{buttonCancel, buttonConfirm}, buttonConfirm
	default:
		return []string{buttonLater, buttonPostpone, buttonComplete}, buttonLater
	}
}

// defaultOutcome returns the outcome a prompt kind falls back to when the
// user does not make an explicit choice.
func defaultOutcome(kind Kind) Outcome {
	if kind == KindCompletionConfirm {
		return OutcomeConfirm
	}
	return OutcomeLater
}

// outcomeForLabel maps a returned button label to an outcome. ok is false
// for labels outside the kind's vocabulary.
func outcomeForLabel(kind Kind, label string) (Outcome, bool) {
	switch kind {
	case KindCompletionConfirm:
		switch label {
		case buttonConfirm:
			return OutcomeConfirm, true
		case buttonCancel:
			return OutcomeCancel, true
		}
	default:
		switch label {
		case buttonComplete:
			return OutcomeComplete, true
		case buttonPostpone:
			return OutcomePostpone, true
		case buttonLater:
			return OutcomeLater, true
		}
	}
	return "", false
}

// ABOUTME: Terminal confirmation prompt for CLI deletes.
// ABOUTME: Wraps survey's yes/no question as a Confirmer.

package notify

import (
	"log"

	"github.com/AlecAivazis/survey/v2"
)

// Prompt confirms on an interactive terminal.
type Prompt struct {
	// Default answer when the user just presses enter.
	Default bool
	Options []survey.AskOpt
}

func (p Prompt) Confirm(message string) bool {
	answer := p.Default
	q := &survey.Confirm{Message: message, Default: p.Default}
	if err := survey.AskOne(q, &answer, p.Options...); err != nil {
		log.Printf("confirmation prompt failed: %v", err)
		return false
	}
	return answer
}

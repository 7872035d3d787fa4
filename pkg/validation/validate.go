// Package validation checks inbound messages against configurable rules
// before they reach the store.
package validation

import (
	"fmt"
	"strings"

	"relaylog/pkg/errs"
	"relaylog/pkg/models"
)

type Rules struct {
	// DefaultSender is substituted when a message omits its sender.
	DefaultSender string
	// MaxTextLen bounds message text; zero disables the check.
	MaxTextLen int
}

var rules Rules

func SetRules(r Rules) { rules = r }

// ApplyDefaults fills omitted fields and returns the normalized message.
func ApplyDefaults(m models.Message) models.Message {
	if strings.TrimSpace(m.Sender) == "" && rules.DefaultSender != "" {
		m.Sender = rules.DefaultSender
	}
	if m.Kind == "" {
		m.Kind = models.KindMessage
	}
	return m
}

// ValidateMessage checks a message after defaults were applied.
func ValidateMessage(m models.Message) error {
	var problems []string
	if strings.TrimSpace(m.Sender) == "" {
		problems = append(problems, "sender is required")
	}
	if m.Text == "" {
		problems = append(problems, "text is required")
	}
	if !m.Kind.Valid() {
		problems = append(problems, fmt.Sprintf("unknown kind: %q", m.Kind))
	}
	if rules.MaxTextLen > 0 && len(m.Text) > rules.MaxTextLen {
		problems = append(problems, fmt.Sprintf("text exceeds %d bytes", rules.MaxTextLen))
	}
	if len(problems) > 0 {
		return errs.Malformed(strings.Join(problems, "; "))
	}
	return nil
}

package teams

import (
	"fmt"
	"time"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// alertColor is the fixed theme color for expiry alerts.
const alertColor = "FF0000"

// Render builds the MessageCard for one customer's expiring secrets.
//
// Rendering is pure: the same inputs always produce the same card, and no
// I/O happens here. The days-remaining arithmetic uses the single now value
// threaded through the whole run, so a slow run cannot flip a secret across
// a day boundary between the window query and the rendered text.
//
// An empty secret list yields a card with zero facts; callers normally skip
// such groups but the renderer does not rely on that.
func Render(customerName string, secrets []domain.Secret, now time.Time, baseURL string) *Message {
	facts := make([]Fact, 0, len(secrets))
	actions := make([]Action, 0, len(secrets))

	for _, s := range secrets {
		days := domain.DaysUntil(s.ExpiryDate, now)
		unit := "days"
		if days == 1 {
			unit = "day"
		}

		value := fmt.Sprintf("Expires in %d %s (%s)", days, unit, s.ExpiryDate.Format("02/01/2006"))
		if s.Description != nil && *s.Description != "" {
			value += " - " + *s.Description
		}
		secretURL := fmt.Sprintf("%s/secrets/%s", baseURL, s.ID)
		value += fmt.Sprintf("\n[View Secret](%s)", secretURL)

		facts = append(facts, Fact{Name: s.Name, Value: value})
		actions = append(actions, Action{
			Type:    "OpenUri",
			Name:    fmt.Sprintf("View %s", s.Name),
			Targets: []Target{{OS: "default", URI: secretURL}},
		})
	}

	return &Message{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: alertColor,
		Summary:    fmt.Sprintf("Expiring Secrets Alert for %s", customerName),
		Sections: []Section{{
			ActivityTitle: fmt.Sprintf("⚠️ Expiring Secrets Alert for %s", customerName),
			Facts:         facts,
			Markdown:      true,
		}},
		PotentialAction: actions,
	}
}

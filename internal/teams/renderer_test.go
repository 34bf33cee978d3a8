package teams_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/secretwatch/expiry-tracker/internal/domain"
	"github.com/secretwatch/expiry-tracker/internal/teams"
)

var now = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

const baseURL = "https://secrets.example.com"

func secret(id, name string, daysAhead int) domain.Secret {
	return domain.Secret{
		ID:         id,
		Name:       name,
		ExpiryDate: now.AddDate(0, 0, daysAhead),
	}
}

func TestRender_OneFactPerSecret_OrderPreserved(t *testing.T) {
	secrets := []domain.Secret{
		secret("s1", "TLS cert", 3),
		secret("s2", "API key", 7),
		secret("s3", "License", 12),
	}

	msg := teams.Render("Acme Corp", secrets, now, baseURL)

	if len(msg.Sections) != 1 {
		t.Fatalf("expected exactly one section, got %d", len(msg.Sections))
	}
	facts := msg.Sections[0].Facts
	if len(facts) != 3 {
		t.Fatalf("expected 3 facts, got %d", len(facts))
	}
	for i, want := range []string{"TLS cert", "API key", "License"} {
		if facts[i].Name != want {
			t.Fatalf("fact %d: expected name %q, got %q", i, want, facts[i].Name)
		}
	}
}

func TestRender_Pluralization(t *testing.T) {
	tests := []struct {
		name      string
		daysAhead int
		want      string
	}{
		{"one day is singular", 1, "Expires in 1 day ("},
		{"several days are plural", 5, "Expires in 5 days ("},
		{"zero days are plural", 0, "Expires in 0 days ("},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := teams.Render("Acme", []domain.Secret{secret("s1", "cert", tc.daysAhead)}, now, baseURL)
			value := msg.Sections[0].Facts[0].Value
			if !strings.Contains(value, tc.want) {
				t.Fatalf("expected value to contain %q, got %q", tc.want, value)
			}
		})
	}
}

func TestRender_FactValue(t *testing.T) {
	desc := "prod database password"
	s := domain.Secret{
		ID:          "abc-123",
		Name:        "DB password",
		Description: &desc,
		ExpiryDate:  time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC),
	}

	msg := teams.Render("Acme", []domain.Secret{s}, now, baseURL)
	value := msg.Sections[0].Facts[0].Value

	want := "Expires in 5 days (15/06/2025) - prod database password\n[View Secret](https://secrets.example.com/secrets/abc-123)"
	if value != want {
		t.Fatalf("fact value mismatch:\n got %q\nwant %q", value, want)
	}
}

func TestRender_NoDescription(t *testing.T) {
	msg := teams.Render("Acme", []domain.Secret{secret("s1", "cert", 2)}, now, baseURL)
	value := msg.Sections[0].Facts[0].Value
	if strings.Contains(value, " - ") {
		t.Fatalf("value must not contain a description separator: %q", value)
	}
}

// The receiving webhook requires these exact JSON keys; a renamed field
// breaks the card silently on the Teams side.
func TestRender_WirePayload(t *testing.T) {
	msg := teams.Render("Acme Corp", []domain.Secret{secret("s1", "cert", 3)}, now, baseURL)

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if payload["@type"] != "MessageCard" {
		t.Fatalf("expected @type=MessageCard, got %v", payload["@type"])
	}
	if payload["@context"] != "https://schema.org/extensions" {
		t.Fatalf("expected schema.org context, got %v", payload["@context"])
	}
	if payload["themeColor"] != "FF0000" {
		t.Fatalf("expected themeColor=FF0000, got %v", payload["themeColor"])
	}
	if payload["summary"] != "Expiring Secrets Alert for Acme Corp" {
		t.Fatalf("unexpected summary: %v", payload["summary"])
	}

	sections, ok := payload["sections"].([]any)
	if !ok || len(sections) != 1 {
		t.Fatalf("expected a single-element sections list, got %v", payload["sections"])
	}
	section := sections[0].(map[string]any)
	if title := section["activityTitle"].(string); !strings.Contains(title, "⚠️") || !strings.Contains(title, "Acme Corp") {
		t.Fatalf("activityTitle must carry the warning glyph and customer name, got %q", title)
	}
	if section["markdown"] != true {
		t.Fatal("expected markdown=true")
	}

	actions, ok := payload["potentialAction"].([]any)
	if !ok || len(actions) != 1 {
		t.Fatalf("expected one potentialAction per secret, got %v", payload["potentialAction"])
	}
	action := actions[0].(map[string]any)
	if action["@type"] != "OpenUri" {
		t.Fatalf("expected OpenUri action, got %v", action["@type"])
	}
}

func TestRender_EmptySecretList(t *testing.T) {
	msg := teams.Render("Acme", nil, now, baseURL)
	if len(msg.Sections) != 1 {
		t.Fatalf("expected one section, got %d", len(msg.Sections))
	}
	if len(msg.Sections[0].Facts) != 0 {
		t.Fatalf("expected zero facts, got %d", len(msg.Sections[0].Facts))
	}
}

package teams

// Message is the MessageCard payload understood by Microsoft Teams
// incoming webhooks. Field names and structure are fixed by the receiving
// side; do not change the JSON keys.
// https://learn.microsoft.com/en-us/outlook/actionable-messages/message-card-reference
type Message struct {
	Type            string    `json:"@type"`
	Context         string    `json:"@context"`
	ThemeColor      string    `json:"themeColor"`
	Summary         string    `json:"summary"`
	Sections        []Section `json:"sections"`
	PotentialAction []Action  `json:"potentialAction,omitempty"`
}

// Section is a single card section; this service always emits exactly one.
type Section struct {
	ActivityTitle string `json:"activityTitle"`
	Facts         []Fact `json:"facts"`
	Markdown      bool   `json:"markdown"`
}

// Fact is one name/value line in a section. One fact per expiring secret.
type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Action is an OpenUri button linking back to a secret's detail page.
type Action struct {
	Type    string   `json:"@type"`
	Name    string   `json:"name"`
	Targets []Target `json:"targets"`
}

type Target struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

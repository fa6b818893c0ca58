package classify

import "strings"

// Affordance identifies the structured input control offered to the visitor
// instead of free-text input.
type Affordance int

const (
	None Affordance = iota
	Date
	Time
	Guests
	Confirm
)

func (a Affordance) String() string {
	switch a {
	case Date:
		return "date"
	case Time:
		return "time"
	case Guests:
		return "guests"
	case Confirm:
		return "confirm"
	default:
		return "none"
	}
}

// rule is one priority slot: the affordance fires when any trigger phrase is
// present and no veto phrase is. Rules are evaluated in order, first match
// wins.
type rule struct {
	result   Affordance
	triggers []string
	vetoes   []string
}

// The order below is observable behavior: a reservation summary frequently
// contains words like "time", so the confirm rule must outrank the rest, and
// the "summary" veto keeps a summary sentence from re-opening the date/time/
// guest pickers. Do not reorder.
var rules = []rule{
	{
		result: Confirm,
		triggers: []string{
			"everything correct",
			"is this correct",
			"is that correct",
			"say 'confirmed'",
			"say confirmed",
			"to proceed",
			"reservation summary",
		},
	},
	{
		result:   Time,
		triggers: []string{"what time", "at what hour", "which time"},
		vetoes:   []string{"summary"},
	},
	{
		result:   Date,
		triggers: []string{"when would you like", "which day", "what date"},
		vetoes:   []string{"summary", "time:"},
	},
	{
		result:   Guests,
		triggers: []string{"how many", "number of guests", "party size"},
		vetoes:   []string{"summary"},
	},
}

// Classify inspects free-form assistant text and picks the quick-action
// affordance to surface next. Matching is case-insensitive and
// substring-based; unmatched text resolves to None, never an error.
func Classify(responseText string) Affordance {
	text := strings.ToLower(responseText)
	for _, r := range rules {
		if r.matches(text) {
			return r.result
		}
	}
	return None
}

func (r rule) matches(text string) bool {
	for _, veto := range r.vetoes {
		if strings.Contains(text, veto) {
			return false
		}
	}
	for _, trigger := range r.triggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}

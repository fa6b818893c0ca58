// Package quickaction generates the canned button rows shown alongside an
// affordance. A tapped button produces a text message sent as if the visitor
// had typed it.
package quickaction

import (
	"fmt"
	"time"
)

// Button is one tappable quick action: Label is shown, Message is what gets
// sent on tap.
type Button struct {
	Label   string
	Message string
}

// DateButtons returns the 5-day date row starting at ref: "Today" first,
// then the next four calendar days labeled with weekday abbreviation and
// day-of-month. The message carries the full date so the assistant does not
// have to resolve relative labels.
func DateButtons(ref time.Time) []Button {
	buttons := make([]Button, 0, 5)
	for i := 0; i < 5; i++ {
		day := ref.AddDate(0, 0, i)
		label := fmt.Sprintf("%s %d", day.Format("Mon"), day.Day())
		if i == 0 {
			label = "Today"
		}
		buttons = append(buttons, Button{
			Label:   label,
			Message: day.Format("Monday, January 2"),
		})
	}
	return buttons
}

// Fixed evening slots. Static by design: the set is not derived from locale
// or restaurant hours.
var timeSlots = []string{
	"17:00", "17:30", "18:00", "18:30",
	"19:00", "19:30", "20:00", "20:30",
	"21:00", "21:30",
}

// TimeButtons returns the static time-of-day row.
func TimeButtons() []Button {
	buttons := make([]Button, 0, len(timeSlots))
	for _, slot := range timeSlots {
		buttons = append(buttons, Button{Label: slot, Message: slot})
	}
	return buttons
}

// GuestButtons returns the guest-count row: 1 through 8, plus an overflow
// option that keeps the exchange in free text.
func GuestButtons() []Button {
	buttons := make([]Button, 0, 9)
	for n := 1; n <= 8; n++ {
		label := fmt.Sprintf("%d", n)
		buttons = append(buttons, Button{Label: label, Message: label})
	}
	buttons = append(buttons, Button{Label: "More than 8", Message: "More than 8 guests"})
	return buttons
}

// ConfirmButtons returns the confirm/change pair for a reservation summary.
func ConfirmButtons() []Button {
	return []Button{
		{Label: "Confirm", Message: "Confirmed"},
		{Label: "Change details", Message: "I'd like to change something"},
	}
}

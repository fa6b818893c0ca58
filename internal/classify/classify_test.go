package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Affordance
	}{
		{"date prompt", "When would you like to visit us?", Date},
		{"date prompt alt", "Which day works best for you?", Date},
		{"date prompt explicit", "What date should I book?", Date},
		{"time prompt", "Great! What time would you like to arrive?", Time},
		{"time prompt alt", "And at what hour should we expect you?", Time},
		{"guests prompt", "How many guests would you like?", Guests},
		{"guests prompt alt", "What will the party size be?", Guests},
		{"guests prompt explicit", "Please tell me the number of guests.", Guests},
		{"confirm prompt", "Is everything correct? Say 'confirmed' to proceed.", Confirm},
		{"confirm short", "Is that correct?", Confirm},
		{"small talk", "We are located right by the harbour.", None},
		{"empty", "", None},
		{"case insensitive", "WHAT TIME SUITS YOU?", Time},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

// TestClassify_SummaryOutranksTime covers the nastiest regression: a
// reservation summary almost always mentions the chosen time, and must still
// surface the confirm button, never the time picker.
func TestClassify_SummaryOutranksTime(t *testing.T) {
	text := "Here is your reservation summary:\nDate: Friday\nTime: 19:00\nGuests: 4\nIs everything correct?"
	require.Equal(t, Confirm, Classify(text))

	// Even without an explicit confirm question, "reservation summary" alone
	// selects Confirm before the time rule can see the word "time".
	require.Equal(t, Confirm, Classify("Your reservation summary: time 19:00"))
}

// TestClassify_SummaryVeto verifies that the summary veto suppresses the
// date/time/guest rules when no confirm phrase is present.
func TestClassify_SummaryVeto(t *testing.T) {
	// "what date" would fire the date rule, but "summary" vetoes it.
	require.Equal(t, None, Classify("The summary shows what date you picked."))
	require.Equal(t, None, Classify("That summary lists what time you chose."))
	require.Equal(t, None, Classify("The summary includes how many seats."))

	// With a confirm phrase present the confirm rule still wins outright.
	require.Equal(t, Confirm, Classify("The summary shows what date you picked. Is this correct?"))
}

// TestClassify_TimeLineVetoesDate: a line like "Time: 19:00" in the reply
// must not let a stray date phrase re-open the date picker.
func TestClassify_TimeLineVetoesDate(t *testing.T) {
	require.Equal(t, None, Classify("Time: 19:00 is noted. Which day again?"))
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Time outranks Date and Guests when several phrases co-occur.
	require.Equal(t, Time, Classify("Which day and what time? Also how many?"))
	// Date outranks Guests.
	require.Equal(t, Date, Classify("Which day, and how many guests?"))
}

package quickaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDateButtons pins the generated row for a fixed reference date:
// exactly 5 buttons, "Today" first, then weekday abbreviation and
// day-of-month for the following four calendar days in order.
func TestDateButtons(t *testing.T) {
	// Wednesday, 2026-08-26.
	ref := time.Date(2026, time.August, 26, 14, 0, 0, 0, time.UTC)

	buttons := DateButtons(ref)
	require.Len(t, buttons, 5)

	wantLabels := []string{"Today", "Thu 27", "Fri 28", "Sat 29", "Sun 30"}
	for i, want := range wantLabels {
		require.Equal(t, want, buttons[i].Label)
	}

	require.Equal(t, "Wednesday, August 26", buttons[0].Message)
	require.Equal(t, "Sunday, August 30", buttons[4].Message)
}

// TestDateButtons_MonthBoundary checks day-of-month labels across a month
// rollover.
func TestDateButtons_MonthBoundary(t *testing.T) {
	ref := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)

	buttons := DateButtons(ref)
	require.Len(t, buttons, 5)
	require.Equal(t, "Today", buttons[0].Label)
	require.Equal(t, "Mon 31", buttons[1].Label)
	require.Equal(t, "Tue 1", buttons[2].Label)
	require.Equal(t, "Tuesday, September 1", buttons[2].Message)
}

func TestTimeButtons(t *testing.T) {
	buttons := TimeButtons()
	require.Len(t, buttons, 10)
	require.Equal(t, "17:00", buttons[0].Label)
	require.Equal(t, "21:30", buttons[9].Label)
	for _, b := range buttons {
		require.Equal(t, b.Label, b.Message)
	}
}

func TestGuestButtons(t *testing.T) {
	buttons := GuestButtons()
	require.Len(t, buttons, 9)
	require.Equal(t, "1", buttons[0].Label)
	require.Equal(t, "8", buttons[7].Label)
	require.Equal(t, "More than 8", buttons[8].Label)
	require.Equal(t, "More than 8 guests", buttons[8].Message)
}

func TestConfirmButtons(t *testing.T) {
	buttons := ConfirmButtons()
	require.Len(t, buttons, 2)
	require.Equal(t, "Confirmed", buttons[0].Message)
}

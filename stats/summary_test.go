package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/lumimail/gmail"
)

func mail(from, name string, date time.Time, labels ...string) gmail.Email {
	return gmail.Email{
		FromEmail: from,
		FromName:  name,
		Date:      date,
		LabelIDs:  labels,
		Flags:     gmail.FlagsFromLabels(labels),
	}
}

func TestSummarize(t *testing.T) {
	// 2026-02-03 and 2026-03-03 are both Tuesdays.
	tue := time.Date(2026, 2, 3, 14, 30, 0, 0, time.UTC)
	emails := []gmail.Email{
		mail("a@Example.com", "Alice", tue, gmail.LabelUnread, gmail.LabelStarred),
		mail("b@example.com", "Bob", tue.Add(time.Hour), gmail.LabelHasAttachment),
		mail("c@other.org", "Alice", tue.AddDate(0, 1, 0), gmail.LabelTracked, gmail.LabelArchive),
		mail("broken", "", time.Time{}),
	}

	s := Summarize(emails, time.UTC)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Unread)
	assert.Equal(t, 1, s.Starred)
	assert.Equal(t, 1, s.Archived)
	assert.Equal(t, 1, s.WithAttachments)
	assert.Equal(t, 1, s.Tracked)
	assert.InDelta(t, 25.0, s.Percent(s.Unread), 0.001)

	assert.Equal(t, []Count{{"example.com", 2}, {"other.org", 1}}, s.TopDomains)
	assert.Equal(t, []Count{{"Alice", 2}, {"Bob", 1}}, s.TopSenders)

	require.Len(t, s.ByHour, 24)
	assert.Equal(t, Count{"14:00", 2}, s.ByHour[14])
	assert.Equal(t, Count{"15:00", 1}, s.ByHour[15])

	require.Len(t, s.ByWeekday, 7)
	assert.Equal(t, "Sun", s.ByWeekday[0].Name)
	assert.Equal(t, 3, s.ByWeekday[time.Tuesday].Value)

	require.Len(t, s.ByMonth, 12)
	assert.Equal(t, Count{"Feb", 2}, s.ByMonth[1])
	assert.Equal(t, Count{"Mar", 1}, s.ByMonth[2])
}

func TestSummarizeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	s := Summarize([]gmail.Email{mail("x@y.z", "X", time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC))}, loc)
	assert.Equal(t, 1, s.ByHour[1].Value)
	assert.Equal(t, 1, s.ByWeekday[time.Friday].Value)
}

func TestTopIsCappedAndStable(t *testing.T) {
	counts := make(map[string]int)
	for i := 0; i < 15; i++ {
		counts[fmt.Sprintf("d%02d", i)] = 1
	}
	counts["big"] = 5

	got := top(counts, 10)
	require.Len(t, got, 10)
	assert.Equal(t, Count{"big", 5}, got[0])
	assert.Equal(t, "d00", got[1].Name)
	assert.Equal(t, "d08", got[9].Name)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Percent(0))
	assert.Empty(t, s.TopDomains)
}

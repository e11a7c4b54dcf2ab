package workreport

import (
	"errors"
	"testing"

	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/namkunwoo/workreport-front/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar_LoadMarkersReplacesWholesale(t *testing.T) {
	fake := testutil.NewFakeReports(
		testutil.NewTestReport("2024-05-01"),
		testutil.NewTestReport("2024-05-03"),
		testutil.NewTestReport("2024-05-03"),
	)
	b := NewBoard(fake, WithToday(testutil.MustDate("2024-05-15")))
	b.Calendar.MarkDate(testutil.MustDate("2024-05-20"))

	drain(t, b, b.Init())

	assert.True(t, b.Calendar.Loaded())
	assert.True(t, b.Calendar.HasReports(testutil.MustDate("2024-05-01")))
	assert.True(t, b.Calendar.HasReports(testutil.MustDate("2024-05-03")))
	assert.False(t, b.Calendar.HasReports(testutil.MustDate("2024-05-20")), "markers not in the response are dropped")
	assert.Equal(t, 2, b.Calendar.Count())
}

func TestCalendar_LoadFailureKeepsPreviousSet(t *testing.T) {
	fake := testutil.NewFakeReports(testutil.NewTestReport("2024-05-01"))
	b := NewBoard(fake)
	drain(t, b, b.Calendar.LoadMarkers())
	require.True(t, b.Calendar.HasReports(testutil.MustDate("2024-05-01")))

	fake.SetErr("DatesWithReports", errors.New("boom"))
	out := drain(t, b, b.Calendar.LoadMarkers())

	assert.Empty(t, out, "plain failures do not end the session")
	assert.True(t, b.Calendar.HasReports(testutil.MustDate("2024-05-01")))
	assert.Nil(t, b.Err(), "read failures are not surfaced")
}

func TestCalendar_OlderResponseNeverOverwritesNewer(t *testing.T) {
	fake := testutil.NewFakeReports(testutil.NewTestReport("2024-05-01"))
	b := NewBoard(fake)

	first := b.Calendar.LoadMarkers()
	firstMsg := first()

	fake.Put(testutil.NewTestReport("2024-05-09"))
	second := b.Calendar.LoadMarkers()
	b.Update(second())
	b.Update(firstMsg)

	assert.True(t, b.Calendar.HasReports(testutil.MustDate("2024-05-09")))
}

func TestCalendar_MarkDate(t *testing.T) {
	b := NewBoard(testutil.NewFakeReports())
	d := testutil.MustDate("2024-05-01")
	assert.False(t, b.Calendar.HasReports(d))
	b.Calendar.MarkDate(d)
	assert.True(t, b.Calendar.HasReports(d))
	b.Calendar.MarkDate(d)
	assert.Equal(t, 1, b.Calendar.Count())
}

func TestCalendar_MarkersIn(t *testing.T) {
	b := NewBoard(testutil.NewFakeReports())
	b.Calendar.MarkDate(testutil.MustDate("2024-02-29"))

	days := b.Calendar.MarkersIn(testutil.MustDate("2024-02-10"))
	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-01", domain.FormatDate(days[0].Date))
	assert.True(t, days[28].HasReports)
	assert.False(t, days[0].HasReports)
}

func TestCalendar_MonthNavigation(t *testing.T) {
	b := NewBoard(testutil.NewFakeReports(), WithToday(testutil.MustDate("2024-01-31")))
	assert.Equal(t, "2024-01-01", domain.FormatDate(b.Calendar.Month()))

	b.Calendar.PrevMonth()
	assert.Equal(t, "2023-12-01", domain.FormatDate(b.Calendar.Month()))

	b.Calendar.NextMonth()
	b.Calendar.NextMonth()
	assert.Equal(t, "2024-02-01", domain.FormatDate(b.Calendar.Month()))
	assert.Len(t, b.Calendar.Visible(), 29)
}

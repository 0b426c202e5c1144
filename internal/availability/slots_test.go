package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func strPtr(v string) *string { return &v }

func daySchedule(start, end string, pause ...string) *models.DaySchedule {
	s := &models.DaySchedule{Active: true, StartTime: start, EndTime: end}
	if len(pause) == 2 {
		s.PauseStart = strPtr(pause[0])
		s.PauseEnd = strPtr(pause[1])
	}
	return s
}

func clocks(slots []time.Time) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Format("15:04")
	}
	return out
}

var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestComputeSlotsSkipsLunchPause(t *testing.T) {
	slots, err := ComputeSlots(monday, daySchedule("09:00", "18:00", "12:00", "13:00"), 60)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}, clocks(slots))
	assert.NotContains(t, clocks(slots), "12:00")
}

func TestComputeSlotsShortSaturday(t *testing.T) {
	saturday := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, saturday.Weekday())

	slots, err := ComputeSlots(saturday, daySchedule("09:00", "14:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00"}, clocks(slots))
}

func TestComputeSlotsEmptyCases(t *testing.T) {
	inactive := daySchedule("09:00", "18:00")
	inactive.Active = false

	cases := map[string]struct {
		schedule *models.DaySchedule
		duration int
	}{
		"nil schedule":         {nil, 30},
		"inactive day":         {inactive, 30},
		"zero length window":   {daySchedule("10:00", "10:00"), 30},
		"negative window":      {daySchedule("18:00", "09:00"), 30},
		"pause covers day":     {daySchedule("09:00", "18:00", "09:00", "18:00"), 30},
		"non positive slot":    {daySchedule("09:00", "18:00"), 0},
		"slot longer than day": {daySchedule("09:00", "10:00"), 90},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			slots, err := ComputeSlots(monday, tc.schedule, tc.duration)
			require.NoError(t, err)
			assert.Empty(t, slots)
		})
	}
}

func TestComputeSlotsDropsTruncatedTrailingSlot(t *testing.T) {
	slots, err := ComputeSlots(monday, daySchedule("09:00", "11:30"), 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, clocks(slots))
}

func TestComputeSlotsExcludesSlotSpanningIntoPause(t *testing.T) {
	slots, err := ComputeSlots(monday, daySchedule("09:00", "14:00", "11:30", "12:30"), 60)
	require.NoError(t, err)

	// 11:00 would run into the pause and 12:00 starts inside it.
	assert.Equal(t, []string{"09:00", "10:00", "13:00"}, clocks(slots))
}

func TestComputeSlotsSlotEndingAtPauseStartIsKept(t *testing.T) {
	slots, err := ComputeSlots(monday, daySchedule("09:00", "13:00", "10:00", "10:30"), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30", "12:00", "12:30"}, clocks(slots))
}

func TestComputeSlotsCountAndSpacingWithoutPause(t *testing.T) {
	windows := []struct {
		start, end string
	}{
		{"08:00", "18:00"},
		{"09:15", "17:45"},
		{"00:00", "24:00"},
		{"10:00", "10:59"},
	}
	for _, w := range windows {
		for _, d := range []int{10, 15, 20, 30, 45, 60, 90} {
			slots, err := ComputeSlots(monday, daySchedule(w.start, w.end), d)
			require.NoError(t, err)

			start, _ := ParseClock(w.start)
			end, _ := ParseClock(w.end)
			require.Len(t, slots, (end-start)/d, "%s-%s every %d", w.start, w.end, d)
			if len(slots) == 0 {
				continue
			}
			assert.Equal(t, start, slots[0].Hour()*60+slots[0].Minute())
			for i := 1; i < len(slots); i++ {
				assert.Equal(t, time.Duration(d)*time.Minute, slots[i].Sub(slots[i-1]))
			}
		}
	}
}

func TestComputeSlotsNeverOverlapPause(t *testing.T) {
	pauses := [][2]string{{"12:00", "13:00"}, {"11:10", "11:50"}, {"09:00", "09:05"}, {"17:30", "18:00"}}
	for _, p := range pauses {
		for _, d := range []int{5, 15, 25, 40, 60} {
			schedule := daySchedule("09:00", "18:00", p[0], p[1])
			slots, err := ComputeSlots(monday, schedule, d)
			require.NoError(t, err)

			ps, _ := ParseClock(p[0])
			pe, _ := ParseClock(p[1])
			for _, s := range slots {
				t0 := s.Hour()*60 + s.Minute()
				assert.False(t, t0 < pe && t0+d > ps, "slot %s (%d min) overlaps pause %v", s.Format("15:04"), d, p)
			}
		}
	}
}

func TestComputeSlotsIsIdempotent(t *testing.T) {
	schedule := daySchedule("09:00", "18:00", "12:00", "13:00")
	first, err := ComputeSlots(monday, schedule, 45)
	require.NoError(t, err)
	second, err := ComputeSlots(monday, schedule, 45)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSlotsIgnoresClockOfDate(t *testing.T) {
	late := monday.Add(17*time.Hour + 42*time.Minute)
	a, err := ComputeSlots(monday, daySchedule("09:00", "12:00"), 60)
	require.NoError(t, err)
	b, err := ComputeSlots(late, daySchedule("09:00", "12:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeSlotsKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	springForward := time.Date(2025, time.March, 9, 0, 0, 0, 0, loc)

	slots, err := ComputeSlots(springForward, daySchedule("09:00", "12:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, clocks(slots))
	assert.Equal(t, loc, slots[0].Location())
}

func TestComputeSlotsSkipsSpringForwardGap(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	springForward := time.Date(2025, time.March, 9, 0, 0, 0, 0, loc)

	slots, err := ComputeSlots(springForward, daySchedule("01:00", "04:00"), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"01:00", "01:30", "03:00", "03:30"}, clocks(slots))
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].After(slots[i-1]), "slot %d not after slot %d", i, i-1)
	}
	assert.Equal(t, 30*time.Minute, slots[1].Sub(slots[0]))
	assert.Equal(t, 30*time.Minute, slots[2].Sub(slots[1]))
}

func TestComputeSlotsRejectsMalformedClock(t *testing.T) {
	_, err := ComputeSlots(monday, daySchedule("9am", "18:00"), 60)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestParseClock(t *testing.T) {
	valid := map[string]int{"00:00": 0, "09:30": 570, "23:59": 1439, "24:00": 1440}
	for in, want := range valid {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "9:00", "09:60", "24:01", "25:00", "ab:cd", "09-00", "09:00:00"} {
		_, err := ParseClock(in)
		assert.ErrorIs(t, err, ErrInvalidClock, in)
	}
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, Window{Start: 540, End: 1080}.Validate())
	assert.NoError(t, Window{Start: 540, End: 1080, PauseStart: 540, PauseEnd: 1080, HasPause: true}.Validate())
	assert.Error(t, Window{Start: 600, End: 600}.Validate())
	assert.Error(t, Window{Start: 540, End: 1080, PauseStart: 720, PauseEnd: 720, HasPause: true}.Validate())
	assert.Error(t, Window{Start: 540, End: 1080, PauseStart: 500, PauseEnd: 600, HasPause: true}.Validate())
	assert.Error(t, Window{Start: 540, End: 1080, PauseStart: 1000, PauseEnd: 1100, HasPause: true}.Validate())
}

func at(clock string) time.Time {
	m, _ := ParseClock(clock)
	return monday.Add(time.Duration(m) * time.Minute)
}

func TestFilterAvailableBookedAndCancelled(t *testing.T) {
	candidates, err := ComputeSlots(monday, daySchedule("09:00", "18:00", "12:00", "13:00"), 60)
	require.NoError(t, err)

	existing := []models.Appointment{
		{Date: at("14:00"), Status: models.AppointmentScheduled},
		{Date: at("15:00"), Status: models.AppointmentCancelled},
	}
	now := monday.Add(-time.Hour)

	available := FilterAvailable(candidates, existing, now, 0)
	assert.NotContains(t, clocks(available), "14:00")
	assert.Contains(t, clocks(available), "15:00")
	assert.Len(t, available, len(candidates)-1)
}

func TestFilterAvailableCompletedStillOccupies(t *testing.T) {
	existing := []models.Appointment{{Date: at("10:00"), Status: models.AppointmentCompleted}}
	available := FilterAvailable([]time.Time{at("09:00"), at("10:00")}, existing, monday, 0)
	assert.Equal(t, []string{"09:00"}, clocks(available))
}

func TestFilterAvailableDropsPastAndCurrentSlots(t *testing.T) {
	candidates := []time.Time{at("09:00"), at("10:00"), at("11:00"), at("12:00")}
	now := at("10:00")

	available := FilterAvailable(candidates, nil, now, 0)
	assert.Equal(t, []string{"11:00", "12:00"}, clocks(available))
	for _, s := range available {
		assert.True(t, s.After(now))
	}
}

func TestFilterAvailableExactMatchIgnoresSubMinuteDrift(t *testing.T) {
	existing := []models.Appointment{{Date: at("10:00").Add(250 * time.Millisecond).In(time.FixedZone("BRT", -3*3600)), Status: models.AppointmentScheduled}}
	available := FilterAvailable([]time.Time{at("09:30"), at("10:00"), at("10:30")}, existing, monday, 0)
	assert.Equal(t, []string{"09:30", "10:30"}, clocks(available))
}

func TestFilterAvailableTolerance(t *testing.T) {
	candidates := []time.Time{at("10:00"), at("10:15"), at("10:30")}
	existing := []models.Appointment{{Date: at("10:10"), Status: models.AppointmentScheduled}}

	assert.Equal(t, []string{"10:00", "10:15", "10:30"}, clocks(FilterAvailable(candidates, existing, monday, 0)))
	assert.Equal(t, []string{"10:00", "10:30"}, clocks(FilterAvailable(candidates, existing, monday, 6*time.Minute)))
	assert.Equal(t, []string{"10:30"}, clocks(FilterAvailable(candidates, existing, monday, 11*time.Minute)))
}

func TestFilterAvailablePreservesOrder(t *testing.T) {
	candidates := []time.Time{at("09:00"), at("09:30"), at("10:00"), at("10:30")}
	existing := []models.Appointment{{Date: at("09:30"), Status: models.AppointmentScheduled}}
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, clocks(FilterAvailable(candidates, existing, monday, 0)))
}

func TestContainsAndNormalize(t *testing.T) {
	slots := []time.Time{at("09:00"), at("10:00")}
	assert.True(t, Contains(slots, at("10:00").Add(30*time.Second)))
	assert.False(t, Contains(slots, at("10:01")))
	assert.Equal(t, time.UTC, Normalize(at("09:00").In(time.FixedZone("X", 3600))).Location())
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	start, end := DayBounds(time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

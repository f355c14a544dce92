package slot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestThreeWindow_Partition(t *testing.T) {
	c := ThreeWindow(time.UTC)
	slots := c.SlotsForDay()

	require.Len(t, slots, 3)
	total := 0
	for _, s := range slots {
		total += s.Duration
	}
	assert.Equal(t, 24, total)
	assert.Equal(t, 8, slots[0].StartHour)
	assert.Equal(t, 12, slots[1].StartHour)
	assert.Equal(t, 18, slots[2].StartHour)
}

func TestSixWindow_Partition(t *testing.T) {
	c := SixWindow(time.UTC)
	slots := c.SlotsForDay()

	require.Len(t, slots, 6)
	assert.Equal(t, "00:00 - 04:00", slots[0].Label)
	assert.Equal(t, "20:00 - 00:00", slots[5].Label)
}

func TestSlotsForDay_ReturnsCopy(t *testing.T) {
	c := ThreeWindow(time.UTC)
	slots := c.SlotsForDay()
	slots[0].StartHour = 3

	assert.Equal(t, 8, c.SlotsForDay()[0].StartHour)
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		slots []TimeSlot
	}{
		{"empty", nil},
		{"short", []TimeSlot{{ID: 1, StartHour: 0, Duration: 12}}},
		{"gap", []TimeSlot{
			{ID: 1, StartHour: 0, Duration: 10},
			{ID: 2, StartHour: 12, Duration: 12},
		}},
		{"overlap", []TimeSlot{
			{ID: 1, StartHour: 0, Duration: 14},
			{ID: 2, StartHour: 12, Duration: 12},
		}},
		{"duplicate id", []TimeSlot{
			{ID: 1, StartHour: 0, Duration: 12},
			{ID: 1, StartHour: 12, Duration: 12},
		}},
		{"zero duration", []TimeSlot{
			{ID: 1, StartHour: 0, Duration: 24},
			{ID: 2, StartHour: 0, Duration: 0},
		}},
		{"bad start hour", []TimeSlot{{ID: 1, StartHour: 24, Duration: 24}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(time.UTC, tt.slots...)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestByID(t *testing.T) {
	c := ThreeWindow(time.UTC)

	s, err := c.ByID(2)
	require.NoError(t, err)
	assert.Equal(t, 12, s.StartHour)

	_, err = c.ByID(9)
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestSlotStartAndEnd(t *testing.T) {
	loc := berlin(t)
	c := ThreeWindow(loc)
	date := time.Date(2024, 6, 10, 15, 30, 0, 0, loc)

	morning, _ := c.ByID(1)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 0, 0, loc), c.SlotStart(date, morning))
	assert.Equal(t, time.Date(2024, 6, 10, 12, 0, 0, 0, loc), c.SlotEnd(date, morning))

	night, _ := c.ByID(3)
	assert.Equal(t, time.Date(2024, 6, 10, 18, 0, 0, 0, loc), c.SlotStart(date, night))
	assert.Equal(t, time.Date(2024, 6, 11, 8, 0, 0, 0, loc), c.SlotEnd(date, night))
	assert.Equal(t, 14*time.Hour, c.SlotEnd(date, night).Sub(c.SlotStart(date, night)))
}

func TestSlotStart_UsesCatalogLocation(t *testing.T) {
	loc := berlin(t)
	c := ThreeWindow(loc)
	// 23:30 UTC on the 9th is already the 10th in Berlin.
	date := time.Date(2024, 6, 9, 23, 30, 0, 0, time.UTC)
	morning, _ := c.ByID(1)

	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 0, 0, loc), c.SlotStart(date, morning))
}

func TestSlotEnd_DSTNightStaysAdjacent(t *testing.T) {
	loc := berlin(t)
	c := ThreeWindow(loc)
	night, _ := c.ByID(3)
	morning, _ := c.ByID(1)

	// Clocks go forward on 2024-03-31.
	date := time.Date(2024, 3, 30, 0, 0, 0, 0, loc)
	next := time.Date(2024, 3, 31, 0, 0, 0, 0, loc)

	assert.Equal(t, c.SlotStart(next, morning), c.SlotEnd(date, night))
	assert.Equal(t, 14, night.Duration)
	assert.Equal(t, 13, c.Window(date, night).Hours())

	// Clocks go back on 2024-10-27.
	autumn := time.Date(2024, 10, 26, 0, 0, 0, 0, loc)
	assert.Equal(t, 15, c.Window(autumn, night).Hours())
	assert.Equal(t, 14, c.Window(time.Date(2024, 6, 10, 0, 0, 0, 0, loc), night).Hours())
}

func TestIsPast(t *testing.T) {
	c := ThreeWindow(time.UTC)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	morning, _ := c.ByID(1)

	assert.False(t, c.IsPast(date, morning, time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)))
	assert.False(t, c.IsPast(date, morning, time.Date(2024, 6, 10, 11, 59, 59, 0, time.UTC)))
	assert.True(t, c.IsPast(date, morning, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)))
	assert.True(t, c.IsPast(date, morning, time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)))
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 6, 10, h, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"same", Interval{at(8), at(12)}, Interval{at(8), at(12)}, true},
		{"inside", Interval{at(8), at(12)}, Interval{at(9), at(10)}, true},
		{"partial", Interval{at(8), at(12)}, Interval{at(11), at(14)}, true},
		{"touching end", Interval{at(8), at(12)}, Interval{at(12), at(18)}, false},
		{"touching start", Interval{at(12), at(18)}, Interval{at(8), at(12)}, false},
		{"disjoint", Interval{at(8), at(10)}, Interval{at(14), at(18)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestResolve(t *testing.T) {
	c, err := Resolve("", time.UTC)
	require.NoError(t, err)
	assert.Len(t, c.SlotsForDay(), 3)

	c, err = Resolve("SIX", time.UTC)
	require.NoError(t, err)
	assert.Len(t, c.SlotsForDay(), 6)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"), time.UTC)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	content := `slots:
  - id: 1
    label: Tag
    start_hour: 6
    duration: 12
  - id: 2
    label: Nacht
    start_hour: 18
    duration: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadFile(path, time.UTC)
	require.NoError(t, err)

	slots := c.SlotsForDay()
	require.Len(t, slots, 2)
	assert.Equal(t, "Tag", slots[0].Label)
	assert.Equal(t, 18, slots[1].StartHour)
}

func TestLoadFile_InvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	content := `slots:
  - id: 1
    label: Tag
    start_hour: 6
    duration: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadFile(path, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

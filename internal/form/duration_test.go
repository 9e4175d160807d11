package form

import (
	"fmt"
	"testing"

	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestUnits(t *testing.T) {
	f := NewDurationField()
	secs := make([]int, 0)
	for _, u := range f.Units() {
		secs = append(secs, u.Seconds)
	}
	assert.Equal(t, []int{WeekSecs, DaySecs, HourSecs, MinuteSecs, 1}, secs)

	f.MaxDuration = intPtr(HourSecs)
	used := f.UnitsUsed()
	require.Len(t, used, 3)
	assert.Equal(t, HourSecs, used[0].Seconds)
}

func TestSecondsToUnit(t *testing.T) {
	f := NewDurationField()
	cases := []struct {
		seconds, value, unit int
	}{
		{0, 0, DaySecs},
		{1, 1, 1},
		{60, 1, MinuteSecs},
		{3600, 1, HourSecs},
		{86400, 1, DaySecs},
		{2 * WeekSecs, 2, WeekSecs},
		{90, 90, 1},
	}
	for _, tc := range cases {
		v, u := f.SecondsToUnit(tc.seconds)
		assert.Equal(t, tc.value, v, "seconds %d", tc.seconds)
		assert.Equal(t, tc.unit, u, "seconds %d", tc.seconds)
	}

	f.DefaultUnit = MinuteSecs
	_, u := f.SecondsToUnit(0)
	assert.Equal(t, MinuteSecs, u)
}

func TestExportValue(t *testing.T) {
	f := NewDurationField()

	s, ok, err := f.ExportValue(DurationValue{Value: "10", TimeUnit: 1})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, s)

	s, _, err = f.ExportValue(DurationValue{Value: "3", TimeUnit: MinuteSecs})
	require.NoError(t, err)
	assert.Equal(t, 180, s)

	s, _, err = f.ExportValue(DurationValue{Value: "1.5", TimeUnit: MinuteSecs})
	require.NoError(t, err)
	assert.Equal(t, 90, s)

	s, ok, err = f.ExportValue(DurationValue{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s)

	_, _, err = f.ExportValue(DurationValue{Value: "abc", TimeUnit: 1})
	assert.Error(t, err)

	_, _, err = f.ExportValue(DurationValue{Value: "1e20", TimeUnit: WeekSecs})
	assert.ErrorIs(t, err, ErrDurationTooLarge)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, _, err = f.ExportValue(DurationValue{Value: "-1e20", TimeUnit: 1})
	assert.ErrorIs(t, err, ErrDurationTooLarge)

	s, _, err = f.ExportValue(DurationValue{Value: "2147483647", TimeUnit: 1})
	require.NoError(t, err)
	assert.Equal(t, MaxSeconds, s)
}

func TestValidateSubmitTooLarge(t *testing.T) {
	f := NewDurationField()
	assert.Equal(t, "The duration is too large.", f.ValidateSubmit(DurationValue{Value: "1e20", TimeUnit: WeekSecs}))
}

func TestValidateSubmit(t *testing.T) {
	f := NewDurationField()
	assert.Empty(t, f.ValidateSubmit(DurationValue{Value: "100", TimeUnit: 1}))
	assert.Empty(t, f.ValidateSubmit(DurationValue{Value: "0", TimeUnit: 1}))
	assert.Empty(t, f.ValidateSubmit(DurationValue{}))
	assert.NotEmpty(t, f.ValidateSubmit(DurationValue{Value: "-10", TimeUnit: 1}))
	assert.Equal(t, "Invalid time unit", f.ValidateSubmit(DurationValue{Value: "1", TimeUnit: 7}))
}

func TestValidateSubmitBounds(t *testing.T) {
	f := NewDurationField()
	f.MinDuration = 60
	assert.Equal(t, "Must be at least 1 minutes", f.ValidateSubmit(DurationValue{Value: "30", TimeUnit: 1}))
	assert.Empty(t, f.ValidateSubmit(DurationValue{Value: "120", TimeUnit: 1}))

	f = NewDurationField()
	f.MaxDuration = intPtr(3600)
	assert.Equal(t, "Must be no more than 1 hours", f.ValidateSubmit(DurationValue{Value: "7200", TimeUnit: 1}))
	assert.Empty(t, f.ValidateSubmit(DurationValue{Value: "1800", TimeUnit: 1}))
}

func TestValidateSubmitCustom(t *testing.T) {
	f := NewDurationField()
	f.Validate = func(seconds int) string {
		if seconds == 42 {
			return fmt.Sprintf("Custom error for %d", seconds)
		}
		return ""
	}
	assert.Empty(t, f.ValidateSubmit(DurationValue{Value: "100", TimeUnit: 1}))
	assert.Equal(t, "Custom error for 42", f.ValidateSubmit(DurationValue{Value: "42", TimeUnit: 1}))
}

func TestDurationText(t *testing.T) {
	f := NewDurationField()
	assert.Equal(t, "None", f.DurationText(0, nil))
	custom := "custom empty"
	assert.Equal(t, "custom empty", f.DurationText(0, &custom))
	assert.Equal(t, "1 minutes", f.DurationText(60, nil))
	assert.Equal(t, "1 hours", f.DurationText(3600, nil))
	assert.Equal(t, "2 weeks", f.DurationText(2*WeekSecs, nil))
	assert.Equal(t, "61 seconds", f.DurationText(61, nil))
}

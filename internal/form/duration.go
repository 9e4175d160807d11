package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"lms_backend/internal/util"
	"math"
)

const (
	MinuteSecs = 60
	HourSecs   = 60 * MinuteSecs
	DaySecs    = 24 * HourSecs
	WeekSecs   = 7 * DaySecs
)

type Unit struct {
	Seconds int    `json:"seconds"`
	Name    string `json:"name"`
}

var units = []Unit{
	{WeekSecs, "weeks"},
	{DaySecs, "days"},
	{HourSecs, "hours"},
	{MinuteSecs, "minutes"},
	{1, "seconds"},
}

// MaxSeconds 时长以 32 位整数秒保存
const MaxSeconds = math.MaxInt32

var ErrDurationTooLarge = fmt.Errorf("%w: duration is too large", util.ErrValidation)

// DurationValue 表单提交的数值 + 单位，Value 为空表示未提交
type DurationValue struct {
	Value    json.Number `json:"value"`
	TimeUnit int         `json:"timeunit"`
}

// DurationField 以“数值 + 时间单位”编辑的时长字段
type DurationField struct {
	DefaultUnit int
	MinDuration int
	// MaxDuration 为 nil 表示不限
	MaxDuration *int
	// Validate 自定义校验，返回非空字符串即为错误
	Validate func(seconds int) string
}

func NewDurationField() *DurationField {
	return &DurationField{DefaultUnit: DaySecs}
}

// Units 从大到小
func (f *DurationField) Units() []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// UnitsUsed 设置了上限时去掉比上限更大的单位
func (f *DurationField) UnitsUsed() []Unit {
	if f.MaxDuration == nil || *f.MaxDuration == 0 {
		return f.Units()
	}
	var out []Unit
	for _, u := range units {
		if u.Seconds <= *f.MaxDuration {
			out = append(out, u)
		}
	}
	return out
}

func (f *DurationField) IsKnownUnit(seconds int) bool {
	for _, u := range units {
		if u.Seconds == seconds {
			return true
		}
	}
	return false
}

func parseSeconds(seconds int) (int, int) {
	for _, u := range units {
		if seconds%u.Seconds == 0 {
			return seconds / u.Seconds, u.Seconds
		}
	}
	return seconds, 1
}

// SecondsToUnit 用能整除的最大单位表示，0 时返回默认单位
func (f *DurationField) SecondsToUnit(seconds int) (int, int) {
	if seconds == 0 {
		unit := f.DefaultUnit
		if unit == 0 {
			unit = DaySecs
		}
		return 0, unit
	}
	return parseSeconds(seconds)
}

// ExportValue 换算成秒并四舍五入，ok 为 false 表示未提交
func (f *DurationField) ExportValue(v DurationValue) (seconds int, ok bool, err error) {
	if v.Value == "" {
		return 0, false, nil
	}
	number, err := v.Value.Float64()
	if err != nil {
		return 0, false, fmt.Errorf("%w: duration %q is not a number", util.ErrValidation, v.Value)
	}
	s := math.Round(number * float64(v.TimeUnit))
	if math.IsNaN(s) || math.Abs(s) > MaxSeconds {
		return 0, false, ErrDurationTooLarge
	}
	return int(s), true, nil
}

// ValidateSubmit 返回空字符串表示通过；依次检查下限、上限、负数、自定义校验
func (f *DurationField) ValidateSubmit(v DurationValue) string {
	if v.Value != "" && !f.IsKnownUnit(v.TimeUnit) {
		return "Invalid time unit"
	}
	seconds, ok, err := f.ExportValue(v)
	if errors.Is(err, ErrDurationTooLarge) {
		return "The duration is too large."
	}
	if err != nil {
		return "You must enter a number here."
	}
	if !ok {
		return ""
	}

	if seconds < f.MinDuration {
		zero := numText(0, 1)
		return "Must be at least " + f.DurationText(f.MinDuration, &zero)
	}
	if f.MaxDuration != nil && *f.MaxDuration != 0 && seconds > *f.MaxDuration {
		return "Must be no more than " + f.DurationText(*f.MaxDuration, nil)
	}
	if seconds < 0 {
		return "The duration cannot be negative."
	}
	if f.Validate != nil {
		if msg := f.Validate(seconds); msg != "" {
			return msg
		}
	}
	return ""
}

// DurationText 0 时返回 empty（为 nil 则 "None"）
func (f *DurationField) DurationText(seconds int, empty *string) string {
	if seconds == 0 {
		if empty != nil {
			return *empty
		}
		return "None"
	}
	return numText(parseSeconds(seconds))
}

func numText(value, unit int) string {
	switch unit {
	case WeekSecs:
		return fmt.Sprintf("%d weeks", value)
	case DaySecs:
		return fmt.Sprintf("%d days", value)
	case HourSecs:
		return fmt.Sprintf("%d hours", value)
	case MinuteSecs:
		return fmt.Sprintf("%d minutes", value)
	default:
		return fmt.Sprintf("%d seconds", value*unit)
	}
}

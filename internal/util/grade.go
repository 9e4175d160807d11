package util

import "github.com/shopspring/decimal"

// FormatGrade 按给定小数位输出定点字符串，四舍五入远离零
func FormatGrade(v decimal.Decimal, places int) string {
	if places < 0 {
		places = 0
	}
	return v.Round(int32(places)).StringFixed(int32(places))
}

// RoundGrade 与 FormatGrade 同样的舍入规则
func RoundGrade(v decimal.Decimal, places int) decimal.Decimal {
	if places < 0 {
		places = 0
	}
	return v.Round(int32(places))
}

package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIDList 解析 "1,2,3" 形式的 id 列表，空项忽略
func ParseIDList(s string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: invalid id %q", ErrValidation, part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids given", ErrValidation)
	}
	return ids, nil
}

package util

import (
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseBoolFlag 兼容 "1" / "true" 两种写法
func ParseBoolFlag(s string) bool {
	if s == "1" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

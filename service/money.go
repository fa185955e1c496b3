package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxMoney 单笔金额上限
const MaxMoney = 10_000_000

// ParseMoney 校验并解析金额字段：必填、数字、有限、非负、不超过上限，保留两位小数
// label 用于拼用户可见的错误提示，如 "金额"、"目标金额"
func ParseMoney(value, label string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, fmt.Errorf("%s不能为空", label)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s必须是数字", label)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s必须是有限数值", label)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s不能为负数", label)
	}
	if v > MaxMoney {
		return 0, fmt.Errorf("%s过大（上限 %d）", label, MaxMoney)
	}
	return Round2(v), nil
}

// Round2 四舍五入保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

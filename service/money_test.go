package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	// 正常金额，保留两位小数
	v, err := ParseMoney("42.50", "金额")
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)

	v, err = ParseMoney("19.999", "金额")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	// 边界：恰好等于上限
	v, err = ParseMoney("10000000", "金额")
	require.NoError(t, err)
	assert.Equal(t, float64(10_000_000), v)

	// 零金额合法
	v, err = ParseMoney("0", "金额")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestParseMoneyRejects(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"空值", "", "不能为空"},
		{"空白", "   ", "不能为空"},
		{"非数字", "abc", "必须是数字"},
		{"负数", "-5", "不能为负数"},
		{"超过上限", "10000001", "过大"},
		{"NaN", "NaN", "有限数值"},
		{"Inf", "Inf", "有限数值"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMoney(tc.value, "金额")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), "金额")
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 57.5, Round2(100-42.5))
	assert.Equal(t, -25.0, Round2(50-75))
	assert.Equal(t, 0.13, Round2(0.125))
}

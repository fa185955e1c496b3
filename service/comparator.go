package service

import "moneybook/models"

// 预算对比状态
const (
	// StatusUnderBudget 剩余预算 >= 0
	StatusUnderBudget = "under_budget"
	// StatusOverBudget 剩余预算 < 0
	StatusOverBudget = "over_budget"
)

// ComparisonRow 预算目标与当月实际支出的对比行
type ComparisonRow struct {
	GoalID       uint    `json:"goal_id"`
	Month        string  `json:"month"`
	Category     string  `json:"category"`
	GoalAmount   float64 `json:"goal_amount"`
	ActualAmount float64 `json:"actual_amount"`
	Remaining    float64 `json:"remaining"`
	Status       string  `json:"status"`
}

// BuildComparison 以预算目标为左锚，逐条关联（月份, 类别）上的实际支出
// 没有对应流水的目标按实际支出 0 处理；有流水但没有目标的类别不产生对比行。
// 纯计算，不做任何 I/O，输出顺序与传入的目标顺序一致
func BuildComparison(goals []models.Goal, actuals map[MonthCategory]float64) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(goals))
	for _, g := range goals {
		actual := actuals[MonthCategory{Month: g.Month, Category: g.Category}]
		remaining := Round2(g.Amount - actual)
		status := StatusUnderBudget
		if remaining < 0 {
			status = StatusOverBudget
		}
		rows = append(rows, ComparisonRow{
			GoalID:       g.ID,
			Month:        g.Month,
			Category:     g.Category,
			GoalAmount:   Round2(g.Amount),
			ActualAmount: Round2(actual),
			Remaining:    remaining,
			Status:       status,
		})
	}
	return rows
}

package service

import (
	"log"
	"sort"
	"time"

	"moneybook/models"
)

// MonthCategory 月度汇总的分组键
type MonthCategory struct {
	Month    string // YYYY-MM
	Category string
}

// CategoryTotal 单个类别的消费合计
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// transactionMonth 从流水日期中取出 YYYY-MM 月份键
// 日期必须是合法的 YYYY-MM-DD，否则返回 false
func transactionMonth(date string) (string, bool) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date[:7], true
}

// MonthlyActuals 按（月份, 类别）汇总流水金额
// 日期无法解析的流水记录会被跳过（记日志，不中断）；空输入返回空映射，
// 下游按"各处实际支出为 0"处理
func MonthlyActuals(txs []models.Transaction) map[MonthCategory]float64 {
	actuals := make(map[MonthCategory]float64, len(txs))
	for _, tx := range txs {
		month, ok := transactionMonth(tx.Date)
		if !ok {
			log.Printf("月度汇总跳过无法解析的日期: id=%d date=%q", tx.ID, tx.Date)
			continue
		}
		actuals[MonthCategory{Month: month, Category: tx.Category}] += tx.Amount
	}
	return actuals
}

// MonthlyTotals 按月份汇总流水金额，日期无法解析的记录同样跳过
func MonthlyTotals(txs []models.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		month, ok := transactionMonth(tx.Date)
		if !ok {
			continue
		}
		totals[month] += tx.Amount
	}
	return totals
}

// CategoryTotals 按类别汇总全部流水（不限月份），金额降序排列，
// 金额相同按类别名升序保证顺序稳定。供图表与洞察生成使用
func CategoryTotals(txs []models.Transaction) []CategoryTotal {
	sums := make(map[string]*CategoryTotal)
	for _, tx := range txs {
		ct, ok := sums[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			sums[tx.Category] = ct
		}
		ct.Total += tx.Amount
		ct.Count++
	}

	list := make([]CategoryTotal, 0, len(sums))
	for _, ct := range sums {
		list = append(list, *ct)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Total != list[j].Total {
			return list[i].Total > list[j].Total
		}
		return list[i].Category < list[j].Category
	})
	return list
}

// GrandTotal 全部流水金额合计
func GrandTotal(txs []models.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total
}

// LatestMonth 返回流水中最新的月份（YYYY-MM 字典序最大值）
// 没有任何可解析日期时返回空字符串，调用方应跳过缓存
func LatestMonth(txs []models.Transaction) string {
	latest := ""
	for _, tx := range txs {
		month, ok := transactionMonth(tx.Date)
		if !ok {
			continue
		}
		if month > latest {
			latest = month
		}
	}
	return latest
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"moneybook/models"

	"gorm.io/gorm"
)

// 洞察缓存有效期：同一用户同一月份 24 小时内不重复请求生成服务
const insightCacheTTL = 24 * time.Hour

// 提示词中最多列出的类别行数
const maxPromptCategories = 12

// 用户可见的提示信息
const (
	NoticeQuota       = "AI 服务配额已用完，以下为系统自动总结"
	NoticeUnavailable = "AI 服务暂不可用，以下为系统自动总结"
)

// noDataMessage 没有任何消费数据时的固定文案
const noDataMessage = "暂无消费数据，先记几笔账再来看消费洞察吧。"

// InsightCache 洞察缓存的持久化抽象
type InsightCache interface {
	// Latest 返回该用户该月份最新的一条缓存，没有时返回 (nil, nil)
	Latest(userID uint, month string) (*models.SpendingInsight, error)
	// Save 追加一条缓存记录
	Save(insight *models.SpendingInsight) error
}

// GormInsightCache 基于 gorm 的洞察缓存实现
type GormInsightCache struct {
	db *gorm.DB
}

// NewGormInsightCache 创建 gorm 洞察缓存
func NewGormInsightCache(db *gorm.DB) *GormInsightCache {
	return &GormInsightCache{db: db}
}

// Latest 查询该用户该月份最近一条缓存
func (c *GormInsightCache) Latest(userID uint, month string) (*models.SpendingInsight, error) {
	var insight models.SpendingInsight
	err := c.db.Where("user_id = ? AND month = ?", userID, month).
		Order("created_at DESC, id DESC").
		First(&insight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// Save 追加缓存记录，可能与并发请求各写一条，只取最新即可
func (c *GormInsightCache) Save(insight *models.SpendingInsight) error {
	return c.db.Create(insight).Error
}

// InsightResult 一次洞察请求的结果
type InsightResult struct {
	Content string `json:"content"`
	Month   string `json:"month,omitempty"`
	Source  string `json:"source"`
	Cached  bool   `json:"cached"`
	Notice  string `json:"notice,omitempty"`
}

// InsightService 消费洞察服务：先查缓存，再调用文本生成服务，失败时回退到内置规则
type InsightService struct {
	cache  InsightCache
	client TextClient // nil 表示服务未配置
	ttl    time.Duration
	now    func() time.Time
}

// NewInsightService 创建洞察服务，client 传 nil 表示文本生成服务不可用
func NewInsightService(cache InsightCache, client TextClient) *InsightService {
	return &InsightService{
		cache:  cache,
		client: client,
		ttl:    insightCacheTTL,
		now:    time.Now,
	}
}

// Get 获取用户的消费洞察
// txs 为该用户的全部流水；refresh 为 true 时跳过缓存强制重新生成。
// "当前月份"取流水中最新的月份；无法确定月份时不读不写缓存
func (s *InsightService) Get(ctx context.Context, userID uint, txs []models.Transaction, refresh bool) (*InsightResult, error) {
	// 没有数据（或合计为 0）直接返回固定文案，不用打扰生成服务
	if len(txs) == 0 || GrandTotal(txs) == 0 {
		return &InsightResult{
			Content: noDataMessage,
			Source:  models.InsightSourceFallback,
		}, nil
	}

	month := LatestMonth(txs)

	if month != "" && !refresh {
		cached, err := s.cache.Latest(userID, month)
		if err != nil {
			return nil, err
		}
		if cached != nil && cached.Fresh(s.now(), s.ttl) {
			return &InsightResult{
				Content: cached.Content,
				Month:   month,
				Source:  cached.Source,
				Cached:  true,
			}, nil
		}
	}

	result := s.generate(ctx, txs)
	result.Month = month

	// 缓存写失败不影响本次响应
	if month != "" {
		insight := &models.SpendingInsight{
			UserID:  userID,
			Month:   month,
			Content: result.Content,
			Source:  result.Source,
		}
		if err := s.cache.Save(insight); err != nil {
			log.Printf("写入洞察缓存失败（忽略）: user=%d month=%s err=%v", userID, month, err)
		}
	}

	return result, nil
}

// generate 调用文本生成服务，失败时回退到内置规则文案
func (s *InsightService) generate(ctx context.Context, txs []models.Transaction) *InsightResult {
	fallback := func(notice string) *InsightResult {
		return &InsightResult{
			Content: s.fallbackInsights(txs),
			Source:  models.InsightSourceFallback,
			Notice:  notice,
		}
	}

	if s.client == nil {
		return fallback(NoticeUnavailable)
	}

	content, err := s.client.Generate(ctx, s.buildPrompt(txs))
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			log.Printf("生成洞察失败（配额）: %v", err)
			return fallback(NoticeQuota)
		}
		log.Printf("生成洞察失败: %v", err)
		return fallback(NoticeUnavailable)
	}

	return &InsightResult{
		Content: strings.TrimSpace(content),
		Source:  models.InsightSourceAI,
	}
}

// buildPrompt 按类别合计构建提示词，类别最多列 12 行
func (s *InsightService) buildPrompt(txs []models.Transaction) string {
	totals := CategoryTotals(txs)

	var b strings.Builder
	b.WriteString("请根据以下个人消费数据，用中文给出不超过 3 条简短的消费总结和建议：\n\n")
	fmt.Fprintf(&b, "总消费金额：%.2f 元（%d 条记录）\n", GrandTotal(txs), len(txs))
	b.WriteString("各类别消费（按金额降序）：\n")

	lines := len(totals)
	if lines > maxPromptCategories {
		lines = maxPromptCategories
	}
	for _, ct := range totals[:lines] {
		fmt.Fprintf(&b, "- %s: %.2f 元（%d 条）\n", ct.Category, ct.Total, ct.Count)
	}
	if len(totals) > maxPromptCategories {
		fmt.Fprintf(&b, "（其余 %d 个类别省略）\n", len(totals)-maxPromptCategories)
	}

	b.WriteString("\n请直接给出 3 条要点，每条一行，内容具体、可执行。")
	return b.String()
}

// fallbackInsights 内置规则文案：最高类别、类别均值、月环比趋势，共 3 条
func (s *InsightService) fallbackInsights(txs []models.Transaction) string {
	totals := CategoryTotals(txs)
	top := totals[0]
	avg := GrandTotal(txs) / float64(len(totals))

	statements := []string{
		fmt.Sprintf("「%s」是你最大的支出类别，共 %.2f 元，可以考虑给它设一个更紧的预算目标。", top.Category, top.Total),
		fmt.Sprintf("各类别平均支出 %.2f 元，优先关注高于平均值的类别。", avg),
		s.trendStatement(txs),
	}

	for i, stmt := range statements {
		statements[i] = "- " + stmt
	}
	return strings.Join(statements, "\n")
}

// trendStatement 取最近两个不同月份的合计，计算环比变化
func (s *InsightService) trendStatement(txs []models.Transaction) string {
	monthly := MonthlyTotals(txs)
	if len(monthly) < 2 {
		return "目前只有一个月的数据，再积累一段时间就能看到月度趋势了。"
	}

	// 取字典序最大的两个月份
	latest, previous := "", ""
	for month := range monthly {
		switch {
		case month > latest:
			previous = latest
			latest = month
		case month > previous:
			previous = month
		}
	}

	delta := monthly[latest] - monthly[previous]
	pct := 0.0
	if monthly[previous] != 0 {
		pct = delta / monthly[previous] * 100
	}

	switch {
	case delta > 0:
		return fmt.Sprintf("%s 消费较 %s 上涨 %.1f%%（多花 %.2f 元），注意控制节奏。", latest, previous, pct, delta)
	case delta < 0:
		return fmt.Sprintf("%s 消费较 %s 下降 %.1f%%（少花 %.2f 元），保持住。", latest, previous, -pct, -delta)
	default:
		return fmt.Sprintf("%s 与 %s 消费基本持平。", latest, previous)
	}
}

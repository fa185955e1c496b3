package models

import (
	"time"

	"gorm.io/gorm"
)

// 洞察文本来源
const (
	// InsightSourceAI 由外部大模型生成
	InsightSourceAI = "ai"
	// InsightSourceFallback 由内置规则生成
	InsightSourceFallback = "fallback"
)

// SpendingInsight 消费洞察缓存（按用户+月份追加，只取最新一条判断有效性）
type SpendingInsight struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Month     string         `json:"month" gorm:"size:7;not null;index"`
	Content   string         `json:"content" gorm:"type:longtext;not null"`
	Source    string         `json:"source" gorm:"size:20;not null;default:fallback"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (SpendingInsight) TableName() string {
	return "spending_insights"
}

// Fresh 判断缓存在 now 时刻是否仍在有效期内
func (s *SpendingInsight) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) < ttl
}

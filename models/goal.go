package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal 月度预算目标模型
// 同一用户同一月份同一类别只允许一条目标
type Goal struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_goal_user_month_category"`
	Month     string         `json:"month" gorm:"size:7;not null;uniqueIndex:idx_goal_user_month_category"`
	Category  string         `json:"category" gorm:"size:120;not null;uniqueIndex:idx_goal_user_month_category"`
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Goal) TableName() string {
	return "goals"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 消费流水模型
// Date 沿用 YYYY-MM-DD 字符串存储，月度汇总时按前缀取 YYYY-MM
type Transaction struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Date        string         `json:"date" gorm:"size:10;not null"`
	Description string         `json:"description" gorm:"size:255"`
	Category    string         `json:"category" gorm:"size:120;not null;index"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

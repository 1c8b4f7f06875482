package models

import "time"

// MerchantAlias 对同一用户的自由文本商户/资产名称去重
// UsageCount 记录引用数，减到 0 时整行删除
type MerchantAlias struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;uniqueIndex:uq_alias_owner_name"`
	Name       string `gorm:"size:128;not null;uniqueIndex:uq_alias_owner_name"`
	CategoryID uint   `gorm:"index"`

	UsageCount int       `gorm:"not null"`
	LastUsedAt time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

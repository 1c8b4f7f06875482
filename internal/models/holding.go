package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentHolding 表示某用户在某账户下持有的一种资产
// 每个 (user, account, asset) 只有一行；数量清零时整行删除
type InvestmentHolding struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null;uniqueIndex:uq_holding_owner_asset"`
	AccountID   uint   `gorm:"not null;uniqueIndex:uq_holding_owner_asset"`
	AssetSymbol string `gorm:"size:32;not null;uniqueIndex:uq_holding_owner_asset"`

	TotalQuantity       decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	AverageBuyPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalInvestedAmount decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	RealizedGainLoss    decimal.Decimal `gorm:"type:decimal(20,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. Amounts are always a
// positive magnitude; direction carries the sign.
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// Flip returns the opposite direction.
func (t TransactionType) Flip() TransactionType {
	if t == TransactionTypeDebit {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// InvestmentAction classifies investment transactions.
type InvestmentAction string

const (
	InvestmentActionBuy      InvestmentAction = "BUY"
	InvestmentActionSell     InvestmentAction = "SELL"
	InvestmentActionDividend InvestmentAction = "DIVIDEND"
	InvestmentActionBonus    InvestmentAction = "BONUS"
	InvestmentActionSplit    InvestmentAction = "SPLIT"
)

// Valid reports whether a is a known investment action.
func (a InvestmentAction) Valid() bool {
	switch a {
	case InvestmentActionBuy, InvestmentActionSell, InvestmentActionDividend,
		InvestmentActionBonus, InvestmentActionSplit:
		return true
	}
	return false
}

// Transaction 表示一笔交易记录
// 金额、日期、方向创建后不可修改：改动会要求重算余额/持仓/周期，只能删除后重建
type Transaction struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     uint  `gorm:"index;not null"`
	AccountID  uint  `gorm:"index;not null"`
	CategoryID uint  `gorm:"index;not null"`
	AliasID    *uint `gorm:"index"`

	Type                TransactionType `gorm:"size:8;not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Description         string          `gorm:"size:255"`
	Location            string          `gorm:"size:128"`
	TransactionDateTime time.Time       `gorm:"index;not null"`

	// 投资字段（仅 INVESTMENT 交易使用）
	AssetSymbol      string           `gorm:"size:32;index"`
	InvestmentAction InvestmentAction `gorm:"size:16"`
	Quantity         *decimal.Decimal `gorm:"type:decimal(20,6)"`
	PricePerUnit     *decimal.Decimal `gorm:"type:decimal(20,4)"`
	// 卖出时按当时均价记下的成本，删除（反向）时用它精确还原持仓
	CostBasis *decimal.Decimal `gorm:"type:decimal(20,2)"`
	HoldingID *uint            `gorm:"index"`

	// 转账字段：两条腿互相指向对方
	IsTransfer          bool  `gorm:"index"`
	TransferPrimary     bool  // 发起腿为 true，镜像腿为 false
	LinkedTransactionID *uint `gorm:"index"`

	// 周期记账字段
	IsRecurring        bool
	RecurringPatternID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceDirection returns the direction used when applying this transaction
// to its account balance. The counter leg of a transfer stores the opposite
// transactionType for display but moves its own account the same way as the
// primary leg does.
func (t *Transaction) BalanceDirection() TransactionType {
	if t.IsTransfer && !t.TransferPrimary {
		return t.Type.Flip()
	}
	return t.Type
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountGroup classifies accounts for balance sign rules.
type AccountGroup string

const (
	AccountGroupPrepaid    AccountGroup = "PREPAID"
	AccountGroupPostpaid   AccountGroup = "POSTPAID"
	AccountGroupLoan       AccountGroup = "LOAN"
	AccountGroupInvestment AccountGroup = "INVESTMENT"
)

// Valid reports whether g is a known account group.
func (g AccountGroup) Valid() bool {
	switch g {
	case AccountGroupPrepaid, AccountGroupPostpaid, AccountGroupLoan, AccountGroupInvestment:
		return true
	}
	return false
}

// DebitIncreases reports whether a DEBIT raises the balance for this group.
// POSTPAID and LOAN track what is owed/lent, so spending (DEBIT) grows them;
// PREPAID and INVESTMENT track cash, so spending shrinks them.
func (g AccountGroup) DebitIncreases() bool {
	return g == AccountGroupPostpaid || g == AccountGroupLoan
}

// Account 表示一个资金账户（钱包、信用卡、贷款、证券账户）
// CurrentBalance 只允许余额引擎和手动校正修改
type Account struct {
	ID           uint         `gorm:"primaryKey"`
	UserID       uint         `gorm:"index;not null"`
	Name         string       `gorm:"size:64;not null"`
	AccountGroup AccountGroup `gorm:"size:16;index;not null"`

	CurrentBalance   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BalanceUpdatedAt time.Time
	// 手动校正时间点：早于该时间的交易不再影响余额
	ManualBalanceUpdatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring pattern repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
	FrequencyCustom  Frequency = "CUSTOM"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// PatternStatus is the derived lifecycle state of a pattern. It is computed
// from the date fields and never stored.
type PatternStatus string

const (
	PatternStatusUpcoming PatternStatus = "UPCOMING"
	PatternStatusOverdue  PatternStatus = "OVERDUE"
	PatternStatusPaid     PatternStatus = "PAID"
)

// RecurringPattern 表示一组周期交易的模板和统计信息
// 不变式：GeneratedCount 等于当前挂在该模板下的交易数，
// StartDate / LastGeneratedDate 等于这些交易的最早/最晚日期
type RecurringPattern struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     uint  `gorm:"index;not null"`
	AccountID  uint  `gorm:"index;not null"`
	CategoryID uint  `gorm:"index;not null"`
	AliasID    *uint `gorm:"index"`

	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Type        TransactionType `gorm:"size:8;not null"`
	Description string          `gorm:"size:255"`

	Frequency  Frequency `gorm:"size:16;not null"`
	CustomDays int       // 仅 CUSTOM 频率使用

	StartDate         time.Time `gorm:"not null"`
	NextDueDate       time.Time `gorm:"not null"`
	LastGeneratedDate time.Time `gorm:"not null"`
	GeneratedCount    int       `gorm:"not null"`
	IsActive          bool      `gorm:"index;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the pattern state at the given instant.
func (p *RecurringPattern) Status(now time.Time) PatternStatus {
	if !p.LastGeneratedDate.Before(p.NextDueDate) {
		return PatternStatusPaid
	}
	if p.NextDueDate.Before(now) {
		return PatternStatusOverdue
	}
	return PatternStatusUpcoming
}

package ledger

import (
	"errors"
	"time"

	"money-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// adjustBalance applies (reverse=false) or reverses (reverse=true) one
// transaction leg against an account's running balance.
//
// 交易早于手动校正时间点时直接跳过：手动改过余额之后，
// 更早的交易不应再追溯移动余额。
func adjustBalance(tx *gorm.DB, accountID uint, amount decimal.Decimal, direction models.TransactionType, effectiveDate time.Time, reverse bool) error {
	var acct models.Account
	if err := tx.First(&acct, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("account %d not found", accountID)
		}
		return err
	}

	if acct.ManualBalanceUpdatedAt != nil && effectiveDate.Before(*acct.ManualBalanceUpdatedAt) {
		return nil
	}

	dir := direction
	if reverse {
		dir = dir.Flip()
	}

	increases := (dir == models.TransactionTypeDebit) == acct.AccountGroup.DebitIncreases()
	delta := amount
	if !increases {
		delta = delta.Neg()
	}

	acct.CurrentBalance = acct.CurrentBalance.Add(delta).Round(2)
	acct.BalanceUpdatedAt = effectiveDate
	return tx.Save(&acct).Error
}

package ledger

import (
	"errors"
	"time"

	"money-ledger/internal/models"

	"gorm.io/gorm"
)

// NextDueDate computes the due date following from. base anchors which
// day-of-month (MONTHLY) or month+day (YEARLY) is preserved; the day is
// clamped to the target month's length, so a pattern started on Jan 31 falls
// due on Feb 28/29.
func NextDueDate(base time.Time, freq models.Frequency, from time.Time, customDays int) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		// 下个月第一天，再夹住日号
		first := time.Date(from.Year(), from.Month()+1, 1, from.Hour(), from.Minute(), from.Second(), 0, from.Location())
		day := base.Day()
		if last := daysInMonth(first.Year(), first.Month()); day > last {
			day = last
		}
		return time.Date(first.Year(), first.Month(), day, from.Hour(), from.Minute(), from.Second(), 0, from.Location()), nil
	case models.FrequencyYearly:
		year := from.Year() + 1
		day := base.Day()
		if last := daysInMonth(year, base.Month()); day > last {
			day = last // 闰年 2/29 -> 平年 2/28
		}
		return time.Date(year, base.Month(), day, from.Hour(), from.Minute(), from.Second(), 0, from.Location()), nil
	case models.FrequencyCustom:
		if customDays <= 0 {
			return time.Time{}, validationf("custom frequency requires a positive day interval")
		}
		return from.AddDate(0, 0, customDays), nil
	default:
		return time.Time{}, validationf("unknown frequency %q", freq)
	}
}

func daysInMonth(year int, month time.Month) int {
	// 下个月的第 0 天即本月最后一天
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// linkRecurring attaches a recurring transaction to the active pattern for
// its (user, category, alias) key, creating one seeded from the transaction
// when none exists. Pattern bounds and the next due date are re-derived.
func linkRecurring(tx *gorm.DB, txn *models.Transaction, freq models.Frequency, customDays int) error {
	q := tx.Where("user_id = ? AND category_id = ? AND is_active = ?", txn.UserID, txn.CategoryID, true)
	if txn.AliasID == nil {
		q = q.Where("alias_id IS NULL")
	} else {
		q = q.Where("alias_id = ?", *txn.AliasID)
	}

	var pattern models.RecurringPattern
	err := q.First(&pattern).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !freq.Valid() {
			return validationf("invalid frequency %q", freq)
		}
		next, derr := NextDueDate(txn.TransactionDateTime, freq, txn.TransactionDateTime, customDays)
		if derr != nil {
			return derr
		}
		pattern = models.RecurringPattern{
			UserID:            txn.UserID,
			AccountID:         txn.AccountID,
			CategoryID:        txn.CategoryID,
			AliasID:           txn.AliasID,
			Amount:            txn.Amount,
			Type:              txn.Type,
			Description:       txn.Description,
			Frequency:         freq,
			CustomDays:        customDays,
			StartDate:         txn.TransactionDateTime,
			NextDueDate:       next,
			LastGeneratedDate: txn.TransactionDateTime,
			GeneratedCount:    1,
			IsActive:          true,
		}
		if err := tx.Create(&pattern).Error; err != nil {
			return err
		}
		txn.RecurringPatternID = &pattern.ID
		return nil
	}
	if err != nil {
		return err
	}

	pattern.GeneratedCount++
	if txn.TransactionDateTime.Before(pattern.StartDate) {
		pattern.StartDate = txn.TransactionDateTime
	}
	if !txn.TransactionDateTime.Before(pattern.LastGeneratedDate) {
		pattern.LastGeneratedDate = txn.TransactionDateTime
		next, derr := NextDueDate(pattern.StartDate, pattern.Frequency, txn.TransactionDateTime, pattern.CustomDays)
		if derr != nil {
			return derr
		}
		pattern.NextDueDate = next
	}
	if err := tx.Save(&pattern).Error; err != nil {
		return err
	}
	txn.RecurringPatternID = &pattern.ID
	return nil
}

// unlinkRecurring detaches a transaction from its pattern. The pattern is
// deleted outright with its last member; otherwise its bounds are re-derived
// from the remaining members.
func unlinkRecurring(tx *gorm.DB, txn *models.Transaction) error {
	if txn.RecurringPatternID == nil {
		return nil
	}

	var pattern models.RecurringPattern
	if err := tx.First(&pattern, *txn.RecurringPatternID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if pattern.GeneratedCount <= 1 {
		return tx.Delete(&pattern).Error
	}

	var rest []models.Transaction
	if err := tx.Where("recurring_pattern_id = ? AND id <> ?", pattern.ID, txn.ID).
		Find(&rest).Error; err != nil {
		return err
	}
	if len(rest) == 0 {
		// 计数和实际成员不一致时兜底删除
		return tx.Delete(&pattern).Error
	}

	minDate, maxDate := rest[0].TransactionDateTime, rest[0].TransactionDateTime
	for _, r := range rest[1:] {
		if r.TransactionDateTime.Before(minDate) {
			minDate = r.TransactionDateTime
		}
		if r.TransactionDateTime.After(maxDate) {
			maxDate = r.TransactionDateTime
		}
	}

	pattern.GeneratedCount--
	if !txn.TransactionDateTime.After(pattern.StartDate) {
		pattern.StartDate = minDate
	}
	if !txn.TransactionDateTime.Before(pattern.LastGeneratedDate) {
		pattern.LastGeneratedDate = maxDate
		next, derr := NextDueDate(pattern.StartDate, pattern.Frequency, maxDate, pattern.CustomDays)
		if derr != nil {
			return derr
		}
		pattern.NextDueDate = next
	}
	return tx.Save(&pattern).Error
}

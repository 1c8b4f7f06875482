package ledger

import (
	"errors"

	"money-ledger/internal/models"

	"gorm.io/gorm"
)

// accountOwned loads an account and verifies the caller owns it. Absent rows
// are NotFound; rows owned by someone else are Forbidden.
func accountOwned(tx *gorm.DB, userID, accountID uint) (*models.Account, error) {
	var acct models.Account
	if err := tx.First(&acct, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("account %d not found", accountID)
		}
		return nil, err
	}
	if acct.UserID != userID {
		return nil, forbiddenf("account %d does not belong to the caller", accountID)
	}
	return &acct, nil
}

// transactionOwned loads a transaction and verifies the caller owns it.
func transactionOwned(tx *gorm.DB, userID, transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := tx.First(&txn, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("transaction %d not found", transactionID)
		}
		return nil, err
	}
	if txn.UserID != userID {
		return nil, forbiddenf("transaction %d does not belong to the caller", transactionID)
	}
	return &txn, nil
}

// categoryByCode resolves a stable numeric category code.
func categoryByCode(tx *gorm.DB, code int) (*models.Category, error) {
	var cat models.Category
	if err := tx.Where("code = ?", code).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("category code %d not found", code)
		}
		return nil, err
	}
	return &cat, nil
}

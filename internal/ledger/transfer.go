package ledger

import (
	"errors"

	"money-ledger/internal/models"

	"gorm.io/gorm"
)

// createTransferLeg persists the mirrored counter transaction on the
// destination account, links the pair both ways and applies the counter
// account's balance. The counter leg stores the opposite transactionType;
// its balance effect mirrors the primary's direction (see BalanceDirection).
func createTransferLeg(tx *gorm.DB, primary *models.Transaction, counter *models.Account) (*models.Transaction, error) {
	leg := &models.Transaction{
		UserID:              primary.UserID,
		AccountID:           counter.ID,
		CategoryID:          primary.CategoryID,
		AliasID:             primary.AliasID,
		Type:                primary.Type.Flip(),
		Amount:              primary.Amount,
		Description:         primary.Description,
		Location:            primary.Location,
		TransactionDateTime: primary.TransactionDateTime,
		IsTransfer:          true,
		TransferPrimary:     false,
		LinkedTransactionID: &primary.ID,
	}
	if err := tx.Create(leg).Error; err != nil {
		return nil, err
	}

	// 回填发起腿的配对指针
	primary.LinkedTransactionID = &leg.ID
	if err := tx.Model(&models.Transaction{}).Where("id = ?", primary.ID).
		Update("linked_transaction_id", leg.ID).Error; err != nil {
		return nil, err
	}

	if err := bumpAlias(tx, leg.AliasID); err != nil {
		return nil, err
	}

	if err := adjustBalance(tx, counter.ID, leg.Amount, leg.BalanceDirection(), leg.TransactionDateTime, false); err != nil {
		return nil, err
	}
	return leg, nil
}

// loadLinkedLeg fetches the other half of a transfer pair, or nil when the
// pair is already gone (its deletion cascades to this row anyway).
func loadLinkedLeg(tx *gorm.DB, txn *models.Transaction) (*models.Transaction, error) {
	if txn.LinkedTransactionID == nil {
		return nil, nil
	}
	var leg models.Transaction
	if err := tx.First(&leg, *txn.LinkedTransactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leg, nil
}

// deleteTransferLeg reverses the paired leg's balance, releases its alias and
// removes the row. Called from Delete for whichever leg was not the entry
// point — a transfer leg is never deleted alone.
func deleteTransferLeg(tx *gorm.DB, leg *models.Transaction) error {
	if err := adjustBalance(tx, leg.AccountID, leg.Amount, leg.BalanceDirection(), leg.TransactionDateTime, true); err != nil {
		return err
	}
	if err := unlinkRecurring(tx, leg); err != nil {
		return err
	}
	if err := releaseAlias(tx, leg.AliasID); err != nil {
		return err
	}
	return tx.Delete(leg).Error
}

// mirrorTransferLeg keeps the cosmetic fields of the paired leg in sync after
// an update to either side.
func mirrorTransferLeg(tx *gorm.DB, from *models.Transaction) error {
	leg, err := loadLinkedLeg(tx, from)
	if err != nil || leg == nil {
		return err
	}
	leg.Description = from.Description
	leg.CategoryID = from.CategoryID
	return tx.Save(leg).Error
}

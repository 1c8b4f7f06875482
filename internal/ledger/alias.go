package ledger

import (
	"errors"
	"strings"
	"time"

	"money-ledger/internal/models"

	"gorm.io/gorm"
)

// resolveAlias finds or creates the caller's alias for a free-text merchant
// or asset name, bumping its usage count. An empty name resolves to nil.
func resolveAlias(tx *gorm.DB, userID uint, name string, categoryID uint) (*models.MerchantAlias, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var alias models.MerchantAlias
	err := tx.Where("user_id = ? AND name = ?", userID, name).First(&alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		alias = models.MerchantAlias{
			UserID:     userID,
			Name:       name,
			CategoryID: categoryID,
			UsageCount: 1,
			LastUsedAt: time.Now(),
		}
		if err := tx.Create(&alias).Error; err != nil {
			return nil, err
		}
		return &alias, nil
	}
	if err != nil {
		return nil, err
	}

	alias.UsageCount++
	alias.LastUsedAt = time.Now()
	if err := tx.Save(&alias).Error; err != nil {
		return nil, err
	}
	return &alias, nil
}

// bumpAlias increments usage for an already-resolved alias (the counter leg of
// a transfer shares its primary's alias and counts as one more association).
func bumpAlias(tx *gorm.DB, aliasID *uint) error {
	if aliasID == nil {
		return nil
	}
	var alias models.MerchantAlias
	if err := tx.First(&alias, *aliasID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	alias.UsageCount++
	alias.LastUsedAt = time.Now()
	return tx.Save(&alias).Error
}

// releaseAlias decrements usage on dissociation and deletes the alias once no
// transaction references it anymore.
func releaseAlias(tx *gorm.DB, aliasID *uint) error {
	if aliasID == nil {
		return nil
	}
	var alias models.MerchantAlias
	if err := tx.First(&alias, *aliasID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if alias.UsageCount <= 1 {
		return tx.Delete(&alias).Error
	}
	alias.UsageCount--
	return tx.Save(&alias).Error
}

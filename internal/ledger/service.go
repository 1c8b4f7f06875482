package ledger

import (
	"errors"
	"time"

	"money-ledger/internal/location"
	"money-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the transaction command processor. Every mutation runs inside a
// single storage transaction: the balance, holdings, recurring and transfer
// engines either all commit or none do.
type Service struct {
	db       *gorm.DB
	location location.Resolver
}

// NewService creates a Service. resolver may be location.Noop{} to disable
// enrichment.
func NewService(db *gorm.DB, resolver location.Resolver) *Service {
	if resolver == nil {
		resolver = location.Noop{}
	}
	return &Service{db: db, location: resolver}
}

// CreateInput holds everything needed to record one transaction.
type CreateInput struct {
	AccountID    uint
	CategoryCode int
	Type         models.TransactionType
	Amount       decimal.Decimal
	DateTime     time.Time
	Description  string
	MerchantName string
	ClientIP     string // 仅用于 best-effort 地点补全

	// 投资
	AssetSymbol      string
	InvestmentAction models.InvestmentAction
	Quantity         *decimal.Decimal
	PricePerUnit     *decimal.Decimal

	// 转账
	IsTransfer  bool
	ToAccountID uint

	// 周期记账
	IsRecurring bool
	Frequency   models.Frequency
	CustomDays  int
}

func (in *CreateInput) validate() error {
	if !in.Type.Valid() {
		return validationf("transactionType must be DEBIT or CREDIT")
	}
	if in.Amount.Sign() <= 0 {
		return validationf("amount must be positive")
	}
	if in.DateTime.IsZero() {
		return validationf("transactionDateTime is required")
	}
	if in.InvestmentAction != "" {
		if !in.InvestmentAction.Valid() {
			return validationf("unknown investment action %q", in.InvestmentAction)
		}
		if in.AssetSymbol == "" {
			return validationf("investment transaction requires assetSymbol")
		}
		if in.Quantity == nil || in.Quantity.Sign() <= 0 {
			return validationf("investment transaction requires a positive quantity")
		}
		if in.PricePerUnit == nil || in.PricePerUnit.Sign() <= 0 {
			return validationf("investment transaction requires a positive pricePerUnit")
		}
		if in.IsTransfer {
			return validationf("a transfer cannot carry an investment action")
		}
	}
	if in.IsTransfer {
		if in.ToAccountID == 0 {
			return validationf("transfer requires a destination account")
		}
		if in.ToAccountID == in.AccountID {
			return validationf("cannot transfer to the same account")
		}
	}
	if in.IsRecurring {
		if !in.Frequency.Valid() {
			return validationf("invalid frequency %q", in.Frequency)
		}
		if in.Frequency == models.FrequencyCustom && in.CustomDays <= 0 {
			return validationf("custom frequency requires a positive day interval")
		}
	}
	return nil
}

// Create records a transaction and applies all of its side effects
// atomically: ownership check, category and alias resolution, row insert,
// balance adjustment, transfer pairing, holdings aggregation and recurring
// pattern linkage, in that order.
func (s *Service) Create(ownerID uint, in CreateInput) (*models.Transaction, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	// 地点补全放在事务外：外部查询失败不影响记账
	loc := s.location.Resolve(in.ClientIP)

	var created *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := accountOwned(tx, ownerID, in.AccountID); err != nil {
			return err
		}
		var counter *models.Account
		if in.IsTransfer {
			var err error
			if counter, err = accountOwned(tx, ownerID, in.ToAccountID); err != nil {
				return err
			}
		}

		cat, err := categoryByCode(tx, in.CategoryCode)
		if err != nil {
			return err
		}
		alias, err := resolveAlias(tx, ownerID, in.MerchantName, cat.ID)
		if err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:              ownerID,
			AccountID:           in.AccountID,
			CategoryID:          cat.ID,
			Type:                in.Type,
			Amount:              in.Amount.Round(amountPlaces),
			Description:         in.Description,
			Location:            loc,
			TransactionDateTime: in.DateTime,
			AssetSymbol:         in.AssetSymbol,
			InvestmentAction:    in.InvestmentAction,
			Quantity:            in.Quantity,
			PricePerUnit:        in.PricePerUnit,
			IsTransfer:          in.IsTransfer,
			TransferPrimary:     in.IsTransfer,
			IsRecurring:         in.IsRecurring,
		}
		if alias != nil {
			txn.AliasID = &alias.ID
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		if err := adjustBalance(tx, txn.AccountID, txn.Amount, txn.BalanceDirection(), txn.TransactionDateTime, false); err != nil {
			return err
		}
		if in.IsTransfer {
			if _, err := createTransferLeg(tx, txn, counter); err != nil {
				return err
			}
		}
		if in.InvestmentAction != "" {
			if err := applyInvestment(tx, txn, false); err != nil {
				return err
			}
		}
		if in.IsRecurring {
			if err := linkRecurring(tx, txn, in.Frequency, in.CustomDays); err != nil {
				return err
			}
		}

		// 引擎在 txn 上回填了 HoldingID / CostBasis / RecurringPatternID 等
		if err := tx.Save(txn).Error; err != nil {
			return err
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateInput is a typed patch. amount, date, direction and account are
// immutable after creation: setting them is rejected, the caller is expected
// to delete and recreate instead.
type UpdateInput struct {
	Description  *string
	CategoryCode *int
	MerchantName *string
	IsRecurring  *bool
	Frequency    *models.Frequency
	CustomDays   *int

	// 不可变字段：出现即报错
	Amount    *decimal.Decimal
	Type      *models.TransactionType
	DateTime  *time.Time
	AccountID *uint
}

// Update applies a cosmetic patch to a transaction, re-running only the
// engines whose inputs changed (alias registry, recurring pattern linkage).
func (s *Service) Update(ownerID, transactionID uint, in UpdateInput) (*models.Transaction, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}
	if in.Amount != nil || in.Type != nil || in.DateTime != nil || in.AccountID != nil {
		return nil, validationf("amount, date, direction and account are immutable; delete and recreate the transaction")
	}

	var updated *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txn, err := transactionOwned(tx, ownerID, transactionID)
		if err != nil {
			return err
		}

		// 改类别/别名要先从旧 pattern 摘掉，换好后再挂回去；
		// 摘之前记住旧频率，挂回去新建 pattern 时沿用
		prevFreq, prevDays := models.Frequency(""), 0
		detachPattern := func() error {
			if txn.RecurringPatternID == nil {
				return nil
			}
			var p models.RecurringPattern
			if err := tx.First(&p, *txn.RecurringPatternID).Error; err == nil {
				prevFreq, prevDays = p.Frequency, p.CustomDays
			}
			if err := unlinkRecurring(tx, txn); err != nil {
				return err
			}
			txn.RecurringPatternID = nil
			return nil
		}

		categoryChanged := false
		if in.CategoryCode != nil {
			cat, err := categoryByCode(tx, *in.CategoryCode)
			if err != nil {
				return err
			}
			if cat.ID != txn.CategoryID {
				if txn.IsRecurring {
					if err := detachPattern(); err != nil {
						return err
					}
				}
				txn.CategoryID = cat.ID
				categoryChanged = true
			}
		}

		if in.MerchantName != nil {
			if txn.IsRecurring {
				if err := detachPattern(); err != nil {
					return err
				}
			}
			oldAlias := txn.AliasID
			alias, err := resolveAlias(tx, ownerID, *in.MerchantName, txn.CategoryID)
			if err != nil {
				return err
			}
			txn.AliasID = nil
			if alias != nil {
				txn.AliasID = &alias.ID
			}
			if err := releaseAlias(tx, oldAlias); err != nil {
				return err
			}
			// 转账镜像腿共用同一个别名
			if txn.IsTransfer {
				leg, err := loadLinkedLeg(tx, txn)
				if err != nil {
					return err
				}
				if leg != nil {
					if err := bumpAlias(tx, txn.AliasID); err != nil {
						return err
					}
					if err := releaseAlias(tx, leg.AliasID); err != nil {
						return err
					}
					leg.AliasID = txn.AliasID
					if err := tx.Save(leg).Error; err != nil {
						return err
					}
				}
			}
		}

		if in.Description != nil {
			txn.Description = *in.Description
		}

		if in.IsRecurring != nil && *in.IsRecurring != txn.IsRecurring {
			if *in.IsRecurring {
				txn.IsRecurring = true
			} else {
				if err := unlinkRecurring(tx, txn); err != nil {
					return err
				}
				txn.IsRecurring = false
				txn.RecurringPatternID = nil
			}
		}

		// 需要（重新）挂 pattern 的情况：打开周期开关，或换了类别/别名
		if txn.IsRecurring && txn.RecurringPatternID == nil {
			freq, days := prevFreq, prevDays
			if in.Frequency != nil {
				freq = *in.Frequency
			}
			if in.CustomDays != nil {
				days = *in.CustomDays
			}
			if err := linkRecurring(tx, txn, freq, days); err != nil {
				return err
			}
		}
		if err := tx.Save(txn).Error; err != nil {
			return err
		}
		if txn.IsTransfer && (in.Description != nil || categoryChanged) {
			if err := mirrorTransferLeg(tx, txn); err != nil {
				return err
			}
		}
		updated = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteResult reports a completed deletion.
type DeleteResult struct {
	Success       bool `json:"success"`
	TransactionID uint `json:"transactionId"`
}

// Delete removes a transaction after reversing every side effect: holdings,
// balance, the paired transfer leg and recurring pattern membership. Deleting
// a row that is already gone reports success (the pair's deletion may have
// cascaded here first).
func (s *Service) Delete(ownerID, transactionID uint) (DeleteResult, error) {
	if ownerID == 0 {
		return DeleteResult{}, ErrUnauthenticated
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.First(&txn, transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // 幂等删除
			}
			return err
		}
		if txn.UserID != ownerID {
			return forbiddenf("transaction %d does not belong to the caller", transactionID)
		}

		if txn.InvestmentAction != "" {
			if err := applyInvestment(tx, &txn, true); err != nil {
				return err
			}
		}
		if err := adjustBalance(tx, txn.AccountID, txn.Amount, txn.BalanceDirection(), txn.TransactionDateTime, true); err != nil {
			return err
		}

		// 转账两条腿一起删，余额一起还原
		if txn.IsTransfer {
			leg, err := loadLinkedLeg(tx, &txn)
			if err != nil {
				return err
			}
			if leg != nil {
				if err := deleteTransferLeg(tx, leg); err != nil {
					return err
				}
			}
		}

		if err := unlinkRecurring(tx, &txn); err != nil {
			return err
		}
		if err := releaseAlias(tx, txn.AliasID); err != nil {
			return err
		}
		return tx.Delete(&txn).Error
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Success: true, TransactionID: transactionID}, nil
}

package ledger

import (
	"errors"

	"money-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixed storage precision for investment math. Kept exact through forward and
// reverse application so repeated round trips cannot drift.
const (
	quantityPlaces = 6
	pricePlaces    = 4
	amountPlaces   = 2
)

// applyInvestment maintains the per (user, account, asset) weighted-average
// holding for one investment transaction. With reverse=true it undoes exactly
// what the forward call did.
//
// BUY 更新加权均价；SELL 按当时均价结转成本并累计已实现盈亏；
// DIVIDEND / BONUS / SPLIT 不改数量和成本，只做关联
func applyInvestment(tx *gorm.DB, txn *models.Transaction, reverse bool) error {
	if txn.Quantity == nil || txn.PricePerUnit == nil {
		return validationf("investment transaction requires quantity and pricePerUnit")
	}
	qty := txn.Quantity.Round(quantityPlaces)
	amount := txn.Amount.Round(amountPlaces)
	if qty.Sign() <= 0 {
		return validationf("quantity must be positive")
	}

	switch txn.InvestmentAction {
	case models.InvestmentActionBuy:
		if reverse {
			return reverseBuy(tx, txn, qty, amount)
		}
		return applyBuy(tx, txn, qty, amount)
	case models.InvestmentActionSell:
		if reverse {
			return reverseSell(tx, txn, qty, amount)
		}
		return applySell(tx, txn, qty, amount)
	case models.InvestmentActionDividend, models.InvestmentActionBonus, models.InvestmentActionSplit:
		// 只做关联，不动持仓
		if reverse {
			return nil
		}
		holding, err := findHolding(tx, txn)
		if err != nil {
			return err
		}
		if holding != nil {
			txn.HoldingID = &holding.ID
		}
		return nil
	default:
		return validationf("unknown investment action %q", txn.InvestmentAction)
	}
}

func findHolding(tx *gorm.DB, txn *models.Transaction) (*models.InvestmentHolding, error) {
	var holding models.InvestmentHolding
	err := tx.Where("user_id = ? AND account_id = ? AND asset_symbol = ?",
		txn.UserID, txn.AccountID, txn.AssetSymbol).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func applyBuy(tx *gorm.DB, txn *models.Transaction, qty, amount decimal.Decimal) error {
	holding, err := findHolding(tx, txn)
	if err != nil {
		return err
	}

	if holding == nil {
		holding = &models.InvestmentHolding{
			UserID:              txn.UserID,
			AccountID:           txn.AccountID,
			AssetSymbol:         txn.AssetSymbol,
			TotalQuantity:       qty,
			TotalInvestedAmount: amount,
			AverageBuyPrice:     amount.Div(qty).Round(pricePlaces),
		}
		if err := tx.Create(holding).Error; err != nil {
			return err
		}
		txn.HoldingID = &holding.ID
		return nil
	}

	holding.TotalQuantity = holding.TotalQuantity.Add(qty).Round(quantityPlaces)
	holding.TotalInvestedAmount = holding.TotalInvestedAmount.Add(amount).Round(amountPlaces)
	holding.AverageBuyPrice = holding.TotalInvestedAmount.Div(holding.TotalQuantity).Round(pricePlaces)
	if err := tx.Save(holding).Error; err != nil {
		return err
	}
	txn.HoldingID = &holding.ID
	return nil
}

func reverseBuy(tx *gorm.DB, txn *models.Transaction, qty, amount decimal.Decimal) error {
	holding, err := findHolding(tx, txn)
	if err != nil {
		return err
	}
	if holding == nil {
		return nil
	}

	newQty := holding.TotalQuantity.Sub(qty).Round(quantityPlaces)
	// 数量不允许为负：减到零（或以下）就整行删除
	if newQty.Sign() <= 0 {
		return tx.Delete(holding).Error
	}

	holding.TotalQuantity = newQty
	holding.TotalInvestedAmount = holding.TotalInvestedAmount.Sub(amount).Round(amountPlaces)
	holding.AverageBuyPrice = holding.TotalInvestedAmount.Div(newQty).Round(pricePlaces)
	return tx.Save(holding).Error
}

func applySell(tx *gorm.DB, txn *models.Transaction, qty, amount decimal.Decimal) error {
	holding, err := findHolding(tx, txn)
	if err != nil {
		return err
	}
	if holding == nil {
		return conflictf("no holding of %s to sell", txn.AssetSymbol)
	}
	if holding.TotalQuantity.LessThan(qty) {
		return conflictf("insufficient quantity of %s: have %s, selling %s",
			txn.AssetSymbol, holding.TotalQuantity, qty)
	}

	soldCost := holding.AverageBuyPrice.Mul(qty).Round(amountPlaces)
	gain := amount.Sub(soldCost)

	holding.RealizedGainLoss = holding.RealizedGainLoss.Add(gain).Round(amountPlaces)
	holding.TotalQuantity = holding.TotalQuantity.Sub(qty).Round(quantityPlaces)
	holding.TotalInvestedAmount = holding.TotalInvestedAmount.Sub(soldCost).Round(amountPlaces)

	// 把成本记在交易上，反向时才能按当时均价精确还原
	txn.CostBasis = &soldCost
	txn.HoldingID = &holding.ID

	if holding.TotalQuantity.Sign() == 0 {
		return tx.Delete(holding).Error
	}
	return tx.Save(holding).Error
}

func reverseSell(tx *gorm.DB, txn *models.Transaction, qty, amount decimal.Decimal) error {
	soldCost := decimal.Zero
	if txn.CostBasis != nil {
		soldCost = *txn.CostBasis
	}
	gain := amount.Sub(soldCost)

	holding, err := findHolding(tx, txn)
	if err != nil {
		return err
	}

	if holding == nil {
		// 卖空后整行已删：用记下的成本重建持仓
		holding = &models.InvestmentHolding{
			UserID:              txn.UserID,
			AccountID:           txn.AccountID,
			AssetSymbol:         txn.AssetSymbol,
			TotalQuantity:       qty,
			TotalInvestedAmount: soldCost,
			AverageBuyPrice:     soldCost.Div(qty).Round(pricePlaces),
		}
		return tx.Create(holding).Error
	}

	holding.TotalQuantity = holding.TotalQuantity.Add(qty).Round(quantityPlaces)
	holding.TotalInvestedAmount = holding.TotalInvestedAmount.Add(soldCost).Round(amountPlaces)
	holding.RealizedGainLoss = holding.RealizedGainLoss.Sub(gain).Round(amountPlaces)
	holding.AverageBuyPrice = holding.TotalInvestedAmount.Div(holding.TotalQuantity).Round(pricePlaces)
	return tx.Save(holding).Error
}

package handler

import (
	"net/http"
	"time"

	"money-ledger/internal/models"
	"money-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HoldingHandler 负责持仓和周期记账的查询接口
type HoldingHandler struct {
	DB *gorm.DB
}

func NewHoldingHandler(db *gorm.DB) *HoldingHandler {
	return &HoldingHandler{DB: db}
}

// ListHoldings 返回当前用户的全部持仓。
// 现价由外部行情服务补全，这里始终不算市值。
func (h *HoldingHandler) ListHoldings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var holdings []models.InvestmentHolding
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("asset_symbol ASC").
		Find(&holdings).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	util.Success(c, util.Response{
		"holdings": holdings,
	})
}

// ListPatterns 返回当前用户的周期记账模板，状态现算现用，不落库
func (h *HoldingHandler) ListPatterns(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var patterns []models.RecurringPattern
	if err := h.DB.Where("user_id = ? AND is_active = ?", user.ID, true).
		Order("next_due_date ASC").
		Find(&patterns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(patterns))
	for i := range patterns {
		p := &patterns[i]
		items = append(items, gin.H{
			"pattern": p,
			"status":  p.Status(now),
		})
	}

	util.Success(c, util.Response{
		"patterns": items,
	})
}

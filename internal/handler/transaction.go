package handler

import (
	"net/http"
	"strconv"
	"time"

	"money-ledger/internal/ledger"
	"money-ledger/internal/models"
	"money-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionHandler 负责交易相关接口，改动全部走记账引擎
type TransactionHandler struct {
	DB      *gorm.DB
	Service *ledger.Service
}

func NewTransactionHandler(db *gorm.DB, service *ledger.Service) *TransactionHandler {
	return &TransactionHandler{DB: db, Service: service}
}

// ---------- 请求结构 ----------

type createTransactionReq struct {
	AccountID    uint   `json:"account_id" binding:"required"`
	CategoryCode int    `json:"category_code" binding:"required"`
	Type         string `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Amount       string `json:"amount" binding:"required"`
	DateTime     string `json:"transaction_date_time"`
	Description  string `json:"description" binding:"max=255"`
	Merchant     string `json:"merchant" binding:"max=128"`

	AssetSymbol      string `json:"asset_symbol" binding:"max=32"`
	InvestmentAction string `json:"investment_action"`
	Quantity         string `json:"quantity"`
	PricePerUnit     string `json:"price_per_unit"`

	IsTransfer  bool `json:"is_transfer"`
	ToAccountID uint `json:"to_account_id"`

	IsRecurring bool   `json:"is_recurring"`
	Frequency   string `json:"frequency"`
	CustomDays  int    `json:"custom_days"`
}

type updateTransactionReq struct {
	Description  *string `json:"description"`
	CategoryCode *int    `json:"category_code"`
	Merchant     *string `json:"merchant"`
	IsRecurring  *bool   `json:"is_recurring"`
	Frequency    *string `json:"frequency"`
	CustomDays   *int    `json:"custom_days"`

	// 不可变字段也放在这里，出现即由引擎拒绝
	Amount    *string `json:"amount"`
	Type      *string `json:"type"`
	DateTime  *string `json:"transaction_date_time"`
	AccountID *uint   `json:"account_id"`
}

// parseOptionalDecimal 解析可选的金额/数量字符串
func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ---------- 记一笔 ----------

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
		return
	}
	if err := util.ValidateAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
		return
	}

	// 交易时间：默认现在
	when := time.Now()
	if req.DateTime != "" {
		if when, err = util.ParseDateTime(req.DateTime); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式错误")
			return
		}
	}

	qty, err := parseOptionalDecimal(req.Quantity)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "数量格式错误")
		return
	}
	price, err := parseOptionalDecimal(req.PricePerUnit)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "单价格式错误")
		return
	}

	txn, err := h.Service.Create(user.ID, ledger.CreateInput{
		AccountID:        req.AccountID,
		CategoryCode:     req.CategoryCode,
		Type:             models.TransactionType(req.Type),
		Amount:           amount,
		DateTime:         when,
		Description:      req.Description,
		MerchantName:     req.Merchant,
		ClientIP:         c.ClientIP(),
		AssetSymbol:      req.AssetSymbol,
		InvestmentAction: models.InvestmentAction(req.InvestmentAction),
		Quantity:         qty,
		PricePerUnit:     price,
		IsTransfer:       req.IsTransfer,
		ToAccountID:      req.ToAccountID,
		IsRecurring:      req.IsRecurring,
		Frequency:        models.Frequency(req.Frequency),
		CustomDays:       req.CustomDays,
	})
	if err != nil {
		ledgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": txn,
	})
}

// ---------- 改一笔 ----------

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return
	}

	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	in := ledger.UpdateInput{
		Description:  req.Description,
		CategoryCode: req.CategoryCode,
		MerchantName: req.Merchant,
		IsRecurring:  req.IsRecurring,
		CustomDays:   req.CustomDays,
		AccountID:    req.AccountID,
	}
	if req.Frequency != nil {
		f := models.Frequency(*req.Frequency)
		in.Frequency = &f
	}
	if req.Amount != nil {
		d, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
			return
		}
		in.Amount = &d
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		in.Type = &t
	}
	if req.DateTime != nil {
		t, err := util.ParseDateTime(*req.DateTime)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式错误")
			return
		}
		in.DateTime = &t
	}

	txn, err := h.Service.Update(user.ID, uint(id), in)
	if err != nil {
		ledgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": txn,
	})
}

// ---------- 删一笔 ----------

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return
	}

	result, err := h.Service.Delete(user.ID, uint(id))
	if err != nil {
		ledgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"result": result,
	})
}

// ---------- 交易列表 ----------

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// 分页参数
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.Transaction{}).Where("user_id = ?", user.ID)

	// 时间筛选：start / end，格式 YYYY-MM-DD
	if startStr := c.Query("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "开始日期格式错误，应为 YYYY-MM-DD")
			return
		}
		base = base.Where("transaction_date_time >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "结束日期格式错误，应为 YYYY-MM-DD")
			return
		}
		// 结束日期按"当天结束"处理
		base = base.Where("transaction_date_time < ?", end.Add(24*time.Hour))
	}
	if acctStr := c.Query("account_id"); acctStr != "" {
		if acctID, err := strconv.Atoi(acctStr); err == nil && acctID > 0 {
			base = base.Where("account_id = ?", acctID)
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	var txns []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Order("transaction_date_time DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	util.Success(c, util.Response{
		"items": txns,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

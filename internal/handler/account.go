package handler

import (
	"net/http"
	"strconv"
	"time"

	"money-ledger/internal/models"
	"money-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountHandler 负责账户相关接口
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

// ---------- 建账户 ----------

type createAccountReq struct {
	Name           string `json:"name" binding:"required,max=64"`
	AccountGroup   string `json:"account_group" binding:"required"`
	OpeningBalance string `json:"opening_balance"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	group := models.AccountGroup(req.AccountGroup)
	if !group.Valid() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "账户类型不合法")
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		opening, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
			return
		}
	}

	acct := models.Account{
		UserID:           user.ID,
		Name:             req.Name,
		AccountGroup:     group,
		CurrentBalance:   opening.Round(2),
		BalanceUpdatedAt: time.Now(),
	}
	if err := h.DB.Create(&acct).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "保存失败，请重试")
		return
	}

	util.Success(c, util.Response{
		"account": acct,
	})
}

// ---------- 账户列表 ----------

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("id ASC").
		Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	util.Success(c, util.Response{
		"accounts": accounts,
	})
}

// ---------- 手动校正余额 ----------

type setBalanceReq struct {
	Balance string `json:"balance" binding:"required"`
}

// SetBalance 手动把余额改成指定值，并记下校正时间点。
// 早于该时间点的交易此后不再影响余额。
func (h *AccountHandler) SetBalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return
	}

	var req setBalanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}
	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
		return
	}

	var acct models.Account
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&acct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "账户不存在")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		}
		return
	}

	now := time.Now()
	acct.CurrentBalance = balance.Round(2)
	acct.BalanceUpdatedAt = now
	acct.ManualBalanceUpdatedAt = &now
	if err := h.DB.Save(&acct).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "保存失败，请重试")
		return
	}

	util.Success(c, util.Response{
		"account": acct,
	})
}

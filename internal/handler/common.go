package handler

import (
	"errors"
	"net/http"

	"money-ledger/internal/ledger"
	"money-ledger/internal/models"
	"money-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 从 context 里取出 AuthMiddleware 放入的用户
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	return user, true
}

// ledgerError 把记账引擎的错误翻译成统一响应
func ledgerError(c *gin.Context, err error) {
	var le *ledger.Error
	if errors.As(err, &le) {
		switch le.Kind {
		case ledger.KindUnauthenticated:
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, le.Message)
		case ledger.KindForbidden:
			util.Error(c, http.StatusForbidden, util.CodeForbidden, le.Message)
		case ledger.KindNotFound:
			util.Error(c, http.StatusNotFound, util.CodeNotFound, le.Message)
		case ledger.KindValidation:
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, le.Message)
		case ledger.KindConflict:
			util.Error(c, http.StatusConflict, util.CodeConflict, le.Message)
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, le.Message)
		}
		return
	}
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "服务器内部错误")
}

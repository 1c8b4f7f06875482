package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"money-ledger/internal/models"
	"money-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 负责交易数据导出
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{"日期", "账户", "方向", "金额", "类别", "商户", "备注"}

// 导出行：账户名和类别名查表拼出来
func (h *ExportHandler) exportRows(userID uint) ([][]string, error) {
	var txns []models.Transaction
	if err := h.DB.Where("user_id = ?", userID).
		Order("transaction_date_time DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}

	accountNames := map[uint]string{}
	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}

	categoryNames := map[uint]string{}
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	aliasNames := map[uint]string{}
	var aliases []models.MerchantAlias
	if err := h.DB.Where("user_id = ?", userID).Find(&aliases).Error; err != nil {
		return nil, err
	}
	for _, a := range aliases {
		aliasNames[a.ID] = a.Name
	}

	rows := make([][]string, 0, len(txns))
	for i := range txns {
		t := &txns[i]
		direction := "支出"
		if t.Type == models.TransactionTypeCredit {
			direction = "收入"
		}
		merchant := ""
		if t.AliasID != nil {
			merchant = aliasNames[*t.AliasID]
		}
		rows = append(rows, []string{
			t.TransactionDateTime.Format("2006-01-02 15:04"),
			accountNames[t.AccountID],
			direction,
			t.Amount.StringFixed(2),
			categoryNames[t.CategoryID],
			merchant,
			t.Description,
		})
	}
	return rows, nil
}

// ExportCSV 导出交易为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.exportRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM（让 Excel 正确识别中文）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeader)
	for _, row := range rows {
		writer.Write(row)
	}
}

// ExportXLSX 导出交易为 Excel
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.exportRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "交易"
	f.SetSheetName("Sheet1", sheet)
	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
		return
	}
}

package database

import (
	"fmt"

	"money-ledger/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Category{},
		&models.Account{},
		&models.Transaction{},
		&models.InvestmentHolding{},
		&models.RecurringPattern{},
		&models.MerchantAlias{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// 默认类别，code 是对外稳定的编号
var defaultCategories = []models.Category{
	{Code: 1, Name: "餐饮"},
	{Code: 2, Name: "交通"},
	{Code: 3, Name: "购物"},
	{Code: 4, Name: "娱乐"},
	{Code: 5, Name: "居住"},
	{Code: 6, Name: "医疗"},
	{Code: 7, Name: "教育"},
	{Code: 8, Name: "工资"},
	{Code: 9, Name: "投资"},
	{Code: 10, Name: "转账"},
	{Code: 11, Name: "订阅"},
	{Code: 12, Name: "其他"},
}

// SeedCategories inserts the default category rows if they are missing.
func SeedCategories(db *gorm.DB) error {
	for _, cat := range defaultCategories {
		var row models.Category
		if err := db.Where(models.Category{Code: cat.Code}).
			Attrs(models.Category{Name: cat.Name}).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed category %d: %w", cat.Code, err)
		}
	}
	return nil
}

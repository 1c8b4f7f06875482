package ledger

import (
	"fmt"
	"testing"
	"time"

	"money-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 建一个内存 sqlite，每个测试各用各的
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Account{},
		&models.Transaction{},
		&models.InvestmentHolding{},
		&models.RecurringPattern{},
		&models.MerchantAlias{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

var testUserSeq int

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	testUserSeq++
	user := &models.User{
		Username:     fmt.Sprintf("tester%d", testUserSeq),
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, group models.AccountGroup, balance string) *models.Account {
	t.Helper()
	acct := &models.Account{
		UserID:           userID,
		Name:             string(group) + " account",
		AccountGroup:     group,
		CurrentBalance:   dec(balance),
		BalanceUpdatedAt: time.Now(),
	}
	if err := db.Create(acct).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acct
}

func seedCategory(t *testing.T, db *gorm.DB, code int) *models.Category {
	t.Helper()
	cat := &models.Category{Code: code, Name: fmt.Sprintf("category-%d", code)}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return cat
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// date 构造一个便于断言的 UTC 时间
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

package ledger

import (
	"testing"
	"time"

	"money-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func simpleCreate(acctID uint, amount string) CreateInput {
	return CreateInput{
		AccountID:    acctID,
		CategoryCode: 1,
		Type:         models.TransactionTypeDebit,
		Amount:       dec(amount),
		DateTime:     date(2024, 3, 1),
	}
}

// ============ 创建 ============

// TestServiceCreate_AppliesBalance 普通支出：记一笔并扣余额
func TestServiceCreate_AppliesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	txn, err := svc.Create(user.ID, simpleCreate(acct.ID, "123.45"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if txn.ID == 0 {
		t.Fatal("transaction not persisted")
	}
	if got := loadAccount(t, db, acct.ID).CurrentBalance; !got.Equal(dec("876.55")) {
		t.Errorf("balance = %s, want 876.55", got)
	}
}

// TestServiceCreate_Validation 非法输入直接拒绝，不写库
func TestServiceCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"zero amount", func(in *CreateInput) { in.Amount = dec("0") }},
		{"negative amount", func(in *CreateInput) { in.Amount = dec("-5") }},
		{"bad type", func(in *CreateInput) { in.Type = "SIDEWAYS" }},
		{"zero date", func(in *CreateInput) { in.DateTime = time.Time{} }},
		{"investment without symbol", func(in *CreateInput) {
			in.InvestmentAction = models.InvestmentActionBuy
			in.Quantity = decPtr("1")
			in.PricePerUnit = decPtr("1")
		}},
		{"investment on a transfer", func(in *CreateInput) {
			in.InvestmentAction = models.InvestmentActionBuy
			in.AssetSymbol = "AAPL"
			in.Quantity = decPtr("1")
			in.PricePerUnit = decPtr("1")
			in.IsTransfer = true
			in.ToAccountID = acct.ID + 1
		}},
		{"recurring without frequency", func(in *CreateInput) { in.IsRecurring = true }},
	}
	for _, c := range cases {
		in := simpleCreate(acct.ID, "100")
		c.mutate(&in)
		if _, err := svc.Create(user.ID, in); KindOf(err) != KindValidation {
			t.Errorf("%s: kind = %v, want VALIDATION", c.name, KindOf(err))
		}
	}

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected inputs left %d rows", count)
	}
}

// TestServiceCreate_Ownership 账户不存在报 NOT_FOUND，别人的账户报 FORBIDDEN
func TestServiceCreate_Ownership(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	other := seedUser(t, db)
	foreign := seedAccount(t, db, other.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	if _, err := svc.Create(user.ID, simpleCreate(foreign.ID+100, "100")); KindOf(err) != KindNotFound {
		t.Errorf("missing account: kind = %v, want NOT_FOUND", KindOf(err))
	}
	if _, err := svc.Create(user.ID, simpleCreate(foreign.ID, "100")); KindOf(err) != KindForbidden {
		t.Errorf("foreign account: kind = %v, want FORBIDDEN", KindOf(err))
	}
}

// TestService_Unauthenticated 所有入口都要求已登录
func TestService_Unauthenticated(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)

	if _, err := svc.Create(0, simpleCreate(1, "100")); KindOf(err) != KindUnauthenticated {
		t.Errorf("create: kind = %v, want UNAUTHENTICATED", KindOf(err))
	}
	if _, err := svc.Update(0, 1, UpdateInput{}); KindOf(err) != KindUnauthenticated {
		t.Errorf("update: kind = %v, want UNAUTHENTICATED", KindOf(err))
	}
	if _, err := svc.Delete(0, 1); KindOf(err) != KindUnauthenticated {
		t.Errorf("delete: kind = %v, want UNAUTHENTICATED", KindOf(err))
	}
}

// TestServiceCreate_UnknownCategory 类别编码不存在要报 NOT_FOUND
func TestServiceCreate_UnknownCategory(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")

	in := simpleCreate(acct.ID, "100")
	in.CategoryCode = 99
	if _, err := svc.Create(user.ID, in); KindOf(err) != KindNotFound {
		t.Errorf("kind = %v, want NOT_FOUND", KindOf(err))
	}
}

// ============ 别名生命周期 ============

// TestServiceAlias_Lifecycle 同名商户复用并累计，删到最后一笔整行回收
func TestServiceAlias_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	in := simpleCreate(acct.ID, "10")
	in.MerchantName = "楼下便利店"
	first, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.AliasID == nil || second.AliasID == nil || *first.AliasID != *second.AliasID {
		t.Fatal("same merchant name should resolve to one alias")
	}

	var alias models.MerchantAlias
	if err := db.First(&alias, *first.AliasID).Error; err != nil {
		t.Fatalf("load alias: %v", err)
	}
	if alias.UsageCount != 2 {
		t.Errorf("usageCount = %d, want 2", alias.UsageCount)
	}

	if _, err := svc.Delete(user.ID, first.ID); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if err := db.First(&alias, alias.ID).Error; err != nil {
		t.Fatalf("alias gone too early: %v", err)
	}
	if alias.UsageCount != 1 {
		t.Errorf("usageCount after one delete = %d, want 1", alias.UsageCount)
	}

	if _, err := svc.Delete(user.ID, second.ID); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	if err := db.First(&models.MerchantAlias{}, alias.ID).Error; err != gorm.ErrRecordNotFound {
		t.Errorf("alias should be deleted with its last reference, got %v", err)
	}
}

// TestServiceUpdate_MerchantSwap 换商户名：旧别名释放，新别名建档
func TestServiceUpdate_MerchantSwap(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	in := simpleCreate(acct.ID, "10")
	in.MerchantName = "旧商户"
	txn, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldAliasID := *txn.AliasID

	name := "新商户"
	updated, err := svc.Update(user.ID, txn.ID, UpdateInput{MerchantName: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AliasID == nil || *updated.AliasID == oldAliasID {
		t.Fatal("alias not swapped")
	}
	if err := db.First(&models.MerchantAlias{}, oldAliasID).Error; err != gorm.ErrRecordNotFound {
		t.Errorf("old alias should be reclaimed, got %v", err)
	}
	var fresh models.MerchantAlias
	if err := db.First(&fresh, *updated.AliasID).Error; err != nil {
		t.Fatalf("new alias missing: %v", err)
	}
	if fresh.Name != "新商户" || fresh.UsageCount != 1 {
		t.Errorf("new alias name=%q usage=%d", fresh.Name, fresh.UsageCount)
	}
}

// ============ 更新 ============

// TestServiceUpdate_ImmutableFields 金额、日期、方向、账户出现在补丁里就报参数错误
func TestServiceUpdate_ImmutableFields(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	txn, err := svc.Create(user.ID, simpleCreate(acct.ID, "100"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := dec("999")
	typ := models.TransactionTypeCredit
	when := date(2024, 4, 1)
	acctID := acct.ID

	cases := []struct {
		name string
		in   UpdateInput
	}{
		{"amount", UpdateInput{Amount: &amount}},
		{"type", UpdateInput{Type: &typ}},
		{"date", UpdateInput{DateTime: &when}},
		{"account", UpdateInput{AccountID: &acctID}},
	}
	for _, c := range cases {
		if _, err := svc.Update(user.ID, txn.ID, c.in); KindOf(err) != KindValidation {
			t.Errorf("%s: kind = %v, want VALIDATION", c.name, KindOf(err))
		}
	}

	// 原记录和余额不能被碰
	if got := loadTxn(t, db, txn.ID); !got.Amount.Equal(dec("100")) {
		t.Errorf("amount changed to %s", got.Amount)
	}
	if got := loadAccount(t, db, acct.ID).CurrentBalance; !got.Equal(dec("900")) {
		t.Errorf("balance = %s, want 900", got)
	}
}

// TestServiceUpdate_CategoryRelinksPattern 周期交易换类别要迁到新键的模式下
func TestServiceUpdate_CategoryRelinksPattern(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)
	seedCategory(t, db, 2)

	in := simpleCreate(acct.ID, "50")
	in.IsRecurring = true
	in.Frequency = models.FrequencyMonthly
	txn, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldPatternID := *txn.RecurringPatternID

	code := 2
	updated, err := svc.Update(user.ID, txn.ID, UpdateInput{CategoryCode: &code})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RecurringPatternID == nil {
		t.Fatal("transaction detached from recurring pattern")
	}
	// 旧模式只剩这一个成员，应当随之删除
	if p := loadPattern(t, db, oldPatternID); p != nil {
		t.Error("old pattern should be deleted with its sole member")
	}
	// 新模式挂在新类别下，并沿用原来的频率
	p := loadPattern(t, db, *updated.RecurringPatternID)
	if p == nil {
		t.Fatal("re-keyed pattern missing")
	}
	if p.CategoryID != updated.CategoryID {
		t.Error("new pattern not keyed by the new category")
	}
	if p.Frequency != models.FrequencyMonthly {
		t.Error("new pattern did not inherit the frequency")
	}
}

// TestServiceUpdate_RecurringToggle 周期开关：打开建模式，关掉解挂
func TestServiceUpdate_RecurringToggle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	txn, err := svc.Create(user.ID, simpleCreate(acct.ID, "50"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	on := true
	freq := models.FrequencyWeekly
	updated, err := svc.Update(user.ID, txn.ID, UpdateInput{IsRecurring: &on, Frequency: &freq})
	if err != nil {
		t.Fatalf("turn on: %v", err)
	}
	if updated.RecurringPatternID == nil {
		t.Fatal("no pattern created when turning recurring on")
	}
	patternID := *updated.RecurringPatternID

	off := false
	updated, err = svc.Update(user.ID, txn.ID, UpdateInput{IsRecurring: &off})
	if err != nil {
		t.Fatalf("turn off: %v", err)
	}
	if updated.RecurringPatternID != nil || updated.IsRecurring {
		t.Error("recurring flag or pattern link survived the toggle off")
	}
	if p := loadPattern(t, db, patternID); p != nil {
		t.Error("pattern should be deleted with its sole member")
	}
}

// ============ 删除 ============

// TestServiceDelete_RestoresEverything 删除要完整还原余额、持仓和模式
func TestServiceDelete_RestoresEverything(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupInvestment, "10000")
	seedCategory(t, db, 1)

	in := simpleCreate(acct.ID, "1000")
	in.AssetSymbol = "AAPL"
	in.InvestmentAction = models.InvestmentActionBuy
	in.Quantity = decPtr("10")
	in.PricePerUnit = decPtr("100")
	txn, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := loadAccount(t, db, acct.ID).CurrentBalance; !got.Equal(dec("9000")) {
		t.Fatalf("balance after buy = %s, want 9000", got)
	}

	res, err := svc.Delete(user.ID, txn.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.Success || res.TransactionID != txn.ID {
		t.Errorf("result = %+v", res)
	}
	if got := loadAccount(t, db, acct.ID).CurrentBalance; !got.Equal(dec("10000")) {
		t.Errorf("balance not restored: %s", got)
	}
	if h := loadHolding(t, db, user.ID, acct.ID); h != nil {
		t.Errorf("holding not reversed, qty=%s", h.TotalQuantity)
	}
}

// TestServiceDelete_Idempotent 重复删除和删除不存在的记录都算成功
func TestServiceDelete_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	txn, err := svc.Create(user.ID, simpleCreate(acct.ID, "100"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Delete(user.ID, txn.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	res, err := svc.Delete(user.ID, txn.ID)
	if err != nil || !res.Success {
		t.Errorf("second delete: res=%+v err=%v", res, err)
	}
	// 余额只能被还原一次
	if got := loadAccount(t, db, acct.ID).CurrentBalance; !got.Equal(dec("1000")) {
		t.Errorf("balance = %s, want 1000", got)
	}
}

// TestServiceDelete_ForeignTransaction 别人的记录不能删
func TestServiceDelete_ForeignTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	owner := seedUser(t, db)
	intruder := seedUser(t, db)
	acct := seedAccount(t, db, owner.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	txn, err := svc.Create(owner.ID, simpleCreate(acct.ID, "100"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Delete(intruder.ID, txn.ID); KindOf(err) != KindForbidden {
		t.Errorf("kind = %v, want FORBIDDEN", KindOf(err))
	}
	if loadTxn(t, db, txn.ID) == nil {
		t.Error("transaction deleted by a non-owner")
	}
}

// TestServiceCreate_RoundsAmount 金额入库统一两位小数
func TestServiceCreate_RoundsAmount(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := seedUser(t, db)
	acct := seedAccount(t, db, user.ID, models.AccountGroupPrepaid, "1000")
	seedCategory(t, db, 1)

	in := simpleCreate(acct.ID, "10.005")
	txn, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := decimal.RequireFromString("10.005").Round(2)
	if !txn.Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", txn.Amount, want)
	}
}

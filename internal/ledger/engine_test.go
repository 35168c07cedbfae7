package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
	"github.com/khata-app/khata/internal/testutil"
)

func TestGetLedgerRejectsUnknownKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, err := New(db.Storage).GetLedger(context.Background(), model.LedgerKind("vault"), testutil.Date(2026, time.March, 1))
	require.Error(t, err)
}

func TestGetLedgerCreditSaleThenCashPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	customerID := db.Customer("Meena", testutil.Dec("0"))
	day1 := testutil.Date(2026, time.March, 1)
	day2 := testutil.Date(2026, time.March, 2)
	day3 := testutil.Date(2026, time.March, 3)

	// A credit sale touches no physical ledger.
	db.Transaction(model.Transaction{
		Date:        day1,
		BaseAction:  model.ActionSaleToCustomer,
		PaymentMode: model.ModeCredit,
		Amount:      testutil.Dec("300"),
		UserID:      &customerID,
	})
	// A cash payment settles part of it.
	db.Transaction(model.Transaction{
		Date:        day2,
		BaseAction:  model.ActionPaymentFromCustomer,
		PaymentMode: model.ModeCash,
		Amount:      testutil.Dec("-200"),
		UserID:      &customerID,
	})

	day1Report, err := engine.GetLedger(ctx, model.LedgerCash, day1)
	require.NoError(t, err)
	assert.Empty(t, day1Report.Entries)
	assert.True(t, day1Report.Closing.IsZero())

	day2Report, err := engine.GetLedger(ctx, model.LedgerCash, day2)
	require.NoError(t, err)
	require.Len(t, day2Report.Entries, 1)
	assert.True(t, day2Report.Opening.IsZero())
	assert.True(t, day2Report.Entries[0].Debit.Equal(testutil.Dec("200")))
	assert.True(t, day2Report.TotalDebit.Equal(testutil.Dec("200")))
	assert.True(t, day2Report.TotalCredit.IsZero())
	assert.True(t, day2Report.NetChange.Equal(testutil.Dec("200")))
	assert.True(t, day2Report.Closing.Equal(testutil.Dec("200")))
	assert.Equal(t, "Payment Received from Customer (Cash)", day2Report.Entries[0].Label)

	// Day 2's closing balance is day 3's opening balance.
	day3Report, err := engine.GetLedger(ctx, model.LedgerBank, day3)
	require.NoError(t, err)
	assert.True(t, day3Report.Opening.IsZero())

	day3Cash, err := engine.GetLedger(ctx, model.LedgerCash, day3)
	require.NoError(t, err)
	assert.True(t, day3Cash.Opening.Equal(day2Report.Closing))
}

func TestGetLedgerTransferMovesBothLedgers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	day1 := testutil.Date(2026, time.April, 1)
	day2 := testutil.Date(2026, time.April, 2)

	db.Transaction(model.Transaction{
		Date:        day1,
		BaseAction:  model.ActionOtherIncome,
		PaymentMode: model.ModeCash,
		Amount:      testutil.Dec("1000"),
	})
	db.Transaction(model.Transaction{
		Date:        day2,
		BaseAction:  model.ActionCashDepositToBank,
		PaymentMode: model.ModeNone,
		Amount:      testutil.Dec("600"),
	})

	cash, err := engine.GetLedger(ctx, model.LedgerCash, day2)
	require.NoError(t, err)
	bank, err := engine.GetLedger(ctx, model.LedgerBank, day2)
	require.NoError(t, err)

	assert.True(t, cash.Opening.Equal(testutil.Dec("1000")))
	assert.True(t, cash.Closing.Equal(testutil.Dec("400")))
	assert.True(t, bank.Closing.Equal(testutil.Dec("600")))

	// The transfer conserves combined money.
	combined := cash.Closing.Add(bank.Closing)
	assert.True(t, combined.Equal(testutil.Dec("1000")))
}

func TestGetLedgerSameDayInsertionOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	day := testutil.Date(2026, time.May, 5)
	db.Transaction(model.Transaction{
		Date:        day,
		BaseAction:  model.ActionOtherIncome,
		PaymentMode: model.ModeCash,
		Amount:      testutil.Dec("100"),
	})
	db.Transaction(model.Transaction{
		Date:        day,
		BaseAction:  model.ActionBusinessExpense,
		PaymentMode: model.ModeCash,
		Amount:      testutil.Dec("30"),
		Description: "tea",
	})
	db.Transaction(model.Transaction{
		Date:        day,
		BaseAction:  model.ActionOtherIncome,
		PaymentMode: model.ModeCash,
		Amount:      testutil.Dec("50"),
	})

	report, err := engine.GetLedger(ctx, model.LedgerCash, day)
	require.NoError(t, err)
	require.Len(t, report.Entries, 3)

	// Running balance follows insertion order.
	assert.True(t, report.Entries[0].Running.Equal(testutil.Dec("100")))
	assert.True(t, report.Entries[1].Running.Equal(testutil.Dec("70")))
	assert.True(t, report.Entries[2].Running.Equal(testutil.Dec("120")))
	assert.True(t, report.Closing.Equal(testutil.Dec("120")))
	assert.True(t, report.NetChange.Equal(testutil.Dec("50")))
}

func TestGetLedgerIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	day := testutil.Date(2026, time.June, 1)
	db.Transaction(model.Transaction{
		Date:        day,
		BaseAction:  model.ActionOtherIncome,
		PaymentMode: model.ModeBank,
		Amount:      testutil.Dec("250"),
	})

	first, err := engine.GetLedger(ctx, model.LedgerBank, day)
	require.NoError(t, err)
	second, err := engine.GetLedger(ctx, model.LedgerBank, day)
	require.NoError(t, err)

	assert.True(t, first.Closing.Equal(second.Closing))
	assert.Equal(t, len(first.Entries), len(second.Entries))
}

// fakeReader returns canned transactions; the real store refuses to
// persist categories outside the taxonomy, so broken data is simulated
// here.
type fakeReader struct {
	txns []model.Transaction
}

func (f *fakeReader) GetTransactions(_ context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, txn := range f.txns {
		day := model.Day(txn.Date)
		if filter.StartDate != nil && day.Before(model.Day(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && day.After(model.Day(*filter.EndDate)) {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func TestGetLedgerUnknownCategoryWarnsAndExcludes(t *testing.T) {
	day := testutil.Date(2026, time.July, 1)
	reader := &fakeReader{txns: []model.Transaction{
		{ID: 1, Date: day, BaseAction: model.ActionOtherIncome, PaymentMode: model.ModeCash, Amount: testutil.Dec("100")},
		{ID: 2, Date: day, BaseAction: "legacy_mystery", PaymentMode: model.ModeCash, Amount: testutil.Dec("9999")},
	}}

	report, err := New(reader).GetLedger(context.Background(), model.LedgerCash, day)
	require.NoError(t, err)

	// The broken transaction is excluded from totals but surfaced.
	require.Len(t, report.Entries, 1)
	assert.True(t, report.Closing.Equal(testutil.Dec("100")))
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "legacy_mystery")
}

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-app/khata/internal/common"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
)

func setupStore(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedCustomer(t *testing.T, store *SQLiteStorage, name string) int64 {
	t.Helper()
	id, err := store.CreateParty(context.Background(), &model.Party{
		Name: name, Role: model.RoleCustomer,
	})
	require.NoError(t, err)
	return id
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveAndGetTransaction(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	customerID := seedCustomer(t, store, "Meena")
	productID, err := store.CreateProduct(ctx, &model.Product{
		Name: "Rice 5kg", SalePrice: dec("55"), PurchasePrice: dec("40"), CurrentStock: 20,
	})
	require.NoError(t, err)

	txn := &model.Transaction{
		Date:        date(2026, time.March, 1),
		BaseAction:  model.ActionSaleToCustomer,
		PaymentMode: model.ModeCash,
		Amount:      dec("110.50"),
		Description: "two bags",
		UserID:      &customerID,
		Items: []model.TransactionItem{
			{ProductID: productID, Quantity: -2, UnitPrice: dec("55.25")},
		},
	}

	id, err := store.SaveTransaction(ctx, txn)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ActionSaleToCustomer, got.BaseAction)
	assert.Equal(t, model.ModeCash, got.PaymentMode)
	assert.True(t, got.Amount.Equal(dec("110.50")))
	assert.Equal(t, "two bags", got.Description)
	require.NotNil(t, got.UserID)
	assert.Equal(t, customerID, *got.UserID)
	assert.Nil(t, got.LenderID)
	assert.True(t, got.Date.Equal(date(2026, time.March, 1)))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(-2), got.Items[0].Quantity)
	assert.True(t, got.Items[0].UnitPrice.Equal(dec("55.25")))
}

func TestSaveTransactionRejectsUnknownCategory(t *testing.T) {
	store := setupStore(t)

	_, err := store.SaveTransaction(context.Background(), &model.Transaction{
		Date:        date(2026, time.March, 1),
		BaseAction:  "mystery",
		PaymentMode: model.ModeCash,
		Amount:      dec("10"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransaction))
}

func TestSaveTransactionRejectsItemsOnMoneyOnlyCategory(t *testing.T) {
	store := setupStore(t)

	_, err := store.SaveTransaction(context.Background(), &model.Transaction{
		Date:        date(2026, time.March, 1),
		BaseAction:  model.ActionPaymentFromCustomer,
		PaymentMode: model.ModeCash,
		Amount:      dec("-10"),
		Items: []model.TransactionItem{
			{ProductID: 1, Quantity: 1, UnitPrice: dec("10")},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransaction))
}

func TestSaveTransactionRejectsWrongSign(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	customerID := seedCustomer(t, store, "Asha")

	_, err := store.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.April, 1),
		BaseAction:  model.ActionLoanToCustomer,
		PaymentMode: model.ModeCash,
		Amount:      dec("1000"),
		UserID:      &customerID,
	})
	require.NoError(t, err)

	// Repayments settle the loan and must be stored negative; a positive
	// one would inflate the outstanding balance instead of reducing it.
	_, err = store.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.May, 1),
		BaseAction:  model.ActionLoanRepaymentFromCust,
		PaymentMode: model.ModeCash,
		Amount:      dec("400"),
		UserID:      &customerID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransaction))

	_, err = store.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.May, 1),
		BaseAction:  model.ActionLoanRepaymentFromCust,
		PaymentMode: model.ModeCash,
		Amount:      dec("-400"),
		UserID:      &customerID,
	})
	require.NoError(t, err)

	_, err = store.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.May, 2),
		BaseAction:  model.ActionSaleToCustomer,
		PaymentMode: model.ModeCredit,
		Amount:      dec("-50"),
		UserID:      &customerID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransaction))
}

func TestGetTransactionsFilterAndOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	aliceID := seedCustomer(t, store, "Alice")
	bobID := seedCustomer(t, store, "Bob")

	// Inserted out of date order on purpose.
	for _, seed := range []struct {
		date   time.Time
		user   int64
		amount string
	}{
		{date(2026, time.March, 3), aliceID, "30"},
		{date(2026, time.March, 1), aliceID, "10"},
		{date(2026, time.March, 2), bobID, "20"},
		{date(2026, time.March, 1), bobID, "15"},
	} {
		userID := seed.user
		_, err := store.SaveTransaction(ctx, &model.Transaction{
			Date:        seed.date,
			BaseAction:  model.ActionSaleToCustomer,
			PaymentMode: model.ModeCredit,
			Amount:      dec(seed.amount),
			UserID:      &userID,
		})
		require.NoError(t, err)
	}

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Date ascending, insertion order within a day.
	assert.True(t, all[0].Amount.Equal(dec("10")))
	assert.True(t, all[1].Amount.Equal(dec("15")))
	assert.True(t, all[2].Amount.Equal(dec("20")))
	assert.True(t, all[3].Amount.Equal(dec("30")))

	start := date(2026, time.March, 2)
	end := date(2026, time.March, 3)
	ranged, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	alice, err := store.GetTransactions(ctx, service.TransactionFilter{UserID: &aliceID})
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	action := model.ActionSaleToCustomer
	sameDay := date(2026, time.March, 1)
	narrow, err := store.GetTransactions(ctx, service.TransactionFilter{
		StartDate:  &sameDay,
		EndDate:    &sameDay,
		BaseAction: &action,
	})
	require.NoError(t, err)
	assert.Len(t, narrow, 2)
}

func TestGetTransactionsRejectsInvertedRange(t *testing.T) {
	store := setupStore(t)

	start := date(2026, time.March, 5)
	end := date(2026, time.March, 1)
	_, err := store.GetTransactions(context.Background(), service.TransactionFilter{
		StartDate: &start, EndDate: &end,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
}

func TestDeleteTransactionCascadesItems(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	productID, err := store.CreateProduct(ctx, &model.Product{
		Name: "Soap", SalePrice: dec("20"), CurrentStock: 5,
	})
	require.NoError(t, err)

	id, err := store.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.March, 1),
		BaseAction:  model.ActionStockAdjustment,
		PaymentMode: model.ModeNone,
		Amount:      dec("0"),
		Items: []model.TransactionItem{
			{ProductID: productID, Quantity: 3, UnitPrice: dec("0")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTransaction(ctx, id))

	_, err = store.GetTransactionByID(ctx, id)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = store.DeleteTransaction(ctx, id)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestPartyCRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateParty(ctx, &model.Party{
		Name: "Meena", Phone: "9876543210", Role: model.RoleCustomer,
		InitialBalance: dec("150"),
	})
	require.NoError(t, err)

	got, err := store.GetPartyByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Meena", got.Name)
	assert.True(t, got.InitialBalance.Equal(dec("150")))

	got.Phone = "1234"
	require.NoError(t, store.UpdateParty(ctx, got))
	got, err = store.GetPartyByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1234", got.Phone)

	customers, err := store.ListParties(ctx, model.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
	suppliers, err := store.ListParties(ctx, model.RoleSupplier)
	require.NoError(t, err)
	assert.Empty(t, suppliers)

	_, err = store.GetPartyByID(ctx, 404)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestAdjustStock(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateProduct(ctx, &model.Product{
		Name: "Rice 5kg", SalePrice: dec("55"), PurchasePrice: dec("40"), CurrentStock: 10,
	})
	require.NoError(t, err)

	require.NoError(t, store.AdjustStock(ctx, id, -3))
	require.NoError(t, store.AdjustStock(ctx, id, 1))

	got, err := store.GetProductByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.CurrentStock)

	err = store.AdjustStock(ctx, 404, 1)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestProductsByPreferredSupplier(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	supplierID, err := store.CreateParty(ctx, &model.Party{Name: "Mills & Co", Role: model.RoleSupplier})
	require.NoError(t, err)

	_, err = store.CreateProduct(ctx, &model.Product{
		Name: "Rice 5kg", SalePrice: dec("55"), PreferredSupplierID: &supplierID,
	})
	require.NoError(t, err)
	_, err = store.CreateProduct(ctx, &model.Product{Name: "Unlinked", SalePrice: dec("10")})
	require.NoError(t, err)

	linked, err := store.GetProductsByPreferredSupplier(ctx, supplierID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Rice 5kg", linked[0].Name)
}

func TestInvoiceRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	customerID := seedCustomer(t, store, "Meena")
	productID, err := store.CreateProduct(ctx, &model.Product{Name: "Soap", SalePrice: dec("20")})
	require.NoError(t, err)

	inv := &model.Invoice{
		UserID:      customerID,
		Kind:        model.KindSale,
		InvoiceDate: date(2026, time.April, 1),
		TaxPercent:  dec("5"),
		TotalAmount: dec("42"),
		PaidAmount:  dec("0"),
		Notes:       "April order",
		Items: []model.InvoiceItem{
			{ProductID: productID, Quantity: 2, UnitPrice: dec("20")},
		},
	}

	id, err := store.CreateInvoice(ctx, inv)
	require.NoError(t, err)

	got, err := store.GetInvoiceByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.KindSale, got.Kind)
	assert.True(t, got.TotalAmount.Equal(dec("42")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(2), got.Items[0].Quantity)

	// Update rewrites the item set.
	got.Items = []model.InvoiceItem{
		{ProductID: productID, Quantity: 5, UnitPrice: dec("19")},
	}
	got.TotalAmount = dec("99.75")
	require.NoError(t, store.UpdateInvoice(ctx, got))

	got, err = store.GetInvoiceByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(5), got.Items[0].Quantity)
	assert.True(t, got.TotalAmount.Equal(dec("99.75")))

	listed, err := store.ListInvoices(ctx, &customerID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// Items can be cleared without touching the header.
	require.NoError(t, store.DeleteInvoiceItems(ctx, id))
	got, err = store.GetInvoiceByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	require.NoError(t, store.DeleteInvoice(ctx, id))
	_, err = store.GetInvoiceByID(ctx, id)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestAgreementRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	lenderID, err := store.CreateParty(ctx, &model.Party{Name: "City Bank", Role: model.RoleSupplier})
	require.NoError(t, err)

	id, err := store.CreateAgreement(ctx, &model.Agreement{
		Type:         model.LoanTakenByBiz,
		LenderID:     lenderID,
		Principal:    dec("10000"),
		InterestRate: dec("12.5"),
		RateBasis:    model.RateAnnual,
		StartDate:    date(2026, time.January, 15),
		Details:      "working capital",
	})
	require.NoError(t, err)

	got, err := store.GetAgreementByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.LoanTakenByBiz, got.Type)
	assert.True(t, got.Principal.Equal(dec("10000")))
	assert.True(t, got.InterestRate.Equal(dec("12.5")))
	assert.Equal(t, model.RateAnnual, got.RateBasis)
	assert.True(t, got.StartDate.Equal(date(2026, time.January, 15)))

	all, err := store.ListAgreements(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNotificationDedup(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddNotification(ctx, "Low stock: Soap (2 left)"))
	require.NoError(t, store.AddNotification(ctx, "Low stock: Soap (2 left)"))
	require.NoError(t, store.AddNotification(ctx, "Low stock: Rice (1 left)"))

	unread, err := store.ListNotifications(ctx, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	// Reading one lets the same message repeat.
	var soapID int64
	for _, n := range unread {
		if n.Message == "Low stock: Soap (2 left)" {
			soapID = n.ID
		}
	}
	require.NoError(t, store.MarkNotificationRead(ctx, soapID))
	require.NoError(t, store.AddNotification(ctx, "Low stock: Soap (2 left)"))

	unread, err = store.ListNotifications(ctx, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	all, err := store.ListNotifications(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTransactionCommitAndRollback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	customerID := seedCustomer(t, store, "Meena")

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.May, 1),
		BaseAction:  model.ActionSaleToCustomer,
		PaymentMode: model.ModeCredit,
		Amount:      dec("100"),
		UserID:      &customerID,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.SaveTransaction(ctx, &model.Transaction{
		Date:        date(2026, time.May, 1),
		BaseAction:  model.ActionSaleToCustomer,
		PaymentMode: model.ModeCredit,
		Amount:      dec("100"),
		UserID:      &customerID,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	txns, err = store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

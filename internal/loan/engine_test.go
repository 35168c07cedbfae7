package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/testutil"
)

func seedAgreement(t *testing.T, db *testutil.TestDB, agreement model.Agreement) int64 {
	t.Helper()
	id, err := db.Storage.CreateAgreement(context.Background(), &agreement)
	require.NoError(t, err)
	return id
}

func TestAccruedInterestAnnualBasis(t *testing.T) {
	// Principal and rate chosen so interest accrues at exactly 10 per
	// elapsed day: 36525 * 10% / 365.25.
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("City Bank", testutil.Dec("0"))
	start := testutil.Date(2026, time.January, 1)
	agreementID := seedAgreement(t, db, model.Agreement{
		Type:         model.LoanTakenByBiz,
		LenderID:     lenderID,
		Principal:    testutil.Dec("36525"),
		InterestRate: testutil.Dec("10"),
		RateBasis:    model.RateAnnual,
		StartDate:    start,
	})

	b, err := engine.GetAgreementBreakdown(ctx, agreementID, start.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.True(t, b.AccruedInterest.Equal(testutil.Dec("300")), "got %s", b.AccruedInterest)
	assert.True(t, b.InterestPayable.Equal(testutil.Dec("300")))
	assert.True(t, b.PrincipalOutstanding.Equal(testutil.Dec("36525")))

	// Intra-day times never change the accrual.
	sameDayLater := start.AddDate(0, 0, 30).Add(23 * time.Hour)
	b2, err := engine.GetAgreementBreakdown(ctx, agreementID, sameDayLater)
	require.NoError(t, err)
	assert.True(t, b.AccruedInterest.Equal(b2.AccruedInterest))
}

func TestAccruedInterestNeverNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("City Bank", testutil.Dec("0"))
	start := testutil.Date(2026, time.June, 1)
	agreementID := seedAgreement(t, db, model.Agreement{
		Type:         model.LoanTakenByBiz,
		LenderID:     lenderID,
		Principal:    testutil.Dec("5000"),
		InterestRate: testutil.Dec("12"),
		RateBasis:    model.RateAnnual,
		StartDate:    start,
	})

	// As-of before the start date accrues nothing.
	b, err := engine.GetAgreementBreakdown(ctx, agreementID, start.AddDate(0, 0, -10))
	require.NoError(t, err)
	assert.True(t, b.AccruedInterest.IsZero())
}

func TestAccrualIsMonotonic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("City Bank", testutil.Dec("0"))
	start := testutil.Date(2026, time.January, 1)
	agreementID := seedAgreement(t, db, model.Agreement{
		Type:         model.LoanTakenByBiz,
		LenderID:     lenderID,
		Principal:    testutil.Dec("10000"),
		InterestRate: testutil.Dec("18"),
		RateBasis:    model.RateAnnual,
		StartDate:    start,
	})

	prev := testutil.Dec("0")
	for _, days := range []int{0, 1, 7, 30, 90, 365} {
		b, err := engine.GetAgreementBreakdown(ctx, agreementID, start.AddDate(0, 0, days))
		require.NoError(t, err)
		assert.True(t, b.AccruedInterest.GreaterThanOrEqual(prev),
			"accrual went backwards at day %d", days)
		prev = b.AccruedInterest
	}
}

func TestBreakdownSumsSettledTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("City Bank", testutil.Dec("0"))
	start := testutil.Date(2026, time.January, 1)
	agreementID := seedAgreement(t, db, model.Agreement{
		Type:         model.LoanTakenByBiz,
		LenderID:     lenderID,
		Principal:    testutil.Dec("10000"),
		InterestRate: testutil.Dec("0"),
		RateBasis:    model.RateAnnual,
		StartDate:    start,
	})

	db.Transaction(model.Transaction{
		Date: start.AddDate(0, 1, 0), BaseAction: model.ActionBizLoanPrincipalRepaid,
		PaymentMode: model.ModeBank, Amount: testutil.Dec("-2000"),
		LenderID: &lenderID, AgreementID: &agreementID,
	})
	db.Transaction(model.Transaction{
		Date: start.AddDate(0, 2, 0), BaseAction: model.ActionBizLoanPrincipalRepaid,
		PaymentMode: model.ModeCash, Amount: testutil.Dec("-1500"),
		LenderID: &lenderID, AgreementID: &agreementID,
	})
	db.Transaction(model.Transaction{
		Date: start.AddDate(0, 1, 0), BaseAction: model.ActionBizLoanInterestPaid,
		PaymentMode: model.ModeBank, Amount: testutil.Dec("-150"),
		LenderID: &lenderID, AgreementID: &agreementID,
	})

	b, err := engine.GetAgreementBreakdown(ctx, agreementID, start.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, b.PrincipalPaid.Equal(testutil.Dec("3500")), "got %s", b.PrincipalPaid)
	assert.True(t, b.PrincipalOutstanding.Equal(testutil.Dec("6500")))
	assert.True(t, b.InterestPaid.Equal(testutil.Dec("150")))
	// Zero rate: nothing accrues, overpayment clamps to zero payable.
	assert.True(t, b.InterestPayable.IsZero())
}

func TestBreakdownLoanGivenByBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("Borrower Traders", testutil.Dec("0"))
	start := testutil.Date(2026, time.February, 1)
	agreementID := seedAgreement(t, db, model.Agreement{
		Type:         model.LoanGivenByBiz,
		LenderID:     lenderID,
		Principal:    testutil.Dec("8000"),
		InterestRate: testutil.Dec("0"),
		RateBasis:    model.RateAnnual,
		StartDate:    start,
	})

	db.Transaction(model.Transaction{
		Date: start.AddDate(0, 1, 0), BaseAction: model.ActionBizLoanPrincipalReceived,
		PaymentMode: model.ModeBank, Amount: testutil.Dec("-3000"),
		LenderID: &lenderID, AgreementID: &agreementID,
	})
	db.Transaction(model.Transaction{
		Date: start.AddDate(0, 1, 0), BaseAction: model.ActionBizLoanInterestReceived,
		PaymentMode: model.ModeCash, Amount: testutil.Dec("-80"),
		LenderID: &lenderID, AgreementID: &agreementID,
	})

	b, err := engine.GetAgreementBreakdown(ctx, agreementID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	assert.True(t, b.PrincipalPaid.Equal(testutil.Dec("3000")))
	assert.True(t, b.PrincipalOutstanding.Equal(testutil.Dec("5000")))
	assert.True(t, b.InterestPaid.Equal(testutil.Dec("80")))
}

func TestBreakdownChitUnsupported(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("Chit Group", testutil.Dec("0"))
	agreementID := seedAgreement(t, db, model.Agreement{
		Type:      model.ChitSubscription,
		LenderID:  lenderID,
		Principal: testutil.Dec("12000"),
		RateBasis: model.RateAnnual,
		StartDate: testutil.Date(2026, time.January, 1),
	})

	_, err := engine.GetAgreementBreakdown(ctx, agreementID, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedAgreementType))
}

func TestListBreakdownsSkipsChits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	engine := New(db.Storage)

	lenderID := db.Supplier("City Bank", testutil.Dec("0"))
	start := testutil.Date(2026, time.January, 1)
	seedAgreement(t, db, model.Agreement{
		Type: model.LoanTakenByBiz, LenderID: lenderID,
		Principal: testutil.Dec("10000"), InterestRate: testutil.Dec("10"),
		RateBasis: model.RateAnnual, StartDate: start,
	})
	seedAgreement(t, db, model.Agreement{
		Type: model.ChitSubscription, LenderID: lenderID,
		Principal: testutil.Dec("5000"), RateBasis: model.RateAnnual, StartDate: start,
	})
	seedAgreement(t, db, model.Agreement{
		Type: model.LoanGivenByBiz, LenderID: lenderID,
		Principal: testutil.Dec("2000"), InterestRate: testutil.Dec("5"),
		RateBasis: model.RateAnnual, StartDate: start,
	})

	summaries, err := engine.ListBreakdowns(ctx, start.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

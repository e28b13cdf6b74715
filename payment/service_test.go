package payment

import (
	"context"
	"testing"
	"time"

	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/token"
	"github.com/golang/mock/gomock"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCalendar struct {
	workday bool
	working bool
}

func (c *stubCalendar) IsCompanyWorkday(ctx context.Context, day time.Time) (bool, error) {
	return c.workday, nil
}

func (c *stubCalendar) IsEmployeeWorking(ctx context.Context, employeeID int64, day time.Time) (bool, error) {
	return c.working, nil
}

func TestSplit(t *testing.T) {
	cases := []struct {
		name             string
		amount           int64
		subsidyAvailable int64
		subsidySpent     int64
		monthlySpent     int64
	}{
		{"subsidy covers all", 5000, 10000, 5000, 0},
		{"subsidy partially covers", 15000, 10000, 10000, 5000},
		{"no subsidy", 15000, 0, 0, 15000},
		{"exact subsidy", 10000, 10000, 10000, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subsidy, monthly := Split(tc.amount, tc.subsidyAvailable)
			assert.Equal(t, tc.subsidySpent, subsidy)
			assert.Equal(t, tc.monthlySpent, monthly)
		})
	}
}

type payFixture struct {
	ds       *MockDatastore
	s        *Service
	tokens   *token.Service
	terminal *model.Terminal
	session  *model.LivenessSession
	now      time.Time
}

func newPayFixture(t *testing.T, ctrl *gomock.Controller) *payFixture {
	tokens, err := token.NewService("test-secret", time.Minute)
	require.NoError(t, err)

	ds := NewMockDatastore(ctrl)
	s := InitService(ds, tokens, &stubCalendar{workday: true, working: true}, nil, time.UTC, 0, 0, 0)

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	terminal := &model.Terminal{ID: uuid.NewV4(), Status: model.TerminalStatusActive}
	session := &model.LivenessSession{
		ID:         uuid.NewV4(),
		EmployeeID: 42,
		TerminalID: terminal.ID,
		Status:     model.SessionPassed,
		ExpiresAt:  now.Add(25 * time.Second),
	}

	return &payFixture{ds: ds, s: s, tokens: tokens, terminal: terminal, session: session, now: now}
}

func (f *payFixture) mintToken(t *testing.T) string {
	tok, err := f.tokens.Mint(f.session.EmployeeID, f.session.ID, f.terminal.ID, f.now)
	require.NoError(t, err)
	return tok
}

func TestPayAmountValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)

	_, err := f.s.Pay(context.Background(), f.terminal, "CARD-1", 0, "token")
	assert.ErrorIs(t, err, ErrBadAmount)

	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", -100, "token")
	assert.ErrorIs(t, err, ErrBadAmount)

	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", DefaultMaxMealCents+1, "token")
	assert.ErrorIs(t, err, ErrMaxMealExceeded)

	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", DefaultMaxReceiptCents+1, "token")
	assert.ErrorIs(t, err, ErrMaxReceiptExceeded)
}

func TestPayTokenChecks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)

	_, err := f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, "garbage")
	assert.ErrorIs(t, err, token.ErrTokenInvalid)

	tok := f.mintToken(t)
	f.s.now = func() time.Time { return f.now.Add(2 * time.Minute) }
	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, tok)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
	f.s.now = func() time.Time { return f.now }

	// minted for another terminal
	other, err := f.tokens.Mint(42, f.session.ID, uuid.NewV4(), f.now)
	require.NoError(t, err)
	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, other)
	assert.ErrorIs(t, err, ErrTokenTerminalMismatch)
}

func TestPaySessionGating(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)
	tok := f.mintToken(t)

	f.ds.EXPECT().GetSession(gomock.Any(), f.session.ID).Return(nil, nil)
	_, err := f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, tok)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	usedAt := f.now
	used := *f.session
	used.Status = model.SessionUsed
	used.UsedAt = &usedAt
	f.ds.EXPECT().GetSession(gomock.Any(), f.session.ID).Return(&used, nil)
	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, tok)
	assert.ErrorIs(t, err, ErrSessionAlreadyUsed)

	failed := *f.session
	failed.Status = model.SessionFailed
	f.ds.EXPECT().GetSession(gomock.Any(), f.session.ID).Return(&failed, nil)
	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, tok)
	assert.ErrorIs(t, err, ErrSessionNotPassed)

	foreign := *f.session
	foreign.TerminalID = uuid.NewV4()
	f.ds.EXPECT().GetSession(gomock.Any(), f.session.ID).Return(&foreign, nil)
	_, err = f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, tok)
	assert.ErrorIs(t, err, ErrSessionForbidden)
}

func TestPayApproved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)
	tok := f.mintToken(t)

	f.ds.EXPECT().GetSession(gomock.Any(), f.session.ID).Return(f.session, nil)
	f.ds.EXPECT().
		Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error) {
			assert.Equal(t, f.session.ID, req.SessionID)
			assert.Equal(t, f.terminal.ID, req.TerminalID)
			assert.Equal(t, "CARD-1", req.CardUID)
			assert.Equal(t, int64(15000), req.AmountCents)
			assert.Equal(t, DefaultSubsidyDailyCents, req.SubsidyDailyCents)
			assert.True(t, req.CompanyWorkday)
			assert.True(t, req.EmployeeWorking)
			assert.Equal(t, 202406, req.YearMonth)

			return &AuthorizeResult{
				Transaction: &model.Transaction{
					ID:     uuid.NewV4(),
					Status: model.TransactionApproved,
				},
				SubsidySpent:     10000,
				MonthlySpent:     5000,
				SubsidyTodayLeft: 0,
				MonthlyLeft:      195000,
			}, nil
		})

	result, err := f.s.Pay(context.Background(), f.terminal, "CARD-1", 15000, tok)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionApproved, result.Status)
	assert.Equal(t, int64(10000), result.SubsidySpent)
	assert.Equal(t, int64(5000), result.MonthlySpent)
	assert.Equal(t, int64(0), result.SubsidyTodayLeft)
	assert.Equal(t, int64(195000), result.MonthlyLeft)
}

func TestPayDeclineRecordsTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)
	tok := f.mintToken(t)

	f.ds.EXPECT().GetSession(gomock.Any(), f.session.ID).Return(f.session, nil)
	f.ds.EXPECT().
		Authorize(gomock.Any(), gomock.Any()).
		Return(nil, &Decline{Code: "INSUFFICIENT_MONTHLY_LIMIT", Message: "Недостаточно средств в месячном лимите."})
	f.ds.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
			assert.Equal(t, model.TransactionDeclined, txn.Status)
			assert.Equal(t, f.session.EmployeeID, txn.EmployeeID)
			assert.Equal(t, "CARD-1", txn.CardUID)
			require.NotNil(t, txn.DeclineCode)
			assert.Equal(t, "INSUFFICIENT_MONTHLY_LIMIT", *txn.DeclineCode)
			require.NotNil(t, txn.LivenessSessionID)
			assert.Equal(t, f.session.ID, *txn.LivenessSessionID)
			return txn, nil
		})

	result, err := f.s.Pay(context.Background(), f.terminal, "CARD-1", 5000, tok)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionDeclined, result.Status)
	assert.Equal(t, "INSUFFICIENT_MONTHLY_LIMIT", result.Code)
	assert.Equal(t, "Недостаточно средств в месячном лимите.", result.Message)
}

func TestGetEmployeeInfo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)

	card := &model.Card{ID: 1, UID: "CARD-1", EmployeeID: 42, Status: model.CardStatusActive}
	employee := &model.Employee{
		ID:                42,
		FullName:          "Иванов Иван",
		Kind:              model.EmployeeKindWorker,
		Status:            model.EmployeeStatusActive,
		MonthlyLimitCents: 200000,
	}

	f.ds.EXPECT().GetCardByUID(gomock.Any(), "CARD-1").Return(card, nil)
	f.ds.EXPECT().GetEmployee(gomock.Any(), int64(42)).Return(employee, nil)
	f.ds.EXPECT().HasActiveFaceTemplate(gomock.Any(), int64(42)).Return(false, nil)
	f.ds.EXPECT().GetDailyUsedCents(gomock.Any(), int64(42), gomock.Any()).Return(int64(3000), nil)
	f.ds.EXPECT().GetMonthlyBalance(gomock.Any(), int64(42), 202406).
		Return(&model.MonthlyBalance{EmployeeID: 42, YearMonth: 202406, LimitCents: 200000, UsedCents: 50000}, nil)

	info, err := f.s.GetEmployeeInfo(context.Background(), "CARD-1")
	require.NoError(t, err)
	assert.Equal(t, "42", info.EmployeeID)
	assert.Equal(t, "Иванов Иван", info.FullName)
	assert.Equal(t, int64(7000), info.SubsidyTodayLeft)
	assert.Equal(t, int64(150000), info.MonthlyLeft)
	assert.True(t, info.NeedsFaceEnrollment)
	assert.Nil(t, info.PhotoBase64)
}

func TestGetEmployeeInfoStaffNoSubsidy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)

	card := &model.Card{ID: 1, UID: "CARD-2", EmployeeID: 7, Status: model.CardStatusActive}
	employee := &model.Employee{
		ID:                7,
		FullName:          "Петров Пётр",
		Kind:              model.EmployeeKindStaff,
		Status:            model.EmployeeStatusActive,
		MonthlyLimitCents: 100000,
	}

	f.ds.EXPECT().GetCardByUID(gomock.Any(), "CARD-2").Return(card, nil)
	f.ds.EXPECT().GetEmployee(gomock.Any(), int64(7)).Return(employee, nil)
	f.ds.EXPECT().HasActiveFaceTemplate(gomock.Any(), int64(7)).Return(true, nil)
	f.ds.EXPECT().GetDailyUsedCents(gomock.Any(), int64(7), gomock.Any()).Return(int64(0), nil)
	f.ds.EXPECT().GetMonthlyBalance(gomock.Any(), int64(7), 202406).Return(nil, nil)

	info, err := f.s.GetEmployeeInfo(context.Background(), "CARD-2")
	require.NoError(t, err)
	// staff never receive the subsidy
	assert.Equal(t, int64(0), info.SubsidyTodayLeft)
	// no monthly row yet, the limit comes straight off the employee
	assert.Equal(t, int64(100000), info.MonthlyLeft)
	assert.False(t, info.NeedsFaceEnrollment)
}

func TestGetEmployeeInfoGating(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPayFixture(t, ctrl)

	f.ds.EXPECT().GetCardByUID(gomock.Any(), "MISSING").Return(nil, nil)
	_, err := f.s.GetEmployeeInfo(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrCardNotFound)

	blocked := &model.Card{UID: "BLOCKED", EmployeeID: 1, Status: model.CardStatusLost}
	f.ds.EXPECT().GetCardByUID(gomock.Any(), "BLOCKED").Return(blocked, nil)
	_, err = f.s.GetEmployeeInfo(context.Background(), "BLOCKED")
	assert.ErrorIs(t, err, ErrCardBlocked)
}

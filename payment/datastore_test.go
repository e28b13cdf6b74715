package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/canteen-pay/meal-go/datastore"
	"github.com/canteen-pay/meal-go/model"
	"github.com/jmoiron/sqlx"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &Postgres{datastore.Postgres{DB: sqlx.NewDb(db, "postgres")}}, mock
}

func sessionColumns() []string {
	return []string{
		"id", "employee_id", "terminal_id", "status", "commands", "current_index",
		"anchor_pose", "baseline_pose", "blink_seen", "min_face_distance",
		"fail_reason_code", "created_at", "expires_at", "last_seen_at", "used_at",
	}
}

func sessionRow(id, terminalID uuid.UUID, employeeID int64, status model.SessionStatus, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(sessionColumns()).AddRow(
		id.String(), employeeID, terminalID.String(), string(status), []byte(`[]`), 0,
		nil, nil, false, nil, nil, now, now.Add(25*time.Second), nil, nil,
	)
}

func TestGetTerminalByTokenHash(t *testing.T) {
	pg, mock := newMockPostgres(t)

	terminalID := uuid.NewV4()
	now := time.Now()
	mock.ExpectQuery("^select (.+) from terminals").
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "api_token_hash", "created_at"}).
			AddRow(terminalID.String(), "Terminal #1", "ACTIVE", "deadbeef", now))

	terminal, err := pg.GetTerminalByTokenHash(context.Background(), "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, terminal)
	assert.Equal(t, terminalID, terminal.ID)
	assert.Equal(t, model.TerminalStatusActive, terminal.Status)

	mock.ExpectQuery("^select (.+) from terminals").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "api_token_hash", "created_at"}))

	terminal, err = pg.GetTerminalByTokenHash(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, terminal)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizeSessionNotPassed(t *testing.T) {
	pg, mock := newMockPostgres(t)

	sessionID := uuid.NewV4()
	terminalID := uuid.NewV4()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("^select (.+) from liveness_sessions (.+) for update").
		WithArgs(sessionID.String()).
		WillReturnRows(sessionRow(sessionID, terminalID, 42, model.SessionFailed, now))
	mock.ExpectRollback()

	_, err := pg.Authorize(context.Background(), &AuthorizeRequest{
		SessionID:  sessionID,
		TerminalID: terminalID,
		Now:        now,
	})
	assert.ErrorIs(t, err, ErrSessionNotPassed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizeInsufficientMonthlyLimit(t *testing.T) {
	pg, mock := newMockPostgres(t)

	sessionID := uuid.NewV4()
	terminalID := uuid.NewV4()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("^select (.+) from liveness_sessions (.+) for update").
		WithArgs(sessionID.String()).
		WillReturnRows(sessionRow(sessionID, terminalID, 42, model.SessionPassed, now))
	mock.ExpectQuery("^select (.+) from cards (.+) for update").
		WithArgs("CARD-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uid", "employee_id", "status", "created_at", "updated_at"}).
			AddRow(1, "CARD-1", 42, "ACTIVE", now, now))
	mock.ExpectQuery("^select (.+) from employees (.+) for update").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "personnel_no", "full_name", "kind", "status",
			"monthly_limit_cents", "photo_jpeg", "telegram_chat_id", "created_at", "updated_at",
		}).AddRow(42, "0001", "Иванов Иван", "STAFF", "ACTIVE", 200000, nil, nil, now, now))
	mock.ExpectExec("^insert into daily_subsidy_balances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("^select (.+) from daily_subsidy_balances (.+) for update").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "day", "used_cents"}).
			AddRow(1, 42, day, 0))
	mock.ExpectExec("^insert into monthly_balances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("^select (.+) from monthly_balances (.+) for update").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "year_month", "limit_cents", "used_cents"}).
			AddRow(1, 42, 202406, 200000, 199000))
	mock.ExpectRollback()

	// staff, so the whole amount hits the monthly limit
	_, err := pg.Authorize(context.Background(), &AuthorizeRequest{
		SessionID:         sessionID,
		TerminalID:        terminalID,
		CardUID:           "CARD-1",
		AmountCents:       5000,
		Day:               day,
		YearMonth:         202406,
		SubsidyDailyCents: 10000,
		CompanyWorkday:    true,
		EmployeeWorking:   true,
		Now:               now,
	})

	var decline *Decline
	require.True(t, errors.As(err, &decline))
	assert.Equal(t, "INSUFFICIENT_MONTHLY_LIMIT", decline.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizeApproved(t *testing.T) {
	pg, mock := newMockPostgres(t)

	sessionID := uuid.NewV4()
	terminalID := uuid.NewV4()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	txnID := uuid.NewV4()

	mock.ExpectBegin()
	mock.ExpectQuery("^select (.+) from liveness_sessions (.+) for update").
		WithArgs(sessionID.String()).
		WillReturnRows(sessionRow(sessionID, terminalID, 42, model.SessionPassed, now))
	mock.ExpectQuery("^select (.+) from cards (.+) for update").
		WithArgs("CARD-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uid", "employee_id", "status", "created_at", "updated_at"}).
			AddRow(1, "CARD-1", 42, "ACTIVE", now, now))
	mock.ExpectQuery("^select (.+) from employees (.+) for update").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "personnel_no", "full_name", "kind", "status",
			"monthly_limit_cents", "photo_jpeg", "telegram_chat_id", "created_at", "updated_at",
		}).AddRow(42, "0001", "Иванов Иван", "WORKER", "ACTIVE", 200000, nil, nil, now, now))
	mock.ExpectExec("^insert into daily_subsidy_balances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("^select (.+) from daily_subsidy_balances (.+) for update").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "day", "used_cents"}).
			AddRow(1, 42, day, 0))
	mock.ExpectExec("^insert into monthly_balances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("^select (.+) from monthly_balances (.+) for update").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "year_month", "limit_cents", "used_cents"}).
			AddRow(1, 42, 202406, 200000, 0))
	mock.ExpectExec("^update daily_subsidy_balances").
		WithArgs(int64(42), "2024-06-10", int64(10000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("^update monthly_balances").
		WithArgs(int64(42), 202406, int64(5000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("^update liveness_sessions").
		WithArgs(sessionID.String(), string(model.SessionUsed), now.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("^insert into transactions").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_at", "terminal_id", "employee_id", "card_uid", "amount_cents",
			"subsidy_spent_cents", "monthly_spent_cents", "status",
			"decline_code", "decline_message", "liveness_session_id",
		}).AddRow(txnID.String(), now, terminalID.String(), 42, "CARD-1", 15000,
			10000, 5000, "APPROVED", nil, nil, sessionID.String()))
	mock.ExpectCommit()

	result, err := pg.Authorize(context.Background(), &AuthorizeRequest{
		SessionID:         sessionID,
		TerminalID:        terminalID,
		CardUID:           "CARD-1",
		AmountCents:       15000,
		Day:               day,
		YearMonth:         202406,
		SubsidyDailyCents: 10000,
		CompanyWorkday:    true,
		EmployeeWorking:   true,
		Now:               now,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), result.SubsidySpent)
	assert.Equal(t, int64(5000), result.MonthlySpent)
	assert.Equal(t, int64(0), result.SubsidyTodayLeft)
	assert.Equal(t, int64(195000), result.MonthlyLeft)
	assert.Equal(t, txnID, result.Transaction.ID)
	assert.Equal(t, model.TransactionApproved, result.Transaction.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

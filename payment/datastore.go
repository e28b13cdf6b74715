package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/canteen-pay/meal-go/datastore"
	"github.com/canteen-pay/meal-go/model"
	uuid "github.com/satori/go.uuid"
)

// AuthorizeRequest carries everything the authorization transaction needs.
// CompanyWorkday and EmployeeWorking are calendar facts computed before
// the transaction opens.
type AuthorizeRequest struct {
	SessionID         uuid.UUID
	TerminalID        uuid.UUID
	CardUID           string
	AmountCents       int64
	Day               time.Time
	YearMonth         int
	SubsidyDailyCents int64
	CompanyWorkday    bool
	EmployeeWorking   bool
	Now               time.Time
}

// AuthorizeResult is the committed outcome of an approved authorization
type AuthorizeResult struct {
	Transaction      *model.Transaction
	SubsidySpent     int64
	MonthlySpent     int64
	SubsidyTodayLeft int64
	MonthlyLeft      int64
}

// Datastore abstracts the payment-side data access
type Datastore interface {
	datastore.Datastore
	// GetTerminalByTokenHash returns the terminal, nil if unknown
	GetTerminalByTokenHash(ctx context.Context, tokenHash string) (*model.Terminal, error)
	// GetCardByUID returns the card, nil if missing
	GetCardByUID(ctx context.Context, uid string) (*model.Card, error)
	// GetEmployee returns the employee by id, nil if missing
	GetEmployee(ctx context.Context, employeeID int64) (*model.Employee, error)
	// HasActiveFaceTemplate reports whether the employee has an active template
	HasActiveFaceTemplate(ctx context.Context, employeeID int64) (bool, error)
	// GetSession returns the liveness session, nil if missing
	GetSession(ctx context.Context, sessionID uuid.UUID) (*model.LivenessSession, error)
	// GetDailyUsedCents returns subsidy cents used on the day, 0 if no row
	GetDailyUsedCents(ctx context.Context, employeeID int64, day time.Time) (int64, error)
	// GetMonthlyBalance returns the month's balance, nil if no row yet
	GetMonthlyBalance(ctx context.Context, employeeID int64, yearMonth int) (*model.MonthlyBalance, error)
	// InsertTransaction stores an audit record outside the authorize transaction
	InsertTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	// Authorize runs the locking pipeline in one transaction
	Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error)
}

// Postgres is a Datastore wrapper around a postgres database
type Postgres struct {
	datastore.Postgres
}

// NewPostgres creates a new Postgres Datastore
func NewPostgres(databaseURL string, performMigration bool) (Datastore, error) {
	pg, err := datastore.NewPostgres(databaseURL, performMigration)
	if pg != nil {
		return &Postgres{*pg}, err
	}
	return nil, err
}

// GetTerminalByTokenHash returns the terminal, nil if unknown
func (pg *Postgres) GetTerminalByTokenHash(ctx context.Context, tokenHash string) (*model.Terminal, error) {
	terminal := model.Terminal{}
	err := pg.RawDB().GetContext(ctx, &terminal,
		`select * from terminals where api_token_hash = $1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

// GetCardByUID returns the card, nil if missing
func (pg *Postgres) GetCardByUID(ctx context.Context, uid string) (*model.Card, error) {
	card := model.Card{}
	err := pg.RawDB().GetContext(ctx, &card,
		`select * from cards where uid = $1`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetEmployee returns the employee by id, nil if missing
func (pg *Postgres) GetEmployee(ctx context.Context, employeeID int64) (*model.Employee, error) {
	employee := model.Employee{}
	err := pg.RawDB().GetContext(ctx, &employee,
		`select * from employees where id = $1`, employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// HasActiveFaceTemplate reports whether the employee has an active template
func (pg *Postgres) HasActiveFaceTemplate(ctx context.Context, employeeID int64) (bool, error) {
	var exists bool
	err := pg.RawDB().GetContext(ctx, &exists,
		`select exists(select 1 from face_templates where employee_id = $1 and is_active)`,
		employeeID)
	return exists, err
}

// GetSession returns the liveness session, nil if missing
func (pg *Postgres) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.LivenessSession, error) {
	session := model.LivenessSession{}
	err := pg.RawDB().GetContext(ctx, &session,
		`select * from liveness_sessions where id = $1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetDailyUsedCents returns subsidy cents used on the day, 0 if no row
func (pg *Postgres) GetDailyUsedCents(ctx context.Context, employeeID int64, day time.Time) (int64, error) {
	var used int64
	err := pg.RawDB().GetContext(ctx, &used,
		`select coalesce(
			(select used_cents from daily_subsidy_balances where employee_id = $1 and day = $2), 0)`,
		employeeID, day.Format("2006-01-02"))
	return used, err
}

// GetMonthlyBalance returns the month's balance, nil if no row yet
func (pg *Postgres) GetMonthlyBalance(ctx context.Context, employeeID int64, yearMonth int) (*model.MonthlyBalance, error) {
	balance := model.MonthlyBalance{}
	err := pg.RawDB().GetContext(ctx, &balance,
		`select * from monthly_balances where employee_id = $1 and year_month = $2`,
		employeeID, yearMonth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// InsertTransaction stores an audit record outside the authorize transaction
func (pg *Postgres) InsertTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	inserted := model.Transaction{}
	err := pg.RawDB().GetContext(ctx, &inserted,
		`insert into transactions
			(id, terminal_id, employee_id, card_uid, amount_cents,
			 subsidy_spent_cents, monthly_spent_cents, status,
			 decline_code, decline_message, liveness_session_id)
		 values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 returning *`,
		txn.ID, txn.TerminalID, txn.EmployeeID, txn.CardUID, txn.AmountCents,
		txn.SubsidySpentCents, txn.MonthlySpentCents, txn.Status,
		txn.DeclineCode, txn.DeclineMessage, txn.LivenessSessionID)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

// Authorize runs the authorization pipeline in one transaction, locking
// rows in the canonical order session, card, employee, daily, monthly
func (pg *Postgres) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error) {
	tx, err := pg.RawDB().Beginx()
	if err != nil {
		return nil, err
	}
	defer pg.RollbackTx(tx)

	session := model.LivenessSession{}
	err = tx.GetContext(ctx, &session,
		`select * from liveness_sessions where id = $1 for update`, req.SessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.TerminalID != req.TerminalID {
		return nil, ErrSessionForbidden
	}
	if session.Status == model.SessionUsed || session.UsedAt != nil {
		return nil, ErrSessionAlreadyUsed
	}
	if session.Status != model.SessionPassed {
		return nil, ErrSessionNotPassed
	}

	card := model.Card{}
	err = tx.GetContext(ctx, &card,
		`select * from cards where uid = $1 for update`, req.CardUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Decline{Code: "CARD_NOT_FOUND", Message: "Карта не найдена."}
	}
	if err != nil {
		return nil, err
	}
	if card.Status != model.CardStatusActive {
		return nil, &Decline{Code: "CARD_BLOCKED", Message: "Карта заблокирована."}
	}
	if card.EmployeeID != session.EmployeeID {
		return nil, ErrSessionForbidden
	}

	employee := model.Employee{}
	err = tx.GetContext(ctx, &employee,
		`select * from employees where id = $1 for update`, card.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee.Status != model.EmployeeStatusActive {
		return nil, &Decline{Code: "EMPLOYEE_BLOCKED", Message: "Сотрудник заблокирован."}
	}

	day := req.Day.Format("2006-01-02")

	_, err = tx.ExecContext(ctx,
		`insert into daily_subsidy_balances (employee_id, day, used_cents)
		 values ($1, $2, 0)
		 on conflict (employee_id, day) do nothing`,
		employee.ID, day)
	if err != nil {
		return nil, err
	}
	daily := model.DailySubsidyBalance{}
	err = tx.GetContext(ctx, &daily,
		`select * from daily_subsidy_balances where employee_id = $1 and day = $2 for update`,
		employee.ID, day)
	if err != nil {
		return nil, err
	}

	// limit snapshot: taken once on first use of the month, never refreshed
	_, err = tx.ExecContext(ctx,
		`insert into monthly_balances (employee_id, year_month, limit_cents, used_cents)
		 values ($1, $2, $3, 0)
		 on conflict (employee_id, year_month) do nothing`,
		employee.ID, req.YearMonth, employee.MonthlyLimitCents)
	if err != nil {
		return nil, err
	}
	monthly := model.MonthlyBalance{}
	err = tx.GetContext(ctx, &monthly,
		`select * from monthly_balances where employee_id = $1 and year_month = $2 for update`,
		employee.ID, req.YearMonth)
	if err != nil {
		return nil, err
	}

	eligible := employee.Kind == model.EmployeeKindWorker && req.CompanyWorkday && req.EmployeeWorking

	var subsidyAvailable int64
	if eligible {
		subsidyAvailable = req.SubsidyDailyCents - daily.UsedCents
		if subsidyAvailable < 0 {
			subsidyAvailable = 0
		}
	}

	subsidySpent, monthlySpent := Split(req.AmountCents, subsidyAvailable)

	monthlyAvailable := monthly.LimitCents - monthly.UsedCents
	if monthlyAvailable < 0 {
		monthlyAvailable = 0
	}
	if monthlySpent > monthlyAvailable {
		return nil, &Decline{Code: "INSUFFICIENT_MONTHLY_LIMIT", Message: "Недостаточно средств в месячном лимите."}
	}

	_, err = tx.ExecContext(ctx,
		`update daily_subsidy_balances set used_cents = used_cents + $3
		 where employee_id = $1 and day = $2`,
		employee.ID, day, subsidySpent)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`update monthly_balances set used_cents = used_cents + $3
		 where employee_id = $1 and year_month = $2`,
		employee.ID, req.YearMonth, monthlySpent)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`update liveness_sessions set status = $2, used_at = $3 where id = $1`,
		session.ID, model.SessionUsed, req.Now.UTC())
	if err != nil {
		return nil, err
	}

	txn := model.Transaction{}
	err = tx.GetContext(ctx, &txn,
		`insert into transactions
			(id, terminal_id, employee_id, card_uid, amount_cents,
			 subsidy_spent_cents, monthly_spent_cents, status, liveness_session_id)
		 values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 returning *`,
		uuid.NewV4(), req.TerminalID, employee.ID, req.CardUID, req.AmountCents,
		subsidySpent, monthlySpent, model.TransactionApproved, session.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	var subsidyLeft int64
	if eligible {
		subsidyLeft = req.SubsidyDailyCents - (daily.UsedCents + subsidySpent)
		if subsidyLeft < 0 {
			subsidyLeft = 0
		}
	}

	return &AuthorizeResult{
		Transaction:      &txn,
		SubsidySpent:     subsidySpent,
		MonthlySpent:     monthlySpent,
		SubsidyTodayLeft: subsidyLeft,
		MonthlyLeft:      monthly.LimitCents - (monthly.UsedCents + monthlySpent),
	}, nil
}

// Package payment implements the authorization pipeline: token
// consumption, subsidy/personal split and atomic balance updates.
package payment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/canteen-pay/meal-go/calendar"
	"github.com/canteen-pay/meal-go/clients/telegram"
	"github.com/canteen-pay/meal-go/logging"
	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/token"
	"github.com/prometheus/client_golang/prometheus"
	uuid "github.com/satori/go.uuid"
)

const (
	// DefaultSubsidyDailyCents - daily state subsidy for eligible workers
	DefaultSubsidyDailyCents = int64(10000)
	// DefaultMaxMealCents - one meal must not exceed this amount
	DefaultMaxMealCents = int64(100000)
	// DefaultMaxReceiptCents - one receipt must not exceed this amount
	DefaultMaxReceiptCents = int64(50000)
)

var (
	// ErrBadAmount - amount is zero or negative
	ErrBadAmount = errors.New("amount must be positive")
	// ErrMaxMealExceeded - amount exceeds the meal cap
	ErrMaxMealExceeded = errors.New("amount exceeds the meal cap")
	// ErrMaxReceiptExceeded - amount exceeds the receipt cap
	ErrMaxReceiptExceeded = errors.New("amount exceeds the receipt cap")
	// ErrTokenTerminalMismatch - token was minted for another terminal
	ErrTokenTerminalMismatch = errors.New("liveness token was issued to another terminal")
	// ErrSessionNotFound - no session matches the token's sid
	ErrSessionNotFound = errors.New("liveness session not found")
	// ErrSessionForbidden - session belongs to another terminal or employee
	ErrSessionForbidden = errors.New("liveness session belongs to another terminal")
	// ErrSessionAlreadyUsed - session was already consumed by a payment
	ErrSessionAlreadyUsed = errors.New("liveness session already used")
	// ErrSessionNotPassed - session is not in the passed state
	ErrSessionNotPassed = errors.New("liveness session is not passed")
	// ErrCardNotFound - employee_info lookup miss
	ErrCardNotFound = errors.New("card not found")
	// ErrCardBlocked - employee_info card not active
	ErrCardBlocked = errors.New("card is blocked")
	// ErrEmployeeBlocked - employee_info employee not active
	ErrEmployeeBlocked = errors.New("employee is blocked")
)

// Decline is a business failure after token acceptance. It is recorded
// as a declined transaction and returned to the cashier without
// consuming the session.
type Decline struct {
	Code    string
	Message string
}

func (d *Decline) Error() string {
	return d.Message
}

var transactionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_transactions_total",
		Help: "Number of recorded payment transactions by status",
	},
	[]string{"status"},
)

func init() {
	prometheus.MustRegister(transactionsTotal)
}

// Split divides the amount between the subsidy and personal funds,
// subsidy first
func Split(amountCents, subsidyAvailableCents int64) (subsidySpent, monthlySpent int64) {
	subsidySpent = subsidyAvailableCents
	if amountCents < subsidySpent {
		subsidySpent = amountCents
	}
	return subsidySpent, amountCents - subsidySpent
}

// PayResult is the rendered outcome of a Pay call
type PayResult struct {
	Status           model.TransactionStatus
	AmountCents      int64
	SubsidySpent     int64
	MonthlySpent     int64
	SubsidyTodayLeft int64
	MonthlyLeft      int64
	Code             string
	Message          string
}

// EmployeeInfo is the cashier-facing view of a card owner
type EmployeeInfo struct {
	EmployeeID          string
	FullName            string
	EmployeeType        model.EmployeeKind
	Status              model.EmployeeStatus
	PhotoBase64         *string
	SubsidyTodayLeft    int64
	MonthlyLeft         int64
	NeedsFaceEnrollment bool
}

// Service owns payment authorization and cashier lookups
type Service struct {
	Datastore         Datastore
	tokens            *token.Service
	calendar          calendar.Oracle
	telegram          telegram.Client
	location          *time.Location
	subsidyDailyCents int64
	maxMealCents      int64
	maxReceiptCents   int64
	now               func() time.Time
}

// InitService creates a payment service. telegramClient may be nil when
// notifications are not configured.
func InitService(
	datastore Datastore,
	tokens *token.Service,
	calendarOracle calendar.Oracle,
	telegramClient telegram.Client,
	location *time.Location,
	subsidyDailyCents, maxMealCents, maxReceiptCents int64,
) *Service {
	if subsidyDailyCents <= 0 {
		subsidyDailyCents = DefaultSubsidyDailyCents
	}
	if maxMealCents <= 0 {
		maxMealCents = DefaultMaxMealCents
	}
	if maxReceiptCents <= 0 {
		maxReceiptCents = DefaultMaxReceiptCents
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		Datastore:         datastore,
		tokens:            tokens,
		calendar:          calendarOracle,
		telegram:          telegramClient,
		location:          location,
		subsidyDailyCents: subsidyDailyCents,
		maxMealCents:      maxMealCents,
		maxReceiptCents:   maxReceiptCents,
		now:               time.Now,
	}
}

// Pay authorizes a charge against the card, splitting it between the
// daily subsidy and the monthly personal allowance
func (s *Service) Pay(ctx context.Context, terminal *model.Terminal, cardUID string, amountCents int64, livenessToken string) (*PayResult, error) {
	logger := logging.Logger(ctx, "payment.Pay")

	if amountCents <= 0 {
		return nil, ErrBadAmount
	}
	if amountCents > s.maxMealCents {
		return nil, ErrMaxMealExceeded
	}
	if amountCents > s.maxReceiptCents {
		return nil, ErrMaxReceiptExceeded
	}

	now := s.now()
	claims, err := s.tokens.Verify(livenessToken, now)
	if err != nil {
		return nil, err
	}
	tid, err := claims.TerminalID()
	if err != nil {
		return nil, err
	}
	if tid != terminal.ID {
		return nil, ErrTokenTerminalMismatch
	}
	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, err
	}

	// light read before locking anything: gives fast failures and the
	// employee id for calendar facts and decline records
	session, err := s.Datastore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.TerminalID != terminal.ID {
		return nil, ErrSessionForbidden
	}
	if session.Status == model.SessionUsed || session.UsedAt != nil {
		return nil, ErrSessionAlreadyUsed
	}
	if session.Status != model.SessionPassed {
		return nil, ErrSessionNotPassed
	}

	localNow := now.In(s.location)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, s.location)

	workday, err := s.calendar.IsCompanyWorkday(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check company workday: %w", err)
	}
	working, err := s.calendar.IsEmployeeWorking(ctx, session.EmployeeID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee absence: %w", err)
	}

	result, err := s.Datastore.Authorize(ctx, &AuthorizeRequest{
		SessionID:         session.ID,
		TerminalID:        terminal.ID,
		CardUID:           cardUID,
		AmountCents:       amountCents,
		Day:               today,
		YearMonth:         model.YearMonth(today),
		SubsidyDailyCents: s.subsidyDailyCents,
		CompanyWorkday:    workday,
		EmployeeWorking:   working,
		Now:               now,
	})
	if err != nil {
		var decline *Decline
		if errors.As(err, &decline) {
			return s.recordDecline(ctx, terminal, session, cardUID, amountCents, decline)
		}
		return nil, err
	}

	transactionsTotal.With(prometheus.Labels{"status": string(model.TransactionApproved)}).Inc()
	logger.Info().
		Str("transaction_id", result.Transaction.ID.String()).
		Int64("amount_cents", amountCents).
		Int64("subsidy_spent_cents", result.SubsidySpent).
		Int64("monthly_spent_cents", result.MonthlySpent).
		Msg("payment approved")

	s.notifyAsync(session.EmployeeID, amountCents, result)

	return &PayResult{
		Status:           model.TransactionApproved,
		AmountCents:      amountCents,
		SubsidySpent:     result.SubsidySpent,
		MonthlySpent:     result.MonthlySpent,
		SubsidyTodayLeft: result.SubsidyTodayLeft,
		MonthlyLeft:      result.MonthlyLeft,
	}, nil
}

// recordDecline stores the declined audit record in a fresh transaction.
// The session stays passed so the cashier can retry within token TTL.
func (s *Service) recordDecline(ctx context.Context, terminal *model.Terminal, session *model.LivenessSession, cardUID string, amountCents int64, decline *Decline) (*PayResult, error) {
	logger := logging.Logger(ctx, "payment.Pay")

	sessionID := session.ID
	_, err := s.Datastore.InsertTransaction(ctx, &model.Transaction{
		ID:                uuid.NewV4(),
		TerminalID:        terminal.ID,
		EmployeeID:        session.EmployeeID,
		CardUID:           cardUID,
		AmountCents:       amountCents,
		Status:            model.TransactionDeclined,
		DeclineCode:       &decline.Code,
		DeclineMessage:    &decline.Message,
		LivenessSessionID: &sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record declined transaction: %w", err)
	}

	transactionsTotal.With(prometheus.Labels{"status": string(model.TransactionDeclined)}).Inc()
	logger.Warn().
		Str("decline_code", decline.Code).
		Int64("amount_cents", amountCents).
		Msg("payment declined")

	return &PayResult{
		Status:  model.TransactionDeclined,
		Code:    decline.Code,
		Message: decline.Message,
	}, nil
}

// notifyAsync fires the telegram notification without blocking the
// response. Failures are logged and swallowed.
func (s *Service) notifyAsync(employeeID int64, amountCents int64, result *AuthorizeResult) {
	if s.telegram == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		logger := logging.Logger(ctx, "payment.notifyAsync")

		employee, err := s.Datastore.GetEmployee(ctx, employeeID)
		if err != nil || employee == nil || employee.TelegramChatID == nil {
			return
		}

		text := fmt.Sprintf(
			"Оплата питания: %.2f руб\n"+
				"Дотация: -%.2f руб\n"+
				"Из лимита: -%.2f руб\n"+
				"Остаток дотации сегодня: %.2f руб\n"+
				"Остаток месячного лимита: %.2f руб",
			float64(amountCents)/100,
			float64(result.SubsidySpent)/100,
			float64(result.MonthlySpent)/100,
			float64(result.SubsidyTodayLeft)/100,
			float64(result.MonthlyLeft)/100,
		)
		if err := s.telegram.SendMessage(ctx, *employee.TelegramChatID, text); err != nil {
			logger.Warn().Err(err).Msg("failed to send payment notification")
		}
	}()
}

// GetEmployeeInfo resolves the cashier card lookup with both remainders
func (s *Service) GetEmployeeInfo(ctx context.Context, cardUID string) (*EmployeeInfo, error) {
	card, err := s.Datastore.GetCardByUID(ctx, cardUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch card: %w", err)
	}
	if card == nil {
		return nil, ErrCardNotFound
	}
	if card.Status != model.CardStatusActive {
		return nil, ErrCardBlocked
	}

	employee, err := s.Datastore.GetEmployee(ctx, card.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}
	if employee == nil || employee.Status != model.EmployeeStatusActive {
		return nil, ErrEmployeeBlocked
	}

	hasFace, err := s.Datastore.HasActiveFaceTemplate(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check face template: %w", err)
	}

	localNow := s.now().In(s.location)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, s.location)
	ym := model.YearMonth(today)

	usedToday, err := s.Datastore.GetDailyUsedCents(ctx, employee.ID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily balance: %w", err)
	}

	monthly, err := s.Datastore.GetMonthlyBalance(ctx, employee.ID, ym)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly balance: %w", err)
	}
	monthlyUsed := int64(0)
	monthlyLimit := employee.MonthlyLimitCents
	if monthly != nil {
		monthlyUsed = monthly.UsedCents
		monthlyLimit = monthly.LimitCents
	}

	workday, err := s.calendar.IsCompanyWorkday(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check company workday: %w", err)
	}
	working, err := s.calendar.IsEmployeeWorking(ctx, employee.ID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee absence: %w", err)
	}
	eligible := employee.Kind == model.EmployeeKindWorker && workday && working

	var subsidyLeft int64
	if eligible {
		subsidyLeft = s.subsidyDailyCents - usedToday
		if subsidyLeft < 0 {
			subsidyLeft = 0
		}
	}
	monthlyLeft := monthlyLimit - monthlyUsed
	if monthlyLeft < 0 {
		monthlyLeft = 0
	}

	var photo *string
	if len(employee.PhotoJPEG) > 0 {
		encoded := base64.StdEncoding.EncodeToString(employee.PhotoJPEG)
		photo = &encoded
	}

	return &EmployeeInfo{
		EmployeeID:          fmt.Sprintf("%d", employee.ID),
		FullName:            employee.FullName,
		EmployeeType:        employee.Kind,
		Status:              employee.Status,
		PhotoBase64:         photo,
		SubsidyTodayLeft:    subsidyLeft,
		MonthlyLeft:         monthlyLeft,
		NeedsFaceEnrollment: !hasFace,
	}, nil
}

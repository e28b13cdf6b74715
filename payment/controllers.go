package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/canteen-pay/meal-go/handlers"
	"github.com/canteen-pay/meal-go/inputs"
	"github.com/canteen-pay/meal-go/middleware"
	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/requestutils"
	"github.com/canteen-pay/meal-go/token"
)

// PayRequest is the cashier charge request
type PayRequest struct {
	CardUID       string `json:"card_uid" valid:"required"`
	AmountCents   int64  `json:"amount_cents"`
	LivenessToken string `json:"liveness_token" valid:"required"`
}

// Decode implements inputs.Decodable
func (req *PayRequest) Decode(ctx context.Context, v []byte) error {
	return inputs.DecodeJSON(ctx, v, req)
}

// Validate implements inputs.Validatable
func (req *PayRequest) Validate(ctx context.Context) error {
	_, err := govalidator.ValidateStruct(req)
	return err
}

type approvedResponse struct {
	Status           model.TransactionStatus `json:"status"`
	AmountCents      int64                   `json:"amount_cents"`
	SubsidySpent     int64                   `json:"subsidy_spent_cents"`
	MonthlySpent     int64                   `json:"monthly_spent_cents"`
	SubsidyTodayLeft int64                   `json:"subsidy_today_left_cents"`
	MonthlyLeft      int64                   `json:"monthly_left_cents"`
}

type declinedResponse struct {
	Status  model.TransactionStatus `json:"status"`
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
}

// PostPay is the handler for authorizing a charge
func PostPay(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()

		terminal := middleware.GetTerminal(ctx)
		if terminal == nil {
			return handlers.CodedError(nil, "TERMINAL_UNAUTHORIZED", "missing terminal", http.StatusUnauthorized)
		}

		body, err := requestutils.Read(ctx, r.Body)
		if err != nil {
			return handlers.WrapError(err, "Error reading body", http.StatusBadRequest)
		}

		var req PayRequest
		if err := inputs.DecodeAndValidate(ctx, &req, body); err != nil {
			return handlers.ValidationError("pay request", err)
		}
		if req.AmountCents == 0 {
			return handlers.CodedError(nil, "BAD_REQUEST", "Нужны поля: card_uid, amount_cents, liveness_token.", http.StatusBadRequest)
		}

		result, err := service.Pay(ctx, terminal, req.CardUID, req.AmountCents, req.LivenessToken)
		if err != nil {
			return payError(err)
		}

		if result.Status == model.TransactionDeclined {
			return handlers.RenderContent(ctx, declinedResponse{
				Status:  result.Status,
				Code:    result.Code,
				Message: result.Message,
			}, w, http.StatusOK)
		}

		return handlers.RenderContent(ctx, approvedResponse{
			Status:           result.Status,
			AmountCents:      result.AmountCents,
			SubsidySpent:     result.SubsidySpent,
			MonthlySpent:     result.MonthlySpent,
			SubsidyTodayLeft: result.SubsidyTodayLeft,
			MonthlyLeft:      result.MonthlyLeft,
		}, w, http.StatusOK)
	})
}

func payError(err error) *handlers.AppError {
	switch {
	case errors.Is(err, ErrBadAmount):
		return handlers.CodedError(err, "BAD_AMOUNT", "Сумма должна быть больше нуля.", http.StatusBadRequest)
	case errors.Is(err, ErrMaxMealExceeded):
		return handlers.CodedError(err, "MAX_MEAL_1000_EXCEEDED", "Сумма одного обеда не может превышать 1000 руб.", http.StatusBadRequest)
	case errors.Is(err, ErrMaxReceiptExceeded):
		return handlers.CodedError(err, "MAX_RECEIPT_500_EXCEEDED", "Сумма одного чека не может превышать 500 руб.", http.StatusBadRequest)
	case errors.Is(err, token.ErrTokenExpired):
		return handlers.CodedError(err, "LIVENESS_TOKEN_EXPIRED", "Токен liveness истёк.", http.StatusUnauthorized)
	case errors.Is(err, token.ErrTokenInvalid):
		return handlers.CodedError(err, "LIVENESS_TOKEN_INVALID", "Токен liveness недействителен.", http.StatusUnauthorized)
	case errors.Is(err, ErrTokenTerminalMismatch):
		return handlers.CodedError(err, "LIVENESS_TOKEN_TERMINAL_MISMATCH", "Токен liveness выдан другому терминалу.", http.StatusForbidden)
	case errors.Is(err, ErrSessionNotFound):
		return handlers.CodedError(err, "LIVENESS_NOT_FOUND", "Сессия liveness не найдена.", http.StatusNotFound)
	case errors.Is(err, ErrSessionForbidden):
		return handlers.CodedError(err, "FORBIDDEN", "Сессия принадлежит другому терминалу.", http.StatusForbidden)
	case errors.Is(err, ErrSessionAlreadyUsed):
		return handlers.CodedError(err, "LIVENESS_ALREADY_USED", "Liveness-токен уже использован.", http.StatusConflict)
	case errors.Is(err, ErrSessionNotPassed):
		return handlers.CodedError(err, "LIVENESS_NOT_IN_PROGRESS", "Liveness не пройдена или недействительна.", http.StatusConflict)
	default:
		return handlers.CodedError(err, "TECHNICAL_ERROR", "Внутренняя ошибка сервиса.", http.StatusInternalServerError)
	}
}

type employeeInfoResponse struct {
	EmployeeID          string               `json:"employee_id"`
	FullName            string               `json:"full_name"`
	EmployeeType        model.EmployeeKind   `json:"employee_type"`
	Status              model.EmployeeStatus `json:"status"`
	PhotoBase64         *string              `json:"photo_base64"`
	SubsidyTodayLeft    int64                `json:"subsidy_today_left_cents"`
	MonthlyLeft         int64                `json:"monthly_left_cents"`
	NeedsFaceEnrollment bool                 `json:"needs_face_enrollment"`
}

// GetEmployeeInfoHandler is the handler for the cashier card lookup
func GetEmployeeInfoHandler(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()

		cardUID := r.URL.Query().Get("card_uid")
		if cardUID == "" {
			return handlers.CodedError(nil, "BAD_REQUEST", "Нужен параметр card_uid.", http.StatusBadRequest)
		}

		info, err := service.GetEmployeeInfo(ctx, cardUID)
		if err != nil {
			switch {
			case errors.Is(err, ErrCardNotFound):
				return handlers.CodedError(err, "CARD_NOT_FOUND", "Карта не найдена.", http.StatusNotFound)
			case errors.Is(err, ErrCardBlocked):
				return handlers.CodedError(err, "CARD_BLOCKED", "Карта заблокирована.", http.StatusForbidden)
			case errors.Is(err, ErrEmployeeBlocked):
				return handlers.CodedError(err, "EMPLOYEE_BLOCKED", "Сотрудник заблокирован.", http.StatusForbidden)
			default:
				return handlers.CodedError(err, "TECHNICAL_ERROR", "Внутренняя ошибка сервиса.", http.StatusInternalServerError)
			}
		}

		return handlers.RenderContent(ctx, employeeInfoResponse{
			EmployeeID:          info.EmployeeID,
			FullName:            info.FullName,
			EmployeeType:        info.EmployeeType,
			Status:              info.Status,
			PhotoBase64:         info.PhotoBase64,
			SubsidyTodayLeft:    info.SubsidyTodayLeft,
			MonthlyLeft:         info.MonthlyLeft,
			NeedsFaceEnrollment: info.NeedsFaceEnrollment,
		}, w, http.StatusOK)
	})
}

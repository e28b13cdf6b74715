package liveness

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/canteen-pay/meal-go/face"
	"github.com/canteen-pay/meal-go/handlers"
	"github.com/canteen-pay/meal-go/inputs"
	"github.com/canteen-pay/meal-go/middleware"
	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/requestutils"
	uuid "github.com/satori/go.uuid"
)

const maxFrameBytes = 10 << 20

// StartLivenessRequest - the challenge start request
type StartLivenessRequest struct {
	CardUID string `json:"card_uid" valid:"required"`
}

// Decode implements inputs.Decodable
func (req *StartLivenessRequest) Decode(ctx context.Context, v []byte) error {
	return inputs.DecodeJSON(ctx, v, req)
}

// Validate implements inputs.Validatable
func (req *StartLivenessRequest) Validate(ctx context.Context) error {
	_, err := govalidator.ValidateStruct(req)
	return err
}

type startLivenessResponse struct {
	SessionID       string            `json:"session_id"`
	Commands        model.CommandList `json:"commands"`
	ExpiresAt       time.Time         `json:"expires_at"`
	FrameIntervalMS int               `json:"frame_interval_ms"`
}

// StartLivenessHandler creates a session for the presented card
func StartLivenessHandler(service *Service) handlers.AppHandler {
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

		var req StartLivenessRequest
		if err := inputs.DecodeAndValidate(ctx, &req, body); err != nil {
			return handlers.ValidationError("start liveness request", err)
		}

		session, err := service.StartLiveness(ctx, terminal, req.CardUID)
		if err != nil {
			return livenessError(err)
		}

		return handlers.RenderContent(ctx, startLivenessResponse{
			SessionID:       session.ID.String(),
			Commands:        session.Commands,
			ExpiresAt:       session.ExpiresAt,
			FrameIntervalMS: FrameIntervalMS,
		}, w, http.StatusOK)
	})
}

type frameResponse struct {
	Status       model.SessionStatus `json:"status"`
	CurrentIndex int                 `json:"current_index"`
	Hint         string              `json:"hint"`
	BlinkSeen    bool                `json:"blink_seen"`
}

// SubmitFrameHandler accepts a multipart frame for an active session
func SubmitFrameHandler(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()

		terminal := middleware.GetTerminal(ctx)
		if terminal == nil {
			return handlers.CodedError(nil, "TERMINAL_UNAUTHORIZED", "missing terminal", http.StatusUnauthorized)
		}

		if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
			return handlers.WrapError(err, "Error parsing multipart form", http.StatusBadRequest)
		}

		sessionID, err := uuid.FromString(r.FormValue("session_id"))
		if err != nil {
			return handlers.CodedError(err, "BAD_REQUEST", "Нужен корректный session_id.", http.StatusBadRequest)
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			return handlers.CodedError(err, "BAD_REQUEST", "Нужен файл image.", http.StatusBadRequest)
		}
		defer func() { _ = file.Close() }()

		image, err := io.ReadAll(io.LimitReader(file, maxFrameBytes))
		if err != nil {
			return handlers.WrapError(err, "Error reading image", http.StatusBadRequest)
		}

		result, err := service.SubmitFrame(ctx, terminal, sessionID, image)
		if err != nil {
			return livenessError(err)
		}

		return handlers.RenderContent(ctx, frameResponse{
			Status:       result.Status,
			CurrentIndex: result.CurrentIndex,
			Hint:         result.Hint,
			BlinkSeen:    result.BlinkSeen,
		}, w, http.StatusOK)
	})
}

// FinishLivenessRequest - the challenge close-out request
type FinishLivenessRequest struct {
	SessionID string `json:"session_id" valid:"uuidv4,required"`
}

// Decode implements inputs.Decodable
func (req *FinishLivenessRequest) Decode(ctx context.Context, v []byte) error {
	return inputs.DecodeJSON(ctx, v, req)
}

// Validate implements inputs.Validatable
func (req *FinishLivenessRequest) Validate(ctx context.Context) error {
	_, err := govalidator.ValidateStruct(req)
	return err
}

type finishLivenessResponse struct {
	Result        model.SessionStatus `json:"result"`
	ReasonCode    string              `json:"reason_code,omitempty"`
	LivenessToken string              `json:"liveness_token,omitempty"`
	ExpiresInSec  int                 `json:"expires_in_sec,omitempty"`
}

// FinishLivenessHandler closes the challenge and issues the token on pass
func FinishLivenessHandler(service *Service) handlers.AppHandler {
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

		var req FinishLivenessRequest
		if err := inputs.DecodeAndValidate(ctx, &req, body); err != nil {
			return handlers.ValidationError("finish liveness request", err)
		}
		sessionID, err := uuid.FromString(req.SessionID)
		if err != nil {
			return handlers.CodedError(err, "BAD_REQUEST", "Нужен корректный session_id.", http.StatusBadRequest)
		}

		result, err := service.FinishLiveness(ctx, terminal, sessionID)
		if err != nil {
			return livenessError(err)
		}

		return handlers.RenderContent(ctx, finishLivenessResponse{
			Result:        result.Result,
			ReasonCode:    result.ReasonCode,
			LivenessToken: result.Token,
			ExpiresInSec:  result.ExpiresInSec,
		}, w, http.StatusOK)
	})
}

func livenessError(err error) *handlers.AppError {
	var frameErr *face.FrameError
	if errors.As(err, &frameErr) {
		return handlers.CodedError(err, frameErr.Code, frameErr.Message, http.StatusBadRequest)
	}

	switch {
	case errors.Is(err, ErrCardNotFound):
		return handlers.CodedError(err, "CARD_NOT_FOUND", "Карта не найдена.", http.StatusNotFound)
	case errors.Is(err, ErrCardBlocked):
		return handlers.CodedError(err, "CARD_BLOCKED", "Карта заблокирована.", http.StatusForbidden)
	case errors.Is(err, ErrEmployeeBlocked):
		return handlers.CodedError(err, "EMPLOYEE_BLOCKED", "Сотрудник заблокирован.", http.StatusForbidden)
	case errors.Is(err, ErrNoActiveFace):
		return handlers.CodedError(err, "NO_ACTIVE_FACE", "Нет активного шаблона лица.", http.StatusBadRequest)
	case errors.Is(err, ErrSessionNotFound):
		return handlers.CodedError(err, "LIVENESS_NOT_FOUND", "Сессия liveness не найдена.", http.StatusNotFound)
	case errors.Is(err, ErrSessionExpired):
		return handlers.CodedError(err, "LIVENESS_EXPIRED", "Время сессии liveness истекло.", http.StatusConflict)
	case errors.Is(err, ErrSessionNotInProgress):
		return handlers.CodedError(err, "LIVENESS_NOT_IN_PROGRESS", "Сессия liveness не активна.", http.StatusConflict)
	case errors.Is(err, ErrFaceNotMatch):
		return handlers.CodedError(err, "FACE_NOT_MATCH", "Лицо не совпадает с шаблоном.", http.StatusForbidden)
	case errors.Is(err, ErrLivenessFailed):
		return handlers.CodedError(err, "LIVENESS_FAILED", "Не удалось подтвердить живость (моргните и повторите).", http.StatusForbidden)
	default:
		return handlers.CodedError(err, "TECHNICAL_ERROR", "Внутренняя ошибка сервиса.", http.StatusInternalServerError)
	}
}

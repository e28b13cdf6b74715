package face

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/canteen-pay/meal-go/handlers"
	"github.com/canteen-pay/meal-go/middleware"
)

const (
	maxEnrollImages     = 10
	maxEnrollImageBytes = 10 << 20
)

type enrollResponse struct {
	EmployeeID   int64   `json:"employee_id"`
	FaceID       int64   `json:"face_id"`
	QualityScore float64 `json:"quality_score"`
	Model        string  `json:"model"`
}

// EnrollFaceHandler accepts 1..10 multipart images and replaces the
// employee's active face template
func EnrollFaceHandler(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()

		terminal := middleware.GetTerminal(ctx)
		if terminal == nil {
			return handlers.CodedError(nil, "TERMINAL_UNAUTHORIZED", "missing terminal", http.StatusUnauthorized)
		}

		if err := r.ParseMultipartForm(maxEnrollImageBytes); err != nil {
			return handlers.WrapError(err, "Error parsing multipart form", http.StatusBadRequest)
		}

		employeeID, err := strconv.ParseInt(r.FormValue("employee_id"), 10, 64)
		if err != nil {
			return handlers.CodedError(err, "BAD_REQUEST", "Нужен корректный employee_id.", http.StatusBadRequest)
		}

		files := r.MultipartForm.File["images"]
		if len(files) < 1 || len(files) > maxEnrollImages {
			return handlers.CodedError(nil, "BAD_REQUEST", "Нужно от 1 до 10 изображений.", http.StatusBadRequest)
		}

		images := make([][]byte, 0, len(files))
		for _, header := range files {
			file, err := header.Open()
			if err != nil {
				return handlers.WrapError(err, "Error reading image", http.StatusBadRequest)
			}
			image, err := io.ReadAll(io.LimitReader(file, maxEnrollImageBytes))
			_ = file.Close()
			if err != nil {
				return handlers.WrapError(err, "Error reading image", http.StatusBadRequest)
			}
			images = append(images, image)
		}

		template, err := service.Enroll(ctx, employeeID, images)
		if err != nil {
			var frameErr *FrameError
			switch {
			case errors.As(err, &frameErr):
				return handlers.CodedError(err, frameErr.Code, frameErr.Message, http.StatusBadRequest)
			case errors.Is(err, ErrEmployeeNotFound):
				return handlers.CodedError(err, "EMPLOYEE_NOT_FOUND", "Сотрудник не найден.", http.StatusNotFound)
			default:
				return handlers.CodedError(err, "TECHNICAL_ERROR", "Внутренняя ошибка сервиса.", http.StatusInternalServerError)
			}
		}

		return handlers.RenderContent(ctx, enrollResponse{
			EmployeeID:   template.EmployeeID,
			FaceID:       template.ID,
			QualityScore: template.QualityScore,
			Model:        template.Model,
		}, w, http.StatusOK)
	})
}

package face

import (
	"context"
	"errors"
	"fmt"

	"github.com/canteen-pay/meal-go/logging"
	"github.com/canteen-pay/meal-go/model"
)

var (
	// ErrEmployeeNotFound - enrollment target does not exist
	ErrEmployeeNotFound = errors.New("employee not found")
)

// Service handles face enrollment
type Service struct {
	Datastore Datastore
	oracle    Oracle
}

// InitService creates a face service
func InitService(datastore Datastore, oracle Oracle) *Service {
	return &Service{
		Datastore: datastore,
		oracle:    oracle,
	}
}

// Enroll builds a face template from 1..10 images and stores it as the
// employee's single active template. The template embedding is the
// component-wise mean of the per-image embeddings.
func (s *Service) Enroll(ctx context.Context, employeeID int64, images [][]byte) (*model.FaceTemplate, error) {
	logger := logging.Logger(ctx, "face.Enroll")

	employee, err := s.Datastore.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}

	sum := make(model.Embedding, model.EmbeddingDim)
	for _, image := range images {
		frame, err := s.oracle.DecodeFrame(ctx, image)
		if err != nil {
			return nil, err
		}
		embedding, err := s.oracle.DetectAndEncode(ctx, frame)
		if err != nil {
			return nil, err
		}
		if err := embedding.Validate(); err != nil {
			return nil, err
		}
		for i := range sum {
			sum[i] += embedding[i]
		}
	}
	n := len(images)
	for i := range sum {
		sum[i] /= float64(n)
	}

	quality := 0.5 + 0.1*float64(n)
	if quality > 1.0 {
		quality = 1.0
	}

	template, err := s.Datastore.ReplaceActiveFaceTemplate(ctx, &model.FaceTemplate{
		EmployeeID:   employeeID,
		Embedding:    sum,
		Model:        s.oracle.ModelName(),
		QualityScore: quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store face template: %w", err)
	}

	logger.Info().
		Int64("employee_id", employeeID).
		Int("images", n).
		Float64("quality_score", template.QualityScore).
		Msg("face template enrolled")

	return template, nil
}

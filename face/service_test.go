package face

import (
	"context"
	"testing"

	"github.com/canteen-pay/meal-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOracle struct {
	embeddings [][]float64
	calls      int
	err        error
}

func (o *stubOracle) DecodeFrame(ctx context.Context, image []byte) (Frame, error) {
	if o.err != nil {
		return nil, o.err
	}
	return image, nil
}

func (o *stubOracle) DetectAndEncode(ctx context.Context, frame Frame) (model.Embedding, error) {
	e := make(model.Embedding, model.EmbeddingDim)
	copy(e, o.embeddings[o.calls])
	o.calls++
	return e, nil
}

func (o *stubOracle) EstimatePoseAndBlink(ctx context.Context, frame Frame) (model.Pose, bool, error) {
	return model.Pose{}, false, nil
}

func (o *stubOracle) ModelName() string {
	return "stub_model"
}

type mockEnrollDatastore struct {
	Datastore
	fnGetEmployee               func(ctx context.Context, employeeID int64) (*model.Employee, error)
	fnReplaceActiveFaceTemplate func(ctx context.Context, template *model.FaceTemplate) (*model.FaceTemplate, error)
}

func (m *mockEnrollDatastore) GetEmployee(ctx context.Context, employeeID int64) (*model.Employee, error) {
	return m.fnGetEmployee(ctx, employeeID)
}

func (m *mockEnrollDatastore) ReplaceActiveFaceTemplate(ctx context.Context, template *model.FaceTemplate) (*model.FaceTemplate, error) {
	return m.fnReplaceActiveFaceTemplate(ctx, template)
}

func TestEnrollAveragesEmbeddings(t *testing.T) {
	first := make([]float64, model.EmbeddingDim)
	second := make([]float64, model.EmbeddingDim)
	first[0], first[1] = 0.2, 0.4
	second[0], second[1] = 0.4, 0.0

	oracle := &stubOracle{embeddings: [][]float64{first, second}}

	var stored *model.FaceTemplate
	ds := &mockEnrollDatastore{
		fnGetEmployee: func(ctx context.Context, employeeID int64) (*model.Employee, error) {
			return &model.Employee{ID: employeeID, Status: model.EmployeeStatusActive}, nil
		},
		fnReplaceActiveFaceTemplate: func(ctx context.Context, template *model.FaceTemplate) (*model.FaceTemplate, error) {
			stored = template
			return template, nil
		},
	}

	s := InitService(ds, oracle)
	template, err := s.Enroll(context.Background(), 42, [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, int64(42), template.EmployeeID)
	assert.Equal(t, "stub_model", template.Model)
	assert.InDelta(t, 0.3, template.Embedding[0], 1e-9)
	assert.InDelta(t, 0.2, template.Embedding[1], 1e-9)
	// two images: 0.5 base plus 0.1 per image
	assert.InDelta(t, 0.7, template.QualityScore, 1e-9)
}

func TestEnrollQualityCap(t *testing.T) {
	embeddings := make([][]float64, 10)
	images := make([][]byte, 10)
	for i := range embeddings {
		embeddings[i] = make([]float64, model.EmbeddingDim)
		images[i] = []byte("img")
	}
	oracle := &stubOracle{embeddings: embeddings}

	ds := &mockEnrollDatastore{
		fnGetEmployee: func(ctx context.Context, employeeID int64) (*model.Employee, error) {
			return &model.Employee{ID: employeeID}, nil
		},
		fnReplaceActiveFaceTemplate: func(ctx context.Context, template *model.FaceTemplate) (*model.FaceTemplate, error) {
			return template, nil
		},
	}

	s := InitService(ds, oracle)
	template, err := s.Enroll(context.Background(), 42, images)
	require.NoError(t, err)
	assert.Equal(t, 1.0, template.QualityScore)
}

func TestEnrollEmployeeNotFound(t *testing.T) {
	ds := &mockEnrollDatastore{
		fnGetEmployee: func(ctx context.Context, employeeID int64) (*model.Employee, error) {
			return nil, nil
		},
	}

	s := InitService(ds, &stubOracle{})
	_, err := s.Enroll(context.Background(), 42, [][]byte{[]byte("a")})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestEnrollFrameError(t *testing.T) {
	ds := &mockEnrollDatastore{
		fnGetEmployee: func(ctx context.Context, employeeID int64) (*model.Employee, error) {
			return &model.Employee{ID: employeeID}, nil
		},
	}

	s := InitService(ds, &stubOracle{err: ErrFaceNotFound})
	_, err := s.Enroll(context.Background(), 42, [][]byte{[]byte("a")})

	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, "FACE_NOT_FOUND", frameErr.Code)
}

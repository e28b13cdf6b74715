package liveness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canteen-pay/meal-go/face"
	"github.com/canteen-pay/meal-go/logging"
	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/token"
	"github.com/prometheus/client_golang/prometheus"
	uuid "github.com/satori/go.uuid"
)

// DefaultSessionTTL is the wall-clock budget for completing the challenge
const DefaultSessionTTL = 25 * time.Second

// FrameIntervalMS is the suggested terminal frame submission cadence
const FrameIntervalMS = 150

var (
	// ErrCardNotFound - no card with the presented uid
	ErrCardNotFound = errors.New("card not found")
	// ErrCardBlocked - the card is not active
	ErrCardBlocked = errors.New("card is blocked")
	// ErrEmployeeBlocked - the card owner is not active
	ErrEmployeeBlocked = errors.New("employee is blocked")
	// ErrNoActiveFace - the employee has no active face template
	ErrNoActiveFace = errors.New("employee has no active face template")
	// ErrSessionNotFound - no session with the given id
	ErrSessionNotFound = errors.New("liveness session not found")
	// ErrSessionNotInProgress - frame submitted to a session in a terminal state
	ErrSessionNotInProgress = errors.New("liveness session is not in progress")
	// ErrSessionExpired - the session TTL elapsed
	ErrSessionExpired = errors.New("liveness session has expired")
	// ErrLivenessFailed - commands exhausted without a blink
	ErrLivenessFailed = errors.New("liveness challenge failed")
	// ErrFaceNotMatch - frame embedding does not match the enrolled template
	ErrFaceNotMatch = errors.New("face does not match the enrolled template")
)

var sessionOutcomeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "liveness_session_outcome_total",
		Help: "Number of liveness sessions per terminal outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(sessionOutcomeTotal)
}

// FrameResult is returned for every accepted frame
type FrameResult struct {
	Status       model.SessionStatus
	CurrentIndex int
	Hint         string
	BlinkSeen    bool
}

// FinishResult is the outcome of FinishLiveness
type FinishResult struct {
	Result       model.SessionStatus
	ReasonCode   string
	Token        string
	ExpiresInSec int
}

// Service owns the liveness session lifecycle
type Service struct {
	Datastore  Datastore
	oracle     face.Oracle
	matcher    *face.Matcher
	tokens     *token.Service
	sessionTTL time.Duration
	now        func() time.Time
}

// InitService creates a liveness service
func InitService(datastore Datastore, oracle face.Oracle, matcher *face.Matcher, tokens *token.Service, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		Datastore:  datastore,
		oracle:     oracle,
		matcher:    matcher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// StartLiveness creates an in_progress session for the card owner with a
// freshly sampled command sequence
func (s *Service) StartLiveness(ctx context.Context, terminal *model.Terminal, cardUID string) (*model.LivenessSession, error) {
	logger := logging.Logger(ctx, "liveness.StartLiveness")

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

	template, err := s.Datastore.GetActiveFaceTemplate(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch face template: %w", err)
	}
	if template == nil {
		return nil, ErrNoActiveFace
	}

	now := s.now()
	session, err := s.Datastore.InsertSession(ctx, &model.LivenessSession{
		ID:         uuid.NewV4(),
		EmployeeID: employee.ID,
		TerminalID: terminal.ID,
		Status:     model.SessionInProgress,
		Commands:   sampleCommands(),
		ExpiresAt:  now.Add(s.sessionTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create liveness session: %w", err)
	}

	logger.Info().
		Str("session_id", session.ID.String()).
		Int64("employee_id", employee.ID).
		Int("commands", len(session.Commands)).
		Msg("liveness session started")

	return session, nil
}

// SubmitFrame processes one frame: identity check every frame, at most
// one command advance, blink latch, TTL check. Frame-quality failures
// from the oracle are surfaced without touching the session.
func (s *Service) SubmitFrame(ctx context.Context, terminal *model.Terminal, sessionID uuid.UUID, image []byte) (*FrameResult, error) {
	session, err := s.Datastore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil || session.TerminalID != terminal.ID {
		return nil, ErrSessionNotFound
	}
	if session.Status != model.SessionInProgress {
		return nil, ErrSessionNotInProgress
	}

	now := s.now()
	if !now.Before(session.ExpiresAt) {
		return nil, s.expireSession(ctx, sessionID)
	}

	template, err := s.Datastore.GetActiveFaceTemplate(ctx, session.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch face template: %w", err)
	}
	if template == nil {
		return nil, ErrNoActiveFace
	}

	// oracle calls happen before any row is locked
	frame, err := s.oracle.DecodeFrame(ctx, image)
	if err != nil {
		return nil, err
	}
	embedding, err := s.oracle.DetectAndEncode(ctx, frame)
	if err != nil {
		return nil, err
	}
	pose, blink, err := s.oracle.EstimatePoseAndBlink(ctx, frame)
	if err != nil {
		return nil, err
	}

	match, dist := s.matcher.Match(embedding, template.Embedding)

	var outcome error
	updated, err := s.Datastore.UpdateSessionLocked(ctx, sessionID, func(session *model.LivenessSession) error {
		if session.Status != model.SessionInProgress {
			return ErrSessionNotInProgress
		}

		now := s.now()
		ts := now
		session.LastSeenAt = &ts

		if !now.Before(session.ExpiresAt) {
			session.Status = model.SessionExpired
			outcome = ErrSessionExpired
			return nil
		}

		if session.MinFaceDistance == nil || dist < *session.MinFaceDistance {
			d := dist
			session.MinFaceDistance = &d
		}

		if !match {
			session.Status = model.SessionFailed
			reason := "FACE_NOT_MATCH"
			session.FailReasonCode = &reason
			outcome = ErrFaceNotMatch
			return nil
		}

		if session.AnchorPose == nil {
			session.BaselinePose = model.NewPoseColumn(pose)
			session.AnchorPose = model.NewPoseColumn(pose)
		} else if cmd := session.CurrentCommand(); cmd != nil && satisfied(*cmd, session.AnchorPose.Pose(), pose) {
			// one advance per frame, re-anchor at the newly observed pose
			session.CurrentIndex++
			session.AnchorPose = model.NewPoseColumn(pose)
		}

		if blink {
			session.BlinkSeen = true
		}

		if session.CurrentIndex >= len(session.Commands) {
			if session.BlinkSeen {
				session.Status = model.SessionPassed
			} else {
				session.Status = model.SessionFailed
				reason := "BLINK_NOT_DETECTED"
				session.FailReasonCode = &reason
				outcome = ErrLivenessFailed
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}
	if outcome != nil {
		s.countOutcome(updated)
		return nil, outcome
	}
	s.countOutcome(updated)

	hint := ""
	if cmd := updated.CurrentCommand(); cmd != nil && updated.Status == model.SessionInProgress {
		hint = cmd.Text
	}

	return &FrameResult{
		Status:       updated.Status,
		CurrentIndex: updated.CurrentIndex,
		Hint:         hint,
		BlinkSeen:    updated.BlinkSeen,
	}, nil
}

// FinishLiveness closes out the challenge: a passed session yields a
// signed liveness token bound to (employee, session, terminal)
func (s *Service) FinishLiveness(ctx context.Context, terminal *model.Terminal, sessionID uuid.UUID) (*FinishResult, error) {
	logger := logging.Logger(ctx, "liveness.FinishLiveness")

	session, err := s.Datastore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil || session.TerminalID != terminal.ID {
		return nil, ErrSessionNotFound
	}

	if session.Status == model.SessionInProgress && !s.now().Before(session.ExpiresAt) {
		if err := s.expireSession(ctx, sessionID); !errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		return &FinishResult{Result: model.SessionExpired, ReasonCode: "LIVENESS_EXPIRED"}, nil
	}

	switch session.Status {
	case model.SessionPassed:
		t, err := s.tokens.Mint(session.EmployeeID, session.ID, terminal.ID, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to mint liveness token: %w", err)
		}
		logger.Info().Str("session_id", session.ID.String()).Msg("liveness token issued")
		return &FinishResult{
			Result:       model.SessionPassed,
			Token:        t,
			ExpiresInSec: int(s.tokens.TTL() / time.Second),
		}, nil
	case model.SessionFailed:
		reason := "LIVENESS_FAILED"
		if session.FailReasonCode != nil {
			reason = *session.FailReasonCode
		}
		return &FinishResult{Result: model.SessionFailed, ReasonCode: reason}, nil
	case model.SessionExpired:
		return &FinishResult{Result: model.SessionExpired, ReasonCode: "LIVENESS_EXPIRED"}, nil
	case model.SessionUsed:
		return nil, ErrSessionNotInProgress
	default:
		return nil, ErrSessionNotInProgress
	}
}

// expireSession marks an in_progress session expired, returning
// ErrSessionExpired on success
func (s *Service) expireSession(ctx context.Context, sessionID uuid.UUID) error {
	updated, err := s.Datastore.UpdateSessionLocked(ctx, sessionID, func(session *model.LivenessSession) error {
		if session.Status != model.SessionInProgress {
			return ErrSessionNotInProgress
		}
		session.Status = model.SessionExpired
		return nil
	})
	if err != nil {
		return err
	}
	if updated == nil {
		return ErrSessionNotFound
	}
	s.countOutcome(updated)
	return ErrSessionExpired
}

func (s *Service) countOutcome(session *model.LivenessSession) {
	if session.Status != model.SessionInProgress {
		sessionOutcomeTotal.With(prometheus.Labels{"outcome": string(session.Status)}).Inc()
	}
}

package liveness

import (
	"context"
	"database/sql"
	"errors"

	"github.com/canteen-pay/meal-go/datastore"
	"github.com/canteen-pay/meal-go/model"
	uuid "github.com/satori/go.uuid"
)

// Datastore abstracts the session, card, employee and template access
// the liveness flow needs
type Datastore interface {
	datastore.Datastore
	// GetCardByUID returns the card, nil if missing
	GetCardByUID(ctx context.Context, uid string) (*model.Card, error)
	// GetEmployee returns the employee by id, nil if missing
	GetEmployee(ctx context.Context, employeeID int64) (*model.Employee, error)
	// GetActiveFaceTemplate returns the active template, nil if none
	GetActiveFaceTemplate(ctx context.Context, employeeID int64) (*model.FaceTemplate, error)
	// InsertSession stores a new session and returns the stored row
	InsertSession(ctx context.Context, session *model.LivenessSession) (*model.LivenessSession, error)
	// GetSession returns the session, nil if missing
	GetSession(ctx context.Context, sessionID uuid.UUID) (*model.LivenessSession, error)
	// UpdateSessionLocked fetches the session FOR UPDATE, applies fn and
	// writes back the mutable fields in one transaction. If fn returns an
	// error the transaction is rolled back and the error propagated.
	UpdateSessionLocked(ctx context.Context, sessionID uuid.UUID, fn func(session *model.LivenessSession) error) (*model.LivenessSession, error)
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

// GetActiveFaceTemplate returns the active template, nil if none
func (pg *Postgres) GetActiveFaceTemplate(ctx context.Context, employeeID int64) (*model.FaceTemplate, error) {
	template := model.FaceTemplate{}
	err := pg.RawDB().GetContext(ctx, &template,
		`select * from face_templates where employee_id = $1 and is_active`, employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// InsertSession stores a new session and returns the stored row
func (pg *Postgres) InsertSession(ctx context.Context, session *model.LivenessSession) (*model.LivenessSession, error) {
	inserted := model.LivenessSession{}
	err := pg.RawDB().GetContext(ctx, &inserted,
		`insert into liveness_sessions
			(id, employee_id, terminal_id, status, commands, current_index, blink_seen, expires_at)
		 values ($1, $2, $3, $4, $5, 0, false, $6)
		 returning *`,
		session.ID, session.EmployeeID, session.TerminalID, session.Status,
		session.Commands, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

// GetSession returns the session, nil if missing
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

// UpdateSessionLocked fetches the session FOR UPDATE, applies fn and
// writes back the mutable fields in one transaction
func (pg *Postgres) UpdateSessionLocked(ctx context.Context, sessionID uuid.UUID, fn func(session *model.LivenessSession) error) (*model.LivenessSession, error) {
	tx, err := pg.RawDB().Beginx()
	if err != nil {
		return nil, err
	}
	defer pg.RollbackTx(tx)

	session := model.LivenessSession{}
	err = tx.GetContext(ctx, &session,
		`select * from liveness_sessions where id = $1 for update`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := fn(&session); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`update liveness_sessions
		 set status = $2, current_index = $3, anchor_pose = $4, baseline_pose = $5,
			blink_seen = $6, min_face_distance = $7, fail_reason_code = $8,
			last_seen_at = $9, used_at = $10
		 where id = $1`,
		session.ID, session.Status, session.CurrentIndex, session.AnchorPose,
		session.BaselinePose, session.BlinkSeen, session.MinFaceDistance,
		session.FailReasonCode, session.LastSeenAt, session.UsedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &session, nil
}

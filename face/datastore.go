package face

import (
	"context"
	"database/sql"
	"errors"

	"github.com/canteen-pay/meal-go/datastore"
	"github.com/canteen-pay/meal-go/model"
)

// Datastore abstracts employee and face-template access for enrollment
type Datastore interface {
	datastore.Datastore
	// GetEmployee returns the employee by id, nil if missing
	GetEmployee(ctx context.Context, employeeID int64) (*model.Employee, error)
	// GetActiveFaceTemplate returns the active template, nil if none
	GetActiveFaceTemplate(ctx context.Context, employeeID int64) (*model.FaceTemplate, error)
	// ReplaceActiveFaceTemplate deactivates the previous active template and
	// inserts the new one in a single transaction
	ReplaceActiveFaceTemplate(ctx context.Context, template *model.FaceTemplate) (*model.FaceTemplate, error)
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

// ReplaceActiveFaceTemplate deactivates the previous active template and
// inserts the new one in a single transaction
func (pg *Postgres) ReplaceActiveFaceTemplate(ctx context.Context, template *model.FaceTemplate) (*model.FaceTemplate, error) {
	tx, err := pg.RawDB().Beginx()
	if err != nil {
		return nil, err
	}
	defer pg.RollbackTx(tx)

	_, err = tx.ExecContext(ctx,
		`update face_templates
		 set is_active = false, deactivated_at = now()
		 where employee_id = $1 and is_active`,
		template.EmployeeID)
	if err != nil {
		return nil, err
	}

	inserted := model.FaceTemplate{}
	err = tx.GetContext(ctx, &inserted,
		`insert into face_templates (employee_id, embedding, model, quality_score, is_active)
		 values ($1, $2, $3, $4, true)
		 returning *`,
		template.EmployeeID, template.Embedding, template.Model, template.QualityScore)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &inserted, nil
}

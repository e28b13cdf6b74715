// Package model holds the entities shared across the liveness, face,
// calendar and payment packages.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
)

// EmployeeKind - whether the employee is eligible for the state subsidy
type EmployeeKind string

// EmployeeStatus - lifecycle status of an employee
type EmployeeStatus string

// CardStatus - lifecycle status of a card
type CardStatus string

// TerminalStatus - lifecycle status of a cashier terminal
type TerminalStatus string

// SessionStatus - state of a liveness session
type SessionStatus string

// TransactionStatus - outcome recorded on a transaction
type TransactionStatus string

// CommandType - a single liveness challenge kind
type CommandType string

const (
	// EmployeeKindWorker - production worker, subsidized on workdays
	EmployeeKindWorker EmployeeKind = "WORKER"
	// EmployeeKindStaff - office staff, never subsidized
	EmployeeKindStaff EmployeeKind = "STAFF"

	// EmployeeStatusActive - employee may pay
	EmployeeStatusActive EmployeeStatus = "ACTIVE"
	// EmployeeStatusBlocked - employee temporarily blocked
	EmployeeStatusBlocked EmployeeStatus = "BLOCKED"
	// EmployeeStatusTerminated - employee no longer with the company
	EmployeeStatusTerminated EmployeeStatus = "TERMINATED"

	// CardStatusActive - card may be presented
	CardStatusActive CardStatus = "ACTIVE"
	// CardStatusBlocked - card blocked by administration
	CardStatusBlocked CardStatus = "BLOCKED"
	// CardStatusLost - card reported lost
	CardStatusLost CardStatus = "LOST"

	// TerminalStatusActive - terminal may authorize payments
	TerminalStatusActive TerminalStatus = "ACTIVE"
	// TerminalStatusBlocked - terminal blocked by administration
	TerminalStatusBlocked TerminalStatus = "BLOCKED"

	// SessionInProgress - session accepting frames
	SessionInProgress SessionStatus = "IN_PROGRESS"
	// SessionPassed - all commands satisfied and a blink observed
	SessionPassed SessionStatus = "PASSED"
	// SessionFailed - mismatch or missing blink, terminal state
	SessionFailed SessionStatus = "FAILED"
	// SessionExpired - TTL elapsed, terminal state
	SessionExpired SessionStatus = "EXPIRED"
	// SessionUsed - consumed by an approved payment, terminal state
	SessionUsed SessionStatus = "USED"

	// TransactionApproved - the payment went through
	TransactionApproved TransactionStatus = "APPROVED"
	// TransactionDeclined - the payment was declined after token acceptance
	TransactionDeclined TransactionStatus = "DECLINED"

	// CommandTurnLeft - turn the head left
	CommandTurnLeft CommandType = "TURN_LEFT"
	// CommandTurnRight - turn the head right
	CommandTurnRight CommandType = "TURN_RIGHT"
	// CommandTilt - tilt the head towards a shoulder
	CommandTilt CommandType = "TILT"
)

// EmbeddingDim is the fixed dimension of face embeddings
const EmbeddingDim = 128

// Employee - identity plus spending policy
type Employee struct {
	ID                int64          `db:"id"`
	PersonnelNo       *string        `db:"personnel_no"`
	FullName          string         `db:"full_name"`
	Kind              EmployeeKind   `db:"kind"`
	Status            EmployeeStatus `db:"status"`
	MonthlyLimitCents int64          `db:"monthly_limit_cents"`
	PhotoJPEG         []byte         `db:"photo_jpeg"`
	TelegramChatID    *string        `db:"telegram_chat_id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// Card - a physical token owned by one employee
type Card struct {
	ID         int64      `db:"id"`
	UID        string     `db:"uid"`
	EmployeeID int64      `db:"employee_id"`
	Status     CardStatus `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Terminal - an authenticated cashier device
type Terminal struct {
	ID           uuid.UUID      `db:"id"`
	Name         string         `db:"name"`
	Status       TerminalStatus `db:"status"`
	APITokenHash string         `db:"api_token_hash"`
	CreatedAt    time.Time      `db:"created_at"`
}

// FaceTemplate - the biometric reference for one employee.
// At most one template per employee is active at a time.
type FaceTemplate struct {
	ID            int64      `db:"id"`
	EmployeeID    int64      `db:"employee_id"`
	Embedding     Embedding  `db:"embedding"`
	Model         string     `db:"model"`
	QualityScore  float64    `db:"quality_score"`
	IsActive      bool       `db:"is_active"`
	CreatedAt     time.Time  `db:"created_at"`
	DeactivatedAt *time.Time `db:"deactivated_at"`
}

// Pose - head orientation in degrees
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Command - one liveness challenge shown to the person at the terminal
type Command struct {
	Type CommandType `json:"type"`
	Text string      `json:"text"`
}

// LivenessSession - the active liveness state machine row
type LivenessSession struct {
	ID              uuid.UUID     `db:"id"`
	EmployeeID      int64         `db:"employee_id"`
	TerminalID      uuid.UUID     `db:"terminal_id"`
	Status          SessionStatus `db:"status"`
	Commands        CommandList   `db:"commands"`
	CurrentIndex    int           `db:"current_index"`
	AnchorPose      *PoseColumn   `db:"anchor_pose"`
	BaselinePose    *PoseColumn   `db:"baseline_pose"`
	BlinkSeen       bool          `db:"blink_seen"`
	MinFaceDistance *float64      `db:"min_face_distance"`
	FailReasonCode  *string       `db:"fail_reason_code"`
	CreatedAt       time.Time     `db:"created_at"`
	ExpiresAt       time.Time     `db:"expires_at"`
	LastSeenAt      *time.Time    `db:"last_seen_at"`
	UsedAt          *time.Time    `db:"used_at"`
}

// CurrentCommand returns the pending command, or nil once the list is exhausted
func (s *LivenessSession) CurrentCommand() *Command {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Commands) {
		return nil
	}
	c := s.Commands[s.CurrentIndex]
	return &c
}

// DailySubsidyBalance - subsidy cents consumed by one employee on one day
type DailySubsidyBalance struct {
	ID         int64     `db:"id"`
	EmployeeID int64     `db:"employee_id"`
	Day        time.Time `db:"day"`
	UsedCents  int64     `db:"used_cents"`
}

// MonthlyBalance - personal allowance for one employee in one calendar month.
// LimitCents is snapshotted from the employee on first use of the month.
type MonthlyBalance struct {
	ID         int64 `db:"id"`
	EmployeeID int64 `db:"employee_id"`
	YearMonth  int   `db:"year_month"`
	LimitCents int64 `db:"limit_cents"`
	UsedCents  int64 `db:"used_cents"`
}

// Transaction - immutable audit record of an authorization attempt
type Transaction struct {
	ID                uuid.UUID         `db:"id"`
	CreatedAt         time.Time         `db:"created_at"`
	TerminalID        uuid.UUID         `db:"terminal_id"`
	EmployeeID        int64             `db:"employee_id"`
	CardUID           string            `db:"card_uid"`
	AmountCents       int64             `db:"amount_cents"`
	SubsidySpentCents int64             `db:"subsidy_spent_cents"`
	MonthlySpentCents int64             `db:"monthly_spent_cents"`
	Status            TransactionStatus `db:"status"`
	DeclineCode       *string           `db:"decline_code"`
	DeclineMessage    *string           `db:"decline_message"`
	LivenessSessionID *uuid.UUID        `db:"liveness_session_id"`
}

// YearMonth encodes d as year*100+month in the given location
func YearMonth(d time.Time) int {
	return d.Year()*100 + int(d.Month())
}

// Embedding is a fixed-dimension face embedding stored as a jsonb column
type Embedding []float64

// Validate checks the embedding dimension
func (e Embedding) Validate() error {
	if len(e) != EmbeddingDim {
		return fmt.Errorf("embedding must have %d components, got %d", EmbeddingDim, len(e))
	}
	return nil
}

// Value implements driver.Valuer
func (e Embedding) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner
func (e *Embedding) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.New("embedding: scan source was not []byte")
	}
	return json.Unmarshal(b, e)
}

// CommandList is the ordered challenge sequence stored as a jsonb column
type CommandList []Command

// Value implements driver.Valuer
func (cl CommandList) Value() (driver.Value, error) {
	return json.Marshal(cl)
}

// Scan implements sql.Scanner
func (cl *CommandList) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.New("command list: scan source was not []byte")
	}
	return json.Unmarshal(b, cl)
}

// PoseColumn is a Pose stored as a jsonb column
type PoseColumn Pose

// Value implements driver.Valuer
func (p PoseColumn) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *PoseColumn) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.New("pose: scan source was not []byte")
	}
	return json.Unmarshal(b, p)
}

// Pose converts the column representation back to a Pose
func (p *PoseColumn) Pose() Pose {
	if p == nil {
		return Pose{}
	}
	return Pose(*p)
}

// NewPoseColumn wraps a Pose for storage
func NewPoseColumn(p Pose) *PoseColumn {
	pc := PoseColumn(p)
	return &pc
}

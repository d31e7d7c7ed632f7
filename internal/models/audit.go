package models

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only record of a state transition: subject, action,
// actor, and before/after field snapshots. Rows are never updated or deleted
// after creation.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BatchID     string    `gorm:"size:36;not null;index" json:"batch_id"`
	SubjectKind string    `gorm:"size:40;not null;index" json:"subject_kind"`
	SubjectID   uint      `gorm:"not null;index" json:"subject_id"`
	Action      string    `gorm:"size:20;not null" json:"action"`
	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	BeforeState *string   `gorm:"type:text" json:"before_state"`
	AfterState  *string   `gorm:"type:text" json:"after_state"`
	Metadata    *string   `gorm:"type:text" json:"metadata"`
	IPAddress   string    `gorm:"size:45" json:"ip_address"`
	UserAgent   string    `gorm:"size:255" json:"user_agent"`
	RecordedAt  time.Time `gorm:"not null" json:"recorded_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionCreated   = "created"
	AuditActionUpdated   = "updated"
	AuditActionIssued    = "issued"
	AuditActionApproved  = "approved"
	AuditActionRejected  = "rejected"
	AuditActionCancelled = "cancelled"
	AuditActionDeleted   = "deleted"
	AuditActionPosted    = "posted"
)

// Subject returns the audited document reference
func (a *AuditLog) Subject() Reference {
	return Reference{Kind: a.SubjectKind, ID: a.SubjectID}
}

// Snapshot serializes a field subset for a before/after column. Returns nil
// for an empty snapshot so the column stays NULL.
func Snapshot(fields map[string]interface{}) *string {
	if len(fields) == 0 {
		return nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

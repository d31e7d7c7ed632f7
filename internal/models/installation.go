package models

import (
	"time"
)

// InstallationOrder tracks an on-site furniture installation job from
// scheduling through completion. The SLA clock starts when the order is
// first scheduled and pauses while the job is held up by a no-show or
// missing parts.
type InstallationOrder struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OrderNo       string     `gorm:"size:40;not null;uniqueIndex" json:"order_no"`
	SalesOrderID  *uint      `gorm:"index" json:"sales_order_id"`
	PartyID       uint       `gorm:"not null;index" json:"party_id"`
	Address       string     `gorm:"not null" json:"address"`
	Status        string     `gorm:"size:20;default:draft;not null;index" json:"status"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	SLAStartedAt  *time.Time `json:"sla_started_at"`
	SLAPausedAt   *time.Time `json:"sla_paused_at"`
	SLAPausedSecs int64      `gorm:"not null;default:0" json:"sla_paused_secs"`
	CompletedAt   *time.Time `json:"completed_at"`
	Note          *string    `gorm:"type:text" json:"note"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Party  Party               `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Photos []InstallationPhoto `gorm:"foreignKey:InstallationOrderID" json:"photos,omitempty"`
}

// TableName specifies the table name for InstallationOrder
func (InstallationOrder) TableName() string {
	return "installation_orders"
}

// Installation status constants
const (
	InstallationStatusDraft        = "draft"
	InstallationStatusScheduled    = "scheduled"
	InstallationStatusInProgress   = "in_progress"
	InstallationStatusNoShow       = "no_show"
	InstallationStatusPendingParts = "pending_parts"
	InstallationStatusCompleted    = "completed"
)

// MaySchedule returns true if the order can be (re)scheduled
func (o *InstallationOrder) MaySchedule() bool {
	return o.Status == InstallationStatusDraft ||
		o.Status == InstallationStatusNoShow ||
		o.Status == InstallationStatusPendingParts
}

// MayStart returns true if work can begin
func (o *InstallationOrder) MayStart() bool {
	return o.Status == InstallationStatusScheduled
}

// MayMarkNoShow returns true if the visit can be recorded as a no-show
func (o *InstallationOrder) MayMarkNoShow() bool {
	return o.Status == InstallationStatusScheduled
}

// MayHoldForParts returns true if the job can be put on hold for parts
func (o *InstallationOrder) MayHoldForParts() bool {
	return o.Status == InstallationStatusScheduled || o.Status == InstallationStatusInProgress
}

// MayComplete returns true if the job can be completed. The required
// "after" photo is checked separately by the service.
func (o *InstallationOrder) MayComplete() bool {
	return o.Status == InstallationStatusInProgress
}

// HasAfterPhoto reports whether at least one loaded photo is tagged "after"
func (o *InstallationOrder) HasAfterPhoto() bool {
	for _, p := range o.Photos {
		if p.Tag == PhotoTagAfter {
			return true
		}
	}
	return false
}

// PauseSLA stops the SLA clock. No-op if already paused or never started.
func (o *InstallationOrder) PauseSLA(now time.Time) {
	if o.SLAStartedAt == nil || o.SLAPausedAt != nil {
		return
	}
	o.SLAPausedAt = &now
}

// ResumeSLA restarts the SLA clock, accruing the paused interval
func (o *InstallationOrder) ResumeSLA(now time.Time) {
	if o.SLAPausedAt == nil {
		return
	}
	o.SLAPausedSecs += int64(now.Sub(*o.SLAPausedAt).Seconds())
	o.SLAPausedAt = nil
}

// SLAElapsed returns how long the order has counted against its SLA,
// excluding paused intervals
func (o *InstallationOrder) SLAElapsed(now time.Time) time.Duration {
	if o.SLAStartedAt == nil {
		return 0
	}
	end := now
	if o.SLAPausedAt != nil {
		end = *o.SLAPausedAt
	}
	if o.CompletedAt != nil && o.CompletedAt.Before(end) {
		end = *o.CompletedAt
	}
	elapsed := end.Sub(*o.SLAStartedAt) - time.Duration(o.SLAPausedSecs)*time.Second
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Photo tag constants
const (
	PhotoTagBefore = "before"
	PhotoTagAfter  = "after"
)

// InstallationPhoto is a photo attached to an installation order
type InstallationPhoto struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	InstallationOrderID uint      `gorm:"not null;index" json:"installation_order_id"`
	Path                string    `gorm:"not null" json:"-"`
	Tag                 string    `gorm:"size:10;not null" json:"tag"`
	UploadedBy          uint      `json:"uploaded_by"`
	CreatedAt           time.Time `json:"created_at"`
}

// TableName specifies the table name for InstallationPhoto
func (InstallationPhoto) TableName() string {
	return "installation_photos"
}

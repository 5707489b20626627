package model

import "time"

const (
	ActionSubmitted = "Submitted"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
)

// AuditEntry is one append-only line of a request's history.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	RequestID string    `gorm:"type:varchar(32);not null;index" json:"request_id,omitempty"`
	Seq       int       `gorm:"not null" json:"seq"`
	Action    string    `gorm:"type:varchar(20);not null" json:"action"`
	User      string    `gorm:"type:varchar(255);not null" json:"user"` // actor display name
	UserID    string    `gorm:"type:varchar(64);index" json:"user_id"`
	Date      time.Time `gorm:"not null" json:"date"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
}

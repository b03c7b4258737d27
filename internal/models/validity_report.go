package models

import (
	"time"
)

// ValidityReport records a single user's verdict on a shared node.
// The (ProxyID, UserID) pair is unique: one lifetime vote per user per node,
// enforced by the storage-level index so concurrent votes cannot race past it.
type ValidityReport struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProxyID    uint      `gorm:"not null;uniqueIndex:idx_proxy_user" json:"proxy_id"`
	UserID     string    `gorm:"size:255;not null;uniqueIndex:idx_proxy_user" json:"user_id"`
	IsValid    bool      `gorm:"not null" json:"is_valid"`
	ReportTime time.Time `gorm:"autoCreateTime" json:"report_time"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

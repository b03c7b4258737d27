package models

import (
	"time"
)

// IPType classifies where a shared node is hosted.
type IPType string

const (
	IPTypeDatacenter  IPType = "datacenter"
	IPTypeCommercial  IPType = "commercial"
	IPTypeResidential IPType = "residential"
)

// Valid reports whether t is one of the known classifications.
// The empty string means "unset" and is accepted.
func (t IPType) Valid() bool {
	switch t {
	case "", IPTypeDatacenter, IPTypeCommercial, IPTypeResidential:
		return true
	}
	return false
}

// Proxy represents a shared proxy node record. Records are immutable once
// created; the only correction path is delete-and-recreate by the owner.
type Proxy struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	NodeText         string    `gorm:"type:text;not null" json:"node_text"`
	Region           string    `gorm:"size:100" json:"region"`
	IPType           IPType    `gorm:"size:20" json:"ip_type"`
	RemainingTraffic string    `gorm:"size:50" json:"remaining_traffic"`
	UploaderID       string    `gorm:"size:255;not null;index" json:"uploader_id"`
	Uploader         User      `gorm:"foreignKey:UploaderID" json:"uploader"`
	UploadTime       time.Time `gorm:"autoCreateTime" json:"upload_time"`

	Reports []ValidityReport `gorm:"foreignKey:ProxyID;constraint:OnDelete:CASCADE" json:"-"`
}

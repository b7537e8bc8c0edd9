package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentVerified, PaymentRejected:
		return true
	}
	return false
}

func (s PaymentStatus) String() string { return string(s) }

type PaymentMethod string

const (
	PaymentGcash PaymentMethod = "gcash"
	PaymentCash  PaymentMethod = "cash"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentGcash || m == PaymentCash
}

type Payment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AssignmentID uint `gorm:"index;column:assignment_id" json:"assignmentId"`

	Amount float64       `gorm:"column:amount" json:"amount"`
	Method PaymentMethod `gorm:"column:method;type:varchar(32)" json:"method"`

	// Required for gcash submissions; the proof image is an opaque
	// reference handed over by the upload subsystem.
	ReferenceNumber string `gorm:"column:reference_number;size:100" json:"referenceNumber,omitempty"`
	ProofImage      string `gorm:"column:proof_image;size:255" json:"proofImage,omitempty"`

	Status  PaymentStatus `gorm:"column:status;type:varchar(32);default:'pending'" json:"status"`
	Remarks string        `gorm:"column:remarks;type:text" json:"remarks,omitempty"`

	// Set to AssignmentID while the payment is pending or verified and
	// cleared on rejection. The unique index enforces at most one
	// non-rejected payment per assignment at the database level.
	OpenAssignmentKey *uint `gorm:"column:open_assignment_key;uniqueIndex" json:"-"`

	VerifiedAt *time.Time `gorm:"column:verified_at" json:"verifiedAt,omitempty"`

	Assignment Assignment `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
}

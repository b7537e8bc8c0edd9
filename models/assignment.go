package models

import (
	"time"

	"gorm.io/gorm"
)

// AssignmentStatus is the booking lifecycle state. rejected, completed and
// cancelled are terminal and are never reopened.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentApproved  AssignmentStatus = "approved"
	AssignmentRejected  AssignmentStatus = "rejected"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentPending:   {AssignmentApproved, AssignmentRejected},
	AssignmentApproved:  {AssignmentActive, AssignmentCancelled, AssignmentCompleted},
	AssignmentActive:    {AssignmentCompleted, AssignmentCancelled},
	AssignmentRejected:  {},
	AssignmentCompleted: {},
	AssignmentCancelled: {},
}

func (s AssignmentStatus) IsValid() bool {
	_, ok := assignmentTransitions[s]
	return ok
}

func (s AssignmentStatus) CanTransitionTo(target AssignmentStatus) bool {
	for _, t := range assignmentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s AssignmentStatus) IsTerminal() bool {
	return s.IsValid() && len(assignmentTransitions[s]) == 0
}

func (s AssignmentStatus) String() string { return string(s) }

type Assignment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ResidentID uint `gorm:"index;column:resident_id" json:"residentId"`
	RoomID     uint `gorm:"index;column:room_id" json:"roomId"`

	StartDate time.Time `gorm:"column:start_date" json:"startDate"`
	EndDate   time.Time `gorm:"column:end_date" json:"endDate"`

	// Duration and price are derived once at submission from the room's
	// rate at that moment; the rate is snapshotted, never re-read.
	Duration    int     `gorm:"column:duration" json:"duration"`
	MonthlyRate float64 `gorm:"column:monthly_rate" json:"monthlyRate"`
	TotalPrice  float64 `gorm:"column:total_price" json:"totalPrice"`

	ReferenceCode string           `gorm:"column:reference_code;uniqueIndex;size:64" json:"referenceCode"`
	Status        AssignmentStatus `gorm:"column:status;type:varchar(32);default:'pending'" json:"status"`

	// Set to ResidentID while the assignment is non-terminal and cleared on
	// every terminal transition. The unique index makes "one non-terminal
	// assignment per resident" atomic with the insert itself.
	ActiveResidentKey *uint `gorm:"column:active_resident_key;uniqueIndex" json:"-"`

	ApprovedAt  *time.Time `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	CheckedInAt *time.Time `gorm:"column:checked_in_at" json:"checkedInAt,omitempty"`

	Resident Resident `gorm:"foreignKey:ResidentID;references:ID" json:"resident,omitempty"`
	Room     Room     `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}

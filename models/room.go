package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

func (s RoomStatus) String() string { return string(s) }

type RoomType string

const (
	RoomSingle   RoomType = "single"
	RoomDouble   RoomType = "double"
	RoomQuad     RoomType = "quad"
	RoomBarracks RoomType = "barracks"
)

func (t RoomType) IsValid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomQuad, RoomBarracks:
		return true
	}
	return false
}

const (
	RoomMinCapacity = 1
	RoomMaxCapacity = 6
	RoomMaxImages   = 5
)

type Room struct {
	gorm.Model

	RoomNumber  string     `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	Floor       int        `json:"floor"`
	Capacity    int        `json:"capacity"`
	Type        RoomType   `json:"type" gorm:"type:varchar(32)"`
	MonthlyRate float64    `json:"monthlyRate" gorm:"column:monthly_rate"`
	Status      RoomStatus `json:"status" gorm:"type:varchar(32);default:'available'"`

	// Mutated only by the coordinator when assignments activate or end,
	// never directly from a client payload.
	OccupiedCount int `json:"occupiedCount" gorm:"column:occupied_count;default:0"`

	Amenities datatypes.JSON `json:"amenities,omitempty" gorm:"column:amenities"`
	Images    datatypes.JSON `json:"images,omitempty" gorm:"column:images"`
}

// HasVacancy reports whether the room can take one more active assignment.
func (r *Room) HasVacancy() bool {
	return r.OccupiedCount < r.Capacity
}

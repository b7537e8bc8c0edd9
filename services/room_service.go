// services/room_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dorm-backend/models"
	"dorm-backend/utils"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// RoomService owns room inventory: capacity, occupied count and status.
// Occupied count is only ever mutated through AdjustOccupancyTx so the
// count/status coupling cannot drift.
type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

// RoomInput is the admin create/update payload.
type RoomInput struct {
	RoomNumber  string   `json:"roomNumber"`
	Floor       *int     `json:"floor"`
	Capacity    *int     `json:"capacity"`
	Type        string   `json:"type"`
	MonthlyRate *float64 `json:"monthlyRate"`
	Status      string   `json:"status"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if merr, ok := err.(*mysql.MySQLError); ok {
		return merr.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") || strings.Contains(lc, "constraint")
}

func (s *RoomService) Create(in RoomInput) (*models.Room, error) {
	room := models.Room{Status: models.RoomAvailable}
	if err := applyRoomInput(&room, in, true); err != nil {
		return nil, err
	}

	if err := s.DB.Create(&room).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, utils.ConflictError(utils.CodeDuplicateEntry,
				fmt.Sprintf("room number '%s' already exists", room.RoomNumber))
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

func (s *RoomService) GetAll() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) GetByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("room not found")
		}
		return nil, fmt.Errorf("failed to retrieve room: %w", err)
	}
	return &room, nil
}

// Update edits room attributes. The occupied count itself is not
// editable and is never written back here. Capacity changes are guarded
// UPDATEs (shrinking below the live occupied count is rejected by the
// WHERE clause) and re-derive the status/occupancy coupling; explicit
// status changes then route through the usual occupancy guards.
func (s *RoomService) Update(id uint, in RoomInput) (*models.Room, error) {
	var updated models.Room
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("room not found")
			}
			return err
		}

		prevCapacity := room.Capacity
		if err := applyRoomInput(&room, in, false); err != nil {
			return err
		}

		if room.Capacity != prevCapacity {
			res := tx.Model(&models.Room{}).
				Where("id = ? AND occupied_count <= ?", room.ID, room.Capacity).
				Update("capacity", room.Capacity)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.ConflictError(utils.CodeInvalidCapacityChange,
					fmt.Sprintf("capacity %d is below current occupancy", room.Capacity))
			}
			if err := tx.Model(&models.Room{}).Select("occupied_count").
				Where("id = ?", room.ID).Scan(&room.OccupiedCount).Error; err != nil {
				return err
			}
			if err := s.syncStatusTx(tx, &room); err != nil {
				return err
			}
		}

		if in.Status != "" && models.RoomStatus(in.Status) != room.Status {
			if err := s.setStatusTx(tx, &room, models.RoomStatus(in.Status)); err != nil {
				return err
			}
		}

		if err := tx.Omit("occupied_count", "status", "capacity").Save(&room).Error; err != nil {
			if isDuplicateErr(err) {
				return utils.ConflictError(utils.CodeDuplicateEntry,
					fmt.Sprintf("room number '%s' already exists", room.RoomNumber))
			}
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete is a single guarded statement: a room that holds occupants, or
// gains one concurrently, is never removed.
func (s *RoomService) Delete(id uint) error {
	res := s.DB.Where("id = ? AND occupied_count = 0", id).Delete(&models.Room{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := s.DB.Model(&models.Room{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return utils.NotFoundError("room not found")
		}
		return utils.ConflictError(utils.CodeInvalidTransition,
			"room still has active assignments")
	}
	return nil
}

// SetStatus applies an explicit admin status change.
func (s *RoomService) SetStatus(id uint, status models.RoomStatus) (*models.Room, error) {
	var updated models.Room
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("room not found")
			}
			return err
		}
		if err := s.setStatusTx(tx, &room, status); err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// setStatusTx performs the status change as a guarded UPDATE so the
// occupancy precondition is checked by the database, not by a stale read.
func (s *RoomService) setStatusTx(tx *gorm.DB, room *models.Room, status models.RoomStatus) error {
	if !status.IsValid() {
		return utils.ValidationError(utils.CodeInvalidPayload,
			fmt.Sprintf("unknown room status '%s'", status))
	}

	if status == room.Status {
		return nil
	}

	q := tx.Model(&models.Room{}).Where("id = ?", room.ID)
	switch status {
	case models.RoomOccupied:
		q = q.Where("occupied_count = capacity")
	case models.RoomAvailable:
		q = q.Where("occupied_count < capacity")
	case models.RoomMaintenance:
		// always permitted
	}

	res := q.Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ConflictError(utils.CodeInvalidTransition,
			fmt.Sprintf("room %s cannot move to '%s' with %d/%d occupied",
				room.RoomNumber, status, room.OccupiedCount, room.Capacity))
	}
	room.Status = status
	return nil
}

// AdjustOccupancyTx moves the occupied count by delta inside the caller's
// transaction. The bound check lives in the WHERE clause: two concurrent
// activations racing for the last slot resolve at the database, and the
// loser gets CapacityExceeded. Reaching capacity flips the room to
// occupied; an occupied room dropping below capacity flips back to
// available. Maintenance is never auto-exited.
func (s *RoomService) AdjustOccupancyTx(tx *gorm.DB, roomID uint, delta int) (*models.Room, error) {
	res := tx.Model(&models.Room{}).
		Where("id = ? AND occupied_count + ? >= 0 AND occupied_count + ? <= capacity", roomID, delta, delta).
		UpdateColumn("occupied_count", gorm.Expr("occupied_count + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.Room{}).Where("id = ?", roomID).Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, utils.NotFoundError("room not found")
		}
		return nil, utils.ConflictError(utils.CodeCapacityExceeded,
			"room occupancy change would leave the [0, capacity] range")
	}

	var room models.Room
	if err := tx.First(&room, roomID).Error; err != nil {
		return nil, err
	}
	if err := s.syncStatusTx(tx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// syncStatusTx re-derives the status/occupancy coupling after the
// occupied count or the capacity changed. A room at capacity is
// occupied; an occupied room with vacancies goes back to available.
// Maintenance is never auto-exited.
func (s *RoomService) syncStatusTx(tx *gorm.DB, room *models.Room) error {
	if room.Status == models.RoomMaintenance {
		return nil
	}

	var want models.RoomStatus
	switch {
	case !room.HasVacancy() && room.Status != models.RoomOccupied:
		want = models.RoomOccupied
	case room.HasVacancy() && room.Status == models.RoomOccupied:
		want = models.RoomAvailable
	default:
		return nil
	}

	if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).
		Update("status", want).Error; err != nil {
		return err
	}
	room.Status = want
	return nil
}

func applyRoomInput(room *models.Room, in RoomInput, creating bool) error {
	if in.RoomNumber != "" || creating {
		num := utils.NormalizeRoomNumber(in.RoomNumber)
		if !utils.IsValidRoomNumber(num) {
			return utils.ValidationError(utils.CodeInvalidPayload,
				"room number must be a non-empty alphanumeric token")
		}
		room.RoomNumber = num
	}
	if in.Floor != nil {
		if *in.Floor < 0 {
			return utils.ValidationError(utils.CodeInvalidPayload, "floor must be non-negative")
		}
		room.Floor = *in.Floor
	}
	if in.Capacity != nil {
		if *in.Capacity < models.RoomMinCapacity || *in.Capacity > models.RoomMaxCapacity {
			return utils.ValidationError(utils.CodeInvalidPayload,
				fmt.Sprintf("capacity must be between %d and %d", models.RoomMinCapacity, models.RoomMaxCapacity))
		}
		room.Capacity = *in.Capacity
	} else if creating {
		return utils.ValidationError(utils.CodeInvalidPayload, "capacity is required")
	}
	if in.Type != "" {
		t := models.RoomType(strings.ToLower(strings.TrimSpace(in.Type)))
		if !t.IsValid() {
			return utils.ValidationError(utils.CodeInvalidPayload,
				fmt.Sprintf("unknown room type '%s'", in.Type))
		}
		room.Type = t
	} else if creating {
		return utils.ValidationError(utils.CodeInvalidPayload, "room type is required")
	}
	if in.MonthlyRate != nil {
		if *in.MonthlyRate < 0 {
			return utils.ValidationError(utils.CodeInvalidPayload, "monthly rate must be non-negative")
		}
		room.MonthlyRate = *in.MonthlyRate
	} else if creating {
		return utils.ValidationError(utils.CodeInvalidPayload, "monthly rate is required")
	}
	if in.Amenities != nil {
		raw, err := json.Marshal(in.Amenities)
		if err != nil {
			return utils.ValidationError(utils.CodeInvalidPayload, "invalid amenities list")
		}
		room.Amenities = raw
	}
	if in.Images != nil {
		if len(in.Images) > models.RoomMaxImages {
			return utils.ValidationError(utils.CodeInvalidPayload,
				fmt.Sprintf("at most %d images are allowed", models.RoomMaxImages))
		}
		raw, err := json.Marshal(in.Images)
		if err != nil {
			return utils.ValidationError(utils.CodeInvalidPayload, "invalid images list")
		}
		room.Images = raw
	}
	if creating && in.Status != "" {
		st := models.RoomStatus(strings.ToLower(strings.TrimSpace(in.Status)))
		if !st.IsValid() {
			return utils.ValidationError(utils.CodeInvalidPayload,
				fmt.Sprintf("unknown room status '%s'", in.Status))
		}
		if st == models.RoomOccupied {
			return utils.ValidationError(utils.CodeInvalidPayload,
				"a new room cannot start occupied")
		}
		room.Status = st
	}
	return nil
}

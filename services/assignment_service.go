// services/assignment_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"dorm-backend/models"
	"dorm-backend/utils"

	"gorm.io/gorm"
)

// AssignmentService drives the booking lifecycle. Every transition runs in
// one transaction scoped to the assignment and, transitively, its room and
// payment, so a failed step never leaves partial state behind.
type AssignmentService struct {
	DB    *gorm.DB
	Rooms *RoomService
}

func NewAssignmentService(db *gorm.DB, rooms *RoomService) *AssignmentService {
	return &AssignmentService{DB: db, Rooms: rooms}
}

const dateLayout = "2006-01-02"

// today truncates to a calendar date; assignment dates carry no time of day.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DurationDays is the billable day count for a stay.
func DurationDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// PriceFor derives the total from the monthly rate prorated per day.
func PriceFor(monthlyRate float64, durationDays int) float64 {
	return math.Round(monthlyRate / 30 * float64(durationDays))
}

// Create opens a pending assignment for a resident. The room's rate is
// snapshotted here; later rate edits never reprice an existing stay. The
// one-non-terminal-per-resident rule is enforced by the unique
// active_resident_key index, atomically with the insert.
func (s *AssignmentService) Create(residentID, roomID uint, startDate, endDate string) (*models.Assignment, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return nil, utils.ValidationError(utils.CodeInvalidDateRange,
			fmt.Sprintf("invalid start date format: %v", err))
	}
	end, err := parseDate(endDate)
	if err != nil {
		return nil, utils.ValidationError(utils.CodeInvalidDateRange,
			fmt.Sprintf("invalid end date format: %v", err))
	}
	if !end.After(start) {
		return nil, utils.ValidationError(utils.CodeInvalidDateRange, "end date must be after start date")
	}
	if start.Before(today()) {
		return nil, utils.ValidationError(utils.CodeInvalidDateRange, "start date cannot be in the past")
	}

	var resident models.Resident
	if err := s.DB.First(&resident, residentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("resident not found")
		}
		return nil, fmt.Errorf("db error checking resident: %w", err)
	}

	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("room not found")
		}
		return nil, fmt.Errorf("db error checking room %d: %w", roomID, err)
	}
	if room.Status == models.RoomMaintenance {
		return nil, utils.ConflictError(utils.CodeRoomUnavailable,
			fmt.Sprintf("room %s is under maintenance", room.RoomNumber))
	}

	duration := DurationDays(start, end)
	residentKey := residentID

	var created models.Assignment
	maxRetries := 5
	var createErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ref, gErr := utils.GenerateReferenceCode(8)
		if gErr != nil {
			return nil, fmt.Errorf("failed to generate reference code: %w", gErr)
		}

		created = models.Assignment{
			ResidentID:        residentID,
			RoomID:            roomID,
			StartDate:         start,
			EndDate:           end,
			Duration:          duration,
			MonthlyRate:       room.MonthlyRate,
			TotalPrice:        PriceFor(room.MonthlyRate, duration),
			ReferenceCode:     ref,
			Status:            models.AssignmentPending,
			ActiveResidentKey: &residentKey,
		}

		createErr = s.DB.Create(&created).Error
		if createErr == nil {
			break
		}
		if isDuplicateErr(createErr) {
			// Either the resident already holds a non-terminal assignment or
			// the reference code collided; only the latter is retryable.
			var open int64
			if err := s.DB.Model(&models.Assignment{}).
				Where("active_resident_key = ?", residentID).
				Count(&open).Error; err == nil && open > 0 {
				return nil, utils.ConflictError(utils.CodeOverlappingRequest,
					"resident already has a pending, approved or active assignment")
			}
			log.Printf("assignment reference collision (attempt %d) - retrying", attempt+1)
			continue
		}
		return nil, fmt.Errorf("failed to create assignment: %w", createErr)
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create assignment after retries: %w", createErr)
	}
	return &created, nil
}

// Approve moves a pending assignment to approved. Occupancy is untouched;
// the slot is claimed at activation, not approval.
func (s *AssignmentService) Approve(id uint) (*models.Assignment, error) {
	now := time.Now().UTC()
	return s.transition(id, models.AssignmentPending, models.AssignmentApproved,
		map[string]interface{}{"approved_at": now})
}

// Reject is terminal; the resident may book again afterwards.
func (s *AssignmentService) Reject(id uint) (*models.Assignment, error) {
	return s.transition(id, models.AssignmentPending, models.AssignmentRejected,
		map[string]interface{}{"active_resident_key": nil})
}

// Activate checks the resident in. Only valid from approved, and only once
// the linked payment is verified; a pending cash payment may instead be
// settled here by explicit admin confirmation. Occupancy +1 happens in the
// same transaction.
func (s *AssignmentService) Activate(id uint, confirmCash bool) (*models.Assignment, error) {
	var result models.Assignment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		assignment, err := s.loadTx(tx, id)
		if err != nil {
			return err
		}

		var payment models.Payment
		err = tx.Where("assignment_id = ? AND status <> ?", id, models.PaymentRejected).
			Order("id DESC").First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ConflictError(utils.CodePaymentNotVerified,
					"no payment has been submitted for this assignment")
			}
			return err
		}

		switch {
		case payment.Status == models.PaymentVerified:
			// already settled
		case payment.Method == models.PaymentCash && payment.Status == models.PaymentPending && confirmCash:
			now := time.Now().UTC()
			res := tx.Model(&models.Payment{}).
				Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
				Updates(map[string]interface{}{
					"status":      models.PaymentVerified,
					"verified_at": now,
					"remarks":     "cash settled at check-in",
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.ConflictError(utils.CodeInvalidTransition,
					"payment was resolved concurrently")
			}
		default:
			return utils.ConflictError(utils.CodePaymentNotVerified,
				"linked payment is not verified")
		}

		updated, err := s.ActivateTx(tx, assignment)
		if err != nil {
			return err
		}
		result = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ActivateTx performs the approved -> active transition plus the occupancy
// increment inside the caller's transaction. The payment gate belongs to
// the caller; this is the coordinator step shared by admin activation and
// payment verification.
func (s *AssignmentService) ActivateTx(tx *gorm.DB, assignment *models.Assignment) (*models.Assignment, error) {
	now := time.Now().UTC()
	res := tx.Model(&models.Assignment{}).
		Where("id = ? AND status = ?", assignment.ID, models.AssignmentApproved).
		Updates(map[string]interface{}{
			"status":        models.AssignmentActive,
			"checked_in_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ConflictError(utils.CodeInvalidTransition,
			fmt.Sprintf("assignment %s cannot activate from '%s'", assignment.ReferenceCode, assignment.Status))
	}

	if _, err := s.Rooms.AdjustOccupancyTx(tx, assignment.RoomID, +1); err != nil {
		return nil, err
	}

	assignment.Status = models.AssignmentActive
	assignment.CheckedInAt = &now
	return assignment, nil
}

// Cancel ends an approved or active assignment. An active one releases its
// room slot.
func (s *AssignmentService) Cancel(id uint) (*models.Assignment, error) {
	return s.terminate(id, models.AssignmentCancelled)
}

// Complete closes out a stay. Valid from approved (a no-show resolved by
// the admin) or active.
func (s *AssignmentService) Complete(id uint) (*models.Assignment, error) {
	return s.terminate(id, models.AssignmentCompleted)
}

func (s *AssignmentService) terminate(id uint, target models.AssignmentStatus) (*models.Assignment, error) {
	var result models.Assignment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		assignment, err := s.loadTx(tx, id)
		if err != nil {
			return err
		}
		if !assignment.Status.CanTransitionTo(target) {
			return utils.ConflictError(utils.CodeInvalidTransition,
				fmt.Sprintf("assignment %s cannot move from '%s' to '%s'",
					assignment.ReferenceCode, assignment.Status, target))
		}
		wasActive := assignment.Status == models.AssignmentActive

		// Compare-and-set against the status we just read; a concurrent
		// transition makes this a clean no-op failure.
		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", assignment.ID, assignment.Status).
			Updates(map[string]interface{}{
				"status":              target,
				"active_resident_key": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictError(utils.CodeInvalidTransition,
				fmt.Sprintf("assignment %s was transitioned concurrently", assignment.ReferenceCode))
		}

		if wasActive {
			if _, err := s.Rooms.AdjustOccupancyTx(tx, assignment.RoomID, -1); err != nil {
				return err
			}
		}

		assignment.Status = target
		assignment.ActiveResidentKey = nil
		result = *assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// transition is the shared guarded UPDATE for the simple pending-state
// moves that touch no occupancy.
func (s *AssignmentService) transition(id uint, from, to models.AssignmentStatus, extra map[string]interface{}) (*models.Assignment, error) {
	var result models.Assignment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		assignment, err := s.loadTx(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"status": to}
		for k, v := range extra {
			updates[k] = v
		}

		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictError(utils.CodeInvalidTransition,
				fmt.Sprintf("assignment %s cannot move from '%s' to '%s'",
					assignment.ReferenceCode, assignment.Status, to))
		}

		if err := tx.First(&result, id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *AssignmentService) loadTx(tx *gorm.DB, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := tx.First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("assignment not found")
		}
		return nil, err
	}
	return &assignment, nil
}

func (s *AssignmentService) GetByID(id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := s.DB.Preload("Room").Preload("Resident").First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("assignment not found")
		}
		return nil, fmt.Errorf("failed to retrieve assignment: %w", err)
	}
	return &assignment, nil
}

func (s *AssignmentService) GetAllWithRelations() ([]models.Assignment, error) {
	var list []models.Assignment
	if err := s.DB.
		Preload("Resident").
		Preload("Room").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve assignments: %w", err)
	}
	return list, nil
}

func (s *AssignmentService) GetByResident(residentID uint) ([]models.Assignment, error) {
	var list []models.Assignment
	if err := s.DB.
		Preload("Room").
		Where("resident_id = ?", residentID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve assignments: %w", err)
	}
	return list, nil
}

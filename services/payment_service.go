// services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dorm-backend/models"
	"dorm-backend/utils"

	"gorm.io/gorm"
)

// PaymentService owns payment evidence and its resolution. Verification is
// the sole trigger that activates the linked assignment, and the two steps
// share one transaction: if the room slot is gone the verification rolls
// back with it.
type PaymentService struct {
	DB          *gorm.DB
	Assignments *AssignmentService
}

func NewPaymentService(db *gorm.DB, assignments *AssignmentService) *PaymentService {
	return &PaymentService{DB: db, Assignments: assignments}
}

// SubmitInput is the resident payment submission payload.
type SubmitInput struct {
	AssignmentID    uint    `json:"assignmentId"`
	Method          string  `json:"method"`
	Amount          float64 `json:"amount"`
	ReferenceNumber string  `json:"referenceNumber"`
	ProofImage      string  `json:"proofImage"`
}

// Submit records payment evidence against an approved assignment. The
// at-most-one-non-rejected rule rides on the unique open_assignment_key
// index, so two racing submissions cannot both land.
func (s *PaymentService) Submit(residentID uint, in SubmitInput) (*models.Payment, error) {
	method := models.PaymentMethod(strings.ToLower(strings.TrimSpace(in.Method)))
	if !method.IsValid() {
		return nil, utils.ValidationError(utils.CodeInvalidPayload,
			fmt.Sprintf("unknown payment method '%s'", in.Method))
	}

	var assignment models.Assignment
	if err := s.DB.First(&assignment, in.AssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("assignment not found")
		}
		return nil, fmt.Errorf("db error checking assignment: %w", err)
	}
	if assignment.ResidentID != residentID {
		return nil, utils.AuthorizationError("assignment belongs to another resident")
	}
	if assignment.Status != models.AssignmentApproved {
		return nil, utils.ConflictError(utils.CodeAssignmentNotApproved,
			fmt.Sprintf("assignment %s is '%s', payment requires approved", assignment.ReferenceCode, assignment.Status))
	}
	if in.Amount != assignment.TotalPrice {
		return nil, utils.ValidationError(utils.CodeAmountMismatch,
			fmt.Sprintf("amount %.2f does not match the assignment total %.2f", in.Amount, assignment.TotalPrice))
	}
	if method == models.PaymentGcash {
		if strings.TrimSpace(in.ReferenceNumber) == "" || strings.TrimSpace(in.ProofImage) == "" {
			return nil, utils.ValidationError(utils.CodeMissingProof,
				"gcash payments require a reference number and a proof image")
		}
	}

	openKey := assignment.ID
	payment := models.Payment{
		AssignmentID:      assignment.ID,
		Amount:            in.Amount,
		Method:            method,
		ReferenceNumber:   strings.TrimSpace(in.ReferenceNumber),
		ProofImage:        strings.TrimSpace(in.ProofImage),
		Status:            models.PaymentPending,
		OpenAssignmentKey: &openKey,
	}

	if err := s.DB.Create(&payment).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, utils.ConflictError(utils.CodeDuplicatePayment,
				"a payment for this assignment is already pending or verified")
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

// Verify resolves a pending payment and activates the assignment as an
// atomic follow-on. A full room surfaces ActivationConflict and leaves the
// payment pending and the assignment approved.
func (s *PaymentService) Verify(paymentID uint, remarks string) (*models.Payment, error) {
	var result models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		payment, err := s.loadTx(tx, paymentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":      models.PaymentVerified,
			"verified_at": now,
		}
		if strings.TrimSpace(remarks) != "" {
			updates["remarks"] = strings.TrimSpace(remarks)
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictError(utils.CodeInvalidTransition,
				fmt.Sprintf("payment %d is '%s', only pending payments can be verified", paymentID, payment.Status))
		}

		var assignment models.Assignment
		if err := tx.First(&assignment, payment.AssignmentID).Error; err != nil {
			return err
		}

		if _, err := s.Assignments.ActivateTx(tx, &assignment); err != nil {
			if ae, ok := utils.AsAppError(err); ok {
				return utils.ConflictError(utils.CodeActivationConflict,
					fmt.Sprintf("verification rolled back: %s", ae.Message))
			}
			return err
		}

		payment.Status = models.PaymentVerified
		payment.VerifiedAt = &now
		if v, ok := updates["remarks"].(string); ok {
			payment.Remarks = v
		}
		result = *payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Reject closes out a pending payment and frees the assignment for a new
// submission. Remarks are mandatory so the resident learns why.
func (s *PaymentService) Reject(paymentID uint, remarks string) (*models.Payment, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, utils.ValidationError(utils.CodeInvalidPayload,
			"remarks are required when rejecting a payment")
	}

	var result models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		payment, err := s.loadTx(tx, paymentID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":              models.PaymentRejected,
				"remarks":             remarks,
				"open_assignment_key": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictError(utils.CodeInvalidTransition,
				fmt.Sprintf("payment %d is '%s', only pending payments can be rejected", paymentID, payment.Status))
		}

		payment.Status = models.PaymentRejected
		payment.Remarks = remarks
		payment.OpenAssignmentKey = nil
		result = *payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *PaymentService) loadTx(tx *gorm.DB, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := tx.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("payment not found")
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.Preload("Assignment").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to retrieve payment: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) GetAllWithRelations() ([]models.Payment, error) {
	var list []models.Payment
	if err := s.DB.
		Preload("Assignment").
		Preload("Assignment.Resident").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}
	return list, nil
}

func (s *PaymentService) GetByResident(residentID uint) ([]models.Payment, error) {
	var list []models.Payment
	if err := s.DB.
		Preload("Assignment").
		Joins("JOIN assignments ON assignments.id = payments.assignment_id").
		Where("assignments.resident_id = ?", residentID).
		Order("payments.created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}
	return list, nil
}

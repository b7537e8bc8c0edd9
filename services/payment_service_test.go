package services

import (
	"testing"

	"dorm-backend/models"
	"dorm-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// approvedAssignment seeds a resident with an approved assignment on room.
func approvedAssignment(t *testing.T, svc *AssignmentService, room *models.Room, emailPrefix string) (*models.Resident, *models.Assignment) {
	t.Helper()
	resident := seedResident(t, svc.DB, uniqueEmail(emailPrefix))
	created, err := svc.Create(resident.ID, room.ID, futureDate(t, 1), futureDate(t, 4))
	require.NoError(t, err)
	approved, err := svc.Approve(created.ID)
	require.NoError(t, err)
	return resident, approved
}

func TestSubmitValidation(t *testing.T) {
	assignments, payments := newAssignmentService(t)
	room := seedRoom(t, assignments.DB, "A-101", 2, 3000)
	resident, assignment := approvedAssignment(t, assignments, room, "submit")

	t.Run("unknown method", func(t *testing.T) {
		_, err := payments.Submit(resident.ID, SubmitInput{
			AssignmentID: assignment.ID, Method: "paypal", Amount: assignment.TotalPrice,
		})
		require.Error(t, err)
		ae, _ := utils.AsAppError(err)
		assert.Equal(t, utils.CodeInvalidPayload, ae.Code)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		_, err := payments.Submit(resident.ID, SubmitInput{
			AssignmentID: assignment.ID, Method: "cash", Amount: assignment.TotalPrice + 1,
		})
		require.Error(t, err)
		ae, _ := utils.AsAppError(err)
		assert.Equal(t, utils.CodeAmountMismatch, ae.Code)
	})

	t.Run("gcash without proof", func(t *testing.T) {
		_, err := payments.Submit(resident.ID, SubmitInput{
			AssignmentID: assignment.ID, Method: "gcash", Amount: assignment.TotalPrice,
			ReferenceNumber: "GC-1",
		})
		require.Error(t, err)
		ae, _ := utils.AsAppError(err)
		assert.Equal(t, utils.CodeMissingProof, ae.Code)
	})

	t.Run("another resident's assignment", func(t *testing.T) {
		other := seedResident(t, assignments.DB, uniqueEmail("other"))
		_, err := payments.Submit(other.ID, SubmitInput{
			AssignmentID: assignment.ID, Method: "cash", Amount: assignment.TotalPrice,
		})
		require.Error(t, err)
		ae, _ := utils.AsAppError(err)
		assert.Equal(t, utils.KindAuthorization, ae.Kind)
	})
}

func TestSubmitRequiresApprovedAssignment(t *testing.T) {
	assignments, payments := newAssignmentService(t)
	room := seedRoom(t, assignments.DB, "B-201", 2, 3000)
	resident := seedResident(t, assignments.DB, uniqueEmail("pendingpay"))

	created, err := assignments.Create(resident.ID, room.ID, futureDate(t, 1), futureDate(t, 4))
	require.NoError(t, err)

	_, err = payments.Submit(resident.ID, SubmitInput{
		AssignmentID: created.ID, Method: "cash", Amount: created.TotalPrice,
	})
	require.Error(t, err)
	ae, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.CodeAssignmentNotApproved, ae.Code)
}

func TestSecondSubmissionConflictsWhileFirstIsOpen(t *testing.T) {
	assignments, payments := newAssignmentService(t)
	room := seedRoom(t, assignments.DB, "C-301", 2, 3000)
	resident, assignment := approvedAssignment(t, assignments, room, "dup")

	first, err := payments.Submit(resident.ID, SubmitInput{
		AssignmentID: assignment.ID, Method: "gcash", Amount: assignment.TotalPrice,
		ReferenceNumber: "GC-1", ProofImage: "uploads/p1.png",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, first.Status)

	_, err = payments.Submit(resident.ID, SubmitInput{
		AssignmentID: assignment.ID, Method: "gcash", Amount: assignment.TotalPrice,
		ReferenceNumber: "GC-2", ProofImage: "uploads/p2.png",
	})
	require.Error(t, err)
	ae, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.KindConflict, ae.Kind)
	assert.Equal(t, utils.CodeDuplicatePayment, ae.Code)
}

func TestVerifyActivatesAssignment(t *testing.T) {
	assignments, payments := newAssignmentService(t)
	room := seedRoom(t, assignments.DB, "D-401", 2, 3000)
	resident, assignment := approvedAssignment(t, assignments, room, "verify")

	payment, err := payments.Submit(resident.ID, SubmitInput{
		AssignmentID: assignment.ID, Method: "gcash", Amount: assignment.TotalPrice,
		ReferenceNumber: "GC-1", ProofImage: "uploads/p1.png",
	})
	require.NoError(t, err)

	verified, err := payments.Verify(payment.ID, "checked against bank export")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, verified.Status)
	assert.NotNil(t, verified.VerifiedAt)
	assert.Equal(t, "checked against bank export", verified.Remarks)

	reloaded, err := assignments.GetByID(assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentActive, reloaded.Status)

	var rm models.Room
	require.NoError(t, assignments.DB.First(&rm, room.ID).Error)
	assert.Equal(t, 1, rm.OccupiedCount)

	// verified payments are immutable
	_, err = payments.Verify(payment.ID, "")
	require.Error(t, err)
	_, err = payments.Reject(payment.ID, "nope")
	require.Error(t, err)
}

func TestVerifyRollsBackWhenRoomIsFull(t *testing.T) {
	assignments, payments := newAssignmentService(t)
	room := seedRoom(t, assignments.DB, "E-501", 1, 3000)

	// fill the single slot
	winner, winnerAssignment := approvedAssignment(t, assignments, room, "winner")
	winnerPayment, err := payments.Submit(winner.ID, SubmitInput{
		AssignmentID: winnerAssignment.ID, Method: "gcash", Amount: winnerAssignment.TotalPrice,
		ReferenceNumber: "GC-1", ProofImage: "uploads/w.png",
	})
	require.NoError(t, err)
	_, err = payments.Verify(winnerPayment.ID, "")
	require.NoError(t, err)

	// the loser's assignment was approved before the room filled up
	loser, loserAssignment := approvedAssignment(t, assignments, room, "loser")
	loserPayment, err := payments.Submit(loser.ID, SubmitInput{
		AssignmentID: loserAssignment.ID, Method: "gcash", Amount: loserAssignment.TotalPrice,
		ReferenceNumber: "GC-2", ProofImage: "uploads/l.png",
	})
	require.NoError(t, err)

	_, err = payments.Verify(loserPayment.ID, "")
	require.Error(t, err)
	ae, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.CodeActivationConflict, ae.Code)

	// the whole transaction rolled back: payment pending, assignment approved
	var payment models.Payment
	require.NoError(t, assignments.DB.First(&payment, loserPayment.ID).Error)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Nil(t, payment.VerifiedAt)

	reloaded, err := assignments.GetByID(loserAssignment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentApproved, reloaded.Status)

	var rm models.Room
	require.NoError(t, assignments.DB.First(&rm, room.ID).Error)
	assert.Equal(t, 1, rm.OccupiedCount)
}

func TestRejectThenResubmit(t *testing.T) {
	assignments, payments := newAssignmentService(t)
	room := seedRoom(t, assignments.DB, "F-601", 2, 3000)
	resident, assignment := approvedAssignment(t, assignments, room, "resubmit")

	first, err := payments.Submit(resident.ID, SubmitInput{
		AssignmentID: assignment.ID, Method: "gcash", Amount: assignment.TotalPrice,
		ReferenceNumber: "GC-1", ProofImage: "uploads/p1.png",
	})
	require.NoError(t, err)

	// remarks are mandatory on rejection
	_, err = payments.Reject(first.ID, "  ")
	require.Error(t, err)

	rejected, err := payments.Reject(first.ID, "blurry screenshot")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, rejected.Status)
	assert.Equal(t, "blurry screenshot", rejected.Remarks)

	// the assignment stayed approved and accepts a fresh submission
	reloaded, err := assignments.GetByID(assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentApproved, reloaded.Status)

	second, err := payments.Submit(resident.ID, SubmitInput{
		AssignmentID: assignment.ID, Method: "gcash", Amount: assignment.TotalPrice,
		ReferenceNumber: "GC-2", ProofImage: "uploads/p2.png",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, second.Status)
}

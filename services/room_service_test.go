package services

import (
	"testing"

	"dorm-backend/models"
	"dorm-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestRoomCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	tests := []struct {
		name string
		in   RoomInput
		code string
	}{
		{
			name: "missing room number",
			in:   RoomInput{Capacity: intPtr(2), Type: "double", MonthlyRate: floatPtr(3000)},
			code: utils.CodeInvalidPayload,
		},
		{
			name: "bad room number token",
			in:   RoomInput{RoomNumber: "room #1", Capacity: intPtr(2), Type: "double", MonthlyRate: floatPtr(3000)},
			code: utils.CodeInvalidPayload,
		},
		{
			name: "capacity above maximum",
			in:   RoomInput{RoomNumber: "A-101", Capacity: intPtr(7), Type: "double", MonthlyRate: floatPtr(3000)},
			code: utils.CodeInvalidPayload,
		},
		{
			name: "capacity below minimum",
			in:   RoomInput{RoomNumber: "A-101", Capacity: intPtr(0), Type: "double", MonthlyRate: floatPtr(3000)},
			code: utils.CodeInvalidPayload,
		},
		{
			name: "negative rate",
			in:   RoomInput{RoomNumber: "A-101", Capacity: intPtr(2), Type: "double", MonthlyRate: floatPtr(-1)},
			code: utils.CodeInvalidPayload,
		},
		{
			name: "unknown type",
			in:   RoomInput{RoomNumber: "A-101", Capacity: intPtr(2), Type: "penthouse", MonthlyRate: floatPtr(3000)},
			code: utils.CodeInvalidPayload,
		},
		{
			name: "too many images",
			in: RoomInput{RoomNumber: "A-101", Capacity: intPtr(2), Type: "double", MonthlyRate: floatPtr(3000),
				Images: []string{"a", "b", "c", "d", "e", "f"}},
			code: utils.CodeInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.in)
			require.Error(t, err)
			ae, ok := utils.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, ae.Code)
		})
	}
}

func TestRoomCreateNormalizesNumberAndRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	room, err := svc.Create(RoomInput{
		RoomNumber: " b-201 ", Capacity: intPtr(2), Type: "double", MonthlyRate: floatPtr(3000),
	})
	require.NoError(t, err)
	assert.Equal(t, "B-201", room.RoomNumber)
	assert.Equal(t, models.RoomAvailable, room.Status)
	assert.Equal(t, 0, room.OccupiedCount)

	_, err = svc.Create(RoomInput{
		RoomNumber: "B-201", Capacity: intPtr(2), Type: "double", MonthlyRate: floatPtr(3000),
	})
	require.Error(t, err)
	ae, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.KindConflict, ae.Kind)
	assert.Equal(t, utils.CodeDuplicateEntry, ae.Code)
}

func TestAdjustOccupancyBoundsAndStatusCoupling(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "C-301", 2, 3000)

	// below zero is rejected
	_, err := svc.AdjustOccupancyTx(db, room.ID, -1)
	require.Error(t, err)
	ae, _ := utils.AsAppError(err)
	assert.Equal(t, utils.CodeCapacityExceeded, ae.Code)

	got, err := svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OccupiedCount)
	assert.Equal(t, models.RoomAvailable, got.Status)

	// reaching capacity flips to occupied
	got, err = svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.OccupiedCount)
	assert.Equal(t, models.RoomOccupied, got.Status)

	// above capacity is rejected with no side effects
	_, err = svc.AdjustOccupancyTx(db, room.ID, +1)
	require.Error(t, err)
	ae, _ = utils.AsAppError(err)
	assert.Equal(t, utils.CodeCapacityExceeded, ae.Code)

	reloaded, err := svc.GetByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.OccupiedCount)

	// dropping below capacity flips occupied back to available
	got, err = svc.AdjustOccupancyTx(db, room.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OccupiedCount)
	assert.Equal(t, models.RoomAvailable, got.Status)
}

func TestAdjustOccupancyNeverExitsMaintenance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "D-401", 1, 3000)

	_, err := svc.SetStatus(room.ID, models.RoomMaintenance)
	require.NoError(t, err)

	got, err := svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OccupiedCount)
	assert.Equal(t, models.RoomMaintenance, got.Status)

	got, err = svc.AdjustOccupancyTx(db, room.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, got.Status)
}

func TestSetStatusGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "E-501", 2, 3000)

	// occupied requires a full room
	_, err := svc.SetStatus(room.ID, models.RoomOccupied)
	require.Error(t, err)
	ae, _ := utils.AsAppError(err)
	assert.Equal(t, utils.CodeInvalidTransition, ae.Code)

	_, err = svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)
	_, err = svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)

	// room now full: available is forbidden
	_, err = svc.SetStatus(room.ID, models.RoomAvailable)
	require.Error(t, err)
	ae, _ = utils.AsAppError(err)
	assert.Equal(t, utils.CodeInvalidTransition, ae.Code)

	// maintenance is always permitted
	got, err := svc.SetStatus(room.ID, models.RoomMaintenance)
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, got.Status)
}

func TestUpdateRejectsCapacityBelowOccupancy(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "F-601", 3, 3000)

	_, err := svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)
	_, err = svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)

	_, err = svc.Update(room.ID, RoomInput{Capacity: intPtr(1)})
	require.Error(t, err)
	ae, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.CodeInvalidCapacityChange, ae.Code)

	// shrinking to exactly the occupied count is fine
	updated, err := svc.Update(room.ID, RoomInput{Capacity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Capacity)
}

func TestUpdateShrinkToOccupancyMarksRoomOccupied(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "F-602", 3, 3000)

	_, err := svc.AdjustOccupancyTx(db, room.ID, +2)
	require.NoError(t, err)

	updated, err := svc.Update(room.ID, RoomInput{Capacity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Capacity)
	assert.Equal(t, 2, updated.OccupiedCount)
	assert.Equal(t, models.RoomOccupied, updated.Status)

	reloaded, err := svc.GetByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, reloaded.Status)
}

func TestUpdateGrowingFullRoomReopensIt(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "F-603", 2, 3000)

	_, err := svc.AdjustOccupancyTx(db, room.ID, +2)
	require.NoError(t, err)
	full, err := svc.GetByID(room.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomOccupied, full.Status)

	updated, err := svc.Update(room.ID, RoomInput{Capacity: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Capacity)
	assert.Equal(t, 2, updated.OccupiedCount)
	assert.Equal(t, models.RoomAvailable, updated.Status)
}

func TestUpdateCapacityAndStatusInOnePayload(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "F-604", 2, 3000)

	_, err := svc.AdjustOccupancyTx(db, room.ID, +2)
	require.NoError(t, err)

	// the status guard must see the new capacity, not the full room
	updated, err := svc.Update(room.ID, RoomInput{Capacity: intPtr(4), Status: "available"})
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, updated.Status)
	assert.Equal(t, 4, updated.Capacity)
}

func TestUpdateCapacityNeverExitsMaintenance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "F-605", 3, 3000)

	_, err := svc.AdjustOccupancyTx(db, room.ID, +2)
	require.NoError(t, err)
	_, err = svc.SetStatus(room.ID, models.RoomMaintenance)
	require.NoError(t, err)

	updated, err := svc.Update(room.ID, RoomInput{Capacity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, updated.Status)
}

func TestDeleteOccupiedRoomRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)
	room := seedRoom(t, db, "G-701", 2, 3000)

	_, err := svc.AdjustOccupancyTx(db, room.ID, +1)
	require.NoError(t, err)

	err = svc.Delete(room.ID)
	require.Error(t, err)
	ae, _ := utils.AsAppError(err)
	assert.Equal(t, utils.KindConflict, ae.Kind)

	_, err = svc.AdjustOccupancyTx(db, room.ID, -1)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(room.ID))

	_, err = svc.GetByID(room.ID)
	require.Error(t, err)
	ae, _ = utils.AsAppError(err)
	assert.Equal(t, utils.KindNotFound, ae.Kind)
}

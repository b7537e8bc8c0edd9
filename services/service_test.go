package services

import (
	"fmt"
	"testing"
	"time"

	"dorm-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.Resident{},
		&models.GcashSetting{},
		&models.Room{},
		&models.Assignment{},
		&models.Payment{},
	))
	return db
}

func seedResident(t *testing.T, db *gorm.DB, email string) *models.Resident {
	t.Helper()
	resident := models.Resident{FullName: "Test Resident", Email: email, Password: "x"}
	require.NoError(t, db.Create(&resident).Error)
	return &resident
}

func seedRoom(t *testing.T, db *gorm.DB, number string, capacity int, rate float64) *models.Room {
	t.Helper()
	room := models.Room{
		RoomNumber:  number,
		Floor:       1,
		Capacity:    capacity,
		Type:        models.RoomDouble,
		MonthlyRate: rate,
		Status:      models.RoomAvailable,
	}
	require.NoError(t, db.Create(&room).Error)
	return &room
}

func futureDate(t *testing.T, daysFromNow int) string {
	t.Helper()
	return time.Now().UTC().AddDate(0, 0, daysFromNow).Format("2006-01-02")
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@dorm.test", prefix, time.Now().UnixNano())
}

package models

import "time"

// GcashSetting is the GCash identity shown to residents on the payment
// form. Display only; it never participates in payment validation.
type GcashSetting struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountName   string    `gorm:"size:255" json:"accountName"`
	AccountNumber string    `gorm:"size:50" json:"accountNumber"`
	QRImage       string    `gorm:"column:qr_image;size:255" json:"qrImage"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"dorm-backend/models"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettingsController struct {
	DB *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{DB: db}
}

type gcashSettingPayload struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	QRImage       string `json:"qrImage"`
}

// GET /api/settings/gcash
func (sc *SettingsController) GetGcashSetting(c *gin.Context) {
	var setting models.GcashSetting
	if err := sc.DB.First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONSuccess(c, http.StatusOK, models.GcashSetting{})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, setting)
}

// PUT /api/settings/gcash (admin)
func (sc *SettingsController) UpdateGcashSetting(c *gin.Context) {
	var payload gcashSettingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(payload.AccountName) == "" || strings.TrimSpace(payload.AccountNumber) == "" {
		utils.JSONError(c, http.StatusBadRequest, "accountName and accountNumber are required")
		return
	}

	var setting models.GcashSetting
	err := sc.DB.First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setting = models.GcashSetting{
				AccountName:   payload.AccountName,
				AccountNumber: payload.AccountNumber,
				QRImage:       payload.QRImage,
			}
			if err := sc.DB.Create(&setting).Error; err != nil {
				utils.JSONError(c, http.StatusInternalServerError, err.Error())
				return
			}
			utils.JSONSuccess(c, http.StatusOK, setting)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}

	setting.AccountName = payload.AccountName
	setting.AccountNumber = payload.AccountNumber
	setting.QRImage = payload.QRImage
	if err := sc.DB.Save(&setting).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, setting)
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"dorm-backend/middleware"
	"dorm-backend/models"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	JWT *middleware.JWTManager
}

func NewAuthController(db *gorm.DB, jwtManager *middleware.JWTManager) *AuthController {
	return &AuthController{DB: db, JWT: jwtManager}
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerPayload struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

// POST /api/auth/admin/login
func (a *AuthController) AdminLogin(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "username and password required")
		return
	}

	var admin models.Admin
	if err := a.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(payload.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := a.JWT.GenerateToken(admin.ID, middleware.RoleAdmin, admin.FullName)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"token": token, "admin": admin})
}

// POST /api/auth/register
func (a *AuthController) RegisterResident(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "fullName, email and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	resident := models.Resident{
		FullName: strings.TrimSpace(payload.FullName),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:    strings.TrimSpace(payload.Phone),
		Password: string(hash),
	}
	if err := a.DB.Create(&resident).Error; err != nil {
		lc := strings.ToLower(err.Error())
		if strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") {
			utils.JSONError(c, http.StatusConflict, "email already registered")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to create resident")
		return
	}

	token, err := a.JWT.GenerateToken(resident.ID, middleware.RoleResident, resident.FullName)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"token": token, "resident": resident})
}

type residentLoginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (a *AuthController) ResidentLogin(c *gin.Context) {
	var payload residentLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "email and password required")
		return
	}

	var resident models.Resident
	err := a.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(payload.Email))).First(&resident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "login failed")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(resident.Password), []byte(payload.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := a.JWT.GenerateToken(resident.ID, middleware.RoleResident, resident.FullName)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"token": token, "resident": resident})
}

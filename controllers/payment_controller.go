package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// POST /api/payments (resident)
func (pc *PaymentController) SubmitPayment(c *gin.Context) {
	var in services.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	payment, err := pc.Payments.Submit(middleware.PrincipalID(c), in)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, payment)
}

// GET /api/payments (admin)
func (pc *PaymentController) GetPayments(c *gin.Context) {
	list, err := pc.Payments.GetAllWithRelations()
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/payments/mine (resident)
func (pc *PaymentController) GetMyPayments(c *gin.Context) {
	list, err := pc.Payments.GetByResident(middleware.PrincipalID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/payments/:id (admin or owning resident)
func (pc *PaymentController) GetPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, err := pc.Payments.GetByID(id)
	if err != nil {
		renderError(c, err)
		return
	}
	if c.GetString(middleware.PrincipalRoleKey) != middleware.RoleAdmin &&
		payment.Assignment.ResidentID != middleware.PrincipalID(c) {
		renderError(c, utils.AuthorizationError("payment belongs to another resident"))
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

type resolvePaymentPayload struct {
	Remarks string `json:"remarks"`
}

// POST /api/payments/:id/verify (admin)
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload resolvePaymentPayload
	_ = c.ShouldBindJSON(&payload) // remarks are optional on verify
	payment, err := pc.Payments.Verify(id, payload.Remarks)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

// POST /api/payments/:id/reject (admin)
func (pc *PaymentController) RejectPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload resolvePaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "remarks are required")
		return
	}
	payment, err := pc.Payments.Reject(id, payload.Remarks)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

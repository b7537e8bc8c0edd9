package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	Assignments *services.AssignmentService
}

func NewAssignmentController(assignments *services.AssignmentService) *AssignmentController {
	return &AssignmentController{Assignments: assignments}
}

type createAssignmentPayload struct {
	RoomID    uint   `json:"roomId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// POST /api/assignments (resident)
func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	var payload createAssignmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "roomId, startDate and endDate are required")
		return
	}
	assignment, err := ac.Assignments.Create(middleware.PrincipalID(c), payload.RoomID, payload.StartDate, payload.EndDate)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, assignment)
}

// GET /api/assignments (admin)
func (ac *AssignmentController) GetAssignments(c *gin.Context) {
	list, err := ac.Assignments.GetAllWithRelations()
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/assignments/mine (resident)
func (ac *AssignmentController) GetMyAssignments(c *gin.Context) {
	list, err := ac.Assignments.GetByResident(middleware.PrincipalID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/assignments/:id (admin or owning resident)
func (ac *AssignmentController) GetAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	assignment, err := ac.Assignments.GetByID(id)
	if err != nil {
		renderError(c, err)
		return
	}
	if c.GetString(middleware.PrincipalRoleKey) != middleware.RoleAdmin &&
		assignment.ResidentID != middleware.PrincipalID(c) {
		renderError(c, utils.AuthorizationError("assignment belongs to another resident"))
		return
	}
	utils.JSONSuccess(c, http.StatusOK, assignment)
}

// POST /api/assignments/:id/approve (admin)
func (ac *AssignmentController) ApproveAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	assignment, err := ac.Assignments.Approve(id)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, assignment)
}

// POST /api/assignments/:id/reject (admin)
func (ac *AssignmentController) RejectAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	assignment, err := ac.Assignments.Reject(id)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, assignment)
}

type activatePayload struct {
	ConfirmCash bool `json:"confirmCash"`
}

// POST /api/assignments/:id/activate (admin)
// confirmCash settles a pending cash payment in the same transaction.
func (ac *AssignmentController) ActivateAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload activatePayload
	_ = c.ShouldBindJSON(&payload) // body is optional
	assignment, err := ac.Assignments.Activate(id, payload.ConfirmCash)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, assignment)
}

// POST /api/assignments/:id/cancel (admin or owning resident)
func (ac *AssignmentController) CancelAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if c.GetString(middleware.PrincipalRoleKey) != middleware.RoleAdmin {
		existing, err := ac.Assignments.GetByID(id)
		if err != nil {
			renderError(c, err)
			return
		}
		if existing.ResidentID != middleware.PrincipalID(c) {
			renderError(c, utils.AuthorizationError("assignment belongs to another resident"))
			return
		}
	}
	assignment, err := ac.Assignments.Cancel(id)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, assignment)
}

// POST /api/assignments/:id/complete (admin)
func (ac *AssignmentController) CompleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	assignment, err := ac.Assignments.Complete(id)
	if err != nil {
		renderError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, assignment)
}

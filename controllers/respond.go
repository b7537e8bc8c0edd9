package controllers

import (
	"log"
	"net/http"
	"strconv"

	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

// renderError maps typed application errors onto the response envelope;
// anything untyped is a 500 and gets logged, not echoed.
func renderError(c *gin.Context, err error) {
	if ae, ok := utils.AsAppError(err); ok {
		c.JSON(ae.HTTPStatus(), gin.H{
			"success": false,
			"error":   ae.Message,
			"kind":    ae.Kind,
			"code":    ae.Code,
		})
		return
	}
	log.Printf("❌ internal error: %v", err)
	utils.JSONError(c, http.StatusInternalServerError, "internal server error")
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id parameter")
		return 0, false
	}
	return uint(id), true
}

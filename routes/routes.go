package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dorm-backend/controllers"
	"dorm-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	ac *controllers.AuthController,
	rc *controllers.RoomController,
	asc *controllers.AssignmentController,
	pc *controllers.PaymentController,
	sc *controllers.SettingsController,
	jwtManager *middleware.JWTManager,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ac.RegisterResident)
			auth.POST("/login", ac.ResidentLogin)
			auth.POST("/admin/login", ac.AdminLogin)
		}

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(jwtManager))

		rooms := authed.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.GET("/:id", rc.GetRoom)

			adminRooms := rooms.Group("")
			adminRooms.Use(middleware.RequireAdmin())
			{
				adminRooms.POST("", rc.CreateRoom)
				adminRooms.PATCH("/:id", rc.UpdateRoom)
				adminRooms.PUT("/:id", rc.UpdateRoom)
				adminRooms.PATCH("/:id/status", rc.UpdateRoomStatus)
				adminRooms.DELETE("/:id", rc.DeleteRoom)
			}
		}

		assignments := authed.Group("/assignments")
		{
			assignments.POST("", asc.CreateAssignment)
			assignments.GET("/mine", asc.GetMyAssignments)
			assignments.GET("/:id", asc.GetAssignment)
			assignments.POST("/:id/cancel", asc.CancelAssignment)

			adminAssignments := assignments.Group("")
			adminAssignments.Use(middleware.RequireAdmin())
			{
				adminAssignments.GET("", asc.GetAssignments)
				adminAssignments.POST("/:id/approve", asc.ApproveAssignment)
				adminAssignments.POST("/:id/reject", asc.RejectAssignment)
				adminAssignments.POST("/:id/activate", asc.ActivateAssignment)
				adminAssignments.POST("/:id/complete", asc.CompleteAssignment)
			}
		}

		payments := authed.Group("/payments")
		{
			payments.POST("", pc.SubmitPayment)
			payments.GET("/mine", pc.GetMyPayments)
			payments.GET("/:id", pc.GetPayment)

			adminPayments := payments.Group("")
			adminPayments.Use(middleware.RequireAdmin())
			{
				adminPayments.GET("", pc.GetPayments)
				adminPayments.POST("/:id/verify", pc.VerifyPayment)
				adminPayments.POST("/:id/reject", pc.RejectPayment)
			}
		}

		settings := authed.Group("/settings")
		{
			settings.GET("/gcash", sc.GetGcashSetting)
			settings.PUT("/gcash", middleware.RequireAdmin(), sc.UpdateGcashSetting)
		}
	}

	return r
}

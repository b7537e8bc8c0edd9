package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dorm-backend/config"
	"dorm-backend/controllers"
	"dorm-backend/middleware"
	"dorm-backend/routes"
	"dorm-backend/services"
	"dorm-backend/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	// Required signing secret (fatal if missing)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("❌ ERROR: JWT_SECRET environment variable is not set. Cannot issue session tokens.")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	jwtManager := middleware.NewJWTManager(jwtSecret,
		utils.EnvOrDefault("JWT_ISSUER", "dorm-backend"), 24*time.Hour)

	// Initialize services
	roomService := services.NewRoomService(db)
	assignmentService := services.NewAssignmentService(db, roomService)
	paymentService := services.NewPaymentService(db, assignmentService)

	// Initialize controllers
	authController := controllers.NewAuthController(db, jwtManager)
	roomController := controllers.NewRoomController(roomService)
	assignmentController := controllers.NewAssignmentController(assignmentService)
	paymentController := controllers.NewPaymentController(paymentService)
	settingsController := controllers.NewSettingsController(db)

	router := routes.SetupRouter(
		authController,
		roomController,
		assignmentController,
		paymentController,
		settingsController,
		jwtManager,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

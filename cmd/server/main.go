package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-sales-agent/internal/ai"
	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/config"
	"go-sales-agent/internal/database"
	"go-sales-agent/internal/gateway"
	"go-sales-agent/internal/handlers"
	"go-sales-agent/internal/middleware"
	"go-sales-agent/internal/models"
	"go-sales-agent/internal/server"
	"go-sales-agent/internal/store"
	"go-sales-agent/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// initialUsers lets a fresh install log in before the server has ever been reached.
var initialUsers = []models.User{
	{ID: "1", Username: "gokul", Password: "admin123", Name: "Gokul", Role: models.RoleAdmin},
	{ID: "2", Username: "ravi", Password: "sales123", Name: "Ravi Kumar", Role: models.RoleSalesman, SalesmanID: "SM001"},
	{ID: "3", Username: "priya", Password: "sales123", Name: "Priya Sharma", Role: models.RoleSalesman, SalesmanID: "SM002"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(database.Options{
		Driver:  cfg.DB.Driver,
		DSN:     cfg.DB.DSN,
		Verbose: !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("❌ Could not open the fallback store: %v", err)
	}
	st, err := store.New(db)
	if err != nil {
		log.Fatalf("❌ Could not prepare the fallback store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedUsers {
		seeded, err := store.SeedIfEmpty(ctx, st, store.Users, initialUsers)
		if err != nil {
			log.Printf("⚠️ Could not seed default users: %v", err)
		} else if seeded {
			log.Println("🌱 Seeded default users into the fallback store")
		}
	}

	deviceID := utils.GetDeviceID()
	gw := gateway.New(cfg.Remote.APIURL, st,
		gateway.WithTimeout(cfg.Remote.Timeout),
		gateway.WithDeviceID(deviceID),
	)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	var assistant handlers.Assistant
	if cfg.AIEnabled() {
		agent, err := ai.NewAgent(ctx, cfg.AI.APIKey, cfg.AI.Model, gw)
		if err != nil {
			log.Printf("⚠️ AI assistant disabled: %v", err)
		} else {
			defer agent.Close()
			assistant = agent
			log.Println("🤖 AI assistant enabled")
		}
	} else {
		log.Println("🔒 AI assistant disabled (GEMINI_API_KEY not set)")
	}

	limiter := middleware.NewRateLimiter(cfg.Login.Requests, cfg.Login.Window)
	router := server.NewRouter(handlers.New(gw, tokens, assistant), tokens, server.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		WebDir:         cfg.WebDir,
		LoginLimiter:   limiter,
	})

	go runBackground(ctx, gw, limiter, cfg.Sync.Interval)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Remote.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s (device %s, remote %s)", cfg.Server.BaseURL, deviceID, gw.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}

// runBackground replays pending writes every interval (when set) and forgets
// idle login limiters once an hour.
func runBackground(ctx context.Context, gw *gateway.Gateway, limiter *middleware.RateLimiter, interval time.Duration) {
	prune := time.NewTicker(time.Hour)
	defer prune.Stop()

	var syncC <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		syncC = t.C
		log.Printf("🔄 Pending writes sync every %s", interval)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-prune.C:
			limiter.Prune(time.Hour)
		case <-syncC:
			if gw.PendingCount(ctx) == 0 {
				continue
			}
			if _, err := gw.SyncPending(ctx); err != nil {
				log.Printf("⚠️ Sync postponed: %v", err)
			}
		}
	}
}

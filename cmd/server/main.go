package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"Postboard/internal/api/middleware"
	"Postboard/internal/api/routes"
	"Postboard/internal/auth"
	"Postboard/internal/config"
	"Postboard/internal/core/posts"
	"Postboard/internal/db/migrations"
	postgresRepo "Postboard/internal/db/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Connected to database")

	if cfg.RunMigrations {
		if err := migrations.Up(db); err != nil {
			log.Fatal(err)
		}
		log.Println("Migrations completed successfully")
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize token verifier:", err)
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		MaxAge: 300, // 5 minutes
	}))

	// Initialize repositories and services
	store := postgresRepo.NewStore(db)
	postService := posts.NewPostService(store)

	authMiddleware := middleware.NewBearerAuthMiddleware(verifier)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	routes.RegisterHealthRoutes(r)
	routes.RegisterPostRoutes(r, postService, authMiddleware, rateLimiter.Middleware)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
	}()

	fmt.Printf("Postboard API starting on port %s\n", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// newVerifier prefers JWKS verification when a JWKS URL is configured
func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.JWKSURL != "" {
		log.Printf("Verifying bearer tokens against JWKS at %s", cfg.JWKSURL)
		return auth.NewJWKSVerifier(ctx, cfg.JWKSURL, cfg.Issuer, cfg.JWKSRefresh)
	}
	log.Println("Verifying bearer tokens with shared HS256 secret")
	return auth.NewHMACVerifier([]byte(cfg.JWTSecret), cfg.Issuer)
}

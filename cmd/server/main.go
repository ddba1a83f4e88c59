package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"dose-planner/internal/auth"
	"dose-planner/internal/config"
	"dose-planner/internal/database"
	"dose-planner/internal/handlers"
	"dose-planner/internal/interaction"
	"dose-planner/internal/middleware"
	"dose-planner/internal/repository"
	"dose-planner/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize security components
	jwtManager := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionDuration)
	csrfProtection := middleware.NewCSRFProtection(cfg.Security.CSRFSecret)
	rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow)
	loginRateLimiter := middleware.NewRateLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Wire the regimen service
	analyzer := interaction.NewAnalyzer(repository.NewInteractionRepository(db))
	regimenService := services.NewRegimenService(
		repository.NewMedicineRepository(db),
		repository.NewUserMedicineRepository(db),
		repository.NewLifePatternRepository(db),
		analyzer,
	)

	// Initialize router
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(cfg.Security.CSPEnabled, cfg.Security.HSTSEnabled))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes (no authentication required)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		// Authentication routes
		r.Route("/api/auth", func(r chi.Router) {
			r.With(loginRateLimiter.Middleware).Post("/login", handlers.HandleLogin(db, jwtManager))
			r.With(loginRateLimiter.Middleware).Post("/register", handlers.HandleRegister(db))
		})

		// Medicine search works without an account
		r.Get("/api/medicines/search", handlers.HandleSearchMedicines(db))
	})

	// Protected routes (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(rateLimiter.Middleware)
		r.Use(csrfProtection.Middleware)

		r.Route("/api", func(r chi.Router) {
			r.Get("/csrf-token", handleGetCSRFToken(csrfProtection))

			// User routes
			r.Get("/auth/me", handlers.HandleGetCurrentUser(db))
			r.Post("/auth/logout", handlers.HandleLogout())
			r.Post("/auth/refresh", handlers.HandleRefreshToken(db, jwtManager))

			// Medicine routes
			r.Route("/medicines", func(r chi.Router) {
				r.Get("/{id}", handlers.HandleGetMedicine(db))
				r.Get("/{id}/recommendation", handlers.HandleGetRecommendation(db))
				r.Get("/{id}/interactions", handlers.HandleGetMedicineInteractions(db))
			})

			// Regimen routes
			r.Route("/regimen", func(r chi.Router) {
				r.Get("/", handlers.HandleListRegimen(regimenService))
				r.Post("/", handlers.HandleAddToRegimen(regimenService))
				r.Get("/interactions", handlers.HandleRegimenInteractions(regimenService))
				r.Delete("/{id}", handlers.HandleRemoveFromRegimen(regimenService))
			})

			// Life pattern routes
			r.Get("/life-pattern", handlers.HandleGetLifePattern(db))
			r.Put("/life-pattern", handlers.HandleSaveLifePattern(db))

			// Export routes
			r.Get("/export/csv", handlers.HandleExportCSV(regimenService))
			r.Get("/export/pdf", handlers.HandleExportPDF(regimenService))
		})
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// handleGetCSRFToken issues a one-time CSRF token for state-changing requests
func handleGetCSRFToken(csrf *middleware.CSRFProtection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"csrf_token":%q}`, csrf.GenerateToken())
	}
}

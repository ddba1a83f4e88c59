package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"dose-planner/internal/auth"
	"dose-planner/internal/database"
	"dose-planner/internal/middleware"
	"dose-planner/internal/models"
	"dose-planner/internal/repository"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user,omitempty"`
	Token   string        `json:"token,omitempty"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// HandleRegister creates a new user account
func HandleRegister(db *database.DB) http.HandlerFunc {
	userRepo := repository.NewUserRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Name = strings.TrimSpace(req.Name)

		if req.Email == "" || !strings.Contains(req.Email, "@") {
			respondError(w, http.StatusBadRequest, "A valid email is required")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "Name is required")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err == auth.ErrWeakPassword {
			respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		// Reject duplicate emails before inserting
		if _, err := userRepo.GetByEmail(req.Email); err == nil {
			respondError(w, http.StatusConflict, "Email already registered")
			return
		} else if err != repository.ErrNotFound {
			respondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		user := &models.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
		}
		if err := userRepo.Create(user); err != nil {
			log.Printf("register: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		respondJSON(w, http.StatusCreated, AuthResponse{
			Success: true,
			Message: "Registration successful",
			User: &UserResponse{
				ID:        user.ID,
				Email:     user.Email,
				Name:      user.Name,
				CreatedAt: user.CreatedAt.Format(time.RFC3339),
			},
		})
	}
}

// HandleLogin authenticates a user and issues a JWT
func HandleLogin(db *database.DB, jwtManager *auth.JWTManager) http.HandlerFunc {
	userRepo := repository.NewUserRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		user, err := userRepo.GetByEmail(req.Email)
		if err == repository.ErrNotFound {
			// Don't reveal that the email doesn't exist
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "An error occurred")
			return
		}

		if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := jwtManager.GenerateToken(user.ID, user.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		if err := userRepo.UpdateLastLogin(user.ID); err != nil {
			log.Printf("login: failed to update last login for user %d: %v", user.ID, err)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			MaxAge:   int(jwtManager.SessionDuration().Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})

		respondJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			Message: "Login successful",
			Token:   token,
			User: &UserResponse{
				ID:        user.ID,
				Email:     user.Email,
				Name:      user.Name,
				CreatedAt: user.CreatedAt.Format(time.RFC3339),
			},
		})
	}
}

// HandleLogout clears the auth cookie
func HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Logout successful",
		})
	}
}

// HandleGetCurrentUser returns the current authenticated user's information
func HandleGetCurrentUser(db *database.DB) http.HandlerFunc {
	userRepo := repository.NewUserRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		userCtx := middleware.GetUserContext(r)
		if userCtx == nil {
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := userRepo.GetByID(userCtx.UserID)
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to retrieve user information")
			return
		}

		respondJSON(w, http.StatusOK, UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
		})
	}
}

// HandleRefreshToken generates a new JWT token from an existing (possibly expired) token
func HandleRefreshToken(db *database.DB, jwtManager *auth.JWTManager) http.HandlerFunc {
	userRepo := repository.NewUserRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		token := getTokenFromRequest(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		newToken, err := jwtManager.RefreshToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, err := jwtManager.ValidateToken(newToken)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to validate new token")
			return
		}

		// Verify the user still exists
		if _, err := userRepo.GetByID(claims.UserID); err == repository.ErrNotFound {
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		} else if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to verify user")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    newToken,
			Path:     "/",
			MaxAge:   int(jwtManager.SessionDuration().Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})

		respondJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			Message: "Token refreshed successfully",
			Token:   newToken,
		})
	}
}

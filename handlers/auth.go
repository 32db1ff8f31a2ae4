// handlers/auth.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"flashxship-api/database"
	"flashxship-api/middleware"
	"flashxship-api/models"
	"flashxship-api/queue"
	"flashxship-api/services/auth"
	"flashxship-api/utils"
)

const passwordResetTokenDuration = time.Hour

type AuthHandler struct {
	svc         *auth.Service
	db          *database.Connection
	queue       *queue.Queue
	frontendURL string
}

func NewAuthHandler(svc *auth.Service, db *database.Connection, q *queue.Queue, frontendURL string) *AuthHandler {
	return &AuthHandler{svc: svc, db: db, queue: q, frontendURL: frontendURL}
}

// Register creates an account and signs the new user straight in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	if _, err := h.svc.Register(req); err != nil {
		switch err {
		case auth.ErrUsernameTaken:
			utils.SendErrorResponse(w, http.StatusConflict, "Username already taken")
		case auth.ErrEmailTaken:
			utils.SendErrorResponse(w, http.StatusConflict, "Email already in use")
		default:
			log.Printf("Error registering user %s: %v", req.Username, err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	response, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Printf("Error issuing tokens for new user %s: %v", req.Username, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Account created, but sign-in failed")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, response)
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Printf("Error authenticating user %s: %v", req.Username, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, response)
}

// Refresh rotates a refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		switch err {
		case auth.ErrInvalidToken, auth.ErrTokenExpired, auth.ErrInvalidCredentials:
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		default:
			log.Printf("Error refreshing token: %v", err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Token refresh failed")
		}
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, response)
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.Logout(req.RefreshToken); err != nil {
		log.Printf("Error revoking refresh token: %v", err)
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Logged out",
	})
}

// GetCurrentUser re-reads the account from the database so profile changes
// made elsewhere show up without a new login.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	fresh, err := h.db.GetUserByID(user.ID)
	if err != nil {
		log.Printf("Error loading user %d: %v", user.ID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load account")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, fresh)
}

// UpdateProfile changes username and email after uniqueness checks.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	taken, err := h.db.UsernameTaken(req.Username, user.ID)
	if err == nil && taken {
		utils.SendErrorResponse(w, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		log.Printf("Error checking username availability: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	taken, err = h.db.EmailTaken(req.Email, user.ID)
	if err == nil && taken {
		utils.SendErrorResponse(w, http.StatusConflict, "Email already in use")
		return
	}
	if err != nil {
		log.Printf("Error checking email availability: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if err := h.db.UpdateUserProfile(user.ID, req.Username, req.Email); err != nil {
		log.Printf("Error updating profile for user %d: %v", user.ID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, models.AuthUser{
		ID:       user.ID,
		Username: req.Username,
		Email:    req.Email,
		IsStaff:  user.IsStaff,
	})
}

// RequestPasswordReset emails a one-hour reset link. The response is the
// same whether or not the address exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	genericResponse := models.APIResponse{
		Status:  "success",
		Message: "If that email is registered, a reset link is on its way",
	}

	user, err := h.db.GetUserByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		utils.SendSuccessResponse(w, genericResponse)
		return
	}

	token := utils.GenerateRandomString(48)
	expiresAt := time.Now().Add(passwordResetTokenDuration)
	if err := h.db.StorePasswordResetToken(user.ID, token, expiresAt); err != nil {
		log.Printf("Error storing password reset token for user %d: %v", user.ID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to start password reset")
		return
	}

	err = h.queue.Enqueue(r.Context(), queue.JobTypePasswordResetEmail, map[string]interface{}{
		"to":        user.Email,
		"reset_url": h.frontendURL + "/reset-password?token=" + token,
	})
	if err != nil {
		log.Printf("Error enqueuing password reset email for user %d: %v", user.ID, err)
	}

	utils.SendSuccessResponse(w, genericResponse)
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Password) < 8 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	userID, err := h.db.ConsumePasswordResetToken(req.Token)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	if err := h.db.UpdateUserPassword(userID, utils.HashPassword(req.Password)); err != nil {
		log.Printf("Error updating password for user %d: %v", userID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Password updated",
	})
}

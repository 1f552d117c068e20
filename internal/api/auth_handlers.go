package api

import (
	"net/http"
	"time"

	"texttoner/internal/auth"
	"texttoner/internal/database"
)

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *database.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	if existing, err := s.db.GetUserByUsername(ctx, req.Username); err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	} else if existing != nil {
		writeError(w, http.StatusBadRequest, "username already taken")
		return
	}
	if existing, err := s.db.GetUserByEmail(ctx, req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	} else if existing != nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := s.db.CreateUser(ctx, req.Username, req.Email, hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	s.log.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// handleLogin authenticates a user and returns an access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.db.GetUserByUsername(ctx, req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	ok := false
	if user != nil && user.IsActive {
		ok, err = auth.VerifyPassword(req.Password, user.PasswordHash)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to verify credentials")
			return
		}
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "incorrect username or password")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(s.tokens.TTL().Seconds()),
	})
}

// handleGetMe returns the current user's information.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// handleChangePassword replaces the current user's password after checking
// the old one.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	valid, err := auth.VerifyPassword(req.OldPassword, user.PasswordHash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify credentials")
		return
	}
	if !valid {
		writeError(w, http.StatusBadRequest, "invalid old password")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}
	if err := s.db.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// handleDeactivate deactivates the current user's account.
func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	done, err := s.db.DeactivateUser(ctx, user.ID)
	if err != nil || !done {
		writeError(w, http.StatusInternalServerError, "failed to deactivate account")
		return
	}

	s.log.Info("user deactivated", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deactivated successfully"})
}

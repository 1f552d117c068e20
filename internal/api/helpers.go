package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"texttoner/internal/auth"
	"texttoner/internal/database"
)

// currentUser resolves the authenticated user from the request context,
// writing the appropriate error response on failure.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	ctx := r.Context()

	claims := auth.FromContext(ctx)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}

	userID, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token subject")
		return nil, false
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if user == nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "account not found or deactivated")
		return nil, false
	}

	return user, true
}

// parsePathID parses a UUID path parameter.
func parsePathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

// queryInt parses an integer query parameter, clamped to [min, max];
// missing or malformed values yield def.
func queryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}

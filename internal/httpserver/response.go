package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/pagination"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// faultStatus maps domain faults to HTTP statuses. The second return is
// false for errors outside the taxonomy.
func faultStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, identity.ErrMissingCredentials),
		errors.Is(err, pagination.ErrInvalidLimit):
		return http.StatusBadRequest, true
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrTokenNotFound),
		errors.Is(err, identity.ErrScopeMismatch),
		errors.Is(err, identity.ErrAdminRequired):
		return http.StatusUnauthorized, true
	case errors.Is(err, identity.ErrUserDisabled),
		errors.Is(err, identity.ErrTenantDisabled),
		errors.Is(err, identity.ErrTokenExpired),
		errors.Is(err, identity.ErrTenantNotEmpty):
		return http.StatusForbidden, true
	case errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, identity.ErrTenantNotFound),
		errors.Is(err, identity.ErrRoleNotFound),
		errors.Is(err, identity.ErrGrantNotFound),
		errors.Is(err, identity.ErrEndpointNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, identity.ErrUserExists),
		errors.Is(err, identity.ErrTenantExists),
		errors.Is(err, identity.ErrRoleExists),
		errors.Is(err, identity.ErrEndpointExists):
		return http.StatusConflict, true
	}
	return 0, false
}

// writeFault renders a domain fault, falling back to the given status
// for errors outside the taxonomy.
func writeFault(w http.ResponseWriter, err error, fallback int) {
	if status, ok := faultStatus(err); ok {
		writeError(w, status, err.Error())
		return
	}
	writeError(w, fallback, err.Error())
}

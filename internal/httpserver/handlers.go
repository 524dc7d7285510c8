package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	identity "identity/backend/internal/domain/identity"
	endpointusecase "identity/backend/internal/usecase/endpoint"
	tenantusecase "identity/backend/internal/usecase/tenant"
	userusecase "identity/backend/internal/usecase/user"
)

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/tokens", http.HandlerFunc(s.handleAuthenticate))
	s.router.Handle("/tokens/", http.HandlerFunc(s.handleTokenByID))
	s.router.Handle("/tenants", http.HandlerFunc(s.handleTenants))
	s.router.Handle("/tenants/", http.HandlerFunc(s.handleTenantByID))
	s.router.Handle("/users", http.HandlerFunc(s.handleUsers))
	s.router.Handle("/users/", http.HandlerFunc(s.handleUserSubtree))
	s.router.Handle("/roles", http.HandlerFunc(s.handleRoles))
	s.router.Handle("/roles/", http.HandlerFunc(s.handleRoleByID))
	s.router.Handle("/endpointTemplates", http.HandlerFunc(s.handleEndpoints))
	s.router.Handle("/endpointTemplates/", http.HandlerFunc(s.handleEndpointByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authTokenFrom extracts the caller's token id from the X-Auth-Token
// header, falling back to a bearer Authorization header.
func authTokenFrom(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get("X-Auth-Token")); tok != "" {
		return tok
	}
	return extractBearerToken(r.Header.Get("Authorization"))
}

func extractBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

//
// Tokens
//

type tokenDTO struct {
	ID      string    `json:"id"`
	Expires time.Time `json:"expires"`
	Tenant  string    `json:"tenant,omitempty"`
}

type userDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Enabled  bool   `json:"enabled"`
	Tenant   string `json:"tenant,omitempty"`
}

func toUserDTO(u *identity.User) userDTO {
	return userDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Enabled:  u.Enabled,
		Tenant:   u.TenantID,
	}
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
		TenantID string `json:"tenantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := s.services.Auth.Authenticate(r.Context(), payload.Username, payload.Password, payload.TenantID)
	if err != nil {
		writeFault(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": tokenDTO{
			ID:      result.Token.ID,
			Expires: result.Token.ExpiresAt,
			Tenant:  result.EffectiveTenant,
		},
		"user": toUserDTO(result.User),
	})
}

func (s *Server) handleTokenByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/tokens/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "token id required")
		return
	}
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		if _, _, err := s.services.Guard.ValidateAdmin(ctx, authToken); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		tok, user, err := s.services.Guard.Validate(ctx, id, r.URL.Query().Get("belongsTo"))
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		scopeTenant, _ := tok.Scope.TenantID()
		writeJSON(w, http.StatusOK, map[string]any{
			"token": tokenDTO{ID: tok.ID, Expires: tok.ExpiresAt, Tenant: scopeTenant},
			"user":  toUserDTO(user),
		})
	case http.MethodDelete:
		if _, _, err := s.services.Guard.ValidateAdmin(ctx, authToken); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		if err := s.services.Tokens.Revoke(ctx, id); err != nil {
			if errors.Is(err, identity.ErrTokenNotFound) {
				writeError(w, http.StatusNotFound, "token not found")
				return
			}
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

//
// Tenants
//

type tenantDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

func toTenantDTO(t *identity.Tenant) tenantDTO {
	return tenantDTO{ID: t.ID, Description: t.Description, Enabled: t.Enabled}
}

func (s *Server) handleTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		marker, limit, err := pageParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := s.services.Tenants.List(ctx, authToken, marker, limit)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		items := make([]tenantDTO, 0, len(page.Items))
		for _, t := range page.Items {
			items = append(items, toTenantDTO(t))
		}
		writeJSON(w, http.StatusOK, pageResponse{Items: items, Links: pageLinks(r, page.Prev, page.Next, limit)})
	case http.MethodPost:
		var payload struct {
			ID          string `json:"id"`
			Description string `json:"description"`
			Enabled     bool   `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		tenant, err := s.services.Tenants.Create(ctx, authToken, tenantusecase.CreateInput{
			ID:          payload.ID,
			Description: payload.Description,
			Enabled:     payload.Enabled,
		})
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toTenantDTO(tenant))
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTenantByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/tenants/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "tenant id required")
		return
	}
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		tenant, err := s.services.Tenants.Get(ctx, authToken, id)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toTenantDTO(tenant))
	case http.MethodPut, http.MethodPatch:
		var payload struct {
			Description *string `json:"description"`
			Enabled     *bool   `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		tenant, err := s.services.Tenants.Update(ctx, authToken, id, tenantusecase.UpdateInput{
			Description: payload.Description,
			Enabled:     payload.Enabled,
		})
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toTenantDTO(tenant))
	case http.MethodDelete:
		if err := s.services.Tenants.Delete(ctx, authToken, id); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

//
// Users
//

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		marker, limit, err := pageParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := s.services.Users.List(ctx, authToken, marker, limit)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		items := make([]userDTO, 0, len(page.Items))
		for _, u := range page.Items {
			items = append(items, toUserDTO(u))
		}
		writeJSON(w, http.StatusOK, pageResponse{Items: items, Links: pageLinks(r, page.Prev, page.Next, limit)})
	case http.MethodPost:
		var payload struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Enabled  bool   `json:"enabled"`
			TenantID string `json:"tenantId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		user, err := s.services.Users.Create(ctx, authToken, userusecase.CreateInput{
			ID:       payload.ID,
			Username: payload.Username,
			Email:    payload.Email,
			Password: payload.Password,
			Enabled:  payload.Enabled,
			TenantID: payload.TenantID,
		})
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toUserDTO(user))
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleUserSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, "user id required")
		return
	}

	switch {
	case len(parts) == 1:
		s.handleUserByID(w, r, id)
	case len(parts) == 2 && parts[1] == "password":
		s.handleUserPassword(w, r, id)
	case len(parts) == 2 && parts[1] == "enabled":
		s.handleUserEnabled(w, r, id)
	case len(parts) == 2 && parts[1] == "roleRefs":
		s.handleUserGrants(w, r, id)
	case len(parts) == 3 && parts[1] == "roleRefs" && parts[2] != "":
		s.handleUserGrantByID(w, r, id, parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		user, err := s.services.Users.Get(ctx, authToken, id)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toUserDTO(user))
	case http.MethodPut, http.MethodPatch:
		var payload struct {
			Email    *string `json:"email"`
			Enabled  *bool   `json:"enabled"`
			TenantID *string `json:"tenantId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		user, err := s.services.Users.Update(ctx, authToken, id, userusecase.UpdateInput{
			Email:    payload.Email,
			Enabled:  payload.Enabled,
			TenantID: payload.TenantID,
		})
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toUserDTO(user))
	case http.MethodDelete:
		if err := s.services.Users.Delete(ctx, authToken, id); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) handleUserPassword(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w, http.MethodPut)
		return
	}
	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := s.services.Users.SetPassword(r.Context(), authTokenFrom(r), id, payload.Password); err != nil {
		writeFault(w, err, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserEnabled(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w, http.MethodPut)
		return
	}
	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := s.services.Users.SetEnabled(r.Context(), authTokenFrom(r), id, payload.Enabled)
	if err != nil {
		writeFault(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

//
// Role grants
//

type grantDTO struct {
	ID     string `json:"id"`
	RoleID string `json:"roleId"`
	UserID string `json:"userId"`
	Tenant string `json:"tenantId,omitempty"`
}

func toGrantDTO(g *identity.RoleGrant) grantDTO {
	tenant, _ := g.Scope.TenantID()
	return grantDTO{ID: g.ID, RoleID: g.RoleID, UserID: g.UserID, Tenant: tenant}
}

func (s *Server) handleUserGrants(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		marker, limit, err := pageParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := s.services.Roles.ListGrants(ctx, authToken, userID, marker, limit)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		items := make([]grantDTO, 0, len(page.Items))
		for _, g := range page.Items {
			items = append(items, toGrantDTO(g))
		}
		writeJSON(w, http.StatusOK, pageResponse{Items: items, Links: pageLinks(r, page.Prev, page.Next, limit)})
	case http.MethodPost:
		var payload struct {
			RoleID   string `json:"roleId"`
			TenantID string `json:"tenantId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		grant, err := s.services.Roles.Grant(ctx, authToken, userID, payload.RoleID, payload.TenantID)
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toGrantDTO(grant))
	case http.MethodDelete:
		tenantID := r.URL.Query().Get("tenantId")
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, "tenantId query parameter required")
			return
		}
		if err := s.services.Roles.RevokeTenantGrants(ctx, authToken, userID, tenantID); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleUserGrantByID(w http.ResponseWriter, r *http.Request, _, grantID string) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w, http.MethodDelete)
		return
	}
	if err := s.services.Roles.Revoke(r.Context(), authTokenFrom(r), grantID); err != nil {
		writeFault(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

//
// Roles
//

type roleDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		marker, limit, err := pageParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := s.services.Roles.List(ctx, authToken, marker, limit)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		items := make([]roleDTO, 0, len(page.Items))
		for _, role := range page.Items {
			items = append(items, roleDTO{ID: role.ID, Description: role.Description})
		}
		writeJSON(w, http.StatusOK, pageResponse{Items: items, Links: pageLinks(r, page.Prev, page.Next, limit)})
	case http.MethodPost:
		var payload struct {
			ID          string `json:"id"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		role, err := s.services.Roles.Create(ctx, authToken, payload.ID, payload.Description)
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, roleDTO{ID: role.ID, Description: role.Description})
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleRoleByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/roles/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "role id required")
		return
	}
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		role, err := s.services.Roles.Get(ctx, authToken, id)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, roleDTO{ID: role.ID, Description: role.Description})
	case http.MethodDelete:
		if err := s.services.Roles.Delete(ctx, authToken, id); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

//
// Endpoint templates
//

type endpointDTO struct {
	ID          string `json:"id"`
	Region      string `json:"region"`
	Service     string `json:"service"`
	PublicURL   string `json:"publicUrl"`
	AdminURL    string `json:"adminUrl"`
	InternalURL string `json:"internalUrl"`
	Enabled     bool   `json:"enabled"`
	Global      bool   `json:"global"`
}

func toEndpointDTO(t *identity.EndpointTemplate) endpointDTO {
	return endpointDTO{
		ID:          t.ID,
		Region:      t.Region,
		Service:     t.Service,
		PublicURL:   t.PublicURL,
		AdminURL:    t.AdminURL,
		InternalURL: t.InternalURL,
		Enabled:     t.Enabled,
		Global:      t.Global,
	}
}

type endpointPayload struct {
	Region      string `json:"region"`
	Service     string `json:"service"`
	PublicURL   string `json:"publicUrl"`
	AdminURL    string `json:"adminUrl"`
	InternalURL string `json:"internalUrl"`
	Enabled     bool   `json:"enabled"`
	Global      bool   `json:"global"`
}

func (p endpointPayload) input() endpointusecase.Input {
	return endpointusecase.Input{
		Region:      p.Region,
		Service:     p.Service,
		PublicURL:   p.PublicURL,
		AdminURL:    p.AdminURL,
		InternalURL: p.InternalURL,
		Enabled:     p.Enabled,
		Global:      p.Global,
	}
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		marker, limit, err := pageParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := s.services.Endpoints.List(ctx, authToken, marker, limit)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		items := make([]endpointDTO, 0, len(page.Items))
		for _, t := range page.Items {
			items = append(items, toEndpointDTO(t))
		}
		writeJSON(w, http.StatusOK, pageResponse{Items: items, Links: pageLinks(r, page.Prev, page.Next, limit)})
	case http.MethodPost:
		var payload endpointPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		tmpl, err := s.services.Endpoints.Create(ctx, authToken, payload.input())
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toEndpointDTO(tmpl))
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleEndpointByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/endpointTemplates/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "endpoint template id required")
		return
	}
	ctx := r.Context()
	authToken := authTokenFrom(r)

	switch r.Method {
	case http.MethodGet:
		tmpl, err := s.services.Endpoints.Get(ctx, authToken, id)
		if err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toEndpointDTO(tmpl))
	case http.MethodPut, http.MethodPatch:
		var payload endpointPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		tmpl, err := s.services.Endpoints.Update(ctx, authToken, id, payload.input())
		if err != nil {
			writeFault(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toEndpointDTO(tmpl))
	case http.MethodDelete:
		if err := s.services.Endpoints.Delete(ctx, authToken, id); err != nil {
			writeFault(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

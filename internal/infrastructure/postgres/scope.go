package postgres

import identity "identity/backend/internal/domain/identity"

// scopeColumn converts a scope to the nullable tenant_id column value.
func scopeColumn(s identity.Scope) *string {
	if tenantID, ok := s.TenantID(); ok {
		return &tenantID
	}
	return nil
}

// columnScope converts a scanned nullable tenant_id back to a scope.
func columnScope(tenantID *string) identity.Scope {
	if tenantID == nil {
		return identity.GlobalScope()
	}
	return identity.TenantScope(*tenantID)
}

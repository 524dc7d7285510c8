package identity

// Scope identifies the tenant a token or role grant applies to. The zero
// value is the global scope.
type Scope struct {
	tenantID string
}

// GlobalScope returns the scope covering every tenant.
func GlobalScope() Scope {
	return Scope{}
}

// TenantScope returns a scope restricted to one tenant. An empty id
// yields the global scope.
func TenantScope(tenantID string) Scope {
	return Scope{tenantID: tenantID}
}

// IsGlobal reports whether the scope is not bound to a tenant.
func (s Scope) IsGlobal() bool {
	return s.tenantID == ""
}

// TenantID returns the bound tenant id and whether one is present.
func (s Scope) TenantID() (string, bool) {
	return s.tenantID, s.tenantID != ""
}

func (s Scope) String() string {
	if s.tenantID == "" {
		return "global"
	}
	return "tenant:" + s.tenantID
}

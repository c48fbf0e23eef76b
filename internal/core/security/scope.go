// Package security provides authorization and access control.
package security

import (
	"context"
	"slices"

	"venueledger/internal/core/apperror"
	appctx "venueledger/internal/core/context"
	"venueledger/internal/core/id"
)

// SystemUserID is recorded as generatedById for reports produced by background jobs.
const SystemUserID = "system"

// AccessScope defines which companies the current caller may read financial data for.
type AccessScope struct {
	// UserID is the authenticated user
	UserID string

	// IsAdmin bypasses company filtering
	IsAdmin bool

	// AllowedCompanyIDs limits access to specific venues.
	// Empty = no access (unless IsAdmin)
	AllowedCompanyIDs []string
}

// NewAccessScope creates AccessScope from context.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}

	return &AccessScope{
		UserID:            user.UserID,
		IsAdmin:           user.IsAdmin,
		AllowedCompanyIDs: user.CompanyIDs,
	}
}

// SystemScope is used by scheduled jobs that act on behalf of every company.
func SystemScope() *AccessScope {
	return &AccessScope{UserID: SystemUserID, IsAdmin: true}
}

// CanAccessCompany checks if user can access the company's data.
func (s *AccessScope) CanAccessCompany(companyID id.ID) bool {
	if s.IsAdmin {
		return true
	}
	return slices.Contains(s.AllowedCompanyIDs, companyID.String())
}

// RequireCompany rejects the request before any work when the company is out of scope.
func (s *AccessScope) RequireCompany(companyID id.ID) error {
	if s.UserID == "" && !s.IsAdmin {
		return apperror.NewUnauthorized("authentication required")
	}
	if !s.CanAccessCompany(companyID) {
		return apperror.NewForbidden("no access to company").
			WithDetail("companyId", companyID.String())
	}
	return nil
}

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context, deriving it from the user when absent.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}

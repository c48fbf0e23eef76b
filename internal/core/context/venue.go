package context

import "context"

type companyKey struct{}

// WithCompany records the venue a unit of work is about. Log lines written
// under the returned context carry its company_id.
func WithCompany(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyKey{}, companyID)
}

// GetCompanyID returns the venue set by WithCompany, or "".
func GetCompanyID(ctx context.Context) string {
	if v, ok := ctx.Value(companyKey{}).(string); ok {
		return v
	}
	return ""
}

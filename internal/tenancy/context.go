// Package tenancy carries the signed-in staff member and their active
// caseload (the prison they are working in) through request contexts.
package tenancy

import "context"

type ctxKey string

const staffKey ctxKey = "prisoner-profile.staff"

// Staff is the member of prison staff making the request.
type Staff struct {
	Username       string
	DisplayName    string
	ActiveCaseload string
	// Token is forwarded to upstream APIs so they authorise as the user.
	Token string
}

// WithStaff stores the staff member in context.
func WithStaff(ctx context.Context, staff Staff) context.Context {
	return context.WithValue(ctx, staffKey, staff)
}

// StaffFromContext extracts the staff member if present.
func StaffFromContext(ctx context.Context) (Staff, bool) {
	staff, ok := ctx.Value(staffKey).(Staff)
	return staff, ok && staff.Username != ""
}

// Username returns the signed-in username or "anonymous".
func Username(ctx context.Context) string {
	if staff, ok := StaffFromContext(ctx); ok {
		return staff.Username
	}
	return "anonymous"
}

// TokenFromContext returns the upstream bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	staff, _ := StaffFromContext(ctx)
	return staff.Token
}

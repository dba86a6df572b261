package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/prisoner-profile/internal/tenancy"
)

// StaffCookie is the cookie the sign-in service stores the staff token in.
const StaffCookie = "jwt"

// StaffClaims are the claims carried by the sign-in service's token. The
// subject is the staff username.
type StaffClaims struct {
	Name     string `json:"name"`
	Caseload string `json:"active_caseload"`
	jwt.RegisteredClaims
}

// StaffJWT verifies the HMAC-signed staff token from the Authorization header
// or the StaffCookie and stores the staff member in the request context.
func StaffJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "staff auth disabled", http.StatusUnauthorized)
				return
			}
			tokenString := staffToken(r)
			if tokenString == "" {
				http.Error(w, "missing staff token", http.StatusUnauthorized)
				return
			}
			claims := StaffClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := tenancy.WithStaff(r.Context(), tenancy.Staff{
				Username:       claims.Subject,
				DisplayName:    claims.Name,
				ActiveCaseload: claims.Caseload,
				Token:          tokenString,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func staffToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(StaffCookie); err == nil {
		return c.Value
	}
	return ""
}

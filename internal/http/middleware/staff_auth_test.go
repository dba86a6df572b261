package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/prisoner-profile/internal/tenancy"
)

func TestStaffJWTMissingSecret(t *testing.T) {
	mw := StaffJWT("")
	req := httptest.NewRequest(http.MethodGet, "/prisoner/G6123VU/add-appointment", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestStaffJWTMissingToken(t *testing.T) {
	mw := StaffJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/prisoner/G6123VU/add-appointment", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestStaffJWTInvalidToken(t *testing.T) {
	mw := StaffJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/prisoner/G6123VU/add-appointment", nil)
	req.Header.Set("Authorization", "Bearer "+signedStaffToken(t, "wrong", "jsmith"))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestStaffJWTRejectsTokenWithoutSubject(t *testing.T) {
	mw := StaffJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedStaffToken(t, "secret", ""))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestStaffJWTFromCookie(t *testing.T) {
	mw := StaffJWT("secret")
	token := signedStaffToken(t, "secret", "jsmith")
	req := httptest.NewRequest(http.MethodGet, "/prisoner/G6123VU/add-appointment", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookie, Value: token})
	rec := httptest.NewRecorder()

	var got tenancy.Staff
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staff, ok := tenancy.StaffFromContext(r.Context())
		if !ok {
			t.Fatalf("expected staff in context")
		}
		got = staff
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got.Username != "jsmith" || got.DisplayName != "Jo Smith" || got.ActiveCaseload != "MDI" {
		t.Fatalf("unexpected staff %+v", got)
	}
	if got.Token != token {
		t.Fatalf("expected raw token to be forwarded")
	}
}

func signedStaffToken(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := StaffClaims{
		Name:     "Jo Smith",
		Caseload: "MDI",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

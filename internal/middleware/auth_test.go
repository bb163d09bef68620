package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/utils"
)

const testSecret = "middleware-test-secret"

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	h := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	}
	e.GET("/protected", h, mw...)
	return e
}

func TestJWTAuthMissingHeader(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthInvalidToken(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "ADMIN", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	e := protectedEcho(JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "INSTRUCTOR", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	var gotUser interface{}
	var gotRole interface{}
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		gotUser = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	}, JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// JSON claims decode numbers as float64.
	if sub, _ := gotUser.(float64); uint64(sub) != 7 {
		t.Errorf("user_id = %v, want 7", gotUser)
	}
	if role, _ := gotRole.(string); role != "INSTRUCTOR" {
		t.Errorf("role = %v, want INSTRUCTOR", gotRole)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"allowed role", "ADMIN", []string{"ADMIN", "INSTRUCTOR"}, http.StatusOK},
		{"second allowed role", "INSTRUCTOR", []string{"ADMIN", "INSTRUCTOR"}, http.StatusOK},
		{"disallowed role", "STUDENT", []string{"ADMIN"}, http.StatusForbidden},
		{"missing role", nil, []string{"ADMIN"}, http.StatusForbidden},
		{"mistyped role", 42, []string{"ADMIN"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			inject := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tc.role != nil {
						c.Set("role", tc.role)
					}
					return next(c)
				}
			}
			e.GET("/x", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, inject, RequireRole(tc.allowed...))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCurrentUserID(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"float64 claim", float64(42), "42"},
		{"uint64", uint64(7), "7"},
		{"string", "19", "19"},
		{"unset", nil, "anon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			c := e.NewContext(req, httptest.NewRecorder())
			if tc.value != nil {
				c.Set("user_id", tc.value)
			}
			if got := currentUserID(c); got != tc.want {
				t.Errorf("currentUserID = %q, want %q", got, tc.want)
			}
		})
	}
}

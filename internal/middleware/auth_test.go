package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewerRequired(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-12345678901234567890123456789012"
	app := fiber.New()
	app.Patch("/review", ReviewerRequired(secret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"reviewer": c.Locals("reviewerID")})
	})

	sign := func(claims jwt.MapClaims, key string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		s, err := token.SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	valid := func(role string) jwt.MapClaims {
		return jwt.MapClaims{
			"sub":  "reviewer-7",
			"role": role,
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "reviewer role", authHeader: "Bearer " + sign(valid(RoleReviewer), secret), expectedStatus: http.StatusOK},
		{name: "admin role", authHeader: "Bearer " + sign(valid(RoleAdmin), secret), expectedStatus: http.StatusOK},
		{name: "missing header", authHeader: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Token abc", expectedStatus: http.StatusUnauthorized},
		{name: "wrong secret", authHeader: "Bearer " + sign(valid(RoleReviewer), "other-secret"), expectedStatus: http.StatusUnauthorized},
		{name: "expired", authHeader: "Bearer " + sign(jwt.MapClaims{
			"sub":  "reviewer-7",
			"role": RoleReviewer,
			"exp":  time.Now().Add(-time.Hour).Unix(),
		}, secret), expectedStatus: http.StatusUnauthorized},
		{name: "missing subject", authHeader: "Bearer " + sign(jwt.MapClaims{
			"role": RoleReviewer,
			"exp":  time.Now().Add(time.Hour).Unix(),
		}, secret), expectedStatus: http.StatusUnauthorized},
		{name: "applicant role", authHeader: "Bearer " + sign(valid("applicant"), secret), expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/review", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "reviewer-7", body["reviewer"])
			}
		})
	}
}

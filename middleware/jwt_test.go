package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizzer/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/private", JWTMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userId").(uint)
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func doAuthRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	config.LoadConfig()
	app := protectedApp()

	token, err := GenerateJWT(7, "owner", "owner@example.com")
	require.NoError(t, err)

	resp := doAuthRequest(t, app, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTMiddlewareRejectsNonNumericUserClaim(t *testing.T) {
	config.LoadConfig()
	app := protectedApp()

	// Validly signed, but userId is a string. The handler must answer 401
	// rather than panic on the claim type.
	claims := jwt.MapClaims{
		"userId": "7",
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.AppConfig.JWTKey))
	require.NoError(t, err)

	resp := doAuthRequest(t, app, signed)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTMiddlewareRejectsMissingClaim(t *testing.T) {
	config.LoadConfig()
	app := protectedApp()

	claims := jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.AppConfig.JWTKey))
	require.NoError(t, err)

	resp := doAuthRequest(t, app, signed)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

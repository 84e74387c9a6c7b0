// internal/testutil/fakeapi.go
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/utils"
)

// FakeAPI is an in-process stand-in for the storefront API.
type FakeAPI struct {
	Server  *httptest.Server
	BaseURL string
}

// NewFakeAPI serves the routes registered by setup under /api.
func NewFakeAPI(t *testing.T, setup func(r *gin.RouterGroup)) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	setup(engine.Group("/api"))

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &FakeAPI{Server: srv, BaseURL: srv.URL + "/api"}
}

// Config returns an API config pointing at the fake server with rate
// limiting disabled.
func (f *FakeAPI) Config() config.APIConfig {
	return config.APIConfig{BaseURL: f.BaseURL, Timeout: 5}
}

// Client returns an API client that sends token on every call.
func (f *FakeAPI) Client(token string) *api.Client {
	return api.NewClient(f.Config(), api.WithTokenSource(api.TokenFunc(func() string { return token })))
}

// ErrorJSON writes the API error envelope.
func ErrorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// Token returns an HS256 bearer token for userID expiring at exp.
func Token(t *testing.T, userID, role string, exp time.Time) string {
	t.Helper()
	claims := utils.TokenClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return token
}

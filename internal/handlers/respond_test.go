package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/config"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
	"github.com/FandaPeterka/ListManagementApp/internal/tokens"
)

func testConfig(env string) config.Config {
	return config.Config{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Environment:     env,
	}
}

func runSendTokensResponse(t *testing.T, env string) *http.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users/login", nil)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "user@example.com",
		Username: "user",
		Status:   models.StatusIdle,
	}
	pair := &tokens.Pair{AccessToken: "access-token-value", RefreshToken: "refresh-token-value"}

	sendTokensResponse(c, testConfig(env), user, pair, http.StatusOK)
	return w.Result()
}

func cookieByName(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestSendTokensResponseCookieContract(t *testing.T) {
	res := runSendTokensResponse(t, "development")

	access := cookieByName(t, res, "accessToken")
	if access.Value != "access-token-value" {
		t.Fatalf("unexpected access cookie value: %s", access.Value)
	}
	if access.MaxAge != 15*60 {
		t.Fatalf("expected access cookie max-age 900, got %d", access.MaxAge)
	}
	if !access.HttpOnly {
		t.Fatal("access cookie must be httpOnly")
	}
	if access.SameSite != http.SameSiteStrictMode {
		t.Fatalf("expected SameSite=Strict, got %v", access.SameSite)
	}
	if access.Secure {
		t.Fatal("access cookie must not be Secure outside production")
	}

	refresh := cookieByName(t, res, "refreshToken")
	if refresh.MaxAge != 7*24*60*60 {
		t.Fatalf("expected refresh cookie max-age 604800, got %d", refresh.MaxAge)
	}
	if !refresh.HttpOnly || refresh.SameSite != http.SameSiteStrictMode {
		t.Fatal("refresh cookie must be httpOnly with SameSite=Strict")
	}
}

func TestSendTokensResponseSecureInProduction(t *testing.T) {
	res := runSendTokensResponse(t, "production")

	if !cookieByName(t, res, "accessToken").Secure {
		t.Fatal("access cookie must be Secure in production")
	}
	if !cookieByName(t, res, "refreshToken").Secure {
		t.Fatal("refresh cookie must be Secure in production")
	}
}

func TestClearTokenCookiesExpiresBoth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users/logout", nil)

	clearTokenCookies(c, testConfig("development"))
	res := w.Result()

	for _, name := range []string{"accessToken", "refreshToken"} {
		cookie := cookieByName(t, res, name)
		if cookie.MaxAge >= 0 {
			t.Fatalf("expected %s cookie to be expired, got max-age %d", name, cookie.MaxAge)
		}
	}
}

func TestRespondErrorEnvelopeForOperationalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/lists/unknown", nil)

	respondError(c, "GET /lists/:listId", apperr.NotFound("list not found"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"status":"fail"`) || !strings.Contains(body, "list not found") {
		t.Fatalf("unexpected envelope: %s", body)
	}
}

func TestRespondErrorMasksUnexpectedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/lists", nil)

	respondError(c, "GET /lists", errors.New("connection reset by peer"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "connection reset") {
		t.Fatalf("internal detail leaked to client: %s", body)
	}
	if !strings.Contains(body, `"status":"error"`) {
		t.Fatalf("unexpected envelope: %s", body)
	}
}

func TestSanitizedUserOmitsPasswordHash(t *testing.T) {
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        "user@example.com",
		Username:     "user",
		PasswordHash: "$2a$10$secret",
	}

	payload := sanitizedUser(user)
	for key := range payload {
		if strings.Contains(strings.ToLower(key), "password") {
			t.Fatalf("sanitized user exposes %s", key)
		}
	}
}

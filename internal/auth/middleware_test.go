package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/config"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret string, userID uint, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

// serve runs the middleware and reports the user id the next handler saw.
func serve(handler *AuthHandler, req *http.Request) (*httptest.ResponseRecorder, uint, bool) {
	rr := httptest.NewRecorder()
	var seen uint
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = r.Context().Value(UserIDKey).(uint)
		w.WriteHeader(http.StatusOK)
	})
	handler.SessionMiddleware(next).ServeHTTP(rr, req)
	return rr, seen, ok
}

func TestSessionMiddleware_SlidingSession(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, nil, nil)

	t.Run("TokenRenewed", func(t *testing.T) {
		// Expires in 11 hours, less than TokenDuration/2 = 12 hours
		tokenString := signedToken(t, cfg.JWTSecret, 1, 11*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenString})
		rr, userID, ok := serve(handler, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		if !ok || userID != 1 {
			t.Errorf("expected user 1 in context, got %v (%v)", userID, ok)
		}

		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "auth_token" {
				found = true
				if c.Value == tokenString {
					t.Errorf("expected new token value, but got the old one")
				}
				break
			}
		}
		if !found {
			t.Errorf("expected new auth_token cookie to be set")
		}
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		// Expires in 13 hours, more than TokenDuration/2 = 12 hours
		tokenString := signedToken(t, cfg.JWTSecret, 1, 13*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenString})
		rr, _, ok := serve(handler, req)

		if rr.Code != http.StatusOK || !ok {
			t.Errorf("expected authenticated request, got %v", rr.Code)
		}
		for _, c := range rr.Result().Cookies() {
			if c.Name == "auth_token" {
				t.Errorf("did not expect a new auth_token cookie to be set")
			}
		}
	})

	t.Run("AnonymousPassesThrough", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		rr, _, ok := serve(handler, req)
		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		if ok {
			t.Error("did not expect a user in context")
		}
	})

	t.Run("ExpiredTokenIsAnonymous", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signedToken(t, cfg.JWTSecret, 1, -time.Minute)})
		rr, _, ok := serve(handler, req)
		if rr.Code != http.StatusOK || ok {
			t.Errorf("expected anonymous request, got %v (%v)", rr.Code, ok)
		}
	})
}

func TestSessionMiddleware_APIKey(t *testing.T) {
	db := setupDB(t)
	user := models.User{DiscordID: "bot"}
	db.Create(&user)
	db.Create(&models.APIKey{UserID: user.ID, Token: "secret-key"})

	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, nil)

	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-KEY", "secret-key")
	_, userID, ok := serve(handler, req)
	if !ok || userID != user.ID {
		t.Errorf("expected user %d from api key, got %v (%v)", user.ID, userID, ok)
	}
}

func TestHandleLogin_SetsState(t *testing.T) {
	handler := NewAuthHandler(&config.Config{DiscordClientID: "client", DiscordRedirectURL: "http://localhost/cb"}, nil, nil)

	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, httptest.NewRequest("GET", "/auth/discord/login", nil))

	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("expected oauth_state cookie")
	}
	loc, _ := rr.Result().Location()
	if loc.Query().Get("state") != state {
		t.Errorf("expected redirect state %q, got %q", state, loc.Query().Get("state"))
	}
}

func TestHandleCallback_RejectsBadState(t *testing.T) {
	handler := NewAuthHandler(&config.Config{}, nil, nil)

	req := httptest.NewRequest("GET", "/auth/discord/callback?state=forged&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	rr := httptest.NewRecorder()
	handler.HandleCallback(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

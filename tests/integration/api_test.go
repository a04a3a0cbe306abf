package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sundinlabs/multibot/internal/adapter/http/fiber/handlers"
	"github.com/sundinlabs/multibot/internal/adapter/http/fiber/middleware"
	"github.com/sundinlabs/multibot/internal/adapter/storage/postgres"
	"github.com/sundinlabs/multibot/internal/service/auth"
)

// setupTestApp wires the auth surface against real Postgres and Redis.
func setupTestApp(t *testing.T) *fiber.App {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil || env.Cache == nil {
		t.Skip("Backing services not available")
	}

	CleanDatabase(t, env.DB)
	FlushRedis(t, env.Redis)

	userRepo := postgres.NewUserRepository(env.DB, env.Logger)
	jwtService := auth.NewJWTService("integration-secret", 15*time.Minute, time.Hour, env.Cache, env.Logger)
	authService := auth.NewService(userRepo, jwtService, env.Logger)
	authHandler := handlers.NewAuthHandler(authService, env.Logger)

	app := fiber.New()

	v1 := app.Group("/api/v1")
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)

	protected := v1.Group("", middleware.AuthRequired(authService))
	protected.Get("/auth/me", authHandler.Me)

	return app
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Tokens tokenPair `json:"tokens"`
	User   struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		BotScope string `json:"bot_scope"`
	} `json:"user"`
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

// TestAPI_AuthFlow walks register, login, me and refresh end to end.
func TestAPI_AuthFlow(t *testing.T) {
	app := setupTestApp(t)

	var registered authResponse

	t.Run("Register", func(t *testing.T) {
		resp := postJSON(t, app, "/api/v1/auth/register", map[string]interface{}{
			"name":      "Panel Operator",
			"email":     "panel@example.com",
			"password":  "password123",
			"bot_scope": "demo",
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if registered.Tokens.AccessToken == "" {
			t.Error("Expected access token after registration")
		}
		if registered.User.Email != "panel@example.com" {
			t.Errorf("Expected registered email, got '%s'", registered.User.Email)
		}
	})

	t.Run("RegisterDuplicate", func(t *testing.T) {
		resp := postJSON(t, app, "/api/v1/auth/register", map[string]interface{}{
			"name":     "Impostor",
			"email":    "panel@example.com",
			"password": "password456",
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", resp.StatusCode)
		}
	})

	var loggedIn authResponse

	t.Run("Login", func(t *testing.T) {
		resp := postJSON(t, app, "/api/v1/auth/login", map[string]interface{}{
			"email":    "panel@example.com",
			"password": "password123",
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&loggedIn); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if loggedIn.Tokens.AccessToken == "" || loggedIn.Tokens.RefreshToken == "" {
			t.Fatal("Expected both tokens on login")
		}
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		resp := postJSON(t, app, "/api/v1/auth/login", map[string]interface{}{
			"email":    "panel@example.com",
			"password": "wrong",
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", resp.StatusCode)
		}
	})

	t.Run("Me", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+loggedIn.Tokens.AccessToken)

		resp, err := app.Test(req, 10000)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}

		var me struct {
			Email    string `json:"email"`
			BotScope string `json:"bot_scope"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if me.Email != "panel@example.com" {
			t.Errorf("Expected own email, got '%s'", me.Email)
		}
		if me.BotScope != "demo" {
			t.Errorf("Expected scope 'demo', got '%s'", me.BotScope)
		}
	})

	t.Run("MeWithoutToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)

		resp, err := app.Test(req, 10000)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", resp.StatusCode)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		resp := postJSON(t, app, "/api/v1/auth/refresh", map[string]interface{}{
			"refreshToken": loggedIn.Tokens.RefreshToken,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}

		var refreshed tokenPair
		if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if refreshed.AccessToken == "" {
			t.Error("Expected new access token")
		}
	})

	t.Run("RefreshWithAccessToken", func(t *testing.T) {
		resp := postJSON(t, app, "/api/v1/auth/refresh", map[string]interface{}{
			"refreshToken": loggedIn.Tokens.AccessToken,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", resp.StatusCode)
		}
	})
}

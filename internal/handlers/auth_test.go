package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/constants"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/testutil"
	"github.com/yukikurage/workboard-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func newNullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func setupAuthTestEnv(t *testing.T, secureCookies bool) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		utils.NewPasswordHasher(bcrypt.MinCost),
		tokens,
		nil,
		newNullLogger(),
	)

	return authTestEnv{
		db:          db,
		handler:     NewAuthHandler(authService, secureCookies, newNullLogger()),
		authService: authService,
	}
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t, false)

	r := gin.New()
	r.POST("/api/auth/signup", env.handler.Signup)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "NewUser@example.com",
		"password": "supersecret",
		"name":     "New User",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Success bool        `json:"success"`
		Data    dto.UserDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "newuser@example.com", response.Data.Email)
	assert.Len(t, response.Data.MemberID, constants.MemberIDDigits)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "newuser@example.com",
		"password": "another-secret",
	}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "short@example.com",
		"password": "123",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		secure       bool
		wantSameSite http.SameSite
	}{
		{"development cookies", false, http.SameSiteLaxMode},
		{"production cookies", true, http.SameSiteNoneMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupAuthTestEnv(t, tt.secure)
			_, err := env.authService.Register(context.Background(), services.RegisterInput{
				Email:    "existing@example.com",
				Password: "supersecret",
			})
			require.NoError(t, err)

			r := gin.New()
			r.POST("/api/auth/login", env.handler.Login)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
				"email":    "existing@example.com",
				"password": "supersecret",
			}))
			require.Equal(t, http.StatusOK, w.Code)

			cookies := w.Result().Cookies()
			accessCookie := findCookie(cookies, constants.AccessTokenCookie)
			refreshCookie := findCookie(cookies, constants.RefreshTokenCookie)
			require.NotNil(t, accessCookie)
			require.NotNil(t, refreshCookie)

			assert.Equal(t, 3600, accessCookie.MaxAge)
			assert.Equal(t, 7*24*3600, refreshCookie.MaxAge)
			for _, c := range []*http.Cookie{accessCookie, refreshCookie} {
				assert.True(t, c.HttpOnly)
				assert.Equal(t, "/", c.Path)
				assert.Equal(t, tt.secure, c.Secure)
				assert.Equal(t, tt.wantSameSite, c.SameSite)
			}

			// Tokens are only readable through the httpOnly cookies.
			assert.NotContains(t, w.Body.String(), accessCookie.Value)
			assert.NotContains(t, w.Body.String(), refreshCookie.Value)
			assert.NotContains(t, w.Body.String(), "access_token")
			assert.NotContains(t, w.Body.String(), "refresh_token")
			var response struct {
				Data LoginResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "existing@example.com", response.Data.User.Email)
		})
	}
}

func TestAuthHandler_LoginFailuresAreIndistinguishable(t *testing.T) {
	env := setupAuthTestEnv(t, false)
	_, err := env.authService.Register(context.Background(), services.RegisterInput{
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/login", env.handler.Login)

	bodies := []string{}
	for _, payload := range []map[string]string{
		{"email": "existing@example.com", "password": "wrong-password"},
		{"email": "unknown@example.com", "password": "supersecret"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/login", payload))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, findCookie(w.Result().Cookies(), constants.AccessTokenCookie))
		bodies = append(bodies, w.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Contains(t, bodies[0], "Invalid email or password")
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	env := setupAuthTestEnv(t, false)
	_, err := env.authService.Register(context.Background(), services.RegisterInput{
		Email:    "refresh@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	login, err := env.authService.Login(context.Background(), services.LoginInput{
		Email:    "refresh@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/refresh-token", env.handler.RefreshToken)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: login.RefreshToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	accessCookie := findCookie(w.Result().Cookies(), constants.AccessTokenCookie)
	require.NotNil(t, accessCookie)
	_, err = env.authService.Tokens().VerifyAccess(accessCookie.Value)
	assert.NoError(t, err)
	assert.NotContains(t, w.Body.String(), accessCookie.Value)
	// The refresh token is not rotated.
	assert.Nil(t, findCookie(w.Result().Cookies(), constants.RefreshTokenCookie))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeTokenMissing, body.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/refresh-token", map[string]string{
		"refresh_token": login.AccessToken,
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t, false)

	r := gin.New()
	r.POST("/api/auth/logout", env.handler.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)

	for _, name := range []string{constants.AccessTokenCookie, constants.RefreshTokenCookie} {
		cookie := findCookie(w.Result().Cookies(), name)
		require.NotNil(t, cookie, name)
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.MaxAge < 0)
	}
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t, false)

	user, err := env.authService.Register(context.Background(), services.RegisterInput{
		Email:    "current@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	c.Set(constants.ContextKeyPrincipal, access.NewPrincipal(user))

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data dto.UserDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, user.ID, response.Data.ID)
	assert.Equal(t, user.MemberID, response.Data.MemberID)
}

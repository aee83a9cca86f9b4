package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"authservice/internal/models"
	"authservice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// --- helpers ---

type fakeAuthService struct {
	registerUser *models.User
	registerErr  error

	loginToken string
	loginUser  *models.User
	loginErr   error
}

func (f *fakeAuthService) Register(username, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerUser, nil
}

func (f *fakeAuthService) Login(username, password string) (string, *models.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, false, 3600, quietLog())
	router := gin.New()
	router.POST("/api/register", h.Register)
	router.POST("/api/login", h.Login)
	router.POST("/api/logout", h.Logout)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	svc := &fakeAuthService{registerUser: &models.User{ID: 7, Username: "alice"}}
	rec := postJSON(newTestRouter(svc), "/api/register", `{"username":"alice","password":"secret1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusCreated)
	}
	body := decodeBody(t, rec)
	if body["id"] != float64(7) {
		t.Errorf("id = %v, want 7", body["id"])
	}
	if body["message"] == "" {
		t.Error("message is empty")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := &fakeAuthService{}
	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"secret1"}`, `not json`} {
		rec := postJSON(newTestRouter(svc), "/api/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: Status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"short password", service.ErrPasswordTooShort, http.StatusBadRequest},
		{"conflict", service.ErrUserAlreadyExists, http.StatusBadRequest},
		{"store failure", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{registerErr: tt.err}
			rec := postJSON(newTestRouter(svc), "/api/register", `{"username":"alice","password":"x"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec)
			// Only the fixed message goes out, never internal error text.
			if msg := body["message"].(string); strings.Contains(msg, "EOF") {
				t.Errorf("internal error text leaked: %q", msg)
			}
		})
	}
}

func TestLogin_Success_SetsCookieAndBody(t *testing.T) {
	svc := &fakeAuthService{
		loginToken: "signed.jwt.token",
		loginUser:  &models.User{ID: 7, Username: "alice", PasswordHash: "must-not-leak"},
	}
	rec := postJSON(newTestRouter(svc), "/api/login", `{"username":"alice","password":"secret1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	setCookie := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"token=signed.jwt.token", "HttpOnly", "SameSite=Strict"} {
		if !strings.Contains(setCookie, want) {
			t.Errorf("Set-Cookie %q missing %q", setCookie, want)
		}
	}

	body := decodeBody(t, rec)
	if body["token"] != "signed.jwt.token" {
		t.Errorf("token = %v, want the signed token", body["token"])
	}
	user := body["user"].(map[string]interface{})
	if user["username"] != "alice" {
		t.Errorf("user.username = %v, want alice", user["username"])
	}
	if strings.Contains(rec.Body.String(), "must-not-leak") {
		t.Error("password hash leaked into the response body")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &fakeAuthService{loginErr: service.ErrInvalidCredentials}
	rec := postJSON(newTestRouter(svc), "/api/login", `{"username":"alice","password":"wrong"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Invalid username or password" {
		t.Errorf("message = %v, want the fixed credentials message", body["message"])
	}
}

func TestLogin_MissingFields(t *testing.T) {
	rec := postJSON(newTestRouter(&fakeAuthService{}), "/api/login", `{"username":"alice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLogout_IdempotentAndClearsCookie(t *testing.T) {
	router := newTestRouter(&fakeAuthService{})

	for i := 0; i < 2; i++ {
		rec := postJSON(router, "/api/logout", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: Status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
		setCookie := rec.Header().Get("Set-Cookie")
		if !strings.Contains(setCookie, "token=") || !strings.Contains(setCookie, "Max-Age=0") {
			t.Errorf("call %d: cookie was not cleared, Set-Cookie = %q", i+1, setCookie)
		}
	}
}

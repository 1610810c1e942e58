package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/pos-backend/api/middleware"
	"github.com/angelmondragon/pos-backend/internal/auth"
	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
)

type stubAuthService struct {
	resp    *auth.LoginResponse
	me      *users.UserDTO
	err     error
	lastReq auth.LoginRequest
	lastMe  uuid.UUID
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.lastMe = userID
	return s.me, s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{resp: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         &users.UserDTO{ID: uuid.New(), Username: "till1", Role: enums.UserRoleCashier},
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"till1","password":"secret-pass"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(TokenHeader); got != "access-token" {
		t.Fatalf("expected token header, got %q", got)
	}
	if svc.lastReq.Username != "till1" {
		t.Fatalf("unexpected username forwarded %q", svc.lastReq.Username)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh-token" || envelope.Data.User == nil {
		t.Fatalf("unexpected body %+v", envelope.Data)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"till1","password":"wrong"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "invalid username or password" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
	if rec.Header().Get(TokenHeader) != "" {
		t.Fatal("token header must not be set on failure")
	}
}

func TestAuthLoginRejectsUnknownFields(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"a","password":"b","email":"x"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthMe(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{me: &users.UserDTO{ID: userID, Username: "till1", Role: enums.UserRoleCashier}}

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AuthMe(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
		rec := httptest.NewRecorder()
		AuthMe(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if svc.lastMe != userID {
			t.Fatalf("expected lookup for %s got %s", userID, svc.lastMe)
		}
	})
}

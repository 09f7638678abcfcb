package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Shopcore/pkg/kit"
)

const (
	maxBodyBytes    = 1 << 20
	defaultTokenTTL = 24 * time.Hour
)

type Server struct {
	Log      *zap.Logger
	Store    UserStore
	JWT      *TokenMaker
	Validate *validator.Validate
	TokenTTL time.Duration
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.Get("/whoami", s.whoami)

	return r
}

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeCredentials(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad request", map[string]any{"cause": err.Error()})
		return
	}

	id := "u_" + uuid.NewString()
	if err := s.Store.Create(r.Context(), id, req.Email, req.Password); err != nil {
		if errors.Is(err, ErrEmailExists) {
			kit.WriteError(w, r, http.StatusConflict, "email already exists", nil)
			return
		}
		if s.Log != nil {
			s.Log.Error("register failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":    id,
		"email": normalizeEmail(req.Email),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeCredentials(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad request", map[string]any{"cause": err.Error()})
		return
	}

	u, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		if s.Log != nil {
			s.Log.Error("login failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	token, err := s.JWT.New(u.ID, u.Email, ttl)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("token sign failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) whoami(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
		return
	}

	claims, err := s.JWT.Parse(strings.TrimPrefix(authz, "Bearer "))
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]string{
		"user_id": claims.UserID,
		"email":   claims.Email,
	})
}

func (s *Server) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req credentialsReq
	if err := dec.Decode(&req); err != nil {
		return credentialsReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return credentialsReq{}, errors.New("extra data after json object")
	}

	if s.Validate != nil {
		if err := s.Validate.Struct(req); err != nil {
			return credentialsReq{}, err
		}
	}

	return req, nil
}

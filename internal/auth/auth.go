package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iurnickita/shopledger/internal/auth/config"
	"github.com/iurnickita/shopledger/internal/store"
	"github.com/iurnickita/shopledger/internal/token"
)

type Auth interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

// Credentials is the part of the store auth needs.
type Credentials interface {
	AuthRegister(ctx context.Context, login string, passwordHash string) (string, error)
	AuthLogin(ctx context.Context, login string) (string, string, error)
}

const (
	HeaderUserCodeKey = "X-User-Code"
	cookieUserToken   = "shopledgerToken"
)

type auth struct {
	cfg   config.Config
	store Credentials
}

func NewAuth(cfg config.Config, store Credentials) Auth {
	return &auth{cfg: cfg, store: store}
}

type credentialsJSONRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func readCredentials(r *http.Request) (credentialsJSONRequest, error) {
	var req credentialsJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	if req.Login == "" || req.Password == "" {
		return req, errors.New("login and password are required")
	}
	return req, nil
}

func (a *auth) Register(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	userCode, err := a.store.AuthRegister(r.Context(), req.Login, string(hash))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	a.issueToken(w, userCode)
}

func (a *auth) Login(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userCode, hash, err := a.store.AuthLogin(r.Context(), req.Login)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoRows):
			http.Error(w, "wrong login or password", http.StatusUnauthorized)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		http.Error(w, "wrong login or password", http.StatusUnauthorized)
		return
	}
	a.issueToken(w, userCode)
}

func (a *auth) issueToken(w http.ResponseWriter, userCode string) {
	tokenString, err := token.BuildJWTString(userCode, a.cfg.SecretKey, a.cfg.TokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieUserToken,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.cfg.TokenTTL.Seconds()),
	})
	w.Header().Set("Authorization", "Bearer "+tokenString)
	w.WriteHeader(http.StatusOK)
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userCode, err := a.getUserCode(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// клиент не может подставить свой код пользователя
		r.Header.Set(HeaderUserCodeKey, userCode)

		h.ServeHTTP(w, r)
	}
}

func (a *auth) getUserCode(r *http.Request) (string, error) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		tokenCookie, err := r.Cookie(cookieUserToken)
		if err != nil {
			return "", err
		}
		tokenString = tokenCookie.Value
	}
	return token.GetUserCode(tokenString, a.cfg.SecretKey)
}

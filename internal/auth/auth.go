// Package auth registers lab operators and guards the API with a signed
// session cookie.
package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"LTSLab/internal/pkg/httpio"
	"LTSLab/internal/repo"

	"github.com/ansel1/merry"
	"github.com/golang-jwt/jwt/v5"
	"github.com/powerman/structlog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

var log = structlog.New(structlog.KeyUnit, "auth")

const (
	CookieName      = "session_token"
	DefaultTokenTTL = 12 * time.Hour
	minPasswordLen  = 6
)

var (
	ErrUnauthorized = merry.New("login required").WithHTTPCode(http.StatusUnauthorized)
	ErrBadLogin     = merry.New("invalid login or password").WithHTTPCode(http.StatusUnauthorized)
	ErrLoginTaken   = merry.New("operator already exists").WithHTTPCode(http.StatusConflict)
)

type contextKey string

const operatorKey contextKey = "operator"

type Authenv struct {
	JWTkey []byte
	Repo   repo.Repository
	// SecureCookie marks the session cookie HTTPS only. Off for plain HTTP
	// deployments inside the plant network.
	SecureCookie bool
	TokenTTL     time.Duration
	Now          func() time.Time
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// IPRateLimiter keeps one token bucket per client address.
type IPRateLimiter struct {
	mu  sync.Mutex
	ips map[string]*rate.Limiter
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*rate.Limiter), r: r, b: b}
}

func (i *IPRateLimiter) limiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	l, ok := i.ips[ip]
	if !ok {
		l = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = l
	}
	return l
}

func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !i.limiter(ip).Allow() {
			http.Error(w, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), merry.Wrap(err)
}

// Operator returns the login stored in ctx by AuthMiddleware.
func Operator(ctx context.Context) string {
	s, _ := ctx.Value(operatorKey).(string)
	return s
}

// WithOperator stores login in ctx the way AuthMiddleware does.
func WithOperator(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, operatorKey, login)
}

func (env *Authenv) now() time.Time {
	if env.Now != nil {
		return env.Now()
	}
	return time.Now()
}

func (env *Authenv) ttl() time.Duration {
	if env.TokenTTL > 0 {
		return env.TokenTTL
	}
	return DefaultTokenTTL
}

// parseToken validates the session token and returns the operator login.
func (env *Authenv) parseToken(s string) (string, error) {
	token, err := jwt.Parse(s, func(*jwt.Token) (interface{}, error) {
		return env.JWTkey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(env.now))
	if err != nil {
		return "", merry.Here(ErrUnauthorized).Append(err.Error())
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", merry.Here(ErrUnauthorized)
	}
	login, _ := claims["login"].(string)
	if login == "" {
		return "", merry.Here(ErrUnauthorized).Append("token has no login")
	}
	return login, nil
}

// AuthMiddleware answers 401 when the session cookie is missing or invalid
// and puts the operator login in the request context otherwise.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			httpio.WriteError(w, merry.Here(ErrUnauthorized))
			return
		}
		login, err := env.parseToken(cookie.Value)
		if err != nil {
			log.Debug("rejected session", "err", err)
			httpio.WriteError(w, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), login)))
	})
}

func (env *Authenv) setCookie(w http.ResponseWriter, id int64, login string) error {
	expires := env.now().Add(env.ttl())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": id,
		"login":       login,
		"exp":         expires.Unix(),
	})
	s, err := token.SignedString(env.JWTkey)
	if err != nil {
		return merry.Prepend(err, "sign session token")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   env.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (env *Authenv) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, err)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if req.Login == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Login, email and password required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLen {
		http.Error(w, "Password too short", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	id, err := env.Repo.CreateOperator(r.Context(), req.Login, req.Email, hash)
	if err != nil {
		log.PrintErr(err, "login", req.Login)
		httpio.WriteError(w, merry.Here(ErrLoginTaken).Append(req.Login))
		return
	}
	if err := env.setCookie(w, id, req.Login); err != nil {
		httpio.WriteError(w, err)
		return
	}
	log.Info("operator registered", "login", req.Login)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("Registration successful"))
}

func (env *Authenv) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, err)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password required", http.StatusBadRequest)
		return
	}

	id, hash, err := env.Repo.GetByLogin(r.Context(), req.Login)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	if id == 0 || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		httpio.WriteError(w, ErrBadLogin)
		return
	}
	if err := env.setCookie(w, id, req.Login); err != nil {
		httpio.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Authentication successful"))
}

func (env *Authenv) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   env.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

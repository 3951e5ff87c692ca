package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ppetrovv/bisera/internal/domain"
)

type ctxKey string

const (
	ctxCustomerID ctxKey = "customerID"
	ctxRole       ctxKey = "role"
)

const tokenLifetime = 72 * time.Hour

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(c *domain.Customer) (string, error) {
	role := "customer"
	if _, ok := s.adminAllowed[strings.ToLower(c.Email)]; ok {
		role = "admin"
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	})
	return t.SignedString(s.jwtSecret)
}

func (s *Server) parseToken(r *http.Request) (uuid.UUID, string, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		return uuid.Nil, "", false
	}
	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(cl.Subject)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, cl.Role, true
}

// requireAuth wraps customer-only handlers; the customer id lands in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, role, ok := s.parseToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Невалидна или изтекла сесия")
			return
		}
		ctx := context.WithValue(r.Context(), ctxCustomerID, id)
		ctx = context.WithValue(ctx, ctxRole, role)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(ctxRole).(string); role != "admin" {
			writeError(w, http.StatusUnauthorized, "Нямате достъп до тази операция")
			return
		}
		next(w, r)
	})
}

// customerID returns the authenticated customer, or false on public requests.
func customerID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(ctxCustomerID).(uuid.UUID)
	return id, ok
}

// optionalAuth attaches identity when a valid token is present but lets the
// request through either way. Cart and checkout behave differently for
// guests, they do not reject them.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, role, ok := s.parseToken(r); ok {
			ctx := context.WithValue(r.Context(), ctxCustomerID, id)
			ctx = context.WithValue(ctx, ctxRole, role)
			r = r.WithContext(ctx)
		}
		next(w, r)
	}
}

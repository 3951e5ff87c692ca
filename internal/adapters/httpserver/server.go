package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/ppetrovv/bisera/internal/domain"
	"github.com/ppetrovv/bisera/internal/usecase"
)

// Describer drafts product copy for the admin dashboard. Optional; when nil
// the endpoint reports the feature as unavailable.
type Describer interface {
	Describe(ctx context.Context, name, hints string) (string, error)
}

type Config struct {
	JWTSecret    []byte
	CookieSecret []byte
	// Lowercased emails allowed to act as staff.
	AdminEmails []string

	GoogleOAuth *oauth2.Config
	// Where to send the browser after a completed OAuth round-trip.
	FrontendURL string

	RateLimitPerMinute int
	// Per-path overrides for abuse-prone endpoints.
	PublicLimits map[string]int
}

type Server struct {
	catalog  *usecase.CatalogUC
	orders   *usecase.OrderUC
	accounts *usecase.AccountUC

	carts     domain.CartRepo
	products  domain.ProductRepo
	favorites domain.FavoriteRepo
	messages  domain.MessageRepo

	speedy domain.OfficeDirectory
	econt  domain.OfficeDirectory

	describer Describer

	jwtSecret    []byte
	cookieSecret []byte
	adminAllowed map[string]struct{}
	oauth        *oauth2.Config
	frontendURL  string

	counters *MemoryCounters
	handler  http.Handler
}

func New(cfg Config,
	catalog *usecase.CatalogUC,
	orders *usecase.OrderUC,
	accounts *usecase.AccountUC,
	carts domain.CartRepo,
	products domain.ProductRepo,
	favorites domain.FavoriteRepo,
	messages domain.MessageRepo,
	speedy, econt domain.OfficeDirectory,
	describer Describer,
) *Server {
	allowed := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = struct{}{}
		}
	}
	s := &Server{
		catalog:      catalog,
		orders:       orders,
		accounts:     accounts,
		carts:        carts,
		products:     products,
		favorites:    favorites,
		messages:     messages,
		speedy:       speedy,
		econt:        econt,
		describer:    describer,
		jwtSecret:    cfg.JWTSecret,
		cookieSecret: cfg.CookieSecret,
		adminAllowed: allowed,
		oauth:        cfg.GoogleOAuth,
		frontendURL:  strings.TrimRight(cfg.FrontendURL, "/"),
		counters:     NewMemoryCounters(time.Minute),
	}

	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 300
	}
	limits := cfg.PublicLimits
	if limits == nil {
		limits = map[string]int{
			"/api/auth/signup":          10,
			"/api/auth/signin":          20,
			"/api/auth/forgot-password": 5,
			"/api/checkout":             15,
			"/api/messages":             10,
		}
	}
	s.handler = Chain(s.routes(),
		Logging,
		Recovery,
		RequestID,
		CORS,
		RateLimit(s.counters, perMinute),
		PublicRateLimit(s.counters, limits),
	)
	return s
}

// Handler is the fully wired middleware chain around the route table.
func (s *Server) Handler() http.Handler { return s.handler }

// StartSweeper evicts idle rate-limit counters until stop is closed.
func (s *Server) StartSweeper(stop <-chan struct{}) {
	s.counters.StartSweeper(time.Minute, stop)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Storefront.
	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("GET /api/products/{code}", s.handleGetProduct)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/offices/speedy", s.handleOffices(s.speedy))
	mux.HandleFunc("GET /api/offices/econt", s.handleOffices(s.econt))
	mux.HandleFunc("POST /api/messages", s.handleCreateMessage)

	// Cart. Works for guests via the signed cookie and mirrors to the server
	// rows when the request carries a valid token.
	mux.HandleFunc("GET /api/cart", s.optionalAuth(s.handleGetCart))
	mux.HandleFunc("POST /api/cart", s.optionalAuth(s.handleAddToCart))
	mux.HandleFunc("PUT /api/cart", s.optionalAuth(s.handleUpdateCart))
	mux.HandleFunc("DELETE /api/cart/{code}", s.optionalAuth(s.handleRemoveFromCart))
	mux.HandleFunc("DELETE /api/cart", s.optionalAuth(s.handleClearCart))

	// Orders.
	mux.HandleFunc("POST /api/checkout", s.optionalAuth(s.handleCheckout))
	mux.HandleFunc("GET /api/orders/{id}", s.handleGetOrder)
	mux.HandleFunc("POST /api/orders/cancel", s.handleCancelOrder)

	// Accounts.
	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("GET /api/auth/verify/{token}", s.handleVerify)
	mux.HandleFunc("POST /api/auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", s.handleResetPassword)
	mux.HandleFunc("GET /api/auth/google", s.handleGoogleRedirect)
	mux.HandleFunc("GET /api/auth/google/callback", s.handleGoogleCallback)

	mux.HandleFunc("GET /api/me", s.requireAuth(s.handleGetProfile))
	mux.HandleFunc("PUT /api/me", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("DELETE /api/me", s.requireAuth(s.handleDeleteAccount))
	mux.HandleFunc("GET /api/me/orders", s.requireAuth(s.handleMyOrders))
	mux.HandleFunc("GET /api/me/favorites", s.requireAuth(s.handleListFavorites))
	mux.HandleFunc("POST /api/me/favorites", s.requireAuth(s.handleAddFavorite))
	mux.HandleFunc("DELETE /api/me/favorites/{productId}", s.requireAuth(s.handleRemoveFavorite))

	// Back office.
	mux.HandleFunc("POST /api/admin/products", s.requireAdmin(s.handleCreateProduct))
	mux.HandleFunc("PUT /api/admin/products/{code}", s.requireAdmin(s.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{code}", s.requireAdmin(s.handleDeleteProduct))
	mux.HandleFunc("POST /api/admin/products/describe", s.requireAdmin(s.handleDescribeProduct))
	mux.HandleFunc("POST /api/admin/categories", s.requireAdmin(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/admin/categories/{id}", s.requireAdmin(s.handleDeleteCategory))
	mux.HandleFunc("POST /api/admin/subcategories", s.requireAdmin(s.handleCreateSubcategory))
	mux.HandleFunc("DELETE /api/admin/subcategories/{id}", s.requireAdmin(s.handleDeleteSubcategory))
	mux.HandleFunc("GET /api/admin/orders", s.requireAdmin(s.handleListOrders))
	mux.HandleFunc("GET /api/admin/orders/export", s.requireAdmin(s.handleExportOrders))
	mux.HandleFunc("POST /api/admin/orders/confirm", s.requireAdmin(s.handleConfirmOrder))
	mux.HandleFunc("POST /api/admin/orders/cancel", s.requireAdmin(s.handleAdminCancelOrder))
	mux.HandleFunc("POST /api/admin/orders/completed", s.requireAdmin(s.handleSetOrderCompleted))
	mux.HandleFunc("GET /api/admin/messages", s.requireAdmin(s.handleListMessages))
	mux.HandleFunc("DELETE /api/admin/messages/{id}", s.requireAdmin(s.handleDeleteMessage))
	mux.HandleFunc("GET /api/admin/customers/{id}/cart", s.requireAdmin(s.handleCustomerCart))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("http: response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 10<<20))
	return dec.Decode(dst)
}

// respondErr translates domain and account errors into HTTP replies. Anything
// unrecognized is logged and hidden behind a generic 500.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Не е намерено")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "Вече съществува")
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrNotVerified):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, usecase.ErrBadToken),
		errors.Is(err, usecase.ErrCaptcha),
		domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("http: internal error")
		writeError(w, http.StatusInternalServerError, "Възникна вътрешна грешка")
	}
}

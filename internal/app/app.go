// Package app wires repositories, use cases and adapters into the HTTP
// surface. Optional integrations (mail, captcha, couriers, image host, AI)
// stay disabled when their environment is missing.
package app

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/ppetrovv/bisera/internal/adapters/ai"
	"github.com/ppetrovv/bisera/internal/adapters/captcha"
	"github.com/ppetrovv/bisera/internal/adapters/courier"
	"github.com/ppetrovv/bisera/internal/adapters/httpserver"
	"github.com/ppetrovv/bisera/internal/adapters/imagehost"
	"github.com/ppetrovv/bisera/internal/adapters/mailer"
	"github.com/ppetrovv/bisera/internal/adapters/repo/postgres"
	"github.com/ppetrovv/bisera/internal/domain"
	"github.com/ppetrovv/bisera/internal/usecase"
)

type App struct {
	DB     *gorm.DB
	Server *httpserver.Server
}

func NewApp(db *gorm.DB) (*App, error) {
	products := postgres.NewProductRepo(db)
	taxonomy := postgres.NewTaxonomyRepo(db)
	customers := postgres.NewCustomerRepo(db)
	carts := postgres.NewCartRepo(db)
	orders := postgres.NewOrderRepo(db)
	favorites := postgres.NewFavoriteRepo(db)
	messages := postgres.NewMessageRepo(db)

	var mailSvc domain.Mailer
	if m := mailer.NewFromEnv(); m != nil {
		mailSvc = m
	} else {
		log.Warn().Msg("app: SMTP not configured, outbound mail disabled")
	}
	var uploader domain.ImageUploader
	if u := imagehost.NewFromEnv(); u != nil {
		uploader = u
	}
	var captchaSvc domain.CaptchaVerifier
	if c := captcha.NewFromEnv(); c != nil {
		captchaSvc = c
	}
	var speedy, econt domain.OfficeDirectory
	if d := courier.NewSpeedyFromEnv(); d != nil {
		speedy = d
	}
	if d := courier.NewEcontFromEnv(); d != nil {
		econt = d
	}
	var describer httpserver.Describer
	if d := ai.NewFromEnv(); d != nil {
		describer = d
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	catalogUC := &usecase.CatalogUC{Products: products, Taxonomy: taxonomy, Uploader: uploader}
	orderUC := &usecase.OrderUC{Orders: orders, Products: products, Carts: carts, Mailer: mailSvc}
	accountUC := &usecase.AccountUC{Customers: customers, Mailer: mailSvc, Captcha: captchaSvc, BaseURL: baseURL}

	var oauthCfg *oauth2.Config
	if id, secret := os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"); id != "" && secret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     id,
			ClientSecret: secret,
			RedirectURL:  baseURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Warn().Msg("app: JWT_SECRET not set, using an ephemeral key; sessions will not survive restarts")
		jwtSecret = uuid.NewString()
	}
	cookieSecret := os.Getenv("SESSION_KEY")
	if cookieSecret == "" {
		cookieSecret = jwtSecret
	}
	perMinute, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_MINUTE"))

	srv := httpserver.New(httpserver.Config{
		JWTSecret:          []byte(jwtSecret),
		CookieSecret:       []byte(cookieSecret),
		AdminEmails:        strings.Split(os.Getenv("ADMIN_ALLOWED_EMAILS"), ","),
		GoogleOAuth:        oauthCfg,
		FrontendURL:        os.Getenv("FRONTEND_URL"),
		RateLimitPerMinute: perMinute,
	}, catalogUC, orderUC, accountUC, carts, products, favorites, messages, speedy, econt, describer)

	return &App{DB: db, Server: srv}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return a.Server.Handler()
}

// MigrateAndSeed creates the schema and guarantees the fallback taxonomy
// bucket exists, since subcategory deletion depends on it.
func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Category{},
		&domain.Subcategory{},
		&domain.Product{},
		&domain.ProductSubcategory{},
		&domain.Customer{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.Favorite{},
		&domain.Message{},
	); err != nil {
		return err
	}
	return seedFallbackSubcategory(a.DB)
}

func seedFallbackSubcategory(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.Subcategory{}).
		Where("name = ?", domain.FallbackSubcategoryName).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var cat domain.Category
	err := db.Where("name = ?", domain.FallbackSubcategoryName).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cat = domain.Category{ID: uuid.New(), Name: domain.FallbackSubcategoryName}
		err = db.Create(&cat).Error
	}
	if err != nil {
		return err
	}
	return db.Create(&domain.Subcategory{
		ID:         uuid.New(),
		Name:       domain.FallbackSubcategoryName,
		CategoryID: cat.ID,
	}).Error
}

package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/ppetrovv/bisera/internal/domain"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// tokenTTL is the validity window for verification and reset tokens.
const tokenTTL = time.Hour

type AccountUC struct {
	Customers domain.CustomerRepo
	Mailer    domain.Mailer
	Captcha   domain.CaptchaVerifier
	BaseURL   string

	Now func() time.Time
}

func (uc *AccountUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Address   string `json:"address"`
}

var (
	ErrInvalidCredentials = errors.New("грешен имейл или парола")
	ErrNotVerified        = errors.New("профилът не е потвърден")
	ErrBadToken           = errors.New("невалиден или изтекъл линк")
	ErrCaptcha            = errors.New("неуспешна проверка за робот")
)

// SignUp creates an unverified customer and mails the verification token.
// Duplicate emails are reported as a conflict before any write.
func (uc *AccountUC) SignUp(ctx context.Context, in SignUpInput) (*domain.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailRe.MatchString(email) {
		return nil, domain.Validation("невалиден имейл адрес")
	}
	if len(in.Password) < 6 {
		return nil, domain.Validation("паролата трябва да е поне 6 символа")
	}
	if _, err := uc.Customers.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	exp := uc.now().Add(tokenTTL)
	c := &domain.Customer{
		ID:                uuid.New(),
		Email:             email,
		PasswordHash:      string(hash),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Phone:             strings.TrimSpace(in.Phone),
		City:              strings.TrimSpace(in.City),
		Address:           strings.TrimSpace(in.Address),
		VerificationToken: uuid.NewString(),
		TokenExpiration:   &exp,
	}
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}

	if uc.Mailer != nil {
		if err := uc.Mailer.SendVerification(ctx, c.Email, c.VerificationToken); err != nil {
			log.Error().Err(err).Str("email", c.Email).Msg("account: verification mail failed")
		}
	}
	return c, nil
}

// Verify flips IsVerified when the token matches and is fresh, then clears it.
func (uc *AccountUC) Verify(ctx context.Context, token string) (*domain.Customer, error) {
	c, err := uc.Customers.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBadToken
		}
		return nil, err
	}
	if !c.TokenValid(token, uc.now()) {
		return nil, ErrBadToken
	}
	c.IsVerified = true
	c.VerificationToken = ""
	c.TokenExpiration = nil
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *AccountUC) SignIn(ctx context.Context, email, password string) (*domain.Customer, error) {
	c, err := uc.Customers.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if c.PasswordHash == "" {
		// Google-only account.
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !c.IsVerified {
		return nil, ErrNotVerified
	}
	return c, nil
}

// RequestPasswordReset is captcha-gated. It answers success for unknown emails
// too, so the endpoint does not leak which addresses have accounts.
func (uc *AccountUC) RequestPasswordReset(ctx context.Context, email, captchaToken string) error {
	if uc.Captcha != nil {
		ok, err := uc.Captcha.Verify(ctx, captchaToken)
		if err != nil {
			log.Error().Err(err).Msg("account: captcha verify failed")
			return ErrCaptcha
		}
		if !ok {
			return ErrCaptcha
		}
	}
	c, err := uc.Customers.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	exp := uc.now().Add(tokenTTL)
	c.VerificationToken = uuid.NewString()
	c.TokenExpiration = &exp
	if err := uc.Customers.Save(ctx, c); err != nil {
		return err
	}
	resetURL := strings.TrimRight(uc.BaseURL, "/") + "/reset-password/" + c.VerificationToken
	if uc.Mailer != nil {
		if err := uc.Mailer.SendPasswordReset(ctx, c.Email, c.FirstName, resetURL); err != nil {
			log.Error().Err(err).Str("email", c.Email).Msg("account: reset mail failed")
		}
	}
	return nil
}

func (uc *AccountUC) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return domain.Validation("паролата трябва да е поне 6 символа")
	}
	c, err := uc.Customers.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrBadToken
		}
		return err
	}
	if !c.TokenValid(token, uc.now()) {
		return ErrBadToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	c.VerificationToken = ""
	c.TokenExpiration = nil
	c.IsVerified = true
	return uc.Customers.Save(ctx, c)
}

// GoogleSignIn finds or creates the account for a Google identity. Accounts
// created this way are verified from the start and carry no password.
func (uc *AccountUC) GoogleSignIn(ctx context.Context, googleID, email, firstName, lastName string) (*domain.Customer, error) {
	if googleID == "" || email == "" {
		return nil, domain.Validation("непълни данни от Google")
	}
	if c, err := uc.Customers.FindByGoogleID(ctx, googleID); err == nil {
		return c, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if c, err := uc.Customers.FindByEmail(ctx, email); err == nil {
		// Existing password account; link the Google identity.
		c.GoogleID = googleID
		c.IsVerified = true
		if err := uc.Customers.Save(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c := &domain.Customer{
		ID:         uuid.New(),
		Email:      email,
		FirstName:  firstName,
		LastName:   lastName,
		GoogleID:   googleID,
		IsVerified: true,
	}
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Address   string `json:"address"`
}

func (uc *AccountUC) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*domain.Customer, error) {
	c, err := uc.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Phone = strings.TrimSpace(in.Phone)
	c.City = strings.TrimSpace(in.City)
	c.Address = strings.TrimSpace(in.Address)
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *AccountUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Customers.Delete(ctx, id)
}

package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ppetrovv/bisera/internal/domain"
)

type fakeCustomerRepo struct {
	byID map[uuid.UUID]*domain.Customer
}

func newFakeCustomerRepo(customers ...*domain.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{byID: map[uuid.UUID]*domain.Customer{}}
	for _, c := range customers {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	for _, c := range r.byID {
		if c.Email == strings.ToLower(email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCustomerRepo) FindByGoogleID(ctx context.Context, googleID string) (*domain.Customer, error) {
	for _, c := range r.byID {
		if c.GoogleID != "" && c.GoogleID == googleID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCustomerRepo) FindByVerificationToken(ctx context.Context, token string) (*domain.Customer, error) {
	for _, c := range r.byID {
		if c.VerificationToken != "" && c.VerificationToken == token {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type fakeCaptcha struct{ ok bool }

func (f *fakeCaptcha) Verify(ctx context.Context, token string) (bool, error) { return f.ok, nil }

func signUpInput() SignUpInput {
	return SignUpInput{
		Email:     "Ivana@Example.bg",
		Password:  "тайна парола",
		FirstName: "Ивана",
		LastName:  "Петрова",
		City:      "София",
	}
}

func TestSignUpThenVerifyThenSignIn(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := &AccountUC{Customers: repo, Mailer: &fakeMailer{}}

	c, err := uc.SignUp(context.Background(), signUpInput())
	require.NoError(t, err)
	assert.Equal(t, "ivana@example.bg", c.Email)
	assert.False(t, c.IsVerified)
	require.NotEmpty(t, c.VerificationToken)

	// Unverified accounts cannot sign in yet.
	_, err = uc.SignIn(context.Background(), c.Email, "тайна парола")
	assert.ErrorIs(t, err, ErrNotVerified)

	verified, err := uc.Verify(context.Background(), c.VerificationToken)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Empty(t, verified.VerificationToken)

	got, err := uc.SignIn(context.Background(), "IVANA@example.bg", "тайна парола")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := &AccountUC{Customers: repo, Mailer: &fakeMailer{}}

	_, err := uc.SignUp(context.Background(), signUpInput())
	require.NoError(t, err)
	_, err = uc.SignUp(context.Background(), signUpInput())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVerifyExpiredToken(t *testing.T) {
	repo := newFakeCustomerRepo()
	now := time.Now()
	uc := &AccountUC{Customers: repo, Mailer: &fakeMailer{}, Now: func() time.Time { return now }}

	c, err := uc.SignUp(context.Background(), signUpInput())
	require.NoError(t, err)

	// Jump past the token window.
	now = now.Add(tokenTTL + time.Minute)
	_, err = uc.Verify(context.Background(), c.VerificationToken)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestSignInWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("правилна"), bcrypt.MinCost)
	require.NoError(t, err)
	c := &domain.Customer{ID: uuid.New(), Email: "ivana@example.bg", PasswordHash: string(hash), IsVerified: true}
	uc := &AccountUC{Customers: newFakeCustomerRepo(c)}

	_, err = uc.SignIn(context.Background(), c.Email, "грешна")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInGoogleOnlyAccountRejected(t *testing.T) {
	c := &domain.Customer{ID: uuid.New(), Email: "ivana@example.bg", GoogleID: "g-1", IsVerified: true}
	uc := &AccountUC{Customers: newFakeCustomerRepo(c)}

	_, err := uc.SignIn(context.Background(), c.Email, "каквато и да е")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetDoesNotLeakAccounts(t *testing.T) {
	uc := &AccountUC{Customers: newFakeCustomerRepo(), Mailer: &fakeMailer{}, Captcha: &fakeCaptcha{ok: true}}
	// Unknown email answers success.
	assert.NoError(t, uc.RequestPasswordReset(context.Background(), "nobody@example.bg", "tok"))
}

func TestPasswordResetRequiresCaptcha(t *testing.T) {
	uc := &AccountUC{Customers: newFakeCustomerRepo(), Captcha: &fakeCaptcha{ok: false}}
	err := uc.RequestPasswordReset(context.Background(), "ivana@example.bg", "")
	assert.ErrorIs(t, err, ErrCaptcha)
}

func TestResetPasswordFlow(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := &AccountUC{Customers: repo, Mailer: &fakeMailer{}, Captcha: &fakeCaptcha{ok: true}, BaseURL: "https://shop.example.bg"}

	c, err := uc.SignUp(context.Background(), signUpInput())
	require.NoError(t, err)
	_, err = uc.Verify(context.Background(), c.VerificationToken)
	require.NoError(t, err)

	require.NoError(t, uc.RequestPasswordReset(context.Background(), c.Email, "tok"))
	stored, err := repo.FindByEmail(context.Background(), c.Email)
	require.NoError(t, err)
	require.NotEmpty(t, stored.VerificationToken)

	require.NoError(t, uc.ResetPassword(context.Background(), stored.VerificationToken, "нова парола"))
	got, err := uc.SignIn(context.Background(), c.Email, "нова парола")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	// The token is single-use.
	assert.ErrorIs(t, uc.ResetPassword(context.Background(), stored.VerificationToken, "друга парола"), ErrBadToken)
}

func TestGoogleSignInLinksExistingAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("парола"), bcrypt.MinCost)
	require.NoError(t, err)
	c := &domain.Customer{ID: uuid.New(), Email: "ivana@example.bg", PasswordHash: string(hash), IsVerified: true}
	repo := newFakeCustomerRepo(c)
	uc := &AccountUC{Customers: repo}

	got, err := uc.GoogleSignIn(context.Background(), "g-77", "Ivana@Example.bg", "Ивана", "Петрова")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	stored, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-77", stored.GoogleID)
}

func TestGoogleSignInCreatesVerifiedAccount(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := &AccountUC{Customers: repo}

	c, err := uc.GoogleSignIn(context.Background(), "g-1", "nova@example.bg", "Нова", "Клиентка")
	require.NoError(t, err)
	assert.True(t, c.IsVerified)
	assert.Empty(t, c.PasswordHash)

	again, err := uc.GoogleSignIn(context.Background(), "g-1", "nova@example.bg", "", "")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
}

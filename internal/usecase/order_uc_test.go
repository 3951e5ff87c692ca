package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppetrovv/bisera/internal/domain"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) List(ctx context.Context) ([]domain.Order, error) { return nil, nil }

func (r *fakeOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return nil, nil
}

// UpdateStatusIfPending mimics the conditional UPDATE: the write lands only
// when the stored status is still pending.
func (r *fakeOrderRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *fakeOrderRepo) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.IsCompleted = completed
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sends int
}

func (m *fakeMailer) SendOrderStatus(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	return nil
}

func (m *fakeMailer) SendVerification(ctx context.Context, email, token string) error { return nil }

func (m *fakeMailer) SendPasswordReset(ctx context.Context, email, name, url string) error {
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sends
}

func pendingOrder() *domain.Order {
	return &domain.Order{ID: uuid.New(), Status: domain.OrderStatusPending, Email: "ivana@example.bg", Name: "Ивана"}
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	o := pendingOrder()
	mailer := &fakeMailer{}
	uc := &OrderUC{Orders: newFakeOrderRepo(o), Mailer: mailer}

	first, err := uc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	second, err := uc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCancelled, first)
	assert.Equal(t, domain.OrderStatusCancelled, second)
	assert.Equal(t, 1, mailer.count(), "second cancel must not re-notify")
}

func TestConfirmAfterCancelReportsActualStatus(t *testing.T) {
	o := pendingOrder()
	uc := &OrderUC{Orders: newFakeOrderRepo(o), Mailer: &fakeMailer{}}

	_, err := uc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)

	got, err := uc.Confirm(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got)
}

func TestConcurrentConfirmCancelExactlyOneWins(t *testing.T) {
	o := pendingOrder()
	repo := newFakeOrderRepo(o)
	mailer := &fakeMailer{}
	uc := &OrderUC{Orders: repo, Mailer: mailer}

	var wg sync.WaitGroup
	results := make([]domain.OrderStatus, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], _ = uc.Confirm(context.Background(), o.ID)
	}()
	go func() {
		defer wg.Done()
		results[1], _ = uc.Cancel(context.Background(), o.ID)
	}()
	wg.Wait()

	final, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Contains(t, []domain.OrderStatus{domain.OrderStatusConfirmed, domain.OrderStatusCancelled}, final.Status)
	// Both callers see the status that actually landed.
	assert.Equal(t, final.Status, results[0])
	assert.Equal(t, final.Status, results[1])
	assert.Equal(t, 1, mailer.count())
}

func TestSetCompletedIndependentOfStatus(t *testing.T) {
	o := pendingOrder()
	repo := newFakeOrderRepo(o)
	uc := &OrderUC{Orders: repo}

	_, err := uc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	require.NoError(t, uc.SetCompleted(context.Background(), o.ID, true))

	got, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
}

func TestTransitionUnknownOrder(t *testing.T) {
	uc := &OrderUC{Orders: newFakeOrderRepo()}
	_, err := uc.Confirm(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakeProductRepo struct {
	byCode map[string]*domain.Product
}

func (r *fakeProductRepo) Save(ctx context.Context, p *domain.Product) error { return nil }

func (r *fakeProductRepo) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	p, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) DeleteByCode(ctx context.Context, code string) error { return nil }

func (r *fakeProductRepo) ReplaceSubcategories(ctx context.Context, productID uuid.UUID, subcategoryIDs []uuid.UUID) error {
	return nil
}

type fakeCartRepo struct {
	mu      sync.Mutex
	cleared []uuid.UUID
}

func (r *fakeCartRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.CartItem, error) {
	return nil, nil
}

func (r *fakeCartRepo) Upsert(ctx context.Context, customerID uuid.UUID, code string, qty int) error {
	return nil
}

func (r *fakeCartRepo) AddQuantity(ctx context.Context, customerID uuid.UUID, code string, delta int) error {
	return nil
}

func (r *fakeCartRepo) Remove(ctx context.Context, customerID uuid.UUID, code string) error {
	return nil
}

func (r *fakeCartRepo) Clear(ctx context.Context, customerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, customerID)
	return nil
}

func TestCheckoutSnapshotsCurrentPrices(t *testing.T) {
	products := &fakeProductRepo{byCode: map[string]*domain.Product{
		"B-12": {ID: uuid.New(), Code: "B-12", Name: "Колие", Price: 24.90, Images: []string{"a.jpg"}},
	}}
	repo := newFakeOrderRepo()
	carts := &fakeCartRepo{}
	uc := &OrderUC{Orders: repo, Products: products, Carts: carts}

	cid := uuid.New()
	o, err := uc.Checkout(context.Background(), CheckoutInput{
		Name: "Ивана", Email: "Ivana@Example.bg", Phone: "0888123456", City: "София",
		Address:    "Спиди офис Младост",
		Items:      []CheckoutItem{{ProductCode: "B-12", Quantity: 2}},
		CustomerID: &cid,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, "ivana@example.bg", o.Email)
	require.Len(t, o.Items, 1)
	assert.InDelta(t, 24.90, o.Items[0].Price, 0.001)
	assert.InDelta(t, 24.90*2+5.20, o.Total(), 0.001)
	assert.Equal(t, []uuid.UUID{cid}, carts.cleared)
}

func TestCheckoutRejectsMissingFields(t *testing.T) {
	uc := &OrderUC{Orders: newFakeOrderRepo()}
	_, err := uc.Checkout(context.Background(), CheckoutInput{Email: "x@y.bg"})
	assert.Error(t, err)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	uc := &OrderUC{Orders: newFakeOrderRepo()}
	_, err := uc.Checkout(context.Background(), CheckoutInput{
		Name: "Ивана", Email: "x@y.bg", Phone: "0888", City: "София",
	})
	assert.ErrorIs(t, err, errEmptyCart)
}

package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"aurum-backend/internal/config"
	"aurum-backend/internal/domain"
	"aurum-backend/internal/notify"
)

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id int32) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *MockOrderRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Order, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int32), args.Error(2)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetAdminByID(ctx context.Context, id int32) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}
func (m *MockUserRepo) GetBalance(ctx context.Context, userID int32, balanceType domain.BalanceType) (float64, error) {
	args := m.Called(ctx, userID, balanceType)
	return args.Get(0).(float64), args.Error(1)
}
func (m *MockUserRepo) UpdateBalance(ctx context.Context, userID int32, balanceType domain.BalanceType, newBalance float64) error {
	args := m.Called(ctx, userID, balanceType, newBalance)
	return args.Error(0)
}
func (m *MockUserRepo) AddDeviceToken(ctx context.Context, userID int32, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}
func (m *MockUserRepo) ListDeviceTokens(ctx context.Context, userID int32) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockUserRepo) RemoveDeviceToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID int32) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderService) ListUserOrders(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Order, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int32), args.Error(2)
}
func (m *MockOrderService) SetItemDecision(ctx context.Context, orderID, itemID int32, approved bool, reason string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, itemID, approved, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderService) ChangeItemQuantity(ctx context.Context, orderID, itemID int32, quantity int32, fixedPrice *float64) (*domain.Order, error) {
	args := m.Called(ctx, orderID, itemID, quantity, fixedPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderService) AdvanceToApproved(ctx context.Context, orderID int32) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderService) AutoRejectPending(ctx context.Context, orderID int32, reason string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// fakeLock is an in-process Locker.
type fakeLock struct {
	held    bool
	failErr error
}

func (l *fakeLock) TryLock(ctx context.Context) (bool, error) {
	if l.failErr != nil {
		return false, l.failErr
	}
	return !l.held, nil
}
func (l *fakeLock) Unlock(ctx context.Context) error { return nil }

// fakePush records every warning push sent.
type fakePush struct {
	mu    sync.Mutex
	sends []map[string]string
}

func (p *fakePush) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]notify.TokenResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, data)
	out := make([]notify.TokenResult, len(tokens))
	for i, tok := range tokens {
		out[i] = notify.TokenResult{Token: tok, Success: true}
	}
	return out, nil
}

func sweepConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sweeper.WarnAfter = 2 * time.Minute
	cfg.Sweeper.RejectAfter = 5 * time.Minute
	cfg.Sweeper.LockTTL = 55 * time.Second
	return cfg
}

func pendingOrder(id int32, age time.Duration) domain.Order {
	sent := time.Now().Add(-age)
	return domain.Order{
		ID:                 id,
		UserID:             2,
		AdminID:            1,
		TransactionID:      "ord-tx",
		OrderStatus:        domain.OrderStatusPending,
		NotificationSentAt: &sent,
		Items: []domain.OrderItem{
			{ID: 100, ItemStatus: domain.ItemStatusPending, Quantity: 1},
		},
	}
}

func TestSweepPendingOrders_Windows(t *testing.T) {
	cases := []struct {
		name       string
		age        time.Duration
		wantWarn   bool
		wantReject bool
	}{
		{"FreshOrderUntouched", 119 * time.Second, false, false},
		{"WarnBoundaryInclusive", 2 * time.Minute, true, false},
		{"StillWarning", 299 * time.Second, true, false},
		{"RejectBoundaryInclusive", 5 * time.Minute, false, true},
		{"WellPastRejection", 20 * time.Minute, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(MockOrderRepo)
			users := new(MockUserRepo)
			orderSvc := new(MockOrderService)
			push := &fakePush{}

			order := pendingOrder(10, tc.age)
			orders.On("ListByStatus", mock.Anything, domain.OrderStatusPending).
				Return([]domain.Order{order}, nil)
			if tc.wantWarn {
				users.On("ListDeviceTokens", mock.Anything, int32(2)).Return([]string{"tok1"}, nil)
			}
			if tc.wantReject {
				rejected := order
				rejected.OrderStatus = domain.OrderStatusCancelled
				orderSvc.On("AutoRejectPending", mock.Anything, int32(10), "timeout").
					Return(&rejected, nil)
			}

			jr := NewJobRunner(orders, users, orderSvc, push, &fakeLock{}, sweepConfig())
			jr.SweepPendingOrders()

			if tc.wantReject {
				orderSvc.AssertCalled(t, "AutoRejectPending", mock.Anything, int32(10), "timeout")
			} else {
				orderSvc.AssertNotCalled(t, "AutoRejectPending", mock.Anything, mock.Anything, mock.Anything)
			}
			if tc.wantWarn {
				assert.Len(t, push.sends, 1)
			} else {
				assert.Empty(t, push.sends)
			}
		})
	}
}

func TestSweepPendingOrders_SkipsOrdersWithoutPendingWork(t *testing.T) {
	orders := new(MockOrderRepo)
	users := new(MockUserRepo)
	orderSvc := new(MockOrderService)
	push := &fakePush{}

	settled := pendingOrder(11, 10*time.Minute)
	settled.Items[0].ItemStatus = domain.ItemStatusApproved
	unsent := pendingOrder(12, 10*time.Minute)
	unsent.NotificationSentAt = nil

	orders.On("ListByStatus", mock.Anything, domain.OrderStatusPending).
		Return([]domain.Order{settled, unsent}, nil)

	jr := NewJobRunner(orders, users, orderSvc, push, &fakeLock{}, sweepConfig())
	jr.SweepPendingOrders()

	orderSvc.AssertNotCalled(t, "AutoRejectPending", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, push.sends)
}

func TestSweepPendingOrders_FailureIsolation(t *testing.T) {
	orders := new(MockOrderRepo)
	users := new(MockUserRepo)
	orderSvc := new(MockOrderService)
	push := &fakePush{}

	bad := pendingOrder(20, 10*time.Minute)
	good := pendingOrder(21, 10*time.Minute)
	orders.On("ListByStatus", mock.Anything, domain.OrderStatusPending).
		Return([]domain.Order{bad, good}, nil)
	orderSvc.On("AutoRejectPending", mock.Anything, int32(20), "timeout").
		Return(nil, errors.New("db contention"))
	rejected := good
	rejected.OrderStatus = domain.OrderStatusCancelled
	orderSvc.On("AutoRejectPending", mock.Anything, int32(21), "timeout").
		Return(&rejected, nil)

	jr := NewJobRunner(orders, users, orderSvc, push, &fakeLock{}, sweepConfig())
	jr.SweepPendingOrders()

	orderSvc.AssertCalled(t, "AutoRejectPending", mock.Anything, int32(21), "timeout")
}

func TestSweepPendingOrders_LockHeldSkipsPass(t *testing.T) {
	orders := new(MockOrderRepo)
	users := new(MockUserRepo)
	orderSvc := new(MockOrderService)

	jr := NewJobRunner(orders, users, orderSvc, &fakePush{}, &fakeLock{held: true}, sweepConfig())
	jr.SweepPendingOrders()

	orders.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything)
}

func TestSweepPendingOrders_LockErrorSkipsPass(t *testing.T) {
	orders := new(MockOrderRepo)
	users := new(MockUserRepo)
	orderSvc := new(MockOrderService)

	lock := &fakeLock{failErr: errors.New("redis unreachable")}
	jr := NewJobRunner(orders, users, orderSvc, &fakePush{}, lock, sweepConfig())
	jr.SweepPendingOrders()

	orders.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything)
}

func TestSweepPendingOrders_WarnSendsPerPendingItem(t *testing.T) {
	orders := new(MockOrderRepo)
	users := new(MockUserRepo)
	orderSvc := new(MockOrderService)
	push := &fakePush{}

	order := pendingOrder(30, 3*time.Minute)
	order.Items = append(order.Items,
		domain.OrderItem{ID: 101, ItemStatus: domain.ItemStatusApproved, Quantity: 1},
		domain.OrderItem{ID: 102, ItemStatus: domain.ItemStatusPending, Quantity: 2},
	)
	orders.On("ListByStatus", mock.Anything, domain.OrderStatusPending).
		Return([]domain.Order{order}, nil)
	users.On("ListDeviceTokens", mock.Anything, int32(2)).Return([]string{"tok1", "tok2"}, nil)

	jr := NewJobRunner(orders, users, orderSvc, push, &fakeLock{}, sweepConfig())
	jr.SweepPendingOrders()

	assert.Len(t, push.sends, 2)
	assert.Equal(t, "100", push.sends[0]["item_id"])
	assert.Equal(t, "102", push.sends[1]["item_id"])
}

package wallet

import (
	"context"
	"io"
	"testing"

	"kobopay/internal/errors"
	"kobopay/internal/models"
	"kobopay/internal/providers"
	"kobopay/internal/repositories/memory"
	"kobopay/internal/services/fees"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mockpay" }

func (m *mockProvider) InitiateDeposit(ctx context.Context, req providers.InitiateDepositRequest) (*providers.DepositInitiation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.DepositInitiation), args.Error(1)
}

func (m *mockProvider) InitiateWithdraw(ctx context.Context, req providers.InitiateWithdrawRequest) (*providers.WithdrawInitiation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.WithdrawInitiation), args.Error(1)
}

func (m *mockProvider) VerifyDeposit(ctx context.Context, reference, providerRef string) (*providers.DepositVerification, error) {
	args := m.Called(ctx, reference, providerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.DepositVerification), args.Error(1)
}

func (m *mockProvider) VerifyWithdraw(ctx context.Context, reference, providerRef string) (*providers.WithdrawVerification, error) {
	args := m.Called(ctx, reference, providerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.WithdrawVerification), args.Error(1)
}

func (m *mockProvider) ValidateWebhook(delivery providers.WebhookDelivery) (*providers.WebhookValidation, error) {
	args := m.Called(delivery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.WebhookValidation), args.Error(1)
}

func (m *mockProvider) ClassifyWebhook(delivery providers.WebhookDelivery) providers.WebhookKind {
	args := m.Called(delivery)
	return args.Get(0).(providers.WebhookKind)
}

func newTestService(t *testing.T) (Service, *memory.Store, *mockProvider) {
	t.Helper()
	store := memory.NewStore()
	provider := new(mockProvider)

	registry, err := providers.NewRegistry("mockpay", "mockpay", provider)
	require.NoError(t, err)

	calc, err := fees.NewCalculator(fees.LoadPolicies())
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewService(store, registry, calc, nil, log), store, provider
}

func seedUserWithWallet(t *testing.T, store *memory.Store, balance string) (*models.User, *models.Wallet) {
	t.Helper()
	user := &models.User{Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, store.CreateUser(user))

	wallet := &models.Wallet{
		UserID:   user.ID,
		Currency: "NGN",
		Balance:  decimal.RequireFromString(balance),
	}
	require.NoError(t, store.Create(wallet))
	return user, wallet
}

func TestCreateWallet(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := &models.User{Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, store.CreateUser(user))

	created, err := svc.CreateWallet(context.Background(), user.ID, "NGN")
	require.NoError(t, err)
	assert.NotEmpty(t, created.UUID)
	assert.True(t, created.Balance.IsZero())
}

func TestCreateWallet_UnsupportedCurrency(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateWallet(context.Background(), 1, "USD")
	assert.Error(t, err)
}

func TestInitiateDeposit(t *testing.T) {
	svc, store, provider := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "0")

	provider.On("InitiateDeposit", mock.Anything, mock.MatchedBy(func(req providers.InitiateDepositRequest) bool {
		return req.Email == user.Email &&
			req.WalletUUID == wallet.UUID &&
			req.Amount.Equal(decimal.NewFromInt(5000)) &&
			req.Reference != ""
	})).Return(&providers.DepositInitiation{
		PaymentURL: "https://checkout.example.com/abc",
		Reference:  "TRF-KBP-20240101000000-ABCDEF",
	}, nil)

	initiation, err := svc.InitiateDeposit(context.Background(), user, wallet, decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/abc", initiation.PaymentURL)

	// No credit happens at initiation; the webhook settles it later.
	updated, err := store.GetByUUID(wallet.UUID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.IsZero())

	transactions, err := store.GetTransactions(wallet.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	provider.AssertExpectations(t)
}

func TestInitiateDeposit_ProviderRejection(t *testing.T) {
	svc, store, provider := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "0")

	provider.On("InitiateDeposit", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := svc.InitiateDeposit(context.Background(), user, wallet, decimal.NewFromInt(5000))
	assert.ErrorIs(t, err, errors.ErrProviderInitiationFailed)
}

func TestInitiateWithdraw(t *testing.T) {
	svc, store, provider := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "10000")
	store.PutBankDetail(models.BankDetail{
		WalletID:      wallet.ID,
		BankCode:      "058",
		AccountNumber: "0123456789",
		AccountName:   "Ada",
	})

	provider.On("InitiateWithdraw", mock.Anything, mock.MatchedBy(func(req providers.InitiateWithdrawRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(2000)) && req.BankDetail.AccountNumber == "0123456789"
	})).Return(&providers.WithdrawInitiation{ProviderRef: "tr_12345", Amount: decimal.NewFromInt(2000)}, nil)

	initiation, err := svc.InitiateWithdraw(context.Background(), user, wallet, decimal.NewFromInt(2000))
	require.NoError(t, err)

	// 5% of 2000 is 100, inside the [100, 1000] band.
	assert.True(t, initiation.Fee.Equal(decimal.NewFromInt(100)))
	assert.True(t, initiation.TotalDebit.Equal(decimal.NewFromInt(2100)))
	assert.Equal(t, "tr_12345", initiation.ProviderRef)

	updated, err := store.GetByUUID(wallet.UUID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(7900)), "amount plus fee committed pending settlement")

	transactions, err := store.GetTransactions(wallet.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionStatusPending, transactions[0].Status)
	assert.Equal(t, models.TransactionTypeWithdraw, transactions[0].Type)
	assert.True(t, transactions[0].Amount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, transactions[0].Fee.Equal(decimal.NewFromInt(100)))

	provider.AssertExpectations(t)
}

func TestInitiateWithdraw_ProviderRejectionRollsBack(t *testing.T) {
	svc, store, provider := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "10000")
	store.PutBankDetail(models.BankDetail{WalletID: wallet.ID, BankCode: "058", AccountNumber: "0123456789"})

	provider.On("InitiateWithdraw", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := svc.InitiateWithdraw(context.Background(), user, wallet, decimal.NewFromInt(2000))
	assert.ErrorIs(t, err, errors.ErrProviderInitiationFailed)

	updated, err := store.GetByUUID(wallet.UUID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(10000)), "debit must be rolled back")

	transactions, err := store.GetTransactions(wallet.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, transactions, "pending transaction must be rolled back")

	history, err := store.GetHistory(wallet.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestInitiateWithdraw_InsufficientFunds(t *testing.T) {
	svc, store, provider := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "2000")

	// 2000 plus the 100 fee exceeds the balance, so the provider is never
	// contacted.
	_, err := svc.InitiateWithdraw(context.Background(), user, wallet, decimal.NewFromInt(2000))
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	provider.AssertNotCalled(t, "InitiateWithdraw", mock.Anything, mock.Anything)
}

func TestInitiateWithdraw_MissingBankDetail(t *testing.T) {
	svc, store, provider := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "10000")

	_, err := svc.InitiateWithdraw(context.Background(), user, wallet, decimal.NewFromInt(2000))
	assert.ErrorIs(t, err, errors.ErrBankDetailNotFound)

	updated, err := store.GetByUUID(wallet.UUID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(10000)))

	provider.AssertNotCalled(t, "InitiateWithdraw", mock.Anything, mock.Anything)
}

func TestInitiateWithdraw_InvalidAmount(t *testing.T) {
	svc, store, _ := newTestService(t)
	user, wallet := seedUserWithWallet(t, store, "10000")

	_, err := svc.InitiateWithdraw(context.Background(), user, wallet, decimal.Zero)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)
}

// Package memory provides in-memory repository implementations with the
// same unit-of-work and uniqueness semantics as the postgres-backed ones.
// Service tests run against it; it is also handy for local experiments.
package memory

import (
	"sync"
	"time"

	"kobopay/internal/errors"
	"kobopay/internal/models"
	"kobopay/internal/repositories"

	"github.com/google/uuid"
)

// Store keeps all ledger state in maps guarded by one mutex. A unit of work
// snapshots the state up front and restores it when the callback fails, so
// rollback behaves like the database: all-or-nothing.
type Store struct {
	mu sync.Mutex

	wallets      map[uint]models.Wallet
	transactions map[uint]models.Transaction
	histories    []models.WalletHistory
	bankDetails  map[uint]models.BankDetail // keyed by wallet id
	webhookLogs  map[uint]models.IncomingWebhookLog
	users        map[uint]models.User

	walletSeq      uint
	transactionSeq uint
	historySeq     uint
	webhookSeq     uint
	userSeq        uint

	inTx bool
}

func NewStore() *Store {
	return &Store{
		wallets:      make(map[uint]models.Wallet),
		transactions: make(map[uint]models.Transaction),
		bankDetails:  make(map[uint]models.BankDetail),
		webhookLogs:  make(map[uint]models.IncomingWebhookLog),
		users:        make(map[uint]models.User),
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		// Already inside a unit of work; the outer call holds the mutex.
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Wallet operations

func (s *Store) Create(wallet *models.Wallet) error {
	defer s.lock()()
	s.walletSeq++
	wallet.ID = s.walletSeq
	if wallet.UUID == "" {
		wallet.UUID = uuid.NewString()
	}
	wallet.CreatedAt = time.Now()
	wallet.UpdatedAt = wallet.CreatedAt
	s.wallets[wallet.ID] = *wallet
	return nil
}

func (s *Store) GetByID(id uint) (*models.Wallet, error) {
	defer s.lock()()
	w, ok := s.wallets[id]
	if !ok {
		return nil, errors.ErrWalletNotFound
	}
	return &w, nil
}

func (s *Store) GetByUUID(uid string) (*models.Wallet, error) {
	defer s.lock()()
	for _, w := range s.wallets {
		if w.UUID == uid {
			wallet := w
			return &wallet, nil
		}
	}
	return nil, errors.ErrWalletNotFound
}

func (s *Store) GetByUserID(userID uint) (*models.Wallet, error) {
	defer s.lock()()
	for _, w := range s.wallets {
		if w.UserID == userID {
			wallet := w
			return &wallet, nil
		}
	}
	return nil, errors.ErrWalletNotFound
}

func (s *Store) GetByUUIDForUpdate(uid string) (*models.Wallet, error) {
	return s.GetByUUID(uid)
}

func (s *Store) GetByIDForUpdate(id uint) (*models.Wallet, error) {
	return s.GetByID(id)
}

func (s *Store) Update(wallet *models.Wallet) error {
	defer s.lock()()
	if _, ok := s.wallets[wallet.ID]; !ok {
		return errors.ErrWalletNotFound
	}
	wallet.UpdatedAt = time.Now()
	s.wallets[wallet.ID] = *wallet
	return nil
}

// Transaction operations

func (s *Store) CreateTransaction(tx *models.Transaction) error {
	defer s.lock()()
	for _, existing := range s.transactions {
		if existing.Reference == tx.Reference {
			return errors.ErrDuplicateTransaction
		}
	}
	s.transactionSeq++
	tx.ID = s.transactionSeq
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) GetTransactionByID(id uint) (*models.Transaction, error) {
	defer s.lock()()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	return &tx, nil
}

func (s *Store) GetTransactionByReference(reference string) (*models.Transaction, error) {
	defer s.lock()()
	for _, tx := range s.transactions {
		if tx.Reference == reference {
			found := tx
			return &found, nil
		}
	}
	return nil, errors.ErrTransactionNotFound
}

func (s *Store) TransitionTransactionStatus(id uint, fromStatus, toStatus string) (bool, error) {
	defer s.lock()()
	tx, ok := s.transactions[id]
	if !ok || tx.Status != fromStatus {
		return false, nil
	}
	tx.Status = toStatus
	tx.UpdatedAt = time.Now()
	s.transactions[id] = tx
	return true, nil
}

func (s *Store) GetTransactions(walletID uint, limit, offset int) ([]models.Transaction, error) {
	defer s.lock()()
	var txs []models.Transaction
	for _, tx := range s.transactions {
		if tx.WalletID == walletID {
			txs = append(txs, tx)
		}
	}
	return paginate(txs, limit, offset), nil
}

// Audit operations

func (s *Store) CreateHistory(h *models.WalletHistory) error {
	defer s.lock()()
	s.historySeq++
	h.ID = s.historySeq
	h.CreatedAt = time.Now()
	s.histories = append(s.histories, *h)
	return nil
}

func (s *Store) GetHistory(walletID uint, limit, offset int) ([]models.WalletHistory, error) {
	defer s.lock()()
	var rows []models.WalletHistory
	for _, h := range s.histories {
		if h.WalletID == walletID {
			rows = append(rows, h)
		}
	}
	return paginate(rows, limit, offset), nil
}

// Bank details

func (s *Store) GetBankDetail(walletID uint) (*models.BankDetail, error) {
	defer s.lock()()
	d, ok := s.bankDetails[walletID]
	if !ok {
		return nil, errors.ErrBankDetailNotFound
	}
	return &d, nil
}

func (s *Store) PutBankDetail(d models.BankDetail) {
	defer s.lock()()
	s.bankDetails[d.WalletID] = d
}

// Webhook log

func (s *Store) CreateWebhookLog(l *models.IncomingWebhookLog) error {
	defer s.lock()()
	s.webhookSeq++
	l.ID = s.webhookSeq
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	s.webhookLogs[l.ID] = *l
	return nil
}

func (s *Store) UpdateWebhookLog(id uint, response string) error {
	defer s.lock()()
	l, ok := s.webhookLogs[id]
	if !ok {
		return errors.ErrTransactionNotFound
	}
	l.Response = response
	l.UpdatedAt = time.Now()
	s.webhookLogs[id] = l
	return nil
}

// WebhookLog returns a copy of a stored delivery log.
func (s *Store) WebhookLog(id uint) (models.IncomingWebhookLog, bool) {
	defer s.lock()()
	l, ok := s.webhookLogs[id]
	return l, ok
}

// WebhookLogCount reports how many deliveries have been recorded.
func (s *Store) WebhookLogCount() int {
	defer s.lock()()
	return len(s.webhookLogs)
}

// ExecuteInTransaction runs fn against a snapshot-backed view of the store.
// The webhook log map is exempt: raw delivery logs commit independently.
func (s *Store) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	s.inTx = true
	err := fn(s)
	s.inTx = false
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	wallets        map[uint]models.Wallet
	transactions   map[uint]models.Transaction
	histories      []models.WalletHistory
	walletSeq      uint
	transactionSeq uint
	historySeq     uint
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		wallets:        make(map[uint]models.Wallet, len(s.wallets)),
		transactions:   make(map[uint]models.Transaction, len(s.transactions)),
		histories:      make([]models.WalletHistory, len(s.histories)),
		walletSeq:      s.walletSeq,
		transactionSeq: s.transactionSeq,
		historySeq:     s.historySeq,
	}
	for id, w := range s.wallets {
		snap.wallets[id] = w
	}
	for id, tx := range s.transactions {
		snap.transactions[id] = tx
	}
	copy(snap.histories, s.histories)
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.wallets = snap.wallets
	s.transactions = snap.transactions
	s.histories = snap.histories
	s.walletSeq = snap.walletSeq
	s.transactionSeq = snap.transactionSeq
	s.historySeq = snap.historySeq
}

// User operations. Users returns a repositories.UserRepository view over
// the same store.

func (s *Store) Users() repositories.UserRepository {
	return &users{s: s}
}

type users struct {
	s *Store
}

func (u *users) Create(user *models.User) error            { return u.s.CreateUser(user) }
func (u *users) GetByID(id uint) (*models.User, error)     { return u.s.GetUserByID(id) }
func (u *users) GetByEmail(e string) (*models.User, error) { return u.s.GetUserByEmail(e) }

func (s *Store) CreateUser(user *models.User) error {
	defer s.lock()()
	s.userSeq++
	user.ID = s.userSeq
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

// =============================
// Repositories (in-memory)
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by ID

	SaveFunc           func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByUsernameFunc func(ctx context.Context, tx repository.Tx, username string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, tx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// ---- Mock ActivationCodeRepository ----

type MockCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.ActivationCode // by ID

	SaveFunc func(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error
}

var _ repository.ActivationCodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{codes: make(map[string]*model.ActivationCode)}
}

func (m *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Code == code.Code {
			return domain.ErrCodeExists
		}
	}
	cp := *code
	m.codes[code.ID] = &cp
	return nil
}

func (m *MockCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCodeRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Code == code && c.Status == model.CodeStatusActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCodeRepo) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.CodeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	return nil
}

func (m *MockCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ActivationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ActivationCode, 0, len(m.codes))
	for _, c := range m.codes {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockCodeRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.codes {
		if c.Status == model.CodeStatusActive {
			n++
		}
	}
	return n, nil
}

// ---- Mock ActivationRepository ----

// MockActivationRepo joins against the user and code mocks for ExpireDue,
// mirroring what the SQL implementation does with its RETURNING join.
type MockActivationRepo struct {
	mu     sync.Mutex
	grants map[string]*model.Activation // by ID
	users  *MockUserRepo
	codes  *MockCodeRepo

	LockCodeFunc func(ctx context.Context, tx repository.Tx, codeID string) error
}

var _ repository.ActivationRepository = (*MockActivationRepo)(nil)

func NewMockActivationRepo(users *MockUserRepo, codes *MockCodeRepo) *MockActivationRepo {
	return &MockActivationRepo{
		grants: make(map[string]*model.Activation),
		users:  users,
		codes:  codes,
	}
}

func (m *MockActivationRepo) Save(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.grants[a.ID] = &cp
	return nil
}

func (m *MockActivationRepo) LockCode(ctx context.Context, tx repository.Tx, codeID string) error {
	if m.LockCodeFunc != nil {
		return m.LockCodeFunc(ctx, tx, codeID)
	}
	if tx == nil {
		return domain.ErrInvalidExecContext
	}
	return nil
}

func (m *MockActivationRepo) CountActiveByCode(ctx context.Context, tx repository.Tx, codeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.grants {
		if a.CodeID == codeID && a.Status == model.ActivationStatusActive {
			n++
		}
	}
	return n, nil
}

func (m *MockActivationRepo) FindValidByUserAndCode(ctx context.Context, tx repository.Tx, userID, codeID string) (*model.Activation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, a := range m.grants {
		if a.UserID == userID && a.CodeID == codeID && a.Valid(now) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockActivationRepo) FindValidByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Activation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, a := range m.grants {
		if a.UserID == userID && a.Valid(now) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockActivationRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.grants {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MockActivationRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grants), nil
}

func (m *MockActivationRepo) Recent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Activation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Activation, 0, len(m.grants))
	for _, a := range m.grants {
		cp := *a
		out = append(out, &cp)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockActivationRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) ([]repository.ExpiredGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.ExpiredGrant
	for _, a := range m.grants {
		if a.Status != model.ActivationStatusActive || a.ExpiresAt.After(now) {
			continue
		}
		a.Status = model.ActivationStatusExpired
		g := repository.ExpiredGrant{ActivationID: a.ID, UserID: a.UserID}
		if m.users != nil {
			if u, err := m.users.FindByID(ctx, tx, a.UserID); err == nil {
				g.Username = u.Username
			}
		}
		if m.codes != nil {
			if c, err := m.codes.FindByID(ctx, tx, a.CodeID); err == nil {
				g.Code = c.Code
			}
		}
		out = append(out, g)
	}
	return out, nil
}

// ---- Mock BotAccountRepository ----

type MockBotRepo struct {
	mu   sync.Mutex
	bots map[string]*model.BotAccount // by ID
}

var _ repository.BotAccountRepository = (*MockBotRepo)(nil)

func NewMockBotRepo() *MockBotRepo {
	return &MockBotRepo{bots: make(map[string]*model.BotAccount)}
}

func (m *MockBotRepo) Save(ctx context.Context, tx repository.Tx, b *model.BotAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bots[b.ID] = &cp
	return nil
}

func (m *MockBotRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BotAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBotRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.BotAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BotAccount
	for _, b := range m.bots {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockBotRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.bots, id)
	return nil
}

func (m *MockBotRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string, status model.BotStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bots {
		if b.UserID == userID && (status == "" || b.Status == status) {
			n++
		}
	}
	return n, nil
}

func (m *MockBotRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bots), nil
}

// ---- Mock audit log repositories ----

type MockConnectionLogRepo struct {
	mu      sync.Mutex
	Entries []*model.ConnectionLog

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.ConnectionLog) error
}

var _ repository.ConnectionLogRepository = (*MockConnectionLogRepo)(nil)

func NewMockConnectionLogRepo() *MockConnectionLogRepo { return &MockConnectionLogRepo{} }

func (m *MockConnectionLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.ConnectionLog) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Entries = append(m.Entries, &cp)
	return nil
}

func (m *MockConnectionLogRepo) RecentByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.ConnectionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConnectionLog
	for i := len(m.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Entries[i].UserID == userID {
			cp := *m.Entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockConnectionLogRepo) Recent(ctx context.Context, tx repository.Tx, limit int) ([]*model.ConnectionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConnectionLog
	for i := len(m.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.Entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockConnectionLogRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

type MockSystemLogRepo struct {
	mu      sync.Mutex
	Entries []*model.SystemLog

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.SystemLog) error
}

var _ repository.SystemLogRepository = (*MockSystemLogRepo)(nil)

func NewMockSystemLogRepo() *MockSystemLogRepo { return &MockSystemLogRepo{} }

func (m *MockSystemLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.SystemLog) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Entries = append(m.Entries, &cp)
	return nil
}

func (m *MockSystemLogRepo) Recent(ctx context.Context, tx repository.Tx, limit int) ([]*model.SystemLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SystemLog
	for i := len(m.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.Entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockSystemLogRepo) CountByType(logType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Entries {
		if e.LogType == logType {
			n++
		}
	}
	return n
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	mu sync.Mutex

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// mockTx is a non-nil transaction handle so LockCode's in-transaction check
// passes.
type mockTx struct{}

// WithTx runs fn under a single mutex. Serializing whole transactions is how
// the mock stands in for the per-code advisory lock the real store takes.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, mockTx{})
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/inference"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/images"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/reports"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/users"
	"github.com/dmitrijs2005/seedclassifier/internal/server/storage"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

type fakeUsersRepo struct {
	mu      sync.Mutex
	byLogin map[string]*models.User
	getErr  error
	gets    int
	nextID  int64
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byLogin: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byLogin[u.Login]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.byLogin[u.Login] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.byLogin {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsersRepo) SetPassword(_ context.Context, login, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byLogin[login]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

type fakeReportsRepo struct {
	created   []models.Report
	createErr error
	listOut   []models.Report
	listArgs  []int64

	recentLimit int
}

func (f *fakeReportsRepo) Create(_ context.Context, r *models.Report) (*models.Report, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	r.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *r)
	return r, nil
}

func (f *fakeReportsRepo) SetResult(context.Context, int64, models.ReportStatus, json.RawMessage) error {
	return nil
}

func (f *fakeReportsRepo) ListBySubmitter(_ context.Context, id int64, limit int) ([]models.Report, error) {
	f.listArgs = []int64{id, int64(limit)}
	return f.listOut, nil
}

func (f *fakeReportsRepo) ListRecent(_ context.Context, limit int) ([]models.Report, error) {
	f.recentLimit = limit
	return f.listOut, nil
}

func (f *fakeReportsRepo) ListPending(context.Context, int) ([]models.Report, error) {
	return nil, nil
}

type fakeRepoMgr struct {
	users   *fakeUsersRepo
	reports *fakeReportsRepo
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoMgr) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoMgr) Images(dbx.DBTX) images.Repository            { return nil }
func (m *fakeRepoMgr) Reports(dbx.DBTX) reports.Repository          { return m.reports }

type fakeStore struct {
	puts   []storage.Object
	putErr error
}

func (s *fakeStore) Put(_ context.Context, _ int64, obj storage.Object) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.puts = append(s.puts, obj)
	return "db://images/1", nil
}

func (s *fakeStore) Get(context.Context, string) (*storage.Object, error) {
	return nil, storage.ErrBadLocation
}

type fakeEnqueuer struct {
	jobs []inference.Job
	full bool
}

func (e *fakeEnqueuer) Enqueue(job inference.Job) bool {
	if e.full {
		return false
	}
	e.jobs = append(e.jobs, job)
	return true
}

func nopLogger() logging.Logger { return logging.NewNopLogger() }

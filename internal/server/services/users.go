// Package services contains server-side business logic: basic-auth
// verification and user administration (UserService), and image intake
// plus report listing (ImageService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/cryptox"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/metrics"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    int64
	Login string
	Role  models.Role
}

// UserService verifies basic-auth credentials against bcrypt hashes and
// manages accounts. Successful verifications are cached for a short TTL,
// keyed by a fingerprint of the credential pair.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *expirable.LRU[string, Principal]
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService. AuthCacheSize <= 0 or
// AuthCacheTTL <= 0 disables the cache.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "users"),
	}
	if cfg.AuthCacheSize > 0 && cfg.AuthCacheTTL > 0 {
		s.cache = expirable.NewLRU[string, Principal](cfg.AuthCacheSize, nil, cfg.AuthCacheTTL)
	}
	return s
}

// Authenticate returns the principal for login/password or
// common.ErrorUnauthorized. Storage failures are logged and also reported
// as unauthorized.
func (s *UserService) Authenticate(ctx context.Context, login string, password []byte) (*Principal, error) {
	if login == "" || len(password) == 0 {
		return nil, common.ErrorUnauthorized
	}

	key := cryptox.Fingerprint(login, password)
	if s.cache != nil {
		if p, ok := s.cache.Get(key); ok {
			metrics.AuthCache.WithLabelValues("hit").Inc()
			return &p, nil
		}
		metrics.AuthCache.WithLabelValues("miss").Inc()
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "credential lookup failed", "login", login, "error", err)
		}
		// keep the response time of unknown logins close to known ones
		_ = cryptox.ComparePassword(s.dummy(), password)
		return nil, common.ErrorUnauthorized
	}

	if err := cryptox.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Error(ctx, "stored password hash unusable", "login", login, "error", err)
		}
		return nil, common.ErrorUnauthorized
	}

	p := Principal{ID: user.ID, Login: user.Login, Role: user.Role}
	if s.cache != nil {
		s.cache.Add(key, p)
	}
	return &p, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword([]byte("seedclassifier"))
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// CreateUser hashes password and stores a new account.
func (s *UserService) CreateUser(ctx context.Context, login string, password []byte, name string, role string, creatorID *int64) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, fmt.Errorf("%w: login is empty", common.ErrorValidation)
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Login:        login,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         r,
		CreatorID:    creatorID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates an admin account unless login already exists.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, login string, password []byte) (bool, error) {
	_, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, login)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, common.ErrorNotFound):
		return false, err
	}

	if _, err := s.CreateUser(ctx, login, password, "", string(models.RoleAdmin), nil); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info(ctx, "admin account created", "login", login)
	return true, nil
}

// SetPassword replaces the password of login and drops cached verifications.
func (s *UserService) SetPassword(ctx context.Context, login string, password []byte) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).SetPassword(ctx, login, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return nil
}

// ListUsers returns every account ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

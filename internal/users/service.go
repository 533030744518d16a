package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskcompass/internal/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store is the durable backend behind the account list.
type Store interface {
	LoadUsers(ctx context.Context) ([]model.UserAccount, error)
	SaveUsers(ctx context.Context, accounts []model.UserAccount) error
}

// Service keeps the account list in memory, mirroring the task store: local
// snapshot is authoritative, persistence is best effort.
type Service struct {
	mu       sync.RWMutex
	store    Store
	accounts []model.UserAccount
	now      func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Refresh reloads the account list; a failed load keeps the cached snapshot.
func (s *Service) Refresh(ctx context.Context) []model.UserAccount {
	loaded, err := s.store.LoadUsers(ctx)
	if err != nil {
		log.Printf("user refresh failed, keeping cached snapshot: %v", err)
		return s.Snapshot()
	}
	s.mu.Lock()
	s.accounts = loaded
	s.mu.Unlock()
	return s.Snapshot()
}

// EnsureAdmin seeds the canonical administrator account when absent.
func (s *Service) EnsureAdmin(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.UID == model.AdminUID {
			return nil
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	s.accounts = append(s.accounts, model.UserAccount{
		UID:            model.AdminUID,
		Username:       "admin",
		DisplayName:    "Administrator",
		Email:          "admin@taskcompass.com",
		Role:           model.RoleAdmin,
		HashedPassword: string(hash),
		CreatedAt:      s.now(),
	})
	s.persistLocked(ctx)
	return nil
}

// Snapshot returns a copy of all accounts.
func (s *Service) Snapshot() []model.UserAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.UserAccount(nil), s.accounts...)
}

// Lookup resolves a uid; satisfies notify.Directory.
func (s *Service) Lookup(uid string) (*model.UserAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.accounts {
		if s.accounts[i].UID == uid {
			a := s.accounts[i]
			return &a, true
		}
	}
	return nil, false
}

// Authenticate checks a username/password pair. The mocked Google popup of
// the original app reduces to the same credential check here.
func (s *Service) Authenticate(username, password string) (*model.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.accounts {
		a := s.accounts[i]
		if a.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(a.HashedPassword), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return &a, nil
	}
	return nil, ErrInvalidCredentials
}

// Input carries the fields for a new account.
type Input struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
	Role        model.Role
	PhotoURL    string
}

// Register creates a regular account; open to anyone (the sign-in flow).
func (s *Service) Register(ctx context.Context, in Input) (model.UserAccount, error) {
	in.Role = model.RoleUser
	return s.create(ctx, in)
}

// Create adds an account on behalf of an administrator, role included.
func (s *Service) Create(ctx context.Context, actor *model.UserAccount, in Input) (model.UserAccount, error) {
	if !actor.IsAdmin() {
		return model.UserAccount{}, ErrPermissionDenied
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in Input) (model.UserAccount, error) {
	if in.Username == "" || in.Password == "" {
		return model.UserAccount{}, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.UserAccount{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == in.Username {
			return model.UserAccount{}, ErrUserExists
		}
	}
	account := model.UserAccount{
		UID:            uuid.NewString(),
		Username:       in.Username,
		DisplayName:    in.DisplayName,
		Email:          in.Email,
		Role:           in.Role,
		HashedPassword: string(hash),
		PhotoURL:       in.PhotoURL,
		CreatedAt:      s.now(),
	}
	if account.DisplayName == "" {
		account.DisplayName = in.Username
	}
	s.accounts = append(s.accounts, account)
	s.persistLocked(ctx)
	return account, nil
}

// Delete removes an account. Admin only; the canonical admin is undeletable.
func (s *Service) Delete(ctx context.Context, actor *model.UserAccount, uid string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	if uid == model.AdminUID {
		return ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.accounts {
		if a.UID == uid {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			s.persistLocked(ctx)
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *Service) persistLocked(ctx context.Context) {
	out := append([]model.UserAccount(nil), s.accounts...)
	if err := s.store.SaveUsers(ctx, out); err != nil {
		log.Printf("user sync failed, keeping local snapshot: %v", err)
	}
}

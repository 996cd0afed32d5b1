package auth

import (
	"context"
	"testing"

	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	pkgmodels "github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRegisterUserRepo struct {
	data      map[string]*pkgmodels.User
	created   *pkgmodels.User
	createErr error
}

func newStubRegisterUserRepo() *stubRegisterUserRepo {
	return &stubRegisterUserRepo{data: map[string]*pkgmodels.User{}}
}

func (s *stubRegisterUserRepo) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegisterUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := &pkgmodels.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		DisplayName:  dto.DisplayName,
		PasswordHash: dto.PasswordHash,
		Phone:        dto.Phone,
		IsActive:     true,
	}
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

func newRegisterTestService(t *testing.T, repo *stubRegisterUserRepo) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return repo
		},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newStubRegisterUserRepo()
	svc := newRegisterTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		DisplayName: "Jamie Rivera",
		Email:       "New@Example.com",
		Password:    "Secret123!",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if repo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if repo.created.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %q", repo.created.Email)
	}
	if resp.User == nil || resp.User.ID != repo.created.ID {
		t.Fatalf("expected response to carry the created user")
	}

	valid, err := security.VerifyPassword("Secret123!", repo.created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("expected stored hash to verify, valid=%v err=%v", valid, err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubRegisterUserRepo()
	repo.data["taken@example.com"] = &pkgmodels.User{ID: uuid.New(), Email: "taken@example.com"}
	svc := newRegisterTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		DisplayName: "Dup",
		Email:       "taken@example.com",
		Password:    "Secret123!",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("expected no user creation on duplicate email")
	}
}

func TestRegisterRequiresDisplayName(t *testing.T) {
	svc := newRegisterTestService(t, newStubRegisterUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		DisplayName: "   ",
		Email:       "blank@example.com",
		Password:    "Secret123!",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

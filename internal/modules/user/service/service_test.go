package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/user/dto"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*model.User
	roles map[string]*model.Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: map[string]*model.User{},
		roles: map[string]*model.Role{
			"admin":    {ID: 1, Name: "admin"},
			"apoteker": {ID: 2, Name: "apoteker"},
			"kasir":    {ID: 3, Name: "kasir"},
		},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetAll(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) FindByRole(ctx context.Context, roleName string) ([]model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	r, ok := f.roles[name]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return r, nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@apotek.local",
		PasswordHash: string(hash),
		IsActive:     active,
		Role:         model.Role{ID: 3, Name: "kasir"},
	}
	repo.users[username] = user
	return user
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "kasir1", "rahasia123", true)

	svc := NewUserService(repo)
	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "kasir1", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(resp.Token, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token failed verification: %v", err)
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	if claims.Subject != user.ID.String() {
		t.Errorf("token subject = %q, want user ID %s", claims.Subject, user.ID)
	}
	if resp.User.Role != "kasir" {
		t.Errorf("response role = %q, want kasir", resp.User.Role)
	}
}

func TestLoginRejections(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "kasir1", "rahasia123", true)
	seedUser(t, repo, "bekas", "rahasia123", false)

	svc := NewUserService(repo)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "kasir1", "salah"},
		{"unknown user", "siapa", "rahasia123"},
		{"deactivated user", "bekas", "rahasia123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), dto.LoginRequest{Username: tt.username, Password: tt.password})
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Errorf("error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestCreateUserAssignsRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "apt1",
		Email:    "apt1@apotek.local",
		FullName: "Apoteker Satu",
		Password: "rahasia123",
		Role:     "apoteker",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Role.Name != "apoteker" {
		t.Errorf("role = %q, want apoteker", user.Role.Name)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
	if user.PasswordHash == "rahasia123" {
		t.Error("password stored in plain text")
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "x", Email: "x@x", Password: "rahasia123", Role: "dokter",
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Errorf("error = %v, want ErrBadRequest", err)
	}
}

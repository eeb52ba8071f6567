package service

import (
	"context"
	"os"
	"strconv"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/user/dto"
	"anoa.com/apotekpos/internal/modules/user/repository"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
}

type UserAdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserRequest) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetAllUsers(ctx context.Context, limit, offset int) ([]model.User, int64, error)
}

type UserService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewUserService(repo repository.UserRepository) *UserService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := 8 * time.Hour // one shift
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	return &UserService{
		repo:     repo,
		secret:   secret,
		tokenTTL: ttl,
	}
}

func (s *UserService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, apperror.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: signed,
		User: dto.UserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role.Name,
		},
	}, nil
}

func (s *UserService) CreateUser(ctx context.Context, input dto.CreateUserRequest) (*model.User, error) {
	role, err := s.repo.GetRoleByName(ctx, input.Role)
	if err != nil {
		return nil, apperror.New(400, "unknown role", apperror.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: string(hash),
		RoleID:       &role.ID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = *role
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != nil {
		role, err := s.repo.GetRoleByName(ctx, *input.Role)
		if err != nil {
			return nil, apperror.New(400, "unknown role", apperror.ErrBadRequest)
		}
		user.RoleID = &role.ID
		user.Role = *role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	return s.repo.GetAll(ctx, limit, offset)
}

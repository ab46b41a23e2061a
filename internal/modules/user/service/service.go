package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/user/dto"
	"newera.app/reentry/internal/modules/user/repository"
	"newera.app/reentry/pkg/apperror"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login accepts either the username or the email address.
func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	var (
		user *entity.User
		err  error
	)
	if strings.Contains(input.Login, "@") {
		user, err = s.repo.FindByEmail(ctx, input.Login)
	} else {
		user, err = s.repo.FindByUsername(ctx, input.Login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", apperror.ErrUnauthorized)
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

type AdminService interface {
	RegisterUser(ctx context.Context, input dto.RegisterUserInput) (*entity.User, error)
	ListStaff(ctx context.Context) (*dto.StaffListResponse, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type adminService struct {
	repo repository.UserRepository
}

func NewAdminService(repo repository.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) RegisterUser(ctx context.Context, input dto.RegisterUserInput) (*entity.User, error) {
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.New(http.StatusBadRequest, "username already taken", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.New(http.StatusBadRequest, "email already registered", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Phone:        input.Phone,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  input.UserType == dto.UserTypeAdmin,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *adminService) ListStaff(ctx context.Context) (*dto.StaffListResponse, error) {
	admins, err := s.repo.FindStaff(ctx, true)
	if err != nil {
		return nil, err
	}
	staff, err := s.repo.FindStaff(ctx, false)
	if err != nil {
		return nil, err
	}
	return &dto.StaffListResponse{Admins: admins, Staff: staff}, nil
}

func (s *adminService) SetActive(ctx context.Context, id string, active bool) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", apperror.ErrBadRequest)
	}

	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s: %w", id, apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

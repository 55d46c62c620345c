package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gra-paradise/patrol-contest-backend/internal/config"
	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"github.com/gra-paradise/patrol-contest-backend/internal/utils"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// ErrInvalidCredentials is returned for any login failure. The reason is
// deliberately not disclosed to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthServiceImpl authenticates operators and issues JWTs for the
// protected contest-management endpoints.
type AuthServiceImpl struct {
	operatorRepo repositories.OperatorRepository
	cfg          *config.Config
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(operatorRepo repositories.OperatorRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{operatorRepo: operatorRepo, cfg: cfg}
}

// Login verifies operator credentials and issues a JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	operator, err := s.operatorRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidCredentials
		}
		slog.Error("Failed to look up operator", "error", err)
		return nil, fmt.Errorf("failed to look up operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateJWT(operator.ID.Hex(), operator.Email, operator.Role, s.cfg)
	if err != nil {
		slog.Error("Failed to sign JWT", "error", err)
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("Operator logged in", "email", operator.Email)
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// EnsureBootstrapOperator seeds the configured operator account on first
// startup so draws are reachable before any account management exists.
func (s *AuthServiceImpl) EnsureBootstrapOperator(ctx context.Context) error {
	if s.cfg.Operator.Email == "" || s.cfg.Operator.Password == "" {
		return nil
	}

	count, err := s.operatorRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Operator.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	operator := &models.Operator{
		Email:    s.cfg.Operator.Email,
		Name:     s.cfg.Operator.Name,
		Password: string(hash),
		Role:     "admin",
	}
	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return fmt.Errorf("failed to create bootstrap operator: %w", err)
	}
	slog.Info("Bootstrap operator created", "email", operator.Email)
	return nil
}

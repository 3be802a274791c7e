package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/auth"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// WorkerSession is the result of a successful console login.
type WorkerSession struct {
	Worker    *domain.WorkerAccount
	Token     string
	ExpiresAt time.Time
}

// WorkerService handles console authentication and account provisioning.
type WorkerService struct {
	workers    repository.WorkerAccountRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewWorkerService constructs the service.
func NewWorkerService(workers repository.WorkerAccountRepository, tokens *auth.TokenManager, bcryptCost int, logger *zap.Logger) *WorkerService {
	return &WorkerService{
		workers:    workers,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login verifies credentials and issues an access token. Invalid email and
// invalid password produce the same error.
func (s *WorkerService) Login(ctx context.Context, email, password string) (*WorkerSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	worker, err := s.workers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !worker.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(worker.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(worker.ID, worker.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("worker login", zap.String("worker_id", worker.ID))
	return &WorkerSession{Worker: worker, Token: token, ExpiresAt: expiresAt}, nil
}

// CreateAccountInput carries a new worker registration.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// CreateAccount provisions a console account. Admin-only at the route.
func (s *WorkerService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.WorkerAccount, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if strings.TrimSpace(input.Name) == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	role := domain.WorkerRole(strings.ToUpper(input.Role))
	if role != domain.WorkerRoleAdmin && role != domain.WorkerRoleOperator {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}

	if _, err := s.workers.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	worker := &domain.WorkerAccount{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}

package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated console worker.
type Principal struct {
	Worker *domain.WorkerAccount
}

// Middleware validates bearer tokens and loads worker principals.
type Middleware struct {
	tokens  *TokenManager
	workers repository.WorkerAccountRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, workers repository.WorkerAccountRepository) *Middleware {
	return &Middleware{tokens: tokens, workers: workers}
}

// Handle enforces authentication for console routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	worker, err := m.workers.GetByID(c.Context(), claims.WorkerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("worker not found")
		}
		return apperrors.MapError(err)
	}
	if !worker.Active {
		return apperrors.NewForbidden("account disabled")
	}

	c.Locals(principalKey, &Principal{Worker: worker})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated worker.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

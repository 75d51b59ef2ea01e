package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// MockJWTService is a fixed-answer auth.JWTService. GenerateToken returns
// Token and TokenErr; ValidateToken returns Claims and ValidateErr.
type MockJWTService struct {
	Token    string
	TokenErr error

	Claims      *auth.Claims
	ValidateErr error
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(context.Context, uuid.UUID, domain.Role) (string, error) {
	return m.Token, m.TokenErr
}

func (m *MockJWTService) ValidateToken(context.Context, string) (*auth.Claims, error) {
	return m.Claims, m.ValidateErr
}

// internal/services/authorization_service.go
package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/shophub-backend/internal/models"
)

// Actor is the verified caller of a request.
type Actor struct {
	UserID uuid.UUID
	Email  string
}

// AuthorizationService answers role questions from the admin allowlist. The
// allowlist is parsed once and never mutated, so the service is safe to share.
type AuthorizationService struct {
	admins map[string]struct{}
}

func NewAuthorizationService(adminEmails string) *AuthorizationService {
	admins := make(map[string]struct{})
	for _, email := range strings.Split(adminEmails, ",") {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &AuthorizationService{admins: admins}
}

// IsAdmin fails closed: an empty email or an empty allowlist is never admin.
func (s *AuthorizationService) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	_, ok := s.admins[email]
	return ok
}

// IsActorAdmin requires an authenticated user id as well as an allowlisted email.
func (s *AuthorizationService) IsActorAdmin(actor Actor) bool {
	return actor.UserID != uuid.Nil && s.IsAdmin(actor.Email)
}

// CanManageOrder allows the owning user and administrators.
func (s *AuthorizationService) CanManageOrder(actor Actor, order *models.Order) bool {
	if actor.UserID == uuid.Nil {
		return false
	}
	return order.UserID == actor.UserID || s.IsActorAdmin(actor)
}

func (s *AuthorizationService) AdminCount() int {
	return len(s.admins)
}

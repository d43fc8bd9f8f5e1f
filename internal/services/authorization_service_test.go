package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/shophub-backend/internal/models"
)

func TestIsAdminCaseInsensitive(t *testing.T) {
	authz := NewAuthorizationService(" Owner@Shop.com , ops@shop.com,,")

	assert.True(t, authz.IsAdmin("owner@shop.com"))
	assert.True(t, authz.IsAdmin("OPS@SHOP.COM"))
	assert.False(t, authz.IsAdmin("someone@shop.com"))
	assert.False(t, authz.IsAdmin(""))
	assert.Equal(t, 2, authz.AdminCount())
}

func TestEmptyAllowlistFailsClosed(t *testing.T) {
	authz := NewAuthorizationService("")

	assert.False(t, authz.IsAdmin("owner@shop.com"))
	assert.False(t, authz.IsActorAdmin(Actor{UserID: uuid.New(), Email: "owner@shop.com"}))
	assert.Zero(t, authz.AdminCount())
}

func TestCanManageOrder(t *testing.T) {
	authz := NewAuthorizationService("admin@shop.com")
	owner := uuid.New()
	order := &models.Order{UserID: owner}

	assert.True(t, authz.CanManageOrder(Actor{UserID: owner, Email: "buyer@shop.com"}, order))
	assert.True(t, authz.CanManageOrder(Actor{UserID: uuid.New(), Email: "admin@shop.com"}, order))
	assert.False(t, authz.CanManageOrder(Actor{UserID: uuid.New(), Email: "other@shop.com"}, order))
	assert.False(t, authz.CanManageOrder(Actor{Email: "admin@shop.com"}, order))
}

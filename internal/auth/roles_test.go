package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/trust-safety/pkg/common"
)

func TestParseRoleDegradesUnknownToUser(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleModerator, ParseRole("moderator"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUser, ParseRole("superuser"))
	assert.Equal(t, RoleUser, ParseRole(""))
}

func TestRequireOrdersRoles(t *testing.T) {
	moderator := Actor{ID: uuid.New(), Role: RoleModerator}

	require.NoError(t, Require(moderator, RoleUser))
	require.NoError(t, Require(moderator, RoleModerator))

	err := Require(moderator, RoleAdmin)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindForbidden))
}

func TestRequireRejectsMissingIdentity(t *testing.T) {
	err := Require(Actor{Role: RoleAdmin}, RoleUser)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindUnauthorized))
}

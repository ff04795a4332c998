package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRankOrdering(t *testing.T) {
	public, err := AccessRank(AccessPublic)
	require.NoError(t, err)
	partner, err := AccessRank(AccessPartner)
	require.NoError(t, err)
	internal, err := AccessRank(AccessInternal)
	require.NoError(t, err)
	admin, err := AccessRank(AccessAdmin)
	require.NoError(t, err)

	assert.Equal(t, 0, public)
	assert.True(t, public < partner && partner < internal && internal < admin)
	assert.Equal(t, NumAccessLevels-1, admin)
}

func TestAccessRankUnknownLevel(t *testing.T) {
	_, err := AccessRank("confidential")
	assert.Error(t, err)
	assert.False(t, ValidAccessLevel("confidential"))
	assert.True(t, ValidAccessLevel(AccessInternal))
}

func TestChunkIDLayout(t *testing.T) {
	docID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "11111111-2222-3333-4444-555555555555_0", ChunkID(docID, 0))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555_17", ChunkID(docID, 17))
}

func TestRoleAccessRank(t *testing.T) {
	assert.Equal(t, 1, RoleAccessRank(RolePartner))
	assert.Equal(t, 2, RoleAccessRank(RoleInternal))
	assert.Equal(t, 3, RoleAccessRank(RoleAdmin))

	// Unknown and empty roles get the least privileged authenticated rank.
	assert.Equal(t, 1, RoleAccessRank("contractor"))
	assert.Equal(t, 1, RoleAccessRank(""))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleInternal}).IsAdmin())

	var missing *User
	assert.False(t, missing.IsAdmin())
}

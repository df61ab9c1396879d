package system

import (
	"encoding/json"
	"testing"

	"orrery-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeOwnerAllowsOwner(t *testing.T) {
	sys := &System{ID: 3, UserID: 42}

	require.NoError(t, AuthorizeOwner(42, sys))
}

func TestAuthorizeOwnerRejectsOtherUser(t *testing.T) {
	sys := &System{ID: 3, UserID: 42}

	err := AuthorizeOwner(7, sys)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetType(err))
}

func TestSystemPatchIsEmpty(t *testing.T) {
	var empty SystemPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.IsEmpty())

	var named SystemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Trappist-1"}`), &named))
	assert.False(t, named.IsEmpty())
}

func TestSystemPatchUnknownKeysDoNotCount(t *testing.T) {
	var patch SystemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"bogus": 1}`), &patch))

	assert.True(t, patch.IsEmpty())
}

func TestSystemPatchNullThumbnailIsPresent(t *testing.T) {
	var patch SystemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"thumbnail_url": null}`), &patch))

	assert.False(t, patch.IsEmpty())
	assert.True(t, patch.ThumbnailURLSet)
	assert.Nil(t, patch.ThumbnailURL)
}

func TestStarPatchIsEmpty(t *testing.T) {
	var empty StarPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.IsEmpty())

	var massive StarPatch
	require.NoError(t, json.Unmarshal([]byte(`{"mass_solar": 0.08}`), &massive))
	assert.False(t, massive.IsEmpty())
}

func TestStarPatchNullThumbnailIsPresent(t *testing.T) {
	var patch StarPatch
	require.NoError(t, json.Unmarshal([]byte(`{"thumbnail_url": null}`), &patch))

	assert.False(t, patch.IsEmpty())
	assert.True(t, patch.ThumbnailURLSet)
	assert.Nil(t, patch.ThumbnailURL)
}

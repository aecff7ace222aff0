package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair("bbb", "aaa")
	assert.Equal(t, "aaa", a)
	assert.Equal(t, "bbb", b)

	a, b = CanonicalPair("aaa", "bbb")
	assert.Equal(t, "aaa", a)
	assert.Equal(t, "bbb", b)
}

func TestEnsureConversation_Idempotent(t *testing.T) {
	db := newTestDB(t)

	first, err := EnsureConversation(db, "user-b", "user-a")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, "user-a", first.User1ID)
	assert.Equal(t, "user-b", first.User2ID)

	// Repeated calls, in either argument order, resolve to the same row.
	second, err := EnsureConversation(db, "user-a", "user-b")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, err := EnsureConversation(db, "user-b", "user-a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	var count int64
	require.NoError(t, db.Model(&Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureConversation_DistinctPairs(t *testing.T) {
	db := newTestDB(t)

	ab, err := EnsureConversation(db, "user-a", "user-b")
	require.NoError(t, err)
	ac, err := EnsureConversation(db, "user-a", "user-c")
	require.NoError(t, err)

	assert.NotEqual(t, ab.ID, ac.ID)

	var count int64
	require.NoError(t, db.Model(&Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestFindConversation_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := FindConversation(db, "user-a", "user-b")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = EnsureConversation(db, "user-a", "user-b")
	require.NoError(t, err)

	found, err := FindConversation(db, "user-b", "user-a")
	require.NoError(t, err)
	assert.Equal(t, "user-a", found.User1ID)
}

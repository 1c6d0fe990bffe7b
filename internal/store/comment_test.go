package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/backend/internal/models"
)

func TestCommentCreateSnapshotsAuthor(t *testing.T) {
	db, _, comments := newStores(t)
	carol := seedUser(t, db, "Carol", "https://img.example.com/carol.png")

	comment, err := comments.Create(1, carol.ID, "first!")
	require.NoError(t, err)
	assert.Equal(t, "Carol", comment.AuthorName)
	require.NotNil(t, comment.AuthorImage)
	assert.Equal(t, "https://img.example.com/carol.png", *comment.AuthorImage)
	assert.Equal(t, 0, comment.LikeCount)
}

func TestCommentCreateWithoutPost(t *testing.T) {
	db, _, comments := newStores(t)
	carol := seedUser(t, db, "Carol", "")

	// No existence check on the post: commenting into the void succeeds.
	comment, err := comments.Create(9999, carol.ID, "anyone here?")
	require.NoError(t, err)
	assert.Equal(t, uint(9999), comment.PostID)

	listed, err := comments.ListForPost(9999)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "anyone here?", listed[0].Content)
}

func TestCommentCreateUnknownAuthor(t *testing.T) {
	_, _, comments := newStores(t)

	comment, err := comments.Create(1, uuid.New().String(), "hello")
	require.NoError(t, err)
	assert.Equal(t, AnonymousName, comment.AuthorName)
	assert.Nil(t, comment.AuthorImage)
}

func TestListForPostNewestFirst(t *testing.T) {
	db, _, comments := newStores(t)
	carol := seedUser(t, db, "Carol", "")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 3; i++ {
		comment, err := comments.Create(7, carol.ID, "c")
		require.NoError(t, err)
		ids = append(ids, comment.ID)
		require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", comment.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	// A comment on another post must not leak in.
	_, err := comments.Create(8, carol.ID, "elsewhere")
	require.NoError(t, err)

	listed, err := comments.ListForPost(7)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, ids[2], listed[0].ID)
	assert.Equal(t, ids[1], listed[1].ID)
	assert.Equal(t, ids[0], listed[2].ID)
}

func TestCountForPost(t *testing.T) {
	db, _, comments := newStores(t)
	carol := seedUser(t, db, "Carol", "")

	count, err := comments.CountForPost(7)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 3; i++ {
		_, err := comments.Create(7, carol.ID, "c")
		require.NoError(t, err)
	}
	count, err = comments.CountForPost(7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCommentToggleLikeReturnsFreshCount(t *testing.T) {
	db, _, comments := newStores(t)
	carol := seedUser(t, db, "Carol", "")
	comment, err := comments.Create(7, carol.ID, "c")
	require.NoError(t, err)

	liked, count, err := comments.ToggleLike(comment.ID, "u1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = comments.ToggleLike(comment.ID, "u2")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 2, count)

	liked, count, err = comments.ToggleLike(comment.ID, "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, count)
}

func TestCommentToggleLikeMissingComment(t *testing.T) {
	_, _, comments := newStores(t)
	_, _, err := comments.ToggleLike(4242, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLikesForProjection(t *testing.T) {
	db, _, comments := newStores(t)
	carol := seedUser(t, db, "Carol", "")
	comment, err := comments.Create(7, carol.ID, "c")
	require.NoError(t, err)

	_, _, err = comments.ToggleLike(comment.ID, "u1")
	require.NoError(t, err)
	_, _, err = comments.ToggleLike(comment.ID, "u2")
	require.NoError(t, err)

	count, likes, err := comments.LikesFor(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, likes, 2)
	assert.Equal(t, "u1", likes[0].UserID)
	assert.Equal(t, "u2", likes[1].UserID)

	// A missing comment projects as empty, not as an error.
	count, likes, err = comments.LikesFor(4242)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, likes)
}

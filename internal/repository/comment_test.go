package repository

import (
	"context"
	"testing"

	"analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateAndList(t *testing.T) {
	store, fx, _ := setupStore(t)
	ctx := context.Background()

	alice := fx.User("Alice")
	bob := fx.User("Bob")
	post := fx.Post(alice, "Hello", 0)
	older := fx.Comment(post, alice, "first!", 1)

	c := &models.Comment{PostID: post.ID, UserID: bob.ID, Content: "Nice!", CreatedAt: fx.At(5)}
	require.NoError(t, store.Comments.Create(ctx, c))
	require.NotZero(t, c.ID)

	comments, err := store.Comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, c.ID, comments[0].ID)
	assert.Equal(t, "Bob", comments[0].UserName)
	assert.Equal(t, "Nice!", comments[0].Content)
	assert.Equal(t, older.ID, comments[1].ID)
	assert.Equal(t, "Alice", comments[1].UserName)

	none, err := store.Comments.ListByPost(ctx, post.ID+1)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCommentRepository_Create_MissingPost(t *testing.T) {
	store, fx, _ := setupStore(t)
	bob := fx.User("Bob")

	err := store.Comments.Create(context.Background(), &models.Comment{PostID: 77, UserID: bob.ID, Content: "hi"})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestActivitySources_OwnerScoped(t *testing.T) {
	store, fx, _ := setupStore(t)
	ctx := context.Background()

	alice := fx.User("Alice")
	bob := fx.User("Bob")
	carol := fx.User("Carol")
	alicePost := fx.Post(alice, "Hello", 0)
	carolPost := fx.Post(carol, "Elsewhere", 0)

	fx.Comment(alicePost, bob, "Nice!", 1)
	fx.Comment(alicePost, carol, "Agreed", 3)
	fx.Comment(carolPost, bob, "Not on Alice's post", 4)
	fx.Like(alicePost, bob, 2)
	fx.Like(carolPost, bob, 5)

	comments, err := store.Comments.ListActivityForOwner(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, models.ActivityTypeComment, comments[0].Type)
	assert.Equal(t, "Carol", comments[0].ActorName)
	assert.Equal(t, "Agreed", comments[0].CommentText)
	assert.Equal(t, "Hello", comments[0].PostTitle)
	assert.True(t, comments[0].CreatedAt.Equal(fx.At(3)))
	assert.Equal(t, "Bob", comments[1].ActorName)

	limited, err := store.Comments.ListActivityForOwner(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Carol", limited[0].ActorName)

	likes, err := store.Likes.ListActivityForOwner(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, models.ActivityTypeLike, likes[0].Type)
	assert.Equal(t, "Bob", likes[0].ActorName)
	assert.Equal(t, "Hello", likes[0].PostTitle)
	assert.Empty(t, likes[0].CommentText)

	nobody := fx.User("Nobody")
	empty, err := store.Likes.ListActivityForOwner(ctx, nobody.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"analytics/internal/geo"
	"analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geoServer returns a geo client pointed at a stub upstream, plus a counter of upstream calls.
func geoServer(t *testing.T, body string) (*geo.Client, *int32) {
	t.Helper()

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(upstream.Close)

	client := geo.NewClient(geo.Config{
		Enabled:  true,
		Endpoint: upstream.URL + "/%s/json/",
		Timeout:  2 * time.Second,
	})
	return client, &calls
}

func TestGetPosts_IncludesAuthorAndCounts(t *testing.T) {
	app, _, fx := newTestApp(t, nil)
	author := fx.User("Prajwal")
	older := fx.Post(author, "First", 0)
	newer := fx.Post(author, "Second", 10)
	fan := []*models.User{fx.User("A"), fx.User("B")}
	for i, u := range fan {
		fx.Like(newer, u, 11+i)
	}
	for i := 0; i < 3; i++ {
		fx.Comment(newer, fan[0], fmt.Sprintf("c%d", i), 20+i)
	}

	var posts []models.Post
	require.Equal(t, http.StatusOK, get(t, app, "/api/posts", &posts))
	require.Len(t, posts, 2)

	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, "Prajwal", posts[0].AuthorName)
	assert.EqualValues(t, 2, posts[0].LikeCount)
	assert.EqualValues(t, 3, posts[0].CommentCount)

	assert.Equal(t, older.ID, posts[1].ID)
	assert.Zero(t, posts[1].LikeCount)
	assert.Zero(t, posts[1].CommentCount)
}

func TestGetPost(t *testing.T) {
	app, _, fx := newTestApp(t, nil)
	post := fx.Post(fx.User("Prajwal"), "Hello", 0)

	var got models.Post
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/posts/%d", post.ID), &got))
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "Prajwal", got.AuthorName)

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, get(t, app, "/api/posts/9999", &errBody))
	assert.Equal(t, models.CodeNotFound, errBody.Code)

	errBody = models.ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/posts/abc", &errBody))
	assert.Equal(t, "Invalid ID", errBody.Error)

	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/posts/0", nil))
}

func TestCreateComment(t *testing.T) {
	app, db, fx := newTestApp(t, nil)
	post := fx.Post(fx.User("Prajwal"), "Hello", 0)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "Success",
			body:           map[string]interface{}{"post_id": post.ID, "user_name": "  Bob  ", "text": " Nice! "},
			expectedStatus: http.StatusCreated,
			expectedUser:   "Bob",
		},
		{
			name:           "Anonymous when name omitted",
			body:           map[string]interface{}{"post_id": post.ID, "text": "hi"},
			expectedStatus: http.StatusCreated,
			expectedUser:   models.AnonymousName,
		},
		{
			name:           "Blank text",
			body:           map[string]interface{}{"post_id": post.ID, "user_name": "Bob", "text": "   "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing text",
			body:           map[string]interface{}{"post_id": post.ID},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing post_id",
			body:           map[string]interface{}{"text": "hi"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Wrong post_id type",
			body:           map[string]interface{}{"post_id": "one", "text": "hi"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown post",
			body:           map[string]interface{}{"post_id": 9999, "user_name": "Carol", "text": "hi"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			status := doJSON(t, app, http.MethodPost, "/api/comments", tt.body, &got)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, tt.expectedUser, got["user_name"])
				assert.EqualValues(t, post.ID, got["post_id"])
				assert.NotEmpty(t, got["content"])
				assert.NotContains(t, got, "updated_at")
			} else {
				assert.NotEmpty(t, got["error"])
			}
		})
	}

	// The failed comment on an unknown post must not leave its user behind.
	var carol int64
	require.NoError(t, db.Model(&models.User{}).Where("name = ?", "Carol").Count(&carol).Error)
	assert.Zero(t, carol)
}

func TestGetComments(t *testing.T) {
	app, _, fx := newTestApp(t, nil)
	post := fx.Post(fx.User("Prajwal"), "Hello", 0)
	bob := fx.User("Bob")
	fx.Comment(post, bob, "first", 1)
	fx.Comment(post, bob, "second", 2)

	var comments []models.Comment
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/comments?post_id=%d", post.ID), &comments))
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "Bob", comments[0].UserName)

	comments = nil
	require.Equal(t, http.StatusOK, get(t, app, "/api/comments?post_id=9999", &comments))
	assert.Empty(t, comments)

	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/comments", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/comments?post_id=-1", nil))
}

func TestLikes(t *testing.T) {
	app, db, fx := newTestApp(t, nil)
	post := fx.Post(fx.User("Prajwal"), "Hello", 0)

	var first, second map[string]interface{}
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodPost, "/api/likes",
		map[string]interface{}{"post_id": post.ID, "user_name": "Bob"}, &first))
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodPost, "/api/likes",
		map[string]interface{}{"post_id": post.ID, "user_name": " Bob "}, &second))
	assert.Equal(t, "ok", first["status"])
	assert.Equal(t, first["id"], second["id"])

	var count map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/likes/count?post_id=%d", post.ID), &count))
	assert.EqualValues(t, post.ID, count["post_id"])
	assert.EqualValues(t, 1, count["likes"])

	var liked map[string]bool
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/likes/has-liked?post_id=%d&user_name=Bob", post.ID), &liked))
	assert.True(t, liked["liked"])

	liked = nil
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/likes/has-liked?post_id=%d&user_name=Stranger", post.ID), &liked))
	assert.False(t, liked["liked"])

	liked = nil
	require.Equal(t, http.StatusOK, get(t, app, "/api/likes/has-liked", &liked))
	assert.False(t, liked["liked"])

	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/likes/has-liked?post_id=x", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, app, http.MethodPost, "/api/likes",
		map[string]interface{}{"post_id": 9999, "user_name": "Bob"}, nil))
	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/likes/count", nil))

	var strangers int64
	require.NoError(t, db.Model(&models.User{}).Where("name = ?", "Stranger").Count(&strangers).Error)
	assert.Zero(t, strangers)
}

func TestTrackView_LoopbackStoresNullGeo(t *testing.T) {
	locator, calls := geoServer(t, `{"city":"Nowhere"}`)
	app, _, fx := newTestApp(t, locator)
	owner := fx.User("Prajwal")

	var view map[string]interface{}
	status := doJSON(t, app, http.MethodPost, "/api/track-view",
		map[string]interface{}{"profile_owner_id": owner.ID}, &view,
		"X-Forwarded-For", "127.0.0.1")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, models.AnonymousName, view["viewer_name"])
	assert.Equal(t, "127.0.0.1", view["ip_address"])
	for _, field := range []string{"city", "region", "country", "latitude", "longitude"} {
		assert.Contains(t, view, field)
		assert.Nil(t, view[field], field)
	}
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestTrackView_ForwardedPublicAddressIsEnriched(t *testing.T) {
	locator, calls := geoServer(t, `{"city":"Berlin","region":"Berlin","country_name":"Germany","latitude":52.52,"longitude":13.4}`)
	app, _, fx := newTestApp(t, locator)
	owner := fx.User("Prajwal")

	var view models.ProfileView
	status := doJSON(t, app, http.MethodPost, "/api/track-view",
		map[string]interface{}{"profile_owner_id": owner.ID, "user_name": "Visitor"}, &view,
		"X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "203.0.113.9", view.IPAddress)
	assert.Equal(t, "Visitor", view.ViewerName)
	require.NotNil(t, view.City)
	assert.Equal(t, "Berlin", *view.City)
	require.NotNil(t, view.Country)
	assert.Equal(t, "Germany", *view.Country)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestTrackView_Errors(t *testing.T) {
	app, _, _ := newTestApp(t, nil)

	assert.Equal(t, http.StatusNotFound, doJSON(t, app, http.MethodPost, "/api/track-view",
		map[string]interface{}{"profile_owner_id": 9999}, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, app, http.MethodPost, "/api/track-view",
		map[string]interface{}{"profile_owner_id": 0}, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, app, http.MethodPost, "/api/track-view",
		map[string]interface{}{}, nil))
}

func TestDashboardViews(t *testing.T) {
	app, _, fx := newTestApp(t, nil)
	owner := fx.User("Prajwal")
	other := fx.User("Other")
	visitor := fx.User("Visitor")
	for i := 0; i < 7; i++ {
		fx.View(owner, visitor, i)
	}
	fx.View(other, visitor, 100)

	var views []models.ProfileView
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/dashboard/views?user_id=%d", owner.ID), &views))
	require.Len(t, views, 5)
	for i := 1; i < len(views); i++ {
		assert.False(t, views[i].CreatedAt.After(views[i-1].CreatedAt))
	}
	for _, v := range views {
		assert.Equal(t, owner.ID, v.ProfileOwnerID)
	}

	views = nil
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/dashboard/views?user_id=%d&limit=2", owner.ID), &views))
	assert.Len(t, views, 2)

	for _, q := range []string{"", "?user_id=0", "?user_id=1&limit=0", "?user_id=1&limit=51", "?user_id=1&limit=x"} {
		assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/dashboard/views"+q, nil), q)
	}
}

func TestDashboardActivities_ValidatesLimit(t *testing.T) {
	app, _, _ := newTestApp(t, nil)

	var activities []models.Activity
	require.Equal(t, http.StatusOK, get(t, app, "/api/dashboard/activities?user_id=42", &activities))
	assert.Empty(t, activities)

	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/dashboard/activities?user_id=42&limit=51", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/dashboard/activities", nil))
}

func TestGetUser(t *testing.T) {
	app, _, fx := newTestApp(t, nil)
	user := fx.User("Prajwal")

	var got models.User
	require.Equal(t, http.StatusOK, get(t, app, fmt.Sprintf("/api/users/%d", user.ID), &got))
	assert.Equal(t, "Prajwal", got.Name)

	assert.Equal(t, http.StatusNotFound, get(t, app, "/api/users/9999", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, app, "/api/users/zero", nil))
}

// Alice writes a post, Bob comments then likes it, and Alice's dashboard shows both.
func TestScenario_AliceAndBob(t *testing.T) {
	app, _, fx := newTestApp(t, nil)
	alice := fx.User("Alice")
	post := fx.Post(alice, "Hello", 0)

	require.Equal(t, http.StatusCreated, doJSON(t, app, http.MethodPost, "/api/comments",
		map[string]interface{}{"post_id": post.ID, "user_name": "Bob", "text": "Nice!"}, nil))
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodPost, "/api/likes",
		map[string]interface{}{"post_id": post.ID, "user_name": "Bob"}, nil))

	var posts []models.Post
	require.Equal(t, http.StatusOK, get(t, app, "/api/posts", &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "Alice", posts[0].AuthorName)
	assert.EqualValues(t, 1, posts[0].LikeCount)
	assert.EqualValues(t, 1, posts[0].CommentCount)

	var activities []models.Activity
	require.Equal(t, http.StatusOK, get(t, app,
		fmt.Sprintf("/api/dashboard/activities?user_id=%d&limit=8", alice.ID), &activities))
	require.Len(t, activities, 2)

	assert.Equal(t, models.ActivityTypeLike, activities[0].ActivityType)
	assert.Equal(t, `Bob liked "Hello"`, activities[0].Message)
	assert.Equal(t, "Bob", activities[0].ViewerName)
	assert.Equal(t, "Hello", activities[0].PostTitle)

	assert.Equal(t, models.ActivityTypeComment, activities[1].ActivityType)
	assert.Equal(t, `Bob commented "Nice!" on "Hello"`, activities[1].Message)
}

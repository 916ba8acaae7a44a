package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFollow(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "author")
	follower := createTestUser(t, db, "follower")

	req := httptest.NewRequest(http.MethodGet, "/profile/author/follow/", nil)
	signIn(t, s, req, follower)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/follow/", resp.Header.Get("Location"))

	var follow models.Follow
	require.NoError(t, db.First(&follow).Error)
	assert.Equal(t, follower.ID, follow.UserID)
	assert.Equal(t, author.ID, follow.AuthorID)
}

func TestProfileFollow_OnePerFollower(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	first := createTestUser(t, db, "first")
	second := createTestUser(t, db, "second")
	follower := createTestUser(t, db, "follower")

	follow := func(username string) {
		req := httptest.NewRequest(http.MethodGet, "/profile/"+username+"/follow/", nil)
		signIn(t, s, req, follower)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	}

	follow("first")
	// The schema allows one follow row per follower: the second follow is a
	// silent no-op and the original relationship survives.
	follow("second")

	var follows []models.Follow
	require.NoError(t, db.Find(&follows).Error)
	require.Len(t, follows, 1)
	assert.Equal(t, first.ID, follows[0].AuthorID)
	_ = second
}

func TestProfileFollow_SelfIsNoOp(t *testing.T) {
	s, app, db := newTestServer(t, nil)
	user := createTestUser(t, db, "narcissus")

	req := httptest.NewRequest(http.MethodGet, "/profile/narcissus/follow/", nil)
	signIn(t, s, req, user)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestProfileUnfollow(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "author")
	follower := createTestUser(t, db, "follower")
	require.NoError(t, db.Create(&models.Follow{
		UserID:   follower.ID,
		AuthorID: author.ID,
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/profile/author/unfollow/", nil)
	signIn(t, s, req, follower)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestProfileUnfollow_NotFollowing(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")

	req := httptest.NewRequest(http.MethodGet, "/profile/author/unfollow/", nil)
	signIn(t, s, req, stranger)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFollowFeed(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "author")
	follower := createTestUser(t, db, "follower")
	outsider := createTestUser(t, db, "outsider")

	createTestPost(t, db, author, "followed content")
	require.NoError(t, db.Create(&models.Follow{
		UserID:   follower.ID,
		AuthorID: author.ID,
	}).Error)

	feed := func(as *models.User) listingResponse {
		req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
		signIn(t, s, req, as)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decodeListing(t, resp)
	}

	followerFeed := feed(follower)
	require.Len(t, followerFeed.Posts, 1)
	assert.Equal(t, "followed content", followerFeed.Posts[0].Text)

	outsiderFeed := feed(outsider)
	assert.Empty(t, outsiderFeed.Posts)
}

func TestFollowFeed_RequiresAuth(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/auth/login/?next=")
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingResponse struct {
	Posts []models.Post   `json:"posts"`
	Page  pagination.Page `json:"page"`
}

func decodeListing(t *testing.T, resp *http.Response) listingResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out listingResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestIndexPagination(t *testing.T) {
	_, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "paginator")
	for i := 0; i < 13; i++ {
		createTestPost(t, db, author, fmt.Sprintf("post %d", i))
	}

	tests := []struct {
		name       string
		query      string
		wantNumber int
		wantLen    int
	}{
		{name: "FirstPageFull", query: "", wantNumber: 1, wantLen: 10},
		{name: "SecondPageRemainder", query: "?page=2", wantNumber: 2, wantLen: 3},
		{name: "PastEndClampsToLast", query: "?page=999", wantNumber: 2, wantLen: 3},
		{name: "ZeroClampsToFirst", query: "?page=0", wantNumber: 1, wantLen: 10},
		{name: "NonNumericFallsBackToFirst", query: "?page=abc", wantNumber: 1, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			out := decodeListing(t, resp)
			assert.Equal(t, tt.wantNumber, out.Page.Number)
			assert.Len(t, out.Posts, tt.wantLen)
			assert.Equal(t, int64(13), out.Page.TotalItems)
		})
	}
}

func TestIndexEmptyListing(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeListing(t, resp)
	assert.Equal(t, 1, out.Page.Number)
	assert.Empty(t, out.Posts)
	assert.False(t, out.Page.HasNext)
	assert.False(t, out.Page.HasPrev)
}

func TestGroupPosts(t *testing.T) {
	_, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "grouper")
	group := &models.Group{Title: "Cats", Slug: "cats", Description: "cat talk"}
	require.NoError(t, db.Create(group).Error)

	inGroup := &models.Post{Text: "in group", AuthorID: &author.ID, GroupID: &group.ID}
	require.NoError(t, db.Create(inGroup).Error)
	createTestPost(t, db, author, "outside group")

	req := httptest.NewRequest(http.MethodGet, "/group/cats/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeListing(t, resp)
	require.Len(t, out.Posts, 1)
	assert.Equal(t, "in group", out.Posts[0].Text)
}

func TestGroupPosts_UnknownSlug(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/group/missing/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostDetail_NotFound(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/999/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/create/",
		strings.NewReader("text=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape("/create/"),
		resp.Header.Get("Location"))
}

func TestCreatePost_Success(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "writer")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, db.Create(group).Error)

	form := url.Values{}
	form.Set("text", "my first post")
	form.Set("group", fmt.Sprintf("%d", group.ID))
	req := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signIn(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/writer/", resp.Header.Get("Location"))

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "my first post", post.Text)
	require.NotNil(t, post.AuthorID)
	assert.Equal(t, author.ID, *post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
}

func TestCreatePost_EmptyTextRedisplaysForm(t *testing.T) {
	s, app, db := newTestServer(t, nil)
	author := createTestUser(t, db, "writer")

	req := httptest.NewRequest(http.MethodPost, "/create/",
		strings.NewReader("text="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signIn(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// A failed submission is a redisplayed page, not a redirect.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Errors, "text")

	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestEditPost_NonAuthorSilentRedirect(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "bystander")
	post := createTestPost(t, db, author, "original text")

	form := url.Values{}
	form.Set("text", "hijacked")
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/posts/%d/edit/", post.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signIn(t, s, req, other)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "original text", reloaded.Text)
}

func TestEditPost_AuthorCanEdit(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "before")

	form := url.Values{}
	form.Set("text", "after")
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/posts/%d/edit/", post.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signIn(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "after", reloaded.Text)
}

func TestProfileFollowingFlag(t *testing.T) {
	s, app, db := newTestServer(t, nil)

	author := createTestUser(t, db, "author")
	follower := createTestUser(t, db, "follower")
	viewer := createTestUser(t, db, "viewer")

	require.NoError(t, db.Create(&models.Follow{
		UserID:   follower.ID,
		AuthorID: author.ID,
	}).Error)

	get := func(as *models.User) bool {
		req := httptest.NewRequest(http.MethodGet, "/profile/author/", nil)
		if as != nil {
			signIn(t, s, req, as)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out struct {
			Following bool `json:"following"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		return out.Following
	}

	// The flag reflects whether the author has any follower at all: a
	// signed-in viewer who does not follow the author sees true, and so
	// does an anonymous one.
	assert.True(t, get(viewer))
	assert.True(t, get(follower))
	assert.True(t, get(nil))
}

func TestProfileFollowingFlag_NoFollowers(t *testing.T) {
	_, app, db := newTestServer(t, nil)
	createTestUser(t, db, "loner")

	req := httptest.NewRequest(http.MethodGet, "/profile/loner/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Following bool `json:"following"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Following)
}

func TestProfile_UnknownUser(t *testing.T) {
	_, app, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/profile/ghost/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

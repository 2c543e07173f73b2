package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wandertales/backend/internal/geocode"
	"github.com/wandertales/backend/internal/middleware"
	"github.com/wandertales/backend/internal/models"
)

// fakeGeocoder returns a fixed point, or nothing when ok is false.
type fakeGeocoder struct {
	point geocode.Point
	ok    bool
	calls int
}

func (g *fakeGeocoder) Lookup(_ context.Context, _, _ string) (geocode.Point, bool) {
	g.calls++
	return g.point, g.ok
}

func newBlogHandler(t *testing.T, posts *fakePostRepo, users *fakeUserRepo, geo Geocoder) *BlogHandler {
	t.Helper()
	ph := newPostHandler(t, posts, users, &fakeHub{})
	return NewBlogHandler(ph, posts, geo)
}

func createBlog(t *testing.T, h *BlogHandler, userID string, form url.Values) *models.Post {
	t.Helper()
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/api/blogs", form), rec)
	c.Set(middleware.ContextUserID, userID)
	require.NoError(t, h.CreateBlog(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp.Post
}

func TestCreateBlogGeocoded(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	geo := &fakeGeocoder{point: geocode.Point{Lat: -8.65, Lng: 115.22}, ok: true}
	h := newBlogHandler(t, posts, users, geo)
	jane := seedUser(t, users, "jane", "jane@x.com", "pw123456")

	post := createBlog(t, h, jane.ID.Hex(), url.Values{
		"title":       {"Bali"},
		"description": {"Sunrise"},
		"country":     {"Indonesia"},
		"place":       {"Bali"},
	})

	require.NotNil(t, post.Location)
	assert.Equal(t, "Point", post.Location.Type)
	assert.Equal(t, []float64{115.22, -8.65}, post.Location.Coordinates)
	assert.Equal(t, -8.65, post.Location.CoordinatesLat)
	assert.Equal(t, 115.22, post.Location.CoordinatesLng)
	require.NotNil(t, post.Location.Geo)
	assert.Equal(t, -8.65, post.Location.Geo.Lat)
	assert.Equal(t, "Indonesia", post.Location.Country)
	assert.Equal(t, 1, geo.calls)
}

func TestCreateBlogGeocodeFailureDegrades(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	h := newBlogHandler(t, posts, users, &fakeGeocoder{ok: false})
	jane := seedUser(t, users, "jane", "jane@x.com", "pw123456")

	post := createBlog(t, h, jane.ID.Hex(), url.Values{
		"title":       {"Bali"},
		"description": {"Sunrise"},
		"country":     {"Indonesia"},
		"place":       {"Bali"},
	})

	// Raw text kept, no coordinates
	require.NotNil(t, post.Location)
	assert.Equal(t, "Indonesia", post.Location.Country)
	assert.Equal(t, "Bali", post.Location.Place)
	assert.Empty(t, post.Location.Type)
	assert.Empty(t, post.Location.Coordinates)
	assert.Nil(t, post.Location.Geo)
}

func TestCreateBlogWithoutLocationSkipsGeocoder(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	geo := &fakeGeocoder{ok: true}
	h := newBlogHandler(t, posts, users, geo)
	jane := seedUser(t, users, "jane", "jane@x.com", "pw123456")

	post := createBlog(t, h, jane.ID.Hex(), url.Values{
		"title":       {"Thoughts"},
		"description": {"No place"},
	})

	assert.Nil(t, post.Location)
	assert.Equal(t, 0, geo.calls)
}

func TestGetBlogsLocatedFilter(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	h := newBlogHandler(t, posts, users, &fakeGeocoder{point: geocode.Point{Lat: 1, Lng: 2}, ok: true})
	jane := seedUser(t, users, "jane", "jane@x.com", "pw123456")

	createBlog(t, h, jane.ID.Hex(), url.Values{
		"title": {"Located"}, "description": {"d"}, "country": {"Norway"},
	})
	createBlog(t, h, jane.ID.Hex(), url.Values{
		"title": {"Unlocated"}, "description": {"d"},
	})

	e := newTestEcho()
	list := func(target string) []models.Post {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
		require.NoError(t, h.GetBlogs(c))
		var out []models.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	assert.Len(t, list("/api/blogs"), 2)

	located := list("/api/blogs?located=true")
	require.Len(t, located, 1)
	assert.Equal(t, "Located", located[0].Title)
}

func TestGetBlogsByUserOldestFirst(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	h := newBlogHandler(t, posts, users, &fakeGeocoder{})
	jane := seedUser(t, users, "jane", "jane@x.com", "pw123456")

	first := seedPost(t, posts, jane, "First")
	seedPost(t, posts, jane, "Second")

	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("userId")
	c.SetParamValues(jane.ID.Hex())
	require.NoError(t, h.GetBlogsByUser(c))

	var out []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, first.ID, out[0].ID)
}

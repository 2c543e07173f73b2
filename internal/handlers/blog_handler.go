package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wandertales/backend/internal/geocode"
	"github.com/wandertales/backend/internal/middleware"
	"github.com/wandertales/backend/internal/models"
	"github.com/wandertales/backend/internal/repositories"
)

// Geocoder resolves free-text country/place to coordinates. Satisfied by
// *geocode.Client; an interface here keeps the handler testable without the
// external service.
type Geocoder interface {
	Lookup(ctx context.Context, country, place string) (geocode.Point, bool)
}

// BlogHandler handles the location-oriented post routes. A blog is the same
// post document with a geocoded location block attached at creation.
type BlogHandler struct {
	postHandler    *PostHandler
	postRepository repositories.PostRepository
	geocoder       Geocoder
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(postHandler *PostHandler, postRepo repositories.PostRepository, geocoder Geocoder) *BlogHandler {
	return &BlogHandler{
		postHandler:    postHandler,
		postRepository: postRepo,
		geocoder:       geocoder,
	}
}

// RegisterPublicRoutes registers the unauthenticated blog routes
func (h *BlogHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("", h.GetBlogs)
	g.GET("/user/:userId", h.GetBlogsByUser)
}

// RegisterProtectedRoutes registers the bearer-token blog routes
func (h *BlogHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("", h.CreateBlog)
}

// CreateBlog creates a post with an optional geocoded location. A geocoding
// failure degrades to a post carrying only the raw country/place text; it
// never fails the create.
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Title == "" || req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and description are required")
	}

	post, err := h.postHandler.buildPost(c, userID, &req)
	if err != nil {
		return err
	}

	if req.Country != "" || req.Place != "" {
		post.Location = &models.Location{
			Country: req.Country,
			Place:   req.Place,
		}
		if point, ok := h.geocoder.Lookup(c.Request().Context(), req.Country, req.Place); ok {
			post.Location.Type = "Point"
			post.Location.Coordinates = []float64{point.Lng, point.Lat}
			post.Location.CoordinatesLat = point.Lat
			post.Location.CoordinatesLng = point.Lng
			post.Location.Geo = &models.GeoPoint{Lat: point.Lat, Lng: point.Lng}
		}
	}

	if err := h.postHandler.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Blog created",
		"post":    post,
	})
}

// GetBlogs retrieves visible posts for the map view. ?located=true narrows to
// posts with a resolved geo point.
func (h *BlogHandler) GetBlogs(c echo.Context) error {
	locatedOnly := c.QueryParam("located") == "true"
	posts, err := h.postRepository.GetLocatedPosts(c.Request().Context(), locatedOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, posts)
}

// GetBlogsByUser retrieves one user's posts oldest first, the travel-timeline
// order.
func (h *BlogHandler) GetBlogsByUser(c echo.Context) error {
	posts, err := h.postRepository.GetBlogsByUserID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, posts)
}

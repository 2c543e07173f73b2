package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wandertales/backend/internal/models"
	"github.com/wandertales/backend/internal/repositories"
)

// AdminHandler handles the admin dashboard routes
type AdminHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *AdminHandler {
	return &AdminHandler{
		userRepository: userRepo,
		postRepository: postRepo,
	}
}

// RegisterAdminRoutes registers the admin routes
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.PATCH("/users/:id/suspend", h.SuspendToggle)
	g.GET("/analytics", h.Analytics)
	g.GET("/blogs", h.ListBlogs)
	g.DELETE("/blogs/:id", h.DeleteBlog)
}

// ListUsers searches users with optional substring query, status filter and
// sort key (createdAt or username, - prefix for descending).
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.userRepository.ListUsers(
		c.Request().Context(),
		c.QueryParam("q"),
		c.QueryParam("status"),
		c.QueryParam("sort"),
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, users)
}

// SuspendToggle flips a user between active and suspended and cascades the
// new visibility onto all of their posts.
func (h *AdminHandler) SuspendToggle(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
		}
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	status := models.StatusSuspended
	if user.Status == models.StatusSuspended {
		status = models.StatusActive
	}

	if err := h.userRepository.SetStatus(ctx, id, status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if err := h.postRepository.SetActiveForUser(ctx, id, status == models.StatusActive); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User " + status,
		"status":  status,
	})
}

// Analytics recomputes the dashboard aggregates on every request
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx := c.Request().Context()

	totalUsers, err := h.userRepository.CountUsers(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	suspendedUsers, err := h.userRepository.CountUsersByStatus(ctx, models.StatusSuspended)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	totalBlogs, err := h.postRepository.CountActivePosts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	signups, err := h.userRepository.SignupsByMonth(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	byCategory, err := h.postRepository.CountPostsByCategory(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	now := time.Now()
	newThisMonth := 0
	for _, b := range signups {
		if b.Year == now.Year() && b.Month == int(now.Month()) {
			newThisMonth += b.Count
		}
	}

	return c.JSON(http.StatusOK, models.Analytics{
		Totals: models.AnalyticsTotals{
			TotalUsers:          totalUsers,
			ActiveUsers:         totalUsers - suspendedUsers,
			NewSignupsThisMonth: newThisMonth,
			TotalBlogs:          totalBlogs,
		},
		Charts: models.AnalyticsCharts{
			Signups:         signups,
			BlogsByCategory: byCategory,
		},
	})
}

// ListBlogs retrieves visible posts for the admin dashboard, newest first
func (h *AdminHandler) ListBlogs(c echo.Context) error {
	posts, err := h.postRepository.AdminListPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, posts)
}

// DeleteBlog hard-deletes a post
func (h *AdminHandler) DeleteBlog(c echo.Context) error {
	err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
		}
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted"})
}

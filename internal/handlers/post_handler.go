package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wandertales/backend/internal/middleware"
	"github.com/wandertales/backend/internal/models"
	"github.com/wandertales/backend/internal/realtime"
	"github.com/wandertales/backend/internal/repositories"
	"github.com/wandertales/backend/internal/upload"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository // author snapshots on create/comment
	uploads        *upload.Store
	hub            realtime.Broadcaster
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, uploads *upload.Store, hub realtime.Broadcaster) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		uploads:        uploads,
		hub:            hub,
	}
}

// RegisterPublicRoutes registers the unauthenticated post routes
func (h *PostHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("", h.GetPosts)
	g.GET("/user/:userId", h.GetPostsByUser)
	g.GET("/:id", h.GetPost)
}

// RegisterProtectedRoutes registers the bearer-token post routes
func (h *PostHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("", h.CreatePost)
	g.POST("/:postId/like", h.LikePost)
	g.PUT("/:postId/like", h.LikePost)
	g.POST("/:postId/comment", h.AddComment)
	g.POST("/:postId/favorite", h.ToggleFavorite)
}

// CreatePost creates a new post from a multipart form with an optional image
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Title == "" || req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and description are required")
	}

	post, err := h.buildPost(c, userID, &req)
	if err != nil {
		return err
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

// buildPost assembles a post document: author snapshot, normalized tags,
// optional uploaded image. Shared by the post and blog create paths.
func (h *PostHandler) buildPost(c echo.Context, userID string, req *models.CreatePostRequest) (*models.Post, error) {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	post := &models.Post{
		UserID:         user.ID,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
		Title:          req.Title,
		Description:    req.Description,
		Content:        req.Content,
		Category:       req.Category,
		Tags:           normalizeTags(formValues(c, "tags")),
	}

	if fh, err := c.FormFile("image"); err == nil {
		filename, err := h.uploads.SavePostImage(fh)
		if err != nil {
			return nil, uploadError(err)
		}
		post.Image = filename
	}
	if images := formValues(c, "images"); len(images) > 0 {
		post.Images = images
	}

	return post, nil
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves all publicly visible posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPostsByUser retrieves one user's posts, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, posts)
}

// LikePost records a one-way like. A repeat like by the same user returns the
// current state unchanged; there is no unlike.
func (h *PostHandler) LikePost(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)
	postID := c.Param("postId")

	alreadyLiked, likes, err := h.postRepository.LikePost(c.Request().Context(), postID, userID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if !alreadyLiked {
		h.hub.Broadcast(realtime.EventPostLike, echo.Map{"postId": postID, "likes": likes})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"liked": true,
		"likes": likes,
	})
}

// AddComment appends an immutable comment to a post
func (h *PostHandler) AddComment(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)
	postID := c.Param("postId")

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment text is required")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		CreatedAt: time.Now(),
	}

	count, err := h.postRepository.AddComment(c.Request().Context(), postID, comment)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	h.hub.Broadcast(realtime.EventPostComment, echo.Map{
		"postId":        postID,
		"comment":       comment,
		"commentsCount": count,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"comment":       comment,
		"commentsCount": count,
	})
}

// ToggleFavorite toggles the post's membership in the user's favorites set
func (h *PostHandler) ToggleFavorite(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)
	postID := c.Param("postId")

	ctx := c.Request().Context()
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	postOID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	favorited := !user.HasFavorite(postOID)
	if err := h.userRepository.ToggleFavorite(ctx, userID, postID, favorited); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"favorited": favorited})
}

// formValues returns every value posted under key in either the URL-encoded
// or the multipart body.
func formValues(c echo.Context, key string) []string {
	form, err := c.FormParams()
	if err != nil {
		return nil
	}
	return form[key]
}

// normalizeTags accepts tags as repeated fields or comma-separated strings,
// trims whitespace and drops empties. Duplicates are kept as supplied.
func normalizeTags(values []string) []string {
	tags := []string{}
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

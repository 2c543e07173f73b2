package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/wandertales/backend/internal/middleware"
	"github.com/wandertales/backend/internal/models"
	"github.com/wandertales/backend/internal/realtime"
	"github.com/wandertales/backend/internal/repositories"
	"github.com/wandertales/backend/internal/upload"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication and profile HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	uploads        *upload.Store
	hub            realtime.Broadcaster
	jwtSecret      string
	jwtTTL         time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, uploads *upload.Store, hub realtime.Broadcaster, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		uploads:        uploads,
		hub:            hub,
		jwtSecret:      jwtSecret,
		jwtTTL:         jwtTTL,
	}
}

// RegisterPublicRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
}

// RegisterProtectedRoutes registers the bearer-token auth routes
func (h *AuthHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
	g.POST("/update-profile-info", h.UpdateProfile)
	g.POST("/update-profile", h.UpdateProfile)
	g.PUT("/update-profile", h.UpdateProfile)
	g.POST("/update-profile-picture", h.UpdateProfilePicture)
	g.POST("/follow/:userId", h.Follow)
}

// Signup handles registration: multipart form fields plus an optional
// profilePicture file.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Check if user with this email already exists
	if _, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already exists")
	} else if err != repositories.ErrNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Country:  req.Country,
		Status:   models.StatusActive,
	}

	// Optional avatar upload
	if fh, err := c.FormFile("profilePicture"); err == nil {
		filename, err := h.uploads.SaveProfilePicture(fh)
		if err != nil {
			return uploadError(err)
		}
		user.ProfilePicture = filename
	}

	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login authenticates by email/password and issues a time-limited token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   token,
		"message": "Login successful",
		"user": echo.Map{
			"username":       user.Username,
			"profilePicture": user.ProfilePicture,
		},
	})
}

// Me returns the authenticated user's record, password excluded
func (h *AuthHandler) Me(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial set of profile fields
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	// A supplied email must not belong to another user
	if req.Email != "" && req.Email != user.Email {
		if other, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email); err == nil && other.ID != user.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already exists")
		} else if err != nil && err != repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
		user.Email = req.Email
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Country != "" {
		user.Country = req.Country
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := h.userRepository.UpdateProfile(c.Request().Context(), userID, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfilePicture stores a new avatar and persists its filename
func (h *AuthHandler) UpdateProfilePicture(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(string)

	fh, err := c.FormFile("profilePicture")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "profilePicture file is required")
	}

	filename, err := h.uploads.SaveProfilePicture(fh)
	if err != nil {
		return uploadError(err)
	}

	if err := h.userRepository.SetProfilePicture(c.Request().Context(), userID, filename); err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Profile picture updated",
		"profilePicture": filename,
	})
}

// Follow toggles the symmetric follow relationship with the target user and
// emits follower-count events for both sides.
func (h *AuthHandler) Follow(c echo.Context) error {
	actorID := c.Get(middleware.ContextUserID).(string)
	targetID := c.Param("userId")

	if targetID == actorID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()
	actor, err := h.userRepository.GetUserByID(ctx, actorID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrNotFound || err == repositories.ErrInvalidID {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	following := !actor.IsFollowing(target.ID)
	if err := h.userRepository.SetFollow(ctx, actorID, targetID, following); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	followersCount := len(target.Followers)
	followingCount := len(actor.Following)
	if following {
		followersCount++
		followingCount++
	} else {
		followersCount--
		followingCount--
	}

	h.hub.Broadcast(realtime.EventUserFollow, echo.Map{"userId": targetID, "followersCount": followersCount})
	h.hub.Broadcast(realtime.EventUserFollowing, echo.Map{"userId": actorID, "followingCount": followingCount})

	return c.JSON(http.StatusOK, echo.Map{
		"following":      following,
		"followersCount": followersCount,
	})
}

// generateJWT generates a signed token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

// uploadError maps upload store failures to the HTTP taxonomy
func uploadError(err error) error {
	switch err {
	case upload.ErrTooLarge:
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds the 5 MB limit")
	case upload.ErrInvalidType:
		return echo.NewHTTPError(http.StatusBadRequest, "Only image uploads are allowed")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}
}

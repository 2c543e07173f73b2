package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values. Suspended users' posts are hidden from public listings.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// User represents an account stored in the users collection. The social graph
// and favorites are inline arrays on the document; there are no separate
// collections for follows or bookmarks.
type User struct {
	ID             primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Phone          string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Country        string               `json:"country,omitempty" bson:"country,omitempty"`
	Bio            string               `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePicture string               `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	Favorites      []primitive.ObjectID `json:"favorites" bson:"favorites"`
	Status         string               `json:"status" bson:"status"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
}

// IsFollowing reports whether id is in the user's following set.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// HasFavorite reports whether postID is in the user's favorites set.
func (u *User) HasFavorite(postID primitive.ObjectID) bool {
	for _, f := range u.Favorites {
		if f == postID {
			return true
		}
	}
	return false
}

// SignupRequest defines the multipart form fields for registration. The
// optional profilePicture file is read separately from the multipart body.
type SignupRequest struct {
	Username string `form:"username" json:"username" validate:"required,min=2,max=50"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
	Phone    string `form:"phone" json:"phone"`
	Country  string `form:"country" json:"country"`
}

// LoginRequest defines the request body for login
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UpdateProfileRequest defines the partial profile update payload. Only
// supplied fields are applied.
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" form:"username" validate:"omitempty,min=2,max=50"`
	Email    string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" form:"phone"`
	Country  string `json:"country,omitempty" form:"country"`
	Bio      string `json:"bio,omitempty" form:"bio"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

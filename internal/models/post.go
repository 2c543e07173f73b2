package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is the {lat, lng} pair duplicated on the location block for client
// convenience.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location carries a GeoJSON point plus denormalized copies of the resolved
// coordinates and the raw country/place text. The duplication is intentional:
// map clients read geo/coordinatesLat/coordinatesLng directly.
type Location struct {
	Type           string    `json:"type,omitempty" bson:"type,omitempty"`
	Coordinates    []float64 `json:"coordinates,omitempty" bson:"coordinates,omitempty"` // [lng, lat]
	Country        string    `json:"country,omitempty" bson:"country,omitempty"`
	Place          string    `json:"place,omitempty" bson:"place,omitempty"`
	CoordinatesLat float64   `json:"coordinatesLat,omitempty" bson:"coordinatesLat,omitempty"`
	CoordinatesLng float64   `json:"coordinatesLng,omitempty" bson:"coordinatesLng,omitempty"`
	Geo            *GeoPoint `json:"geo,omitempty" bson:"geo,omitempty"`
}

// Comment is embedded in a post document, never stored standalone. Comments
// are append-only and immutable once created.
type Comment struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Username  string             `json:"username" bson:"username"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Post represents a travel story stored in the posts collection. Username and
// profilePicture are snapshots of the author at creation time and are not
// rewritten by later profile edits.
//
// Active is a tri-state pointer: absent means active, so listings filter with
// {active: {$ne: false}}.
type Post struct {
	ID             primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID         primitive.ObjectID   `json:"userId" bson:"userId"`
	Username       string               `json:"username" bson:"username"`
	ProfilePicture string               `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Title          string               `json:"title" bson:"title"`
	Description    string               `json:"description" bson:"description"`
	Content        string               `json:"content,omitempty" bson:"content,omitempty"`
	Category       string               `json:"category,omitempty" bson:"category,omitempty"`
	Tags           []string             `json:"tags" bson:"tags"`
	Image          string               `json:"image,omitempty" bson:"image,omitempty"`
	Images         []string             `json:"images,omitempty" bson:"images,omitempty"`
	Location       *Location            `json:"location,omitempty" bson:"location,omitempty"`
	Likes          int                  `json:"likes" bson:"likes"`
	LikedBy        []primitive.ObjectID `json:"likedBy" bson:"likedBy"`
	Comments       []Comment            `json:"comments" bson:"comments"`
	Active         *bool                `json:"active,omitempty" bson:"active,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
}

// CreatePostRequest defines the multipart form fields for creating a post.
// Tags arrive either as repeated fields or as one comma-separated string; the
// optional image file is read separately.
type CreatePostRequest struct {
	Title       string `form:"title" json:"title" validate:"required"`
	Description string `form:"description" json:"description" validate:"required"`
	Content     string `form:"content" json:"content"`
	Category    string `form:"category" json:"category"`
	Country     string `form:"country" json:"country"`
	Place       string `form:"place" json:"place"`
}

// CommentRequest defines the request body for appending a comment
type CommentRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

package repositories

import (
	"context"
	"time"

	"github.com/wandertales/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID string) ([]models.Post, error)
	GetLocatedPosts(ctx context.Context, locatedOnly bool) ([]models.Post, error)
	GetBlogsByUserID(ctx context.Context, userID string) ([]models.Post, error)
	LikePost(ctx context.Context, postID, userID string) (alreadyLiked bool, likes int, err error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) (commentsCount int, err error)
	DeletePost(ctx context.Context, id string) error
	SetActiveForUser(ctx context.Context, userID string, active bool) error
	AdminListPosts(ctx context.Context) ([]models.Post, error)
	CountActivePosts(ctx context.Context) (int64, error)
	CountPostsByCategory(ctx context.Context) ([]models.CategoryBucket, error)
}

// activeFilter matches posts whose owner is not suspended. Absence of the
// active field means active, so the filter is $ne false rather than equality.
func activeFilter() bson.M {
	return bson.M{"active": bson.M{"$ne": false}}
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.LikedBy == nil {
		post.LikedBy = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all publicly visible posts, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, activeFilter(), bson.D{{Key: "createdAt", Value: -1}})
}

// GetPostsByUserID retrieves a user's posts, newest first
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID string) ([]models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.find(ctx, bson.M{"userId": objID}, bson.D{{Key: "createdAt", Value: -1}})
}

// GetLocatedPosts retrieves publicly visible posts for the map view. With
// locatedOnly it narrows to posts carrying a resolved geo point; otherwise
// clients skip entries without coordinates themselves.
func (r *MongoPostRepository) GetLocatedPosts(ctx context.Context, locatedOnly bool) ([]models.Post, error) {
	filter := activeFilter()
	if locatedOnly {
		filter["location.type"] = "Point"
	}
	return r.find(ctx, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// GetBlogsByUserID retrieves a user's posts oldest first, the travel-timeline
// order the map profile uses.
func (r *MongoPostRepository) GetBlogsByUserID(ctx context.Context, userID string) ([]models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.find(ctx, bson.M{"userId": objID}, bson.D{{Key: "createdAt", Value: 1}})
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// LikePost records a like by userID on postID. The likedBy guard plus
// $addToSet/$inc in a single update keeps likes equal to the set size under
// concurrent calls; a repeated like by the same user changes nothing.
func (r *MongoPostRepository) LikePost(ctx context.Context, postID, userID string) (bool, int, error) {
	postOID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return false, 0, ErrInvalidID
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, 0, ErrInvalidID
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": postOID, "likedBy": bson.M{"$ne": userOID}},
		bson.M{"$addToSet": bson.M{"likedBy": userOID}, "$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == nil {
		return false, post.Likes, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, 0, err
	}

	// Either the post is missing or this user already liked it.
	err = r.collection.FindOne(ctx, bson.M{"_id": postOID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}
	return true, post.Likes, nil
}

// AddComment appends an embedded comment and returns the new comment count
func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) (int, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, ErrInvalidID
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$push": bson.M{"comments": comment}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return len(post.Comments), nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActiveForUser marks all of a user's posts active or inactive, the
// suspend/unsuspend cascade.
func (r *MongoPostRepository) SetActiveForUser(ctx context.Context, userID string, active bool) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	_, err = r.collection.UpdateMany(ctx, bson.M{"userId": objID}, bson.M{"$set": bson.M{"active": active}})
	return err
}

// AdminListPosts retrieves publicly visible posts for the admin dashboard,
// newest first.
func (r *MongoPostRepository) AdminListPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, activeFilter(), bson.D{{Key: "createdAt", Value: -1}})
}

// CountActivePosts counts publicly visible posts
func (r *MongoPostRepository) CountActivePosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, activeFilter())
}

// CountPostsByCategory aggregates visible posts per category, largest first
func (r *MongoPostRepository) CountPostsByCategory(ctx context.Context) ([]models.CategoryBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: activeFilter()}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "category": "$_id", "count": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []models.CategoryBucket{}
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

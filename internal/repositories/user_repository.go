package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/wandertales/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, user *models.User) error
	SetProfilePicture(ctx context.Context, id, filename string) error
	SetFollow(ctx context.Context, actorID, targetID string, follow bool) error
	ToggleFavorite(ctx context.Context, userID, postID string, favorite bool) error
	SetStatus(ctx context.Context, id, status string) error
	ListUsers(ctx context.Context, query, status, sort string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByStatus(ctx context.Context, status string) (int64, error)
	SignupsByMonth(ctx context.Context) ([]models.MonthBucket, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Favorites == nil {
		user.Favorites = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email from MongoDB
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile writes the mutable profile fields of user back to MongoDB.
// The social graph, favorites, status and createdAt are never touched here.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"username": user.Username,
			"email":    user.Email,
			"phone":    user.Phone,
			"country":  user.Country,
			"bio":      user.Bio,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProfilePicture sets the user's profile picture filename
func (r *MongoUserRepository) SetProfilePicture(ctx context.Context, id, filename string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"profilePicture": filename}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFollow adds or removes the symmetric follow relationship: targetID in
// the actor's following set and actorID in the target's followers set. The
// two single-document updates are sequential, not transactional.
func (r *MongoUserRepository) SetFollow(ctx context.Context, actorID, targetID string, follow bool) error {
	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return ErrInvalidID
	}
	targetOID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return ErrInvalidID
	}

	op := "$pull"
	if follow {
		op = "$addToSet"
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": actorOID}, bson.M{op: bson.M{"following": targetOID}}); err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": targetOID}, bson.M{op: bson.M{"followers": actorOID}})
	return err
}

// ToggleFavorite adds or removes postID from the user's favorites set
func (r *MongoUserRepository) ToggleFavorite(ctx context.Context, userID, postID string, favorite bool) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	postOID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrInvalidID
	}

	op := "$pull"
	if favorite {
		op = "$addToSet"
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userOID}, bson.M{op: bson.M{"favorites": postOID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus sets the user's status to active or suspended
func (r *MongoUserRepository) SetStatus(ctx context.Context, id, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers retrieves users matching an optional case-insensitive
// username/email substring query and an optional status filter. Sort accepts
// createdAt or username, prefixed with - for descending; default is newest
// first.
func (r *MongoUserRepository) ListUsers(ctx context.Context, query, status, sort string) ([]models.User, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"username": rx}, bson.M{"email": rx}}
	}

	findOptions := options.Find().SetSort(parseUserSort(sort))
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func parseUserSort(sort string) bson.D {
	key := "createdAt"
	dir := -1
	if sort != "" {
		dir = 1
		if sort[0] == '-' {
			dir = -1
			sort = sort[1:]
		}
		if sort == "username" {
			key = "username"
		}
	}
	return bson.D{{Key: key, Value: dir}}
}

// CountUsers counts all users
func (r *MongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountUsersByStatus counts users with the given status
func (r *MongoUserRepository) CountUsersByStatus(ctx context.Context, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// SignupsByMonth aggregates user signups into per-month buckets, oldest first
func (r *MongoUserRepository) SignupsByMonth(ctx context.Context) ([]models.MonthBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"y": bson.M{"$year": "$createdAt"}, "m": bson.M{"$month": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.y", Value: 1}, {Key: "_id.m", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "y": "$_id.y", "m": "$_id.m", "count": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []models.MonthBucket{}
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

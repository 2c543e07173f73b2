package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wandertales/backend/internal/models"
	"github.com/wandertales/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo is an in-memory UserRepository for handler tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id string, user *models.User) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[oid]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Username = user.Username
	stored.Email = user.Email
	stored.Phone = user.Phone
	stored.Country = user.Country
	stored.Bio = user.Bio
	return nil
}

func (r *fakeUserRepo) SetProfilePicture(_ context.Context, id, filename string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ProfilePicture = filename
	return nil
}

func (r *fakeUserRepo) SetFollow(_ context.Context, actorID, targetID string, follow bool) error {
	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return repositories.ErrInvalidID
	}
	targetOID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, target := r.users[actorOID], r.users[targetOID]
	if actor == nil || target == nil {
		return repositories.ErrNotFound
	}
	if follow {
		actor.Following = addToSet(actor.Following, targetOID)
		target.Followers = addToSet(target.Followers, actorOID)
	} else {
		actor.Following = pull(actor.Following, targetOID)
		target.Followers = pull(target.Followers, actorOID)
	}
	return nil
}

func (r *fakeUserRepo) ToggleFavorite(_ context.Context, userID, postID string, favorite bool) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repositories.ErrInvalidID
	}
	postOID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userOID]
	if !ok {
		return repositories.ErrNotFound
	}
	if favorite {
		u.Favorites = addToSet(u.Favorites, postOID)
	} else {
		u.Favorites = pull(u.Favorites, postOID)
	}
	return nil
}

func (r *fakeUserRepo) SetStatus(_ context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context, _, status, _ string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.users {
		if status != "" && u.Status != status {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeUserRepo) CountUsers(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountUsersByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) SignupsByMonth(_ context.Context) ([]models.MonthBucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[[2]int]int{}
	for _, u := range r.users {
		counts[[2]int{u.CreatedAt.Year(), int(u.CreatedAt.Month())}]++
	}
	buckets := []models.MonthBucket{}
	for k, v := range counts {
		buckets = append(buckets, models.MonthBucket{Year: k[0], Month: k[1], Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Month < buckets[j].Month
	})
	return buckets, nil
}

// fakePostRepo is an in-memory PostRepository for handler tests.
type fakePostRepo struct {
	mu    sync.Mutex
	posts []*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	cp := *post
	r.posts = append(r.posts, &cp)
	return nil
}

func (r *fakePostRepo) get(id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	for _, p := range r.posts {
		if p.ID == oid {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) visible() []models.Post {
	out := []models.Post{}
	for _, p := range r.posts {
		if p.Active != nil && !*p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakePostRepo) GetAllPosts(_ context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible(), nil
}

func (r *fakePostRepo) GetPostsByUserID(_ context.Context, userID string) ([]models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.posts {
		if p.UserID == oid {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePostRepo) GetLocatedPosts(_ context.Context, locatedOnly bool) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.visible() {
		if locatedOnly && (p.Location == nil || p.Location.Type != "Point") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePostRepo) GetBlogsByUserID(ctx context.Context, userID string) ([]models.Post, error) {
	posts, err := r.GetPostsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) })
	return posts, nil
}

func (r *fakePostRepo) LikePost(_ context.Context, postID, userID string) (bool, int, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, 0, repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.get(postID)
	if err != nil {
		return false, 0, err
	}
	for _, id := range p.LikedBy {
		if id == userOID {
			return true, p.Likes, nil
		}
	}
	p.LikedBy = append(p.LikedBy, userOID)
	p.Likes++
	return false, p.Likes, nil
}

func (r *fakePostRepo) AddComment(_ context.Context, postID string, comment *models.Comment) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.get(postID)
	if err != nil {
		return 0, err
	}
	p.Comments = append(p.Comments, *comment)
	return len(p.Comments), nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID == oid {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakePostRepo) SetActiveForUser(_ context.Context, userID string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repositories.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.UserID == oid {
			a := active
			p.Active = &a
		}
	}
	return nil
}

func (r *fakePostRepo) AdminListPosts(_ context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible(), nil
}

func (r *fakePostRepo) CountActivePosts(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.visible())), nil
}

func (r *fakePostRepo) CountPostsByCategory(_ context.Context) ([]models.CategoryBucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, p := range r.visible() {
		counts[p.Category]++
	}
	buckets := []models.CategoryBucket{}
	for k, v := range counts {
		buckets = append(buckets, models.CategoryBucket{Category: k, Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	return buckets, nil
}

// fakeHub records broadcast events instead of delivering them.
type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (h *fakeHub) Broadcast(event string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *fakeHub) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.events...)
}

func addToSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range set {
		if v == id {
			return set
		}
	}
	return append(set, id)
}

func pull(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := set[:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogapi/internal/models"
)

// ErrDuplicateUser reports a userName uniqueness conflict on insert.
var ErrDuplicateUser = errors.New("username already exists")

// callTimeout bounds every store call so a stalled server surfaces as an
// ordinary store error instead of hanging the request.
const callTimeout = 5 * time.Second

// Mongo handles the users and posts collections.
type Mongo struct {
	users *mongo.Collection
	posts *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users: db.Collection("users"),
		posts: db.Collection("posts"),
	}
}

// EnsureIndexes creates the unique userName index backing the sign-up
// uniqueness guarantee.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}

func bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout)
}

// ---- users ----

func (s *Mongo) InsertUser(ctx context.Context, u *models.User) (string, error) {
	ctx, cancel := bounded(ctx)
	defer cancel()

	u.CreatedAt = time.Now()
	res, err := s.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateUser
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	u.ID = oid
	return oid.Hex(), nil
}

func (s *Mongo) UserByName(ctx context.Context, name string) (*models.User, error) {
	ctx, cancel := bounded(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOne(ctx, bson.M{"userName": name}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// a malformed id is just "not found"
		return nil, nil
	}
	ctx, cancel := bounded(ctx)
	defer cancel()

	var u models.User
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// ---- posts ----

func (s *Mongo) InsertPost(ctx context.Context, p *models.Post) (string, error) {
	ctx, cancel := bounded(ctx)
	defer cancel()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := s.posts.InsertOne(ctx, p)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// nothing written; the handler shapes the envelope
		return "", nil
	}
	p.ID = oid
	return oid.Hex(), nil
}

func (s *Mongo) PostByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	ctx, cancel := bounded(ctx)
	defer cancel()

	var p models.Post
	err = s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

func (s *Mongo) ListPosts(ctx context.Context, offset, limit int64) ([]models.Post, error) {
	ctx, cancel := bounded(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cur, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Mongo) UpdatePost(ctx context.Context, id, title, content string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	ctx, cancel := bounded(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":     title,
		"content":   content,
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &p, nil
}

func (s *Mongo) DeletePost(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	ctx, cancel := bounded(ctx)
	defer cancel()

	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete post: %w", err)
	}
	return res.DeletedCount, nil
}

// LikePost increments the like counter atomically on the server, so
// concurrent likes never lose updates.
func (s *Mongo) LikePost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	ctx, cancel := bounded(ctx)
	defer cancel()

	update := bson.M{"$inc": bson.M{"likes": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}
	return &p, nil
}

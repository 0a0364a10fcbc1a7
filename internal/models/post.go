package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a blog post document in the posts collection. Author holds the
// hex id of the account that created it, resolved lazily when rendered.
type Post struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Title     string             `json:"title"     bson:"title"`
	Content   string             `json:"content"   bson:"content"`
	Author    string             `json:"author"    bson:"author"`
	Likes     int64              `json:"likes"     bson:"likes"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AuthorRef is the projection of an account rendered on a post.
type AuthorRef struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// PostView is a post as returned to callers, author resolved. Author is
// null when the referenced account no longer exists.
type PostView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    *AuthorRef `json:"author"`
	Likes     int64      `json:"likes"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CreatePostRequest is the JSON body for POST /api/posts.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest is the JSON body for PUT /api/posts/{id}.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

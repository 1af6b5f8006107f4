package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialfeed/gateway/internal/core/domain"
)

const postsCollection = "posts"

// PostRepository implements ports.PostRepository using MongoDB. Every write
// is a single-document operation whose filter includes the creator, so
// ownership holds even if a caller forgot to check it.
type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(postsCollection)}
}

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	ImageURL  string             `bson:"image_url"`
	CreatorID primitive.ObjectID `bson:"creator_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d postDocument) toDomain() *domain.Post {
	return &domain.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		ImageURL:  d.ImageURL,
		CreatorID: d.CreatorID.Hex(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// Create inserts a new post document.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	creator, ok := objectID(post.CreatorID)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	doc := postDocument{
		ID:        primitive.NewObjectID(),
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		CreatorID: creator,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, retag("insert post", err)
	}
	return doc.toDomain(), nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc postDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, retag("find post", err)
	}
	return doc.toDomain(), nil
}

// Update applies patch to a post owned by requesterID and returns the
// document as it was before the write.
func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostPatch, requesterID string, at time.Time) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := r.ownedFilter(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": at}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var doc postDocument
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missOrForbidden(ctx, filter["_id"])
	}
	if err != nil {
		return nil, retag("update post", err)
	}
	return doc.toDomain(), nil
}

// Delete removes a post owned by requesterID and returns it.
func (r *PostRepository) Delete(ctx context.Context, id, requesterID string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := r.ownedFilter(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	var doc postDocument
	err = r.col.FindOneAndDelete(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missOrForbidden(ctx, filter["_id"])
	}
	if err != nil {
		return nil, retag("delete post", err)
	}
	return doc.toDomain(), nil
}

// ownedFilter matches the post only when requesterID created it.
func (r *PostRepository) ownedFilter(ctx context.Context, id, requesterID string) (bson.M, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	creator, ok := objectID(requesterID)
	if !ok {
		return nil, r.missOrForbidden(ctx, oid)
	}
	return bson.M{"_id": oid, "creator_id": creator}, nil
}

// missOrForbidden explains why an owned-filter matched nothing.
func (r *PostRepository) missOrForbidden(ctx context.Context, oid any) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return retag("check post", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrForbidden
}

// List returns a page of posts ordered newest first together with the total
// number of posts.
func (r *PostRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Post, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, retag("count posts", err)
	}

	skip, ok := domain.PageOffset(page, pageSize, total)
	if !ok {
		return []*domain.Post{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, retag("list posts", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, retag("decode posts", err)
	}

	posts := make([]*domain.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toDomain())
	}
	return posts, total, nil
}

// EnsureIndexes creates the creator and feed-order indexes.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

const projectsCollection = "projects"

type projectDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Slug          string             `bson:"slug"`
	Description   string             `bson:"description"`
	ProjectType   string             `bson:"projectType"`
	Technologies  []string           `bson:"technologies"`
	ImageURL      string             `bson:"imageUrl"`
	ImagePublicID string             `bson:"imagePublicId"`
	ProjectURL    string             `bson:"projectUrl"`
	GithubURL     string             `bson:"githubUrl"`
	PrivacyPolicy string             `bson:"privacyPolicy"`
	Featured      bool               `bson:"featured"`
	Order         int                `bson:"order"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toDoc(p *domain.Project) projectDoc {
	return projectDoc{
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		ProjectType:   p.ProjectType,
		Technologies:  technologiesOrEmpty(p.Technologies),
		ImageURL:      p.ImageURL,
		ImagePublicID: p.ImagePublicID,
		ProjectURL:    p.ProjectURL,
		GithubURL:     p.GithubURL,
		PrivacyPolicy: p.PrivacyPolicy,
		Featured:      p.Featured,
		Order:         p.Order,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d projectDoc) toDomain() *domain.Project {
	return &domain.Project{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Slug:          d.Slug,
		Description:   d.Description,
		ProjectType:   d.ProjectType,
		Technologies:  technologiesOrEmpty(d.Technologies),
		ImageURL:      d.ImageURL,
		ImagePublicID: d.ImagePublicID,
		ProjectURL:    d.ProjectURL,
		GithubURL:     d.GithubURL,
		PrivacyPolicy: d.PrivacyPolicy,
		Featured:      d.Featured,
		Order:         d.Order,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoStore persists projects in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(projectsCollection)}
}

// EnsureIndexes creates the unique slug index (ignoring empty slugs) and the
// listing sort index.
func (r *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().
				SetName("slug_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"slug": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("order_created"),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure project indexes: %w", err)
	}
	return nil
}

func (r *MongoStore) List(ctx context.Context) ([]domain.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoStore) ListMissingSlug(ctx context.Context) ([]domain.Project, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"slug": bson.M{"$exists": false}},
		bson.M{"slug": ""},
		bson.M{"slug": nil},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoStore) find(ctx context.Context, filter any, opts *options.FindOptions) ([]domain.Project, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classifyMongoError(err)
	}
	defer cur.Close(ctx)

	out := make([]domain.Project, 0, 16)
	for cur.Next(ctx) {
		var d projectDoc
		if err := cur.Decode(&d); err != nil {
			return nil, classifyMongoError(err)
		}
		out = append(out, *d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, classifyMongoError(err)
	}
	return out, nil
}

func (r *MongoStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoStore) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoStore) findOne(ctx context.Context, filter any) (*domain.Project, error) {
	var d projectDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, classifyMongoError(err)
	}
	return d.toDomain(), nil
}

func (r *MongoStore) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, classifyMongoError(err)
	}
	return n > 0, nil
}

func (r *MongoStore) Insert(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	d := toDoc(p)
	d.ID = primitive.NewObjectID()
	d.CreatedAt, d.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return nil, classifyMongoError(err)
	}
	return d.toDomain(), nil
}

func (r *MongoStore) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	d := toDoc(p)
	set := bson.M{
		"title":         d.Title,
		"slug":          d.Slug,
		"description":   d.Description,
		"projectType":   d.ProjectType,
		"technologies":  d.Technologies,
		"imageUrl":      d.ImageURL,
		"imagePublicId": d.ImagePublicID,
		"projectUrl":    d.ProjectURL,
		"githubUrl":     d.GithubURL,
		"privacyPolicy": d.PrivacyPolicy,
		"featured":      d.Featured,
		"order":         d.Order,
		"updatedAt":     time.Now().UTC().Truncate(time.Millisecond),
	}

	var out projectDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, classifyMongoError(err)
	}
	return out.toDomain(), nil
}

func (r *MongoStore) Delete(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var out projectDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&out); err != nil {
		return nil, classifyMongoError(err)
	}
	return out.toDomain(), nil
}

func classifyMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: slug", domain.ErrDuplicateKey)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
}

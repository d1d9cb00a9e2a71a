package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roombook/identity-system/internal/core/domain"
)

const identityCollection = "identities"

// IdentityRepository is the MongoDB-backed IdentityStore adapter, an
// alternative to the default file backend for deployments that already run
// MongoDB. A unique index on email makes the check-then-act registration
// race collapse into a duplicate-key error.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

// Init creates the unique email index. Satisfies the same startup contract
// as the file adapter's Init.
func (r *IdentityRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return domain.StorageError("create email index", err)
	}
	return nil
}

type mongoIdentity struct {
	ID             string    `bson:"_id"`
	DisplayName    string    `bson:"display_name"`
	Email          string    `bson:"email"`
	CredentialHash string    `bson:"credential_hash"`
	Role           string    `bson:"role"`
	Active         bool      `bson:"active"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	if _, err := r.coll.InsertOne(ctx, toMongo(identity)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return domain.StorageError("insert identity", err)
	}
	return nil
}

func (r *IdentityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": identity.ID}, toMongo(identity))
	if err != nil {
		return domain.StorageError("replace identity", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) Get(ctx context.Context, id string) (*domain.Identity, error) {
	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, domain.StorageError("find identity", err)
	}
	return fromMongo(mi)
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, domain.StorageError("find identity by email", err)
	}
	return fromMongo(mi)
}

func (r *IdentityRepository) List(ctx context.Context) ([]*domain.Identity, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.StorageError("list identities", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Identity
	for cur.Next(ctx) {
		var mi mongoIdentity
		if err := cur.Decode(&mi); err != nil {
			return nil, domain.StorageError("decode identity", err)
		}
		identity, err := fromMongo(mi)
		if err != nil {
			return nil, err
		}
		out = append(out, identity)
	}
	if err := cur.Err(); err != nil {
		return nil, domain.StorageError("iterate identities", err)
	}
	return out, nil
}

func (r *IdentityRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, domain.StorageError("count identities by email", err)
	}
	return n > 0, nil
}

func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, domain.StorageError("count identities", err)
	}
	return int(n), nil
}

func toMongo(identity *domain.Identity) mongoIdentity {
	return mongoIdentity{
		ID:             identity.ID,
		DisplayName:    identity.DisplayName,
		Email:          identity.Email,
		CredentialHash: identity.CredentialHash,
		Role:           string(identity.Role),
		Active:         identity.Active,
		CreatedAt:      identity.CreatedAt,
		UpdatedAt:      identity.UpdatedAt,
	}
}

func fromMongo(mi mongoIdentity) (*domain.Identity, error) {
	role, ok := domain.ParseRole(mi.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q for identity %s", mi.Role, mi.ID)
	}
	return &domain.Identity{
		ID:             mi.ID,
		DisplayName:    mi.DisplayName,
		Email:          mi.Email,
		CredentialHash: mi.CredentialHash,
		Role:           role,
		Active:         mi.Active,
		CreatedAt:      mi.CreatedAt.UTC(),
		UpdatedAt:      mi.UpdatedAt.UTC(),
	}, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"heartwave/dating-app/internal/domain"
	"heartwave/dating-app/internal/repository"
)

const profileCollectionName = "profiles"

// mongoProfileRepository implements repository.ProfileRepository.
// Profiles are keyed by the owning user's ID (unique index).
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new Profile repository backed by MongoDB.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// GetByUserID retrieves the profile owned by the given user.
func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	var profile domain.Profile
	filter := bson.M{"userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// EnsureProfile returns the user's profile, creating it from the seed
// values when none exists yet. The seed comes from configuration,
// never from package-level defaults.
func (r *mongoProfileRepository) EnsureProfile(ctx context.Context, userID primitive.ObjectID, seed domain.Profile) (*domain.Profile, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	seed.ID = primitive.NewObjectID()
	seed.UserID = userID
	now := time.Now().UTC()
	seed.CreatedAt = now
	seed.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, seed); err != nil {
		// Another request may have created the profile concurrently.
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return &seed, nil
}

// SetField writes a single (dot-path) field on the user's profile.
func (r *mongoProfileRepository) SetField(ctx context.Context, userID primitive.ObjectID, fieldPath string, value interface{}) error {
	filter := bson.M{"userId": userID}
	update := bson.M{"$set": bson.M{
		fieldPath:   value,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUpdateFailed, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPhoto stores the photo reference on the user's profile.
func (r *mongoProfileRepository) SetPhoto(ctx context.Context, userID primitive.ObjectID, photo domain.PhotoRef) error {
	return r.SetField(ctx, userID, "photo", photo)
}

// Subscribe watches the user's profile document via a change stream and
// invokes onChange with the full updated document after every write.
// The returned Unsubscribe closes the stream; it is also closed when
// ctx is cancelled.
func (r *mongoProfileRepository) Subscribe(ctx context.Context, userID primitive.ObjectID, onChange func(domain.Profile)) (repository.Unsubscribe, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fullDocument.userId": userID}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var event struct {
				FullDocument domain.Profile `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				continue
			}
			onChange(event.FullDocument)
		}
	}()

	return repository.Unsubscribe(cancel), nil
}

// EnsureProfileIndexes creates the unique userId index. Call during startup.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

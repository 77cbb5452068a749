package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"heartwave/dating-app/internal/domain"
	"heartwave/dating-app/internal/repository"
)

const messageCollectionName = "messages"

// mongoMessageRepository implements repository.MessageRepository
type mongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new Message repository backed by MongoDB.
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messageCollectionName),
	}
}

// Create inserts a new chat message into the database.
func (r *mongoMessageRepository) Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	if message.ChatID == "" || message.SenderID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("message requires chatId and senderId")
	}
	if message.Kind == domain.MessagePhoto && message.Photo == nil {
		return primitive.NilObjectID, errors.New("photo message requires a photo reference")
	}

	message.ID = primitive.NewObjectID()
	message.SentAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a message by its ID.
func (r *mongoMessageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error) {
	var message domain.Message
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// GetByChatID retrieves the most recent messages of a chat, oldest first.
func (r *mongoMessageRepository) GetByChatID(ctx context.Context, chatID string, limit int64) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	filter := bson.M{"chatId": chatID}
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	// Reverse into chronological order for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// EnsureMessageIndexes creates the chatId+sentAt index. Call during startup.
func EnsureMessageIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "sentAt", Value: -1}},
	}
	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"heartwave/dating-app/internal/domain"
	"heartwave/dating-app/internal/repository"
	"heartwave/dating-app/internal/storage"
	"heartwave/dating-app/internal/upload"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotAPhoto       = errors.New("message does not carry a photo")
)

// ShareService backs the photo-share dialog in a chat: upload a photo
// into the chat's namespace and record it as a message.
type ShareService interface {
	SharePhoto(ctx context.Context, chatID string, senderID primitive.ObjectID, blob upload.Blob, onProgress storage.ProgressFunc) (*domain.Message, error)
	GetChatMessages(ctx context.Context, chatID string, limit int64) ([]domain.Message, error)

	// PhotoDownloadURL issues a short-lived URL for viewing a photo
	// message stored in a private bucket.
	PhotoDownloadURL(ctx context.Context, messageID primitive.ObjectID) (string, error)
}

type shareService struct {
	messageRepo repository.MessageRepository
	objects     storage.ObjectStorage
	policy      upload.Policy
	log         zerolog.Logger
}

// NewShareService creates a new instance of shareService.
func NewShareService(
	messageRepo repository.MessageRepository,
	objects storage.ObjectStorage,
	policy upload.Policy,
	log zerolog.Logger,
) ShareService {
	return &shareService{
		messageRepo: messageRepo,
		objects:     objects,
		policy:      policy,
		log:         log,
	}
}

// SharePhoto runs the select/confirm upload flow for the blob and, on
// success, persists a photo message in the chat.
func (s *shareService) SharePhoto(ctx context.Context, chatID string, senderID primitive.ObjectID, blob upload.Blob, onProgress storage.ProgressFunc) (*domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("chat ID is required")
	}

	session := upload.NewSession(s.policy, s.objects, "chats/"+chatID, s.log)
	session.OnProgress(onProgress)
	defer session.Reset()

	if err := session.Select(blob); err != nil {
		return nil, err
	}

	result, err := session.Confirm(ctx)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Kind:     domain.MessagePhoto,
		Photo: &domain.PhotoRef{
			RemoteURL:   result.RemoteURL,
			StoragePath: result.StoragePath,
			UpdatedAt:   time.Now().UTC(),
		},
		FileName:    blob.Name,
		ContentType: blob.MimeType,
		Size:        blob.Size,
	}

	messageID, err := s.messageRepo.Create(ctx, message)
	if err != nil {
		s.log.Error().Err(err).Str("chatId", chatID).Str("key", result.StoragePath).
			Msg("failed to persist photo message")
		return nil, upload.NewPersistenceError(err)
	}
	message.ID = messageID

	return message, nil
}

// GetChatMessages returns the chat's recent messages in chronological order.
func (s *shareService) GetChatMessages(ctx context.Context, chatID string, limit int64) ([]domain.Message, error) {
	return s.messageRepo.GetByChatID(ctx, chatID, limit)
}

// PhotoDownloadURL issues a presigned GET URL for a photo message.
func (s *shareService) PhotoDownloadURL(ctx context.Context, messageID primitive.ObjectID) (string, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrMessageNotFound
		}
		return "", err
	}
	if message.Kind != domain.MessagePhoto || message.Photo == nil {
		return "", ErrNotAPhoto
	}

	return s.objects.GeneratePresignedDownloadURL(ctx, message.Photo.StoragePath, storage.DefaultPresignedURLExpiry)
}

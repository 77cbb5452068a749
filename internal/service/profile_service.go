package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"heartwave/dating-app/internal/config"
	"heartwave/dating-app/internal/domain"
	"heartwave/dating-app/internal/repository"
	"heartwave/dating-app/internal/storage"
	"heartwave/dating-app/internal/upload"
)

// ProfileService backs the profile screen: it serves the profile
// document, mirrors live changes, and binds a photo upload session to
// the persisted profile picture.
type ProfileService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)

	// SetProfilePhoto runs the full select/confirm upload flow for the
	// given blob and persists the resulting reference on the profile.
	// Progress percentages are mirrored to onProgress so the caller can
	// drive a blocking overlay. A persistence failure does not remove
	// the already-uploaded object.
	SetProfilePhoto(ctx context.Context, userID primitive.ObjectID, blob upload.Blob, onProgress storage.ProgressFunc) (*domain.PhotoRef, error)

	// WatchProfile delivers every subsequent profile change to onChange.
	WatchProfile(ctx context.Context, userID primitive.ObjectID, onChange func(domain.Profile)) (repository.Unsubscribe, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	objects     storage.ObjectStorage
	policy      upload.Policy
	seed        config.ProfileConfig
	log         zerolog.Logger
}

// NewProfileService creates a new instance of profileService. The seed
// values populate freshly created profiles.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	objects storage.ObjectStorage,
	policy upload.Policy,
	seed config.ProfileConfig,
	log zerolog.Logger,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		objects:     objects,
		policy:      policy,
		seed:        seed,
		log:         log,
	}
}

// GetProfile returns the user's profile, creating it from the seed
// defaults on first access.
func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	seed := domain.Profile{
		DisplayName: s.seed.DefaultDisplayName,
		Bio:         s.seed.DefaultBio,
		Likes:       append([]string(nil), s.seed.SeedLikes...),
	}
	return s.profileRepo.EnsureProfile(ctx, userID, seed)
}

// SetProfilePhoto uploads the blob into the user's namespace and writes
// the {remoteUrl, storagePath, updatedAt} reference onto the profile.
func (s *profileService) SetProfilePhoto(ctx context.Context, userID primitive.ObjectID, blob upload.Blob, onProgress storage.ProgressFunc) (*domain.PhotoRef, error) {
	session := upload.NewSession(s.policy, s.objects, "users/"+userID.Hex(), s.log)
	session.OnProgress(onProgress)
	defer session.Reset()

	if err := session.Select(blob); err != nil {
		return nil, err
	}

	result, err := session.Confirm(ctx)
	if err != nil {
		return nil, err
	}

	photo := domain.PhotoRef{
		RemoteURL:   result.RemoteURL,
		StoragePath: result.StoragePath,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.profileRepo.SetPhoto(ctx, userID, photo); err != nil {
		// The object stays where it is: cleaning up orphans is a
		// separate concern, and the user can simply retry the save.
		s.log.Error().Err(err).Str("userId", userID.Hex()).Str("key", photo.StoragePath).
			Msg("failed to persist profile photo reference")
		return nil, upload.NewPersistenceError(err)
	}

	return &photo, nil
}

// WatchProfile passes through to the repository's change subscription.
func (s *profileService) WatchProfile(ctx context.Context, userID primitive.ObjectID, onChange func(domain.Profile)) (repository.Unsubscribe, error) {
	return s.profileRepo.Subscribe(ctx, userID, onChange)
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhotoRef is the stable reference to an uploaded photo: the URL it is
// served from plus the storage key it lives under. The key is kept so
// the object can be located (or eventually deleted) independently of
// the serving URL.
type PhotoRef struct {
	RemoteURL   string    `bson:"remoteUrl" json:"remoteUrl"`
	StoragePath string    `bson:"storagePath" json:"-"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Profile is the public-facing record shown on the profile screen.
// One profile per user, keyed by the owning user's ID.
type Profile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Bio         string             `bson:"bio" json:"bio"`
	Likes       []string           `bson:"likes,omitempty" json:"likes,omitempty"`
	Photo       *PhotoRef          `bson:"photo,omitempty" json:"photo,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

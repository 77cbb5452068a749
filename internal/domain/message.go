package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageKind distinguishes message payloads within a chat.
type MessageKind string

const (
	MessagePhoto MessageKind = "photo"
	MessageText  MessageKind = "text"
)

// Message stores a single chat message. For photo messages the actual
// image resides in object storage; the document carries its reference
// plus the metadata the client declared at upload time.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID      string             `bson:"chatId" json:"chatId"`
	SenderID    primitive.ObjectID `bson:"senderId" json:"senderId"`
	Kind        MessageKind        `bson:"kind" json:"kind"`
	Text        string             `bson:"text,omitempty" json:"text,omitempty"`
	Photo       *PhotoRef          `bson:"photo,omitempty" json:"photo,omitempty"`
	FileName    string             `bson:"fileName,omitempty" json:"fileName,omitempty"`
	ContentType string             `bson:"contentType,omitempty" json:"contentType,omitempty"`
	Size        int64              `bson:"size,omitempty" json:"size,omitempty"`
	SentAt      time.Time          `bson:"sentAt" json:"sentAt"`
}

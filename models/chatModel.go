package models

import (
	"time"
)

// ChatMessage is a message between two linked users. Both ids are user ids.
type ChatMessage struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	SenderID   int64     `gorm:"not null;index:idx_chat_pair;column:sender_id" json:"sender_id"`
	ReceiverID int64     `gorm:"not null;index:idx_chat_pair;column:receiver_id" json:"receiver_id"`
	Message    string    `gorm:"type:text;not null;column:message" json:"message"`
	SentAt     time.Time `gorm:"not null;index;column:sent_at" json:"sent_at"`
	Sender     User      `gorm:"foreignKey:SenderID;references:ID" json:"-"`
	Receiver   User      `gorm:"foreignKey:ReceiverID;references:ID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatEntry is a history row labelled with the sender's role and names.
type ChatEntry struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"senderId"`
	ReceiverID   int64     `json:"receiverId"`
	Message      string    `json:"message"`
	SentAt       time.Time `json:"sentAt"`
	SenderRole   Role      `json:"senderRole"`
	SenderName   string    `json:"senderName"`
	ReceiverName string    `json:"receiverName"`
}

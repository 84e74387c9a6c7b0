// internal/models/chat.go
package models

import "time"

type LastMessage struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  string    `json:"senderId"`
}

type Conversation struct {
	ID            string       `json:"id"`
	OtherUserID   string       `json:"otherUserId"`
	OtherUserName string       `json:"otherUserName"`
	ProductID     string       `json:"productId,omitempty"`
	ProductName   string       `json:"productName,omitempty"`
	UnreadCount   int          `json:"unreadCount"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	LastMessage   *LastMessage `json:"lastMessage,omitempty"`

	// Messages is held client-side only; the list endpoint never fills it.
	Messages []ChatMessage `json:"-"`
}

type ConversationList struct {
	Conversations []Conversation `json:"conversations"`
	Pagination    Pagination     `json:"pagination"`
}

type ChatMessage struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId,omitempty"`
	Text        string      `json:"text"`
	SenderID    string      `json:"senderId"`
	SenderName  string      `json:"senderName,omitempty"`
	SenderRole  UserRole    `json:"senderRole,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	IsRead      bool        `json:"isRead"`
	MessageType MessageType `json:"messageType,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
}

type MessageList struct {
	Messages   []ChatMessage `json:"messages"`
	Pagination Pagination    `json:"pagination"`
}

type CreateConversationRequest struct {
	SellerID    string `json:"sellerId" validate:"required"`
	SellerName  string `json:"sellerName"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

// CreatedConversation is the raw conversation returned on creation.
type CreatedConversation struct {
	ID          string `json:"id"`
	BuyerID     string `json:"buyerId"`
	SellerID    string `json:"sellerId"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

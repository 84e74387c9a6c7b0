// internal/api/chat.go
package api

import (
	"context"
	"net/url"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type ChatService struct {
	c *Client
}

func conversationPath(id string) string {
	return "/chat/conversations/" + url.PathEscape(id)
}

func (s *ChatService) Conversations(ctx context.Context, page, limit int) (*models.ConversationList, error) {
	var resp models.ConversationList
	q := utils.NormalizePagination(page, limit, 20).Apply(nil)
	if err := s.c.Get(ctx, "/chat/conversations", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *ChatService) CreateConversation(ctx context.Context, req models.CreateConversationRequest) (*models.CreatedConversation, error) {
	var resp struct {
		Conversation models.CreatedConversation `json:"conversation"`
	}
	if err := s.c.Post(ctx, "/chat/conversations", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Conversation, nil
}

func (s *ChatService) Messages(ctx context.Context, conversationID string, page, limit int) (*models.MessageList, error) {
	var resp models.MessageList
	q := utils.NormalizePagination(page, limit, 50).Apply(nil)
	if err := s.c.Get(ctx, conversationPath(conversationID)+"/messages", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *ChatService) SendMessage(ctx context.Context, conversationID, text string) (*models.ChatMessage, error) {
	var resp struct {
		Message models.ChatMessage `json:"message"`
	}
	body := models.SendMessageRequest{Text: text}
	if err := s.c.Post(ctx, conversationPath(conversationID)+"/messages", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

func (s *ChatService) SendImage(ctx context.Context, conversationID, imageURL string) (*models.ChatMessage, error) {
	var resp struct {
		Message models.ChatMessage `json:"message"`
	}
	body := map[string]string{"imageUrl": imageURL}
	if err := s.c.Post(ctx, conversationPath(conversationID)+"/images", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

func (s *ChatService) MarkRead(ctx context.Context, conversationID string) error {
	return s.c.Put(ctx, conversationPath(conversationID)+"/read", nil, nil)
}

func (s *ChatService) DeleteConversation(ctx context.Context, conversationID string) error {
	return s.c.Delete(ctx, conversationPath(conversationID), nil)
}

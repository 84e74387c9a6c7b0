// internal/chat/chat.go
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/utils"
)

const (
	conversationPageSize = 20
	messagePageSize      = 50
)

type ChatAPI interface {
	Conversations(ctx context.Context, page, limit int) (*models.ConversationList, error)
	CreateConversation(ctx context.Context, req models.CreateConversationRequest) (*models.CreatedConversation, error)
	Messages(ctx context.Context, conversationID string, page, limit int) (*models.MessageList, error)
	SendMessage(ctx context.Context, conversationID, text string) (*models.ChatMessage, error)
	SendImage(ctx context.Context, conversationID, imageURL string) (*models.ChatMessage, error)
	MarkRead(ctx context.Context, conversationID string) error
	DeleteConversation(ctx context.Context, conversationID string) error
}

// ImageUploader validates and uploads a local image for use in a chat.
type ImageUploader interface {
	ChatImage(ctx context.Context, path string) (*models.UploadedImage, error)
}

type State struct {
	Conversations []models.Conversation
	ActiveID      string
	Loading       bool
	Polling       bool
	Err           string
}

// UnreadCount sums unread messages across conversations.
func (s State) UnreadCount() int {
	n := 0
	for _, c := range s.Conversations {
		n += c.UnreadCount
	}
	return n
}

// Chat keeps the user's conversations and the messages of the ones opened
// so far. The conversation list is refreshed by a background poller.
type Chat struct {
	api    ChatAPI
	images ImageUploader
	cfg    config.ChatConfig
	log    *logrus.Entry

	mu        sync.Mutex
	convs     []models.Conversation
	activeID  string
	loading   bool
	lastErr   string
	pollStop  context.CancelFunc
	pollDone  chan struct{}
	reconcile map[string]*time.Timer

	// ctx scopes reconcile refreshes; cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc

	subject observer.Subject[State]
}

// New creates a chat store. images may be nil, which disables SendImage.
func New(chatAPI ChatAPI, images ImageUploader, cfg config.ChatConfig) *Chat {
	ctx, cancel := context.WithCancel(context.Background())
	return &Chat{
		api:       chatAPI,
		images:    images,
		cfg:       cfg,
		log:       logrus.WithField("component", "chat"),
		reconcile: make(map[string]*time.Timer),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *Chat) Subscribe(fn func(State)) func() {
	return c.subject.Subscribe(fn)
}

func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Chat) snapshot() State {
	convs := make([]models.Conversation, len(c.convs))
	for i, conv := range c.convs {
		conv.Messages = append([]models.ChatMessage(nil), conv.Messages...)
		convs[i] = conv
	}
	return State{
		Conversations: convs,
		ActiveID:      c.activeID,
		Loading:       c.loading,
		Polling:       c.pollStop != nil,
		Err:           c.lastErr,
	}
}

func (c *Chat) publish() {
	c.mu.Lock()
	snap := c.snapshot()
	c.mu.Unlock()
	c.subject.Publish(snap)
}

func (c *Chat) UnreadCount() int {
	return c.State().UnreadCount()
}

// Active returns the selected conversation, or nil.
func (c *Chat) Active() *models.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(c.activeID); i >= 0 {
		conv := c.convs[i]
		conv.Messages = append([]models.ChatMessage(nil), conv.Messages...)
		return &conv
	}
	return nil
}

func (c *Chat) Conversation(id string) (models.Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		conv := c.convs[i]
		conv.Messages = append([]models.ChatMessage(nil), conv.Messages...)
		return conv, true
	}
	return models.Conversation{}, false
}

func (c *Chat) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.convs {
		if c.convs[i].ID == id {
			return i
		}
	}
	return -1
}

// Refresh reloads the conversation summaries. Messages already loaded for a
// conversation are kept.
func (c *Chat) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	list, err := c.api.Conversations(ctx, 1, conversationPageSize)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.lastErr = err.Error()
		c.mu.Unlock()
		c.publish()
		return fmt.Errorf("failed to load conversations: %w", err)
	}
	c.lastErr = ""
	c.convs = mergeConversations(c.convs, list.Conversations)
	c.mu.Unlock()
	c.publish()
	return nil
}

func mergeConversations(current, incoming []models.Conversation) []models.Conversation {
	loaded := make(map[string][]models.ChatMessage, len(current))
	for _, conv := range current {
		if len(conv.Messages) > 0 {
			loaded[conv.ID] = conv.Messages
		}
	}
	out := make([]models.Conversation, len(incoming))
	for i, conv := range incoming {
		if msgs, ok := loaded[conv.ID]; ok {
			conv.Messages = msgs
		}
		out[i] = conv
	}
	return out
}

// LoadMessages fetches the latest page of a conversation's messages and
// merges it into what is already held.
func (c *Chat) LoadMessages(ctx context.Context, id string) error {
	list, err := c.api.Messages(ctx, id, 1, messagePageSize)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.convs[i].Messages = mergeMessages(c.convs[i].Messages, list.Messages)
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// Select makes id the active conversation, loads its messages and marks it
// read.
func (c *Chat) Select(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.indexOf(id) < 0 {
		c.mu.Unlock()
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		if c.indexOf(id) < 0 {
			c.mu.Unlock()
			return fmt.Errorf("conversation %s not found", id)
		}
	}
	c.activeID = id
	c.mu.Unlock()

	if err := c.LoadMessages(ctx, id); err != nil {
		return err
	}
	return c.MarkRead(ctx, id)
}

func (c *Chat) MarkRead(ctx context.Context, id string) error {
	if err := c.api.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.convs[i].UnreadCount = 0
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// Send posts text to the conversation. The returned message is shown at
// once and a reconcile refresh follows after the configured delay.
func (c *Chat) Send(ctx context.Context, id, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if err := utils.ValidateStruct(models.SendMessageRequest{Text: text}); err != nil {
		return nil, err
	}
	msg, err := c.api.SendMessage(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	c.appendMessage(id, *msg)
	c.scheduleReconcile(id)
	return msg, nil
}

// SendImage uploads the image at path and posts it to the conversation.
func (c *Chat) SendImage(ctx context.Context, id, path string) (*models.ChatMessage, error) {
	if c.images == nil {
		return nil, fmt.Errorf("image uploads are not configured")
	}
	img, err := c.images.ChatImage(ctx, path)
	if err != nil {
		return nil, err
	}
	msg, err := c.api.SendImage(ctx, id, img.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to send image: %w", err)
	}
	c.appendMessage(id, *msg)
	c.scheduleReconcile(id)
	return msg, nil
}

// appendMessage adds a sent message to its conversation. A conversation not
// listed yet gets a stub entry until the next refresh fills in its summary.
func (c *Chat) appendMessage(id string, msg models.ChatMessage) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.convs = append([]models.Conversation{{ID: id}}, c.convs...)
		i = 0
	}
	conv := &c.convs[i]
	conv.Messages = mergeMessages(conv.Messages, []models.ChatMessage{msg})
	conv.LastMessage = &models.LastMessage{Text: msg.Text, Timestamp: msg.Timestamp, SenderID: msg.SenderID}
	conv.UpdatedAt = msg.Timestamp
	c.mu.Unlock()
	c.publish()
}

func (c *Chat) scheduleReconcile(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil {
		return
	}
	if t, ok := c.reconcile[id]; ok {
		t.Stop()
	}
	c.reconcile[id] = time.AfterFunc(c.cfg.ReconcileAfter(), func() {
		c.mu.Lock()
		delete(c.reconcile, id)
		c.mu.Unlock()
		log := c.log.WithField("conversation_id", id)
		if err := c.Refresh(c.ctx); err != nil && c.ctx.Err() == nil {
			log.WithError(err).Warn("Conversation reconcile failed")
		}
		if err := c.LoadMessages(c.ctx, id); err != nil && c.ctx.Err() == nil {
			log.WithError(err).Warn("Message reconcile failed")
		}
	})
}

// Start returns the conversation with sellerID about productID, creating it
// when none exists, and makes it active.
func (c *Chat) Start(ctx context.Context, sellerID, sellerName, productID, productName string) (string, error) {
	if id := c.find(sellerID, productID); id != "" {
		c.setActive(id)
		return id, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return "", err
	}
	if id := c.find(sellerID, productID); id != "" {
		c.setActive(id)
		return id, nil
	}

	req := models.CreateConversationRequest{
		SellerID:    sellerID,
		SellerName:  sellerName,
		ProductID:   productID,
		ProductName: productName,
	}
	if err := utils.ValidateStruct(req); err != nil {
		return "", err
	}
	created, err := c.api.CreateConversation(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to start conversation: %w", err)
	}

	c.mu.Lock()
	if c.indexOf(created.ID) < 0 {
		c.convs = append([]models.Conversation{{
			ID:            created.ID,
			OtherUserID:   sellerID,
			OtherUserName: sellerName,
			ProductID:     productID,
			ProductName:   productName,
			UpdatedAt:     time.Now(),
		}}, c.convs...)
	}
	c.activeID = created.ID
	c.mu.Unlock()
	c.publish()
	return created.ID, nil
}

func (c *Chat) find(otherUserID, productID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conv := range c.convs {
		if conv.OtherUserID == otherUserID && conv.ProductID == productID {
			return conv.ID
		}
	}
	return ""
}

func (c *Chat) setActive(id string) {
	c.mu.Lock()
	c.activeID = id
	c.mu.Unlock()
	c.publish()
}

func (c *Chat) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.convs = append(c.convs[:i], c.convs[i+1:]...)
	}
	if c.activeID == id {
		c.activeID = ""
	}
	if t, ok := c.reconcile[id]; ok {
		t.Stop()
		delete(c.reconcile, id)
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// StartPolling refreshes the conversation list now and then on every poll
// interval until StopPolling, Stop or ctx ends. Calling it while already
// polling does nothing.
func (c *Chat) StartPolling(ctx context.Context) {
	c.mu.Lock()
	if c.pollStop != nil || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.pollStop = cancel
	c.pollDone = done
	c.mu.Unlock()

	c.log.WithField("interval", c.cfg.PollEvery()).Debug("Chat polling started")
	go c.poll(pctx, done)
	c.publish()
}

func (c *Chat) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.cfg.PollEvery())
	defer ticker.Stop()

	for {
		if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
			c.log.WithError(err).Debug("Conversation poll failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// StopPolling stops the poller and waits for it to exit.
func (c *Chat) StopPolling() {
	c.mu.Lock()
	stop, done := c.pollStop, c.pollDone
	c.pollStop, c.pollDone = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
	c.log.Debug("Chat polling stopped")
	c.publish()
}

// Reset drops everything held for the current user.
func (c *Chat) Reset() {
	c.StopPolling()
	c.mu.Lock()
	for id, t := range c.reconcile {
		t.Stop()
		delete(c.reconcile, id)
	}
	c.convs = nil
	c.activeID = ""
	c.lastErr = ""
	c.mu.Unlock()
	c.publish()
}

// Stop ends polling and pending reconciles. The store is unusable afterwards.
func (c *Chat) Stop() {
	c.StopPolling()
	c.mu.Lock()
	c.cancel()
	for id, t := range c.reconcile {
		t.Stop()
		delete(c.reconcile, id)
	}
	c.mu.Unlock()
}

// internal/chat/chat_test.go
package chat_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/chat"
	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/testutil"
	"github.com/vibing/vibing-client/internal/utils"
)

type backend struct {
	mu            sync.Mutex
	messages      []gin.H
	listCalls     int32
	messageCalls  int32
	sendCalls     int32
	createCalls   int32
	markReadCalls int32
	unread        int32
}

func (b *backend) routes(r *gin.RouterGroup) {
	r.GET("/chat/conversations", func(c *gin.Context) {
		atomic.AddInt32(&b.listCalls, 1)
		c.JSON(http.StatusOK, gin.H{
			"conversations": []gin.H{{
				"id":            "conv-1",
				"otherUserId":   "seller-1",
				"otherUserName": "Lee",
				"productId":     "prod-1",
				"productName":   "JWT Kit",
				"unreadCount":   atomic.LoadInt32(&b.unread),
				"updatedAt":     time.Now().Format(time.RFC3339),
			}},
			"pagination": gin.H{"currentPage": 1, "totalPages": 1, "totalItems": 1, "itemsPerPage": 20},
		})
	})
	r.POST("/chat/conversations", func(c *gin.Context) {
		atomic.AddInt32(&b.createCalls, 1)
		c.JSON(http.StatusCreated, gin.H{"conversation": gin.H{"id": "conv-2", "buyerId": "u-1", "sellerId": "seller-2"}})
	})
	r.GET("/chat/conversations/:id/messages", func(c *gin.Context) {
		atomic.AddInt32(&b.messageCalls, 1)
		b.mu.Lock()
		msgs := append([]gin.H(nil), b.messages...)
		b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"messages": msgs, "pagination": gin.H{"currentPage": 1, "totalPages": 1}})
	})
	r.POST("/chat/conversations/:id/messages", func(c *gin.Context) {
		atomic.AddInt32(&b.sendCalls, 1)
		var body models.SendMessageRequest
		_ = c.ShouldBindJSON(&body)
		msg := gin.H{
			"id":          "msg-new",
			"text":        body.Text,
			"senderId":    "u-1",
			"timestamp":   time.Now().Format(time.RFC3339Nano),
			"messageType": "text",
		}
		b.mu.Lock()
		b.messages = append(b.messages, msg)
		b.mu.Unlock()
		atomic.StoreInt32(&b.unread, 0)
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	})
	r.PUT("/chat/conversations/:id/read", func(c *gin.Context) {
		atomic.AddInt32(&b.markReadCalls, 1)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	r.DELETE("/chat/conversations/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}

func newChat(t *testing.T, cfg config.ChatConfig) (*chat.Chat, *backend) {
	t.Helper()
	b := &backend{unread: 2, messages: []gin.H{{
		"id":        "msg-1",
		"text":      "Is the license transferable?",
		"senderId":  "u-1",
		"timestamp": time.Now().Add(-time.Hour).Format(time.RFC3339Nano),
	}}}
	fake := testutil.NewFakeAPI(t, b.routes)
	client := fake.Client("token")
	c := chat.New(client.Chat, nil, cfg)
	t.Cleanup(c.Stop)
	return c, b
}

func TestSelectLoadsMessagesAndMarksRead(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 1000})
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, 2, c.UnreadCount())

	require.NoError(t, c.Select(ctx, "conv-1"))
	active := c.Active()
	require.NotNil(t, active)
	assert.Len(t, active.Messages, 1)
	assert.Equal(t, 0, c.UnreadCount())
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.markReadCalls))
}

func TestRefreshKeepsLoadedMessages(t *testing.T) {
	c, _ := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 1000})
	ctx := context.Background()

	require.NoError(t, c.Select(ctx, "conv-1"))
	require.NoError(t, c.Refresh(ctx))

	conv, ok := c.Conversation("conv-1")
	require.True(t, ok)
	assert.Len(t, conv.Messages, 1)
}

func TestSendIsOptimisticAndReconcileDoesNotDuplicate(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 20})
	ctx := context.Background()
	require.NoError(t, c.Select(ctx, "conv-1"))
	before := atomic.LoadInt32(&b.messageCalls)

	msg, err := c.Send(ctx, "conv-1", "  Yes, it is.  ")
	require.NoError(t, err)
	assert.Equal(t, "Yes, it is.", msg.Text)

	conv, _ := c.Conversation("conv-1")
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "msg-new", conv.Messages[1].ID)
	assert.Equal(t, "Yes, it is.", conv.LastMessage.Text)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&b.messageCalls) > before
	}, 2*time.Second, 10*time.Millisecond)

	// Let the reconcile finish merging.
	time.Sleep(50 * time.Millisecond)
	conv, _ = c.Conversation("conv-1")
	assert.Len(t, conv.Messages, 2)
}

func TestReconcileRefetchesConversationList(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 20})
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, 2, c.UnreadCount())
	before := atomic.LoadInt32(&b.listCalls)

	_, err := c.Send(ctx, "conv-1", "Thanks!")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&b.listCalls) > before && c.UnreadCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSendToUnlistedConversationKeepsMessage(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 1000})

	_, err := c.Send(context.Background(), "conv-7", "Hello there")
	require.NoError(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt32(&b.listCalls))

	conv, ok := c.Conversation("conv-7")
	require.True(t, ok)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "Hello there", conv.Messages[0].Text)
	assert.Equal(t, "Hello there", conv.LastMessage.Text)
}

func TestSendValidatesBeforeNetwork(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 1000})
	ctx := context.Background()

	_, err := c.Send(ctx, "conv-1", "   ")
	assert.True(t, utils.IsValidationError(err))

	_, err = c.Send(ctx, "conv-1", strings.Repeat("a", 2001))
	assert.True(t, utils.IsValidationError(err))

	assert.EqualValues(t, 0, atomic.LoadInt32(&b.sendCalls))
}

func TestStartReusesExistingConversation(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 1000, ReconcileDelay: 1000})
	ctx := context.Background()

	id, err := c.Start(ctx, "seller-1", "Lee", "prod-1", "JWT Kit")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", id)
	assert.EqualValues(t, 0, atomic.LoadInt32(&b.createCalls))

	id, err = c.Start(ctx, "seller-2", "Park", "prod-9", "CLI Kit")
	require.NoError(t, err)
	assert.Equal(t, "conv-2", id)
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.createCalls))
	assert.Equal(t, "conv-2", c.State().ActiveID)

	require.NoError(t, c.Delete(ctx, "conv-2"))
	assert.Empty(t, c.State().ActiveID)
	_, ok := c.Conversation("conv-2")
	assert.False(t, ok)
}

func TestPollingRefreshesUntilStopped(t *testing.T) {
	c, b := newChat(t, config.ChatConfig{PollInterval: 10, ReconcileDelay: 1000})

	c.StartPolling(context.Background())
	assert.True(t, c.State().Polling)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&b.listCalls) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	c.StopPolling()
	assert.False(t, c.State().Polling)
	calls := atomic.LoadInt32(&b.listCalls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&b.listCalls))

	c.Reset()
	assert.Empty(t, c.State().Conversations)
}

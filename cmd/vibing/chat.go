// cmd/vibing/chat.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/app"
	"github.com/vibing/vibing-client/internal/chat"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/models"
)

func runChat(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if !a.Session.State().IsAuthenticated() {
		return api.ErrAuthRequired
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "list":
		if err := a.Chat.Refresh(ctx); err != nil {
			return err
		}
		printConversations(a, out, a.Chat.State())
	case "open":
		if len(rest) != 1 {
			return errUsage
		}
		if err := a.Chat.Select(ctx, rest[0]); err != nil {
			return err
		}
		printMessages(a, out, rest[0])
	case "send":
		if len(rest) < 2 {
			return errUsage
		}
		msg, err := a.Chat.Send(ctx, rest[0], strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "sent %s\n", msg.ID)
	case "image":
		if len(rest) != 2 {
			return errUsage
		}
		msg, err := a.Chat.SendImage(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "sent %s\n", msg.ImageURL)
	case "start":
		if len(rest) < 1 || len(rest) > 2 {
			return errUsage
		}
		return chatStart(ctx, a, out, rest)
	case "delete":
		if len(rest) != 1 {
			return errUsage
		}
		return a.Chat.Delete(ctx, rest[0])
	case "watch":
		return chatWatch(ctx, a, out)
	default:
		return errUsage
	}
	return nil
}

// chatStart opens the conversation with a seller, about a product when one
// is given.
func chatStart(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	sellerID, sellerName := args[0], ""
	var productID, productName string
	if len(args) == 2 {
		p, err := a.Client.Products.Get(ctx, args[1])
		if err != nil {
			return err
		}
		productID, productName = p.ID, p.Title
		sellerName = p.Author
	}

	id, err := a.Chat.Start(ctx, sellerID, sellerName, productID, productName)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, id)
	return nil
}

func printConversations(a *app.App, out io.Writer, st chat.State) {
	if len(st.Conversations) == 0 {
		fmt.Fprintln(out, a.T(i18n.KeyChatNoConversations))
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tWITH\tPRODUCT\tUNREAD\tLAST")
	for _, c := range st.Conversations {
		last := ""
		if c.LastMessage != nil {
			last = clock(c.LastMessage.Timestamp) + " " + truncate(c.LastMessage.Text, 40)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", c.ID, c.OtherUserName, truncate(c.ProductName, 24), c.UnreadCount, last)
	}
	w.Flush()
	if n := st.UnreadCount(); n > 0 {
		fmt.Fprintln(out, a.T(i18n.KeyChatUnread, n))
	}
}

func printMessages(a *app.App, out io.Writer, id string) {
	conv, ok := a.Chat.Conversation(id)
	if !ok {
		return
	}
	me := ""
	if u := a.Session.State().User; u != nil {
		me = u.ID
	}
	fmt.Fprintf(out, "%s · %s\n\n", conv.OtherUserName, conv.ProductName)
	for _, m := range conv.Messages {
		fmt.Fprintln(out, formatMessage(m, me))
	}
}

func formatMessage(m models.ChatMessage, me string) string {
	who := m.SenderName
	if m.SenderID == me {
		who = "me"
	}
	text := m.Text
	if m.MessageType == models.MessageTypeImage {
		text = "[image] " + m.ImageURL
	}
	return fmt.Sprintf("[%s] %s: %s", clock(m.Timestamp), who, text)
}

// chatWatch prints new messages as the poller picks them up, until the
// context ends.
func chatWatch(ctx context.Context, a *app.App, out io.Writer) error {
	updates := make(chan chat.State, 1)
	unsubscribe := a.Chat.Subscribe(func(st chat.State) {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- st:
		default:
		}
	})
	defer unsubscribe()

	if err := a.Chat.Refresh(ctx); err != nil {
		return err
	}
	st := a.Chat.State()
	printConversations(a, out, st)
	fmt.Fprintln(out, "\nwatching for new messages, Ctrl-C to stop")

	seen := make(map[string]time.Time, len(st.Conversations))
	for _, c := range st.Conversations {
		if c.LastMessage != nil {
			seen[c.ID] = c.LastMessage.Timestamp
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-updates:
			for _, c := range st.Conversations {
				if c.LastMessage == nil || !c.LastMessage.Timestamp.After(seen[c.ID]) {
					continue
				}
				seen[c.ID] = c.LastMessage.Timestamp
				fmt.Fprintf(out, "[%s] %s (%s): %s\n", clock(c.LastMessage.Timestamp), c.OtherUserName, c.ID, c.LastMessage.Text)
			}
		}
	}
}

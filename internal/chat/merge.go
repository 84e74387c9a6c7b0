// internal/chat/merge.go
package chat

import (
	"sort"

	"github.com/vibing/vibing-client/internal/models"
)

// mergeMessages unions two message lists by ID, preferring the incoming
// copy, ordered by timestamp.
func mergeMessages(current, incoming []models.ChatMessage) []models.ChatMessage {
	byID := make(map[string]int, len(current)+len(incoming))
	out := make([]models.ChatMessage, 0, len(current)+len(incoming))
	for _, m := range current {
		byID[m.ID] = len(out)
		out = append(out, m)
	}
	for _, m := range incoming {
		if i, ok := byID[m.ID]; ok {
			out[i] = m
			continue
		}
		byID[m.ID] = len(out)
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

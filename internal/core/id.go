package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ConversationID string

// NewConversationID mints an identifier for a conversation whose first
// request did not carry one. The unix timestamp keeps ids roughly sortable;
// the UUID fragment guarantees uniqueness within the same second.
func NewConversationID() ConversationID {
	return ConversationID(fmt.Sprintf("conv_%d_%s", time.Now().Unix(), uuid.NewString()[:8]))
}

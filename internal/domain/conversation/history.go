package conversation

import (
	"sort"

	"tee-chat/services/chat-gateway/internal/utils/functional"
)

// VisibleMessages flattens the conversation to the history consumed by AI
// calls and default exports: base messages plus the active branch, ordered
// by timestamp, with streaming and empty-content entries dropped.
func (c *Conversation) VisibleMessages() []Message {
	raw := c.RawMessages()
	return functional.Filter(raw, func(m Message) bool {
		return m.Exportable()
	})
}

// RawMessages returns the full base-plus-active-branch sequence, time-ordered
// but unfiltered. Callers that need streaming placeholders or empty drafts
// (editing flows) use this instead of VisibleMessages.
func (c *Conversation) RawMessages() []Message {
	var all []Message
	all = append(all, c.BaseMessages...)
	if active := c.ActiveBranch(); active != nil {
		all = append(all, active.Messages...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// MessagesThrough returns the raw sequence truncated after the given message
// ID, inclusive. Used by exclude-after-id editing flows. When the ID is not
// present the full raw sequence is returned.
func (c *Conversation) MessagesThrough(messageID string) []Message {
	raw := c.RawMessages()
	for i := range raw {
		if raw[i].ID == messageID {
			return raw[:i+1]
		}
	}
	return raw
}

// HasBranchDivergence reports whether any message carries more than one
// alternative continuation.
func (c *Conversation) HasBranchDivergence() bool {
	return functional.Any(c.RawMessages(), func(m Message) bool {
		return len(m.Branches) > 1
	})
}

// BranchCount sums the alternative continuations over all diverged messages.
func (c *Conversation) BranchCount() int {
	return functional.SumBy(c.RawMessages(), func(m Message) int {
		if len(m.Branches) > 1 {
			return len(m.Branches)
		}
		return 0
	})
}

// BranchPointCount counts the messages where the conversation diverges,
// i.e. messages carrying more than one alternative continuation. Scope-level
// export totals aggregate branch points, not alternatives.
func (c *Conversation) BranchPointCount() int {
	return functional.SumBy(c.RawMessages(), func(m Message) int {
		if len(m.Branches) > 1 {
			return 1
		}
		return 0
	})
}

package conversation

import (
	"testing"
	"time"
)

func msgAt(id string, role MessageRole, content string, ts time.Time) Message {
	return Message{ID: id, Role: role, Content: content, Timestamp: ts}
}

func branchedConversation(t *testing.T) *Conversation {
	t.Helper()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	conv := NewConversation("conv_test1", 1, nil)
	conv.BaseMessages = []Message{
		msgAt("m1", MessageRoleUser, "first question", base),
		msgAt("m2", MessageRoleAssistant, "first answer", base.Add(time.Second)),
	}
	conv.Branches = []Branch{
		{
			ID:        "main",
			Name:      "main",
			CreatedAt: base,
			Messages: []Message{
				msgAt("m3", MessageRoleUser, "follow-up", base.Add(2*time.Second)),
				msgAt("m4", MessageRoleAssistant, "follow-up answer", base.Add(3*time.Second)),
			},
		},
		{
			ID:        "alt",
			Name:      "regenerated",
			CreatedAt: base,
			Messages: []Message{
				msgAt("m5", MessageRoleAssistant, "alternate answer", base.Add(2*time.Second)),
			},
		},
	}
	conv.ActiveBranchID = "main"
	return conv
}

func TestVisibleMessagesFlattensBaseAndActiveBranch(t *testing.T) {
	conv := branchedConversation(t)

	got := conv.VisibleMessages()
	wantIDs := []string{"m1", "m2", "m3", "m4"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d messages, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestVisibleMessagesExcludesStreamingAndEmpty(t *testing.T) {
	conv := branchedConversation(t)
	base := time.Date(2024, 6, 1, 12, 0, 10, 0, time.UTC)

	main := conv.ActiveBranch()
	main.Messages = append(main.Messages,
		Message{ID: "m6", Role: MessageRoleAssistant, Content: "partial", Timestamp: base, IsStreaming: true},
		Message{ID: "m7", Role: MessageRoleUser, Content: "   ", Timestamp: base.Add(time.Second)},
		msgAt("m8", MessageRoleUser, "real question", base.Add(2*time.Second)),
	)

	for _, m := range conv.VisibleMessages() {
		if m.ID == "m6" || m.ID == "m7" {
			t.Fatalf("message %s should be excluded from visible history", m.ID)
		}
	}

	// Raw sequence keeps everything.
	raw := conv.RawMessages()
	found := map[string]bool{}
	for _, m := range raw {
		found[m.ID] = true
	}
	if !found["m6"] || !found["m7"] {
		t.Fatal("raw sequence must retain streaming and empty messages")
	}
}

func TestVisibleMessagesSortedByTimestamp(t *testing.T) {
	conv := branchedConversation(t)

	// Base message deliberately timestamped after the branch messages.
	late := time.Date(2024, 6, 1, 12, 1, 0, 0, time.UTC)
	conv.BaseMessages = append(conv.BaseMessages, msgAt("m9", MessageRoleUser, "late base message", late))

	got := conv.VisibleMessages()
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("messages out of order at %d: %s before %s", i, got[i].ID, got[i-1].ID)
		}
	}
	if got[len(got)-1].ID != "m9" {
		t.Fatalf("expected m9 last, got %s", got[len(got)-1].ID)
	}
}

func TestSwitchBranch(t *testing.T) {
	conv := branchedConversation(t)

	if err := conv.SwitchBranch("alt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := conv.VisibleMessages()
	wantIDs := []string{"m1", "m2", "m5"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d messages after switch, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	if err := conv.SwitchBranch("missing"); err == nil {
		t.Fatal("expected error switching to unknown branch")
	}
	if conv.ActiveBranchID != "alt" {
		t.Fatalf("failed switch must not change active branch, got %s", conv.ActiveBranchID)
	}
}

func TestMessagesThrough(t *testing.T) {
	conv := branchedConversation(t)

	got := conv.MessagesThrough("m3")
	if len(got) != 3 || got[len(got)-1].ID != "m3" {
		t.Fatalf("expected sequence ending at m3, got %d messages", len(got))
	}

	// Unknown ID returns the full raw sequence.
	all := conv.MessagesThrough("nope")
	if len(all) != len(conv.RawMessages()) {
		t.Fatalf("expected full sequence for unknown ID, got %d", len(all))
	}
}

func TestBranchCounts(t *testing.T) {
	conv := branchedConversation(t)
	if conv.HasBranchDivergence() {
		t.Fatal("no message-level branches yet")
	}

	alts := []Branch{
		{ID: "v1", CreatedAt: time.Now()},
		{ID: "v2", CreatedAt: time.Now()},
		{ID: "v3", CreatedAt: time.Now()},
	}
	active := "v2"
	conv.BaseMessages[1].Branches = alts
	conv.BaseMessages[1].ActiveBranchID = &active

	if !conv.HasBranchDivergence() {
		t.Fatal("expected divergence after attaching branches")
	}
	if got := conv.BranchCount(); got != 3 {
		t.Fatalf("BranchCount = %d, want 3", got)
	}
	if got := conv.BranchPointCount(); got != 1 {
		t.Fatalf("BranchPointCount = %d, want 1", got)
	}
}

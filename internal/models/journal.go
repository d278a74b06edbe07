package models

import (
	"time"
)

// ChatRole tags a chat message with its author side.
type ChatRole string

const (
	ChatRoleHuman ChatRole = "human"
	ChatRoleAI    ChatRole = "ai"
)

// EntryType is the therapeutic framework the guided flow used.
type EntryType string

const (
	EntryTypeCBT EntryType = "CBT"
	EntryTypeZEN EntryType = "ZEN"
)

// ActionableItemCount is the number of tasks derived from every entry.
const ActionableItemCount = 3

// ChatMessage is one turn of the guided-flow transcript. Stored verbatim,
// order-preserving, inside the entry's chat column.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Task is an actionable item derived from a journal entry. Its lifecycle is
// tied to the parent entry (deleted only by cascade).
type Task struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	EntryID     int64     `json:"journal_entry_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// JournalEntry is a single journaling submission with its derived tasks.
type JournalEntry struct {
	ID              int64         `json:"id"`
	UserID          string        `json:"user_id"`
	Date            time.Time     `json:"date"`
	Mood            string        `json:"mood"`
	KeyTakeaway     string        `json:"key_takeaway"`
	WordAffirmation string        `json:"word_affirmation"`
	Chat            []ChatMessage `json:"chat"`
	Type            EntryType     `json:"type"`
	Summary         string        `json:"summary"`
	Tasks           []Task        `json:"tasks"`
}

// CreateEntryInput is a validated create payload with the caller's chosen
// fields. Handlers build it after checking field presence.
type CreateEntryInput struct {
	Mood            string
	KeyTakeaway     string
	WordAffirmation string
	Chat            []ChatMessage
	Type            EntryType
	ActionableItems []string
	Summary         string
}

// Validate enforces the boundary constraints before any persistence attempt:
// chat roles and entry type must come from their closed enums, and exactly
// three actionable items must be submitted. Empty strings are valid values.
func (in *CreateEntryInput) Validate() error {
	if in.Type != EntryTypeCBT && in.Type != EntryTypeZEN {
		return &ValidationError{Field: "type", Message: "Type must be CBT or ZEN"}
	}
	for _, msg := range in.Chat {
		if msg.Role != ChatRoleHuman && msg.Role != ChatRoleAI {
			return &ValidationError{Field: "chat", Message: "Chat role must be human or ai"}
		}
	}
	if len(in.ActionableItems) != ActionableItemCount {
		return &ValidationError{Field: "actionable_items", Message: "Exactly 3 actionable items are required"}
	}
	return nil
}

// ValidationError reports which request field failed boundary validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

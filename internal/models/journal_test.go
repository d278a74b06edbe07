package models

import (
	"testing"
)

func TestCreateEntryInputValidate(t *testing.T) {
	valid := func() CreateEntryInput {
		return CreateEntryInput{
			Mood:            "calm",
			KeyTakeaway:     "breathe",
			WordAffirmation: "I am enough",
			Chat: []ChatMessage{
				{Role: ChatRoleHuman, Content: "hi"},
				{Role: ChatRoleAI, Content: "hello"},
			},
			Type:            EntryTypeZEN,
			ActionableItems: []string{"walk", "journal", "sleep"},
			Summary:         "ok day",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*CreateEntryInput)
		wantField string // "" means valid
	}{
		{
			name:   "valid ZEN entry",
			mutate: func(in *CreateEntryInput) {},
		},
		{
			name:   "valid CBT entry",
			mutate: func(in *CreateEntryInput) { in.Type = EntryTypeCBT },
		},
		{
			name:   "empty strings are valid values",
			mutate: func(in *CreateEntryInput) { in.Mood, in.Summary = "", "" },
		},
		{
			name:   "empty chat is valid",
			mutate: func(in *CreateEntryInput) { in.Chat = []ChatMessage{} },
		},
		{
			name:      "unknown type",
			mutate:    func(in *CreateEntryInput) { in.Type = "DBT" },
			wantField: "type",
		},
		{
			name:      "lowercase type",
			mutate:    func(in *CreateEntryInput) { in.Type = "zen" },
			wantField: "type",
		},
		{
			name:      "chat role outside enum",
			mutate:    func(in *CreateEntryInput) { in.Chat[1].Role = "system" },
			wantField: "chat",
		},
		{
			name:      "two actionable items",
			mutate:    func(in *CreateEntryInput) { in.ActionableItems = []string{"a", "b"} },
			wantField: "actionable_items",
		},
		{
			name:      "four actionable items",
			mutate:    func(in *CreateEntryInput) { in.ActionableItems = []string{"a", "b", "c", "d"} },
			wantField: "actionable_items",
		},
		{
			name:      "nil actionable items",
			mutate:    func(in *CreateEntryInput) { in.ActionableItems = nil },
			wantField: "actionable_items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("failed field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mindloop/journal-backend/internal/models"
	"github.com/mindloop/journal-backend/internal/services"
)

var journalStore *services.JournalStore

// validateSession resolves a bearer token to a user ID. Indirection lets
// tests substitute a stub instead of a live Redis connection.
var validateSession = services.ValidateSession

// InitJournalHandlers wires the journal handlers to the shared Postgres pool.
// Must be called once during startup, after ConnectPostgres.
func InitJournalHandlers(db *sql.DB) {
	journalStore = services.NewJournalStore(db)
}

// extractBearerToken returns the token from an "Authorization: Bearer x" header, or "".
func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// requireJournalAuth validates the session and returns the authenticated user's ID.
// Returns (uuid.Nil, false) if not authenticated.
func requireJournalAuth(r *http.Request) (uuid.UUID, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return uuid.Nil, false
	}
	userID, ok, err := validateSession(token)
	if err != nil || !ok {
		return uuid.Nil, false
	}
	return userID, true
}

type CreateJournalEntryRequest struct {
	Mood            *string              `json:"mood"`
	KeyTakeaway     *string              `json:"keyTakeaway"`
	WordAffirmation *string              `json:"wordAffirmation"`
	Chat            []models.ChatMessage `json:"chat"`
	Type            *string              `json:"type"`
	ActionableItems []string             `json:"actionableItems"`
	Summary         *string              `json:"summary"`
}

type CreateJournalEntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
}

type GetJournalEntriesResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entries []models.JournalEntry `json:"entries"`
}

type GetJournalEntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *models.JournalEntry `json:"entry"`
}

type GetUserJournalResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entries []models.JournalEntry `json:"entries"`
	User    *models.User          `json:"user"`
}

// CreateJournalEntry persists a new entry for the authenticated user along
// with its three derived tasks and the point reward, all in one transaction.
func CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireJournalAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(CreateJournalEntryResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req CreateJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(CreateJournalEntryResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	// All string fields must be present; empty string is a valid value.
	// Pointer decoding distinguishes a missing field from an empty one.
	if req.Mood == nil || req.KeyTakeaway == nil || req.WordAffirmation == nil ||
		req.Type == nil || req.Summary == nil || req.Chat == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(CreateJournalEntryResponse{
			Success: false,
			Message: "Missing required field",
		})
		return
	}

	input := models.CreateEntryInput{
		Mood:            *req.Mood,
		KeyTakeaway:     *req.KeyTakeaway,
		WordAffirmation: *req.WordAffirmation,
		Chat:            req.Chat,
		Type:            models.EntryType(*req.Type),
		ActionableItems: req.ActionableItems,
		Summary:         *req.Summary,
	}
	if err := input.Validate(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(CreateJournalEntryResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry, err := journalStore.CreateEntry(ctx, userID, input)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(CreateJournalEntryResponse{
			Success: false,
			Message: "Failed to create journal entry",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateJournalEntryResponse{
		Success: true,
		Message: "Journal entry created successfully",
		Entry:   entry,
	})
}

// GetJournalEntries returns the authenticated user's entries with their
// tasks, newest first.
func GetJournalEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireJournalAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(GetJournalEntriesResponse{
			Success: false,
			Message: "Authentication required",
			Entries: []models.JournalEntry{},
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := journalStore.GetAllByOwner(ctx, userID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetJournalEntriesResponse{
			Success: false,
			Message: "Failed to load journal entries",
			Entries: []models.JournalEntry{},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetJournalEntriesResponse{
		Success: true,
		Entries: entries,
	})
}

// GetJournalEntryByID returns a single entry by its numeric identifier.
// Any authenticated caller may fetch any entry; ownership is intentionally
// not checked (documented API behavior). A missing entry is a success
// response with a null entry, not an error.
func GetJournalEntryByID(w http.ResponseWriter, r *http.Request) {
	_, ok := requireJournalAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(GetJournalEntryResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GetJournalEntryResponse{
			Success: false,
			Message: "Invalid entry id",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry, err := journalStore.GetByID(ctx, id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetJournalEntryResponse{
			Success: false,
			Message: "Failed to load journal entry",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetJournalEntryResponse{
		Success: true,
		Entry:   entry,
	})
}

// GetUserJournal returns every entry for the target user id, with tasks and
// the owner's public profile. No authentication is required; any caller can
// read any user's journal history by id (documented API behavior).
func GetUserJournal(w http.ResponseWriter, r *http.Request) {
	targetID := r.URL.Query().Get("user_id")
	if targetID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GetUserJournalResponse{
			Success: false,
			Message: "user_id is required",
			Entries: []models.JournalEntry{},
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, user, err := journalStore.GetAllInfo(ctx, targetID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetUserJournalResponse{
			Success: false,
			Message: "Failed to load journal entries",
			Entries: []models.JournalEntry{},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetUserJournalResponse{
		Success: true,
		Entries: entries,
		User:    user,
	})
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mindloop/journal-backend/internal/models"
)

// EntryRewardPoints is the fixed reward granted to the owner for every
// journal entry created.
const EntryRewardPoints = 5

// JournalStore performs all journal entry reads and writes against Postgres.
type JournalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

// CreateEntry persists a new journal entry, its three derived tasks and the
// owner's point reward as a single transaction. Either all three effects
// become visible or none do. The returned entry includes the created tasks.
func (s *JournalStore) CreateEntry(ctx context.Context, ownerID uuid.UUID, input models.CreateEntryInput) (*models.JournalEntry, error) {
	chatJSON, err := json.Marshal(input.Chat)
	if err != nil {
		return nil, fmt.Errorf("marshal chat: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry := &models.JournalEntry{
		UserID:          ownerID.String(),
		Mood:            input.Mood,
		KeyTakeaway:     input.KeyTakeaway,
		WordAffirmation: input.WordAffirmation,
		Chat:            input.Chat,
		Type:            input.Type,
		Summary:         input.Summary,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO journal_entries (user_id, mood, key_takeaway, word_affirmation, chat, entry_type, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, entry_date
	`, ownerID, input.Mood, input.KeyTakeaway, input.WordAffirmation, chatJSON, string(input.Type), input.Summary).Scan(&entry.ID, &entry.Date)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	entry.Tasks = make([]models.Task, 0, len(input.ActionableItems))
	for _, item := range input.ActionableItems {
		task := models.Task{
			UserID:      ownerID.String(),
			EntryID:     entry.ID,
			Description: item,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO tasks (user_id, journal_entry_id, description)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, ownerID, entry.ID, item).Scan(&task.ID, &task.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert task: %w", err)
		}
		entry.Tasks = append(entry.Tasks, task)
	}

	// Relative increment so concurrent creates for the same user commute
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET points = points + $2 WHERE id = $1
	`, ownerID, EntryRewardPoints)
	if err != nil {
		return nil, fmt.Errorf("add reward points: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return entry, nil
}

// GetAllByOwner returns the owner's entries with their tasks, newest first.
// A user with no entries gets an empty slice, not an error.
func (s *JournalStore) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.JournalEntry, error) {
	return s.listEntries(ctx, ownerID)
}

// GetByID returns the entry with the given identifier and its tasks, or
// (nil, nil) when no such entry exists. Ownership is not checked here;
// callers decide the access policy.
func (s *JournalStore) GetByID(ctx context.Context, id int64) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	var chatRaw []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, entry_date, mood, key_takeaway, word_affirmation, chat, entry_type, summary
		FROM journal_entries
		WHERE id = $1
	`, id).Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Mood, &entry.KeyTakeaway,
		&entry.WordAffirmation, &chatRaw, &entry.Type, &entry.Summary)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}

	if err := json.Unmarshal(chatRaw, &entry.Chat); err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}

	if err := s.attachTasks(ctx, []*models.JournalEntry{&entry}); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAllInfo returns every entry owned by the target user id along with that
// user's public profile. No caller identity is involved. A malformed id, an
// unknown id, or a deactivated account all yield an empty listing and a nil
// user, so nothing about an inactive account leaks through the public path.
func (s *JournalStore) GetAllInfo(ctx context.Context, targetUserID string) ([]models.JournalEntry, *models.User, error) {
	ownerID, err := uuid.Parse(targetUserID)
	if err != nil {
		return []models.JournalEntry{}, nil, nil
	}

	var user models.User
	err = s.db.QueryRowContext(ctx, `
		SELECT id, username, points, created_at
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, ownerID).Scan(&user.ID, &user.Username, &user.Points, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return []models.JournalEntry{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user profile: %w", err)
	}

	entries, err := s.listEntries(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	return entries, &user, nil
}

func (s *JournalStore) listEntries(ctx context.Context, ownerID uuid.UUID) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entry_date, mood, key_takeaway, word_affirmation, chat, entry_type, summary
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var entry models.JournalEntry
		var chatRaw []byte

		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Mood, &entry.KeyTakeaway,
			&entry.WordAffirmation, &chatRaw, &entry.Type, &entry.Summary)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if err := json.Unmarshal(chatRaw, &entry.Chat); err != nil {
			return nil, fmt.Errorf("decode chat: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}

	refs := make([]*models.JournalEntry, len(entries))
	for i := range entries {
		refs[i] = &entries[i]
	}
	if err := s.attachTasks(ctx, refs); err != nil {
		return nil, err
	}
	return entries, nil
}

// attachTasks loads the task collections for the given entries in one query.
func (s *JournalStore) attachTasks(ctx context.Context, entries []*models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(entries))
	byID := make(map[int64]*models.JournalEntry, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
		byID[entry.ID] = entry
		entry.Tasks = []models.Task{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, journal_entry_id, description, created_at
		FROM tasks
		WHERE journal_entry_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.UserID, &task.EntryID, &task.Description, &task.CreatedAt); err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		if entry, ok := byID[task.EntryID]; ok {
			entry.Tasks = append(entry.Tasks, task)
		}
	}
	return rows.Err()
}

package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mindloop/journal-backend/internal/models"
)

func validInput() models.CreateEntryInput {
	return models.CreateEntryInput{
		Mood:            "calm",
		KeyTakeaway:     "breathe",
		WordAffirmation: "I am enough",
		Chat: []models.ChatMessage{
			{Role: models.ChatRoleHuman, Content: "hi"},
			{Role: models.ChatRoleAI, Content: "hello"},
		},
		Type:            models.EntryTypeZEN,
		ActionableItems: []string{"walk", "journal", "sleep"},
		Summary:         "ok day",
	}
}

func TestCreateEntryCommitsAllEffects(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	ownerID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO journal_entries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_date"}).AddRow(int64(42), now))
	for i := 1; i <= 3; i++ {
		mock.ExpectQuery("INSERT INTO tasks").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(i), now))
	}
	mock.ExpectExec("UPDATE users SET points").
		WithArgs(ownerID.String(), EntryRewardPoints).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewJournalStore(db)
	entry, err := store.CreateEntry(context.Background(), ownerID, validInput())
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	if entry.ID != 42 {
		t.Errorf("entry ID = %d, want 42", entry.ID)
	}
	if entry.UserID != ownerID.String() {
		t.Errorf("entry UserID = %s, want %s", entry.UserID, ownerID)
	}
	if len(entry.Tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(entry.Tasks))
	}
	wantDescriptions := []string{"walk", "journal", "sleep"}
	for i, task := range entry.Tasks {
		if task.Description != wantDescriptions[i] {
			t.Errorf("task %d description = %q, want %q", i, task.Description, wantDescriptions[i])
		}
		if task.UserID != ownerID.String() {
			t.Errorf("task %d owner = %s, want %s", i, task.UserID, ownerID)
		}
		if task.EntryID != entry.ID {
			t.Errorf("task %d entry id = %d, want %d", i, task.EntryID, entry.ID)
		}
	}
	if len(entry.Chat) != 2 || entry.Chat[0].Role != models.ChatRoleHuman {
		t.Errorf("chat not preserved: %+v", entry.Chat)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateEntryRollsBackWhenTaskInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO journal_entries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_date"}).AddRow(int64(7), now))
	mock.ExpectQuery("INSERT INTO tasks").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	store := NewJournalStore(db)
	if _, err := store.CreateEntry(context.Background(), uuid.New(), validInput()); err == nil {
		t.Fatal("expected error when task insert fails")
	}

	// No commit expectation was declared; a commit would have failed the mock
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateEntryRollsBackWhenPointsUpdateFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO journal_entries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_date"}).AddRow(int64(7), now))
	for i := 1; i <= 3; i++ {
		mock.ExpectQuery("INSERT INTO tasks").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(i), now))
	}
	mock.ExpectExec("UPDATE users SET points").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	store := NewJournalStore(db)
	if _, err := store.CreateEntry(context.Background(), uuid.New(), validInput()); err == nil {
		t.Fatal("expected error when points update fails")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAllByOwnerAttachesTasksNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	ownerID := uuid.New()
	newer := time.Now()
	older := newer.Add(-24 * time.Hour)

	entryCols := []string{"id", "user_id", "entry_date", "mood", "key_takeaway", "word_affirmation", "chat", "entry_type", "summary"}
	mock.ExpectQuery("SELECT (.+) FROM journal_entries").
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(int64(2), ownerID.String(), newer, "calm", "breathe", "I am enough", []byte(`[{"role":"human","content":"hi"}]`), "ZEN", "ok day").
			AddRow(int64(1), ownerID.String(), older, "tense", "pause", "I can cope", []byte(`[{"role":"ai","content":"hello"}]`), "CBT", "long day"))

	taskCols := []string{"id", "user_id", "journal_entry_id", "description", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(int64(10), ownerID.String(), int64(1), "walk", older).
			AddRow(int64(11), ownerID.String(), int64(2), "sleep", newer))

	store := NewJournalStore(db)
	entries, err := store.GetAllByOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Date.After(entries[1].Date) {
		t.Errorf("entries not newest first: %v then %v", entries[0].Date, entries[1].Date)
	}
	if len(entries[0].Tasks) != 1 || entries[0].Tasks[0].Description != "sleep" {
		t.Errorf("entry 2 tasks wrong: %+v", entries[0].Tasks)
	}
	if len(entries[1].Tasks) != 1 || entries[1].Tasks[0].Description != "walk" {
		t.Errorf("entry 1 tasks wrong: %+v", entries[1].Tasks)
	}
	if entries[0].Chat[0].Content != "hi" {
		t.Errorf("chat not decoded: %+v", entries[0].Chat)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAllByOwnerEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	entryCols := []string{"id", "user_id", "entry_date", "mood", "key_takeaway", "word_affirmation", "chat", "entry_type", "summary"}
	mock.ExpectQuery("SELECT (.+) FROM journal_entries").
		WillReturnRows(sqlmock.NewRows(entryCols))

	store := NewJournalStore(db)
	entries, err := store.GetAllByOwner(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", entries)
	}
}

func TestGetByIDAbsentReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM journal_entries").
		WillReturnError(sql.ErrNoRows)

	store := NewJournalStore(db)
	entry, err := store.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if entry != nil {
		t.Errorf("want nil entry for absent id, got %+v", entry)
	}
}

func TestGetByIDLoadsTasks(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	ownerID := uuid.New()
	now := time.Now()

	entryCols := []string{"id", "user_id", "entry_date", "mood", "key_takeaway", "word_affirmation", "chat", "entry_type", "summary"}
	mock.ExpectQuery("SELECT (.+) FROM journal_entries").
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(int64(5), ownerID.String(), now, "calm", "breathe", "I am enough", []byte(`[]`), "ZEN", "ok day"))

	taskCols := []string{"id", "user_id", "journal_entry_id", "description", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(int64(1), ownerID.String(), int64(5), "walk", now).
			AddRow(int64(2), ownerID.String(), int64(5), "journal", now).
			AddRow(int64(3), ownerID.String(), int64(5), "sleep", now))

	store := NewJournalStore(db)
	entry, err := store.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if entry == nil {
		t.Fatal("want entry, got nil")
	}
	if len(entry.Tasks) != 3 {
		t.Errorf("got %d tasks, want 3", len(entry.Tasks))
	}
}

func TestGetAllInfoMalformedIDReturnsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewJournalStore(db)
	entries, user, err := store.GetAllInfo(context.Background(), "not-a-uuid")
	if err != nil {
		t.Fatalf("get all info: %v", err)
	}
	if len(entries) != 0 || user != nil {
		t.Errorf("want empty listing and nil user, got %d entries, user %+v", len(entries), user)
	}

	// Malformed id must not touch the database
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAllInfoIncludesProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	ownerID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "points", "created_at"}).
			AddRow(ownerID.String(), "quietfox", 15, now))

	entryCols := []string{"id", "user_id", "entry_date", "mood", "key_takeaway", "word_affirmation", "chat", "entry_type", "summary"}
	mock.ExpectQuery("SELECT (.+) FROM journal_entries").
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(int64(1), ownerID.String(), now, "calm", "breathe", "I am enough", []byte(`[]`), "ZEN", "ok day"))

	taskCols := []string{"id", "user_id", "journal_entry_id", "description", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WillReturnRows(sqlmock.NewRows(taskCols))

	store := NewJournalStore(db)
	entries, user, err := store.GetAllInfo(context.Background(), ownerID.String())
	if err != nil {
		t.Fatalf("get all info: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if user == nil || user.Username != "quietfox" || user.Points != 15 {
		t.Errorf("profile wrong: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAllInfoInactiveUserHidesEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	// Inactive and unknown ids look the same: no profile row
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnError(sql.ErrNoRows)

	store := NewJournalStore(db)
	entries, user, err := store.GetAllInfo(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("get all info: %v", err)
	}
	if len(entries) != 0 || user != nil {
		t.Errorf("want empty listing and nil user for inactive account, got %d entries, user %+v", len(entries), user)
	}

	// The entry listing must never run when the account is inactive
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/mindloop/journal-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/logout", handlers.Logout)

	// Journaling routes
	r.Post("/api/journals", handlers.CreateJournalEntry)
	r.Get("/api/journals", handlers.GetJournalEntries)
	// Fetch by id: authenticated, but not restricted to the entry's owner
	r.Get("/api/journals/entry", handlers.GetJournalEntryByID)
	// Public journal listing for any user id (no authentication)
	r.Get("/api/journals/public", handlers.GetUserJournal)
}

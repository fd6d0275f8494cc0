package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/othala/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// gv carries the graph surface and editor activity handlers.
// vaultRoot is used to resolve the attachments directory.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, gv *GraphViewHandler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Search.
	r.Get("/search", h.Search)

	// Graph snapshot (pull) and live surface channel.
	r.Get("/graph", h.Graph)
	if gv != nil {
		r.Get("/graph/ws", gv.Channel)
		r.Post("/graph/show", gv.Show)

		// Editor activity.
		r.Post("/editor/active", gv.ActiveDocument)
		r.Post("/editor/saved", gv.DocumentSaved)
		r.Get("/editor/target", gv.NavigationTarget)
	}

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	return r
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/starford/othala/internal/editorbridge"
	"github.com/starford/othala/internal/graphview"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The server is local-first; the surface page is served from the same
	// host or opened as a file.
	CheckOrigin: func(*http.Request) bool { return true },
}

// GraphViewHandler exposes the graph surface channel and the editor
// activity endpoints.
type GraphViewHandler struct {
	co     *graphview.Coordinator
	sel    *graphview.SelectionSync
	bridge *editorbridge.Bridge
}

// NewGraphViewHandler creates the handler group for the graph view.
func NewGraphViewHandler(co *graphview.Coordinator, sel *graphview.SelectionSync, bridge *editorbridge.Bridge) *GraphViewHandler {
	return &GraphViewHandler{co: co, sel: sel, bridge: bridge}
}

// Channel handles GET /api/graph/ws: it upgrades the connection, attaches
// it as the one rendering surface, and pumps inbound frames until the
// surface disconnects. A second connection while one is live is refused.
func (h *GraphViewHandler) Channel(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("graph channel upgrade failed", slog.String("error", err.Error()))
		return
	}

	surface := graphview.NewSurface(conn, slog.Default())
	if err := h.co.Attach(surface); err != nil {
		_ = conn.WriteJSON(map[string]string{"type": "error", "payload": err.Error()})
		surface.Close()
		return
	}
	defer h.co.Detach(surface)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			slog.Debug("graph channel read ended", slog.String("error", err.Error()))
			return
		}
		h.co.HandleInbound(r.Context(), surface, raw)
	}
}

// Show handles POST /api/graph/show: the show-graph command. When a surface
// is already open this is a focus, not a second instance.
//
//	@Summary		Show or focus the graph surface
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphShowResponse
//	@Security		BearerAuth
//	@Router			/graph/show [post]
func (h *GraphViewHandler) Show(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, GraphShowResponse{Open: h.co.Open()})
}

// ActiveDocument handles POST /api/editor/active.
//
//	@Summary		Report the editor's newly active document
//	@Tags			editor
//	@Accept			json
//	@Success		202	"Accepted"
//	@Security		BearerAuth
//	@Router			/editor/active [post]
func (h *GraphViewHandler) ActiveDocument(w http.ResponseWriter, r *http.Request) {
	path, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	h.sel.ActiveDocumentChanged(path)
	w.WriteHeader(http.StatusAccepted)
}

// DocumentSaved handles POST /api/editor/saved.
//
//	@Summary		Report a just-saved document
//	@Tags			editor
//	@Accept			json
//	@Success		202	"Accepted"
//	@Security		BearerAuth
//	@Router			/editor/saved [post]
func (h *GraphViewHandler) DocumentSaved(w http.ResponseWriter, r *http.Request) {
	path, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	h.sel.DocumentSaved(path)
	w.WriteHeader(http.StatusAccepted)
}

// NavigationTarget handles GET /api/editor/target: the current navigation
// request from the surface, polled by editor integrations.
//
//	@Summary		Get the latest graph-initiated navigation target
//	@Tags			editor
//	@Produce		json
//	@Success		200	{object}	editorbridge.Target
//	@Success		204	"No navigation requested yet"
//	@Security		BearerAuth
//	@Router			/editor/target [get]
func (h *GraphViewHandler) NavigationTarget(w http.ResponseWriter, _ *http.Request) {
	t := h.bridge.Current()
	if t == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func decodeActivity(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req EditorActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return "", false
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return "", false
	}
	return req.Path, true
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"toybox/internal/bag"
	"toybox/internal/config"
	"toybox/internal/dragdrop"
	"toybox/internal/placement"
	"toybox/internal/viewmodel"
	"toybox/views/components"
	"toybox/views/pages"
)

const (
	keepAliveInterval = 25 * time.Second

	// Time allowed to write a control frame to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// Ping period, shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Largest drag event accepted from the peer.
	maxMessageSize = 4096
)

type BagHandler struct {
	store      *bag.Store
	baseURL    string
	dragEvents []string
	log        *logrus.Logger
	upgrader   websocket.Upgrader
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewBagHandler(store *bag.Store, cfg *config.Config, log *logrus.Logger) *BagHandler {
	return &BagHandler{
		store:      store,
		baseURL:    cfg.Server.BaseURL,
		dragEvents: cfg.Log.DragEvents,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

// RegisterRoutes mounts the request/response routes.
func (h *BagHandler) RegisterRoutes(r chi.Router) {
	r.Get("/bag/{id}", h.bagPage)
	r.Get("/bag/{id}/grid", h.gridFragment)
	r.Get("/bag/{id}/total", h.totalFragment)
	r.Post("/bag/{id}/close", h.closeBag)
}

// RegisterStreams mounts the long-lived routes. They must not sit behind a
// request timeout.
func (h *BagHandler) RegisterStreams(r chi.Router) {
	r.Get("/bag/{id}/stream", h.stream)
	r.Get("/bag/{id}/ws", h.socket)
}

func (h *BagHandler) bagPage(w http.ResponseWriter, r *http.Request) {
	bagID := chi.URLParam(r, "id")
	instance, ok := h.store.GetBag(bagID)
	if !ok {
		NotFound(w, r)
		return
	}
	snapshot := instance.Snapshot()
	render(w, r, pages.BagPage(viewmodel.BagPage{
		Title:    "Item Bag",
		BagID:    bagID,
		ShareURL: h.shareURL(r, bagID),
		Store:    storeItems(),
		Grid:     buildGrid(snapshot),
		Total:    buildTotal(snapshot),
	}))
}

func (h *BagHandler) gridFragment(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.store.GetBag(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	render(w, r, components.Grid(buildGrid(instance.Snapshot())))
}

func (h *BagHandler) totalFragment(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.store.GetBag(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	render(w, r, components.Total(buildTotal(instance.Snapshot())))
}

func (h *BagHandler) closeBag(w http.ResponseWriter, r *http.Request) {
	bagID := chi.URLParam(r, "id")
	if !h.store.Remove(bagID) {
		http.NotFound(w, r)
		return
	}
	h.log.WithField("bag", bagID).Info("bag closed")
	if r.Header.Get("Hx-Request") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *BagHandler) stream(w http.ResponseWriter, r *http.Request) {
	bagID := chi.URLParam(r, "id")
	instance, ok := h.store.GetBag(bagID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	hub := h.store.Broadcaster(bagID)
	if hub == nil {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendSnapshot := func() {
		snapshot := instance.Snapshot()
		writeSSE(w, "grid", renderToString(r, components.Grid(buildGrid(snapshot))))
		writeSSE(w, "total", renderToString(r, components.Total(buildTotal(snapshot))))
		flusher.Flush()
	}

	sendSnapshot()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				writeSSE(w, "closed", "")
				flusher.Flush()
				return
			}
			if event == bag.EventGrid {
				sendSnapshot()
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

// clientMessage is one drag event forwarded by the browser.
type clientMessage struct {
	Kind   string            `json:"kind"`
	Target dragdrop.NodeSpec `json:"target"`
}

// serverMessage carries the style effects of one event, or an error before the
// socket is closed.
type serverMessage struct {
	Type           string            `json:"type"`
	Effects        []dragdrop.Effect `json:"effects,omitempty"`
	PreventDefault bool              `json:"preventDefault,omitempty"`
	Changed        bool              `json:"changed,omitempty"`
	Message        string            `json:"message,omitempty"`
}

func (h *BagHandler) socket(w http.ResponseWriter, r *http.Request) {
	bagID := chi.URLParam(r, "id")
	instance, ok := h.store.GetBag(bagID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	entry := h.log.WithFields(logrus.Fields{"bag": bagID, "conn": middleware.GetReqID(r.Context())})

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		entry.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	view := h.store.Mount(instance, bag.MountOptions{Logger: dragdrop.NewLogger(entry, h.dragEvents)})
	defer view.Close()
	entry.Debug("bag view mounted")

	done := make(chan struct{})
	defer close(done)
	go h.ping(conn, done)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				entry.WithError(err).Warn("discarding malformed message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				entry.WithError(err).Warn("websocket closed unexpectedly")
			}
			return
		}
		kind, err := dragdrop.ParseKind(msg.Kind)
		if err != nil {
			entry.WithError(err).Warn("discarding malformed message")
			continue
		}

		res, err := view.Dispatch(kind, msg.Target, time.Now().UTC())
		if res.Changed {
			h.store.Publish(bagID, bag.EventGrid)
		}
		if errors.Is(err, bag.ErrClosed) {
			closeSocket(conn, websocket.CloseGoingAway, "bag closed")
			return
		}
		if err != nil {
			entry.WithError(err).WithField("event", string(kind)).Error("drag invariant violated")
			_ = conn.WriteJSON(serverMessage{Type: "error", Message: err.Error()})
			closeSocket(conn, websocket.ClosePolicyViolation, "invalid drag state")
			return
		}
		if err := conn.WriteJSON(serverMessage{
			Type:           "effects",
			Effects:        res.Effects,
			PreventDefault: res.PreventDefault,
			Changed:        res.Changed,
		}); err != nil {
			return
		}
	}
}

// ping keeps the read deadline moving while the peer answers. A peer that
// stops answering times out the read loop, which unmounts the view.
func (h *BagHandler) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func closeSocket(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}

func (h *BagHandler) shareURL(r *http.Request, bagID string) string {
	if baseURL := strings.TrimSpace(h.baseURL); baseURL != "" {
		return strings.TrimRight(baseURL, "/") + "/bag/" + bagID
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/bag/" + bagID
}

func storeItems() []viewmodel.StoreItem {
	catalog := placement.Catalog()
	out := make([]viewmodel.StoreItem, 0, len(catalog))
	for i, item := range catalog {
		out = append(out, viewmodel.StoreItem{
			DOMID:  "store-item-" + strconv.Itoa(i),
			Index:  i,
			ItemID: int(item.ID),
			Name:   item.ID.String(),
			Glyph:  item.ID.Glyph(),
		})
	}
	return out
}

func buildGrid(snapshot bag.Snapshot) viewmodel.GridFragment {
	cells := make([]viewmodel.Cell, 0, len(snapshot.Slots))
	for i, slot := range snapshot.Slots {
		cell := viewmodel.Cell{
			DOMID: "cell-" + strconv.Itoa(i),
			Index: i,
		}
		if item, ok := slot.Item(); ok {
			cell.HasItem = true
			cell.ItemDOM = "bag-item-" + strconv.Itoa(i)
			cell.ItemID = int(item.ID)
			cell.Name = item.ID.String()
			cell.Glyph = item.ID.Glyph()
		}
		cells = append(cells, cell)
	}
	return viewmodel.GridFragment{
		BagID: snapshot.ID,
		Rows:  snapshot.Rows,
		Cols:  snapshot.Cols,
		Cells: cells,
	}
}

func buildTotal(snapshot bag.Snapshot) viewmodel.TotalFragment {
	return viewmodel.TotalFragment{
		Occupied: snapshot.Occupied,
		Slots:    len(snapshot.Slots),
	}
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"toybox/internal/bag"
	"toybox/internal/config"
	"toybox/internal/viewmodel"
	"toybox/views/pages"
)

type HomeHandler struct {
	store *bag.Store
	cfg   config.BagConfig
}

func NewHomeHandler(store *bag.Store, cfg config.BagConfig) *HomeHandler {
	return &HomeHandler{store: store, cfg: cfg}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/bags", h.createBag)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.HomePage(viewmodel.HomePage{
		Title: "Toy Box",
		Projects: []viewmodel.Project{
			{Name: "Item Bag", Description: "drag food, drinks and cookies from the store into a bag grid", Href: "#new-bag"},
		},
		DefaultRows: h.cfg.DefaultRows,
		DefaultCols: h.cfg.DefaultCols,
		MinSize:     h.cfg.MinSize,
		MaxSize:     h.cfg.MaxSize,
	}))
}

func (h *HomeHandler) createBag(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	rows := h.cfg.Clamp(parseInt(r.FormValue("rows"), h.cfg.DefaultRows))
	cols := h.cfg.Clamp(parseInt(r.FormValue("cols"), h.cfg.DefaultCols))

	b := h.store.CreateBag(rows, cols)
	h.store.EnsureReaper(b.ID, h.cfg.IdleTTL)
	http.Redirect(w, r, "/bag/"+b.ID, http.StatusSeeOther)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

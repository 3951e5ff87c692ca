package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppetrovv/bisera/internal/domain"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Sort:  q.Get("sort"),
	}
	if raw := q.Get("subcategoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "невалидна подкатегория")
			return
		}
		f.SubcategoryID = id
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	products, total, err := s.catalog.ListProducts(r.Context(), f)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), r.PathValue("code"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.ListCategories(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// handleOffices proxies a courier office lookup. Upstream failures degrade to
// an empty list so the checkout page stays usable.
func (s *Server) handleOffices(dir domain.OfficeDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city := strings.TrimSpace(r.URL.Query().Get("city"))
		if city == "" {
			writeError(w, http.StatusBadRequest, "липсва град")
			return
		}
		if dir == nil {
			writeJSON(w, http.StatusOK, []domain.Office{})
			return
		}
		offices, err := dir.OfficesByCity(r.Context(), city)
		if err != nil {
			log.Error().Err(err).Str("city", city).Msg("offices: lookup failed")
			writeJSON(w, http.StatusOK, []domain.Office{})
			return
		}
		writeJSON(w, http.StatusOK, offices)
	}
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Message) == "" {
		writeError(w, http.StatusBadRequest, "липсва име или съобщение")
		return
	}
	m := &domain.Message{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Body:      strings.TrimSpace(in.Message),
		CreatedAt: time.Now(),
	}
	if err := s.messages.Save(r.Context(), m); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

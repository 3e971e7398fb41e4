// Package catalog exposes the product query endpoint.
package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	catalogmodel "github.com/PandeyAnukrati/Carti/internal/catalog"
	"github.com/PandeyAnukrati/Carti/pkg/utils"
)

// Handler serves GET /products.
type Handler struct {
	cat *catalogmodel.Catalog
}

// New creates the catalog handler.
func New(cat *catalogmodel.Catalog) *Handler {
	return &Handler{cat: cat}
}

// RegisterRoutes mounts the catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := catalogmodel.Query{
		Text:     params.Get("q"),
		Category: params.Get("category"),
		Gender:   params.Get("gender"),
		Brand:    params.Get("brand"),
		Sizes:    params["sizes"],
		Colors:   params["colors"],
	}

	var err error
	if q.MinPrice, err = parseOptionalFloat(params.Get("min_price")); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid min_price")
		return
	}
	if q.MaxPrice, err = parseOptionalFloat(params.Get("max_price")); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid max_price")
		return
	}
	if q.MinRating, err = parseOptionalFloat(params.Get("min_rating")); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid min_rating")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.cat.Filter(q))
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

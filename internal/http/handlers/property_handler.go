package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/http/middleware"
	"github.com/queendomzy/swiftstay-api/internal/http/response"
	"github.com/queendomzy/swiftstay-api/internal/http/validate"
	"github.com/queendomzy/swiftstay-api/internal/platform/auth"
	"github.com/queendomzy/swiftstay-api/internal/service"
)

type PropertyHandler struct {
	Properties service.PropertyService
	Signer     *auth.Signer
}

func NewPropertyHandler(properties service.PropertyService, signer *auth.Signer) *PropertyHandler {
	return &PropertyHandler{Properties: properties, Signer: signer}
}

func (h *PropertyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.search)
	r.Get("/{id}", h.getByID)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.Signer))
		r.With(middleware.RequireRole(domain.RoleHost, domain.RoleAdmin)).Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

type propertyRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location" validate:"required"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	Guests      int      `json:"guests"`
	RoomType    string   `json:"room_type"`
	Amenities   []string `json:"amenities"`
}

func (h *PropertyHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	var in propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.Properties.Create(r.Context(), &domain.Property{
		OwnerID:     claims.Sub,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Price:       in.Price,
		Guests:      in.Guests,
		RoomType:    domain.RoomType(in.RoomType),
		Amenities:   in.Amenities,
	})
	if err != nil {
		response.FromError(w, r, "property.create", err)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	p, err := h.Properties.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, "property.get", err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	var in propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.Properties.Update(r.Context(), claims.Sub, claims.Role, &domain.Property{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Price:       in.Price,
		Guests:      in.Guests,
		RoomType:    domain.RoomType(in.RoomType),
		Amenities:   in.Amenities,
	})
	if err != nil {
		response.FromError(w, r, "property.update", err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Properties.Delete(r.Context(), claims.Sub, claims.Role, id); err != nil {
		response.FromError(w, r, "property.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// search maps the listing page's query string onto a PropertyFilter.
func (h *PropertyHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.PropertyFilter{
		Query:    q.Get("q"),
		Location: q.Get("location"),
		RoomType: q.Get("roomType"),
		Sort:     q.Get("sort"),
	}
	f.PriceMin, _ = strconv.ParseInt(q.Get("priceMin"), 10, 64)
	f.PriceMax, _ = strconv.ParseInt(q.Get("priceMax"), 10, 64)
	f.Guests, _ = strconv.Atoi(q.Get("guests"))
	if raw := q.Get("amenities"); raw != "" {
		f.Amenities = strings.Split(raw, ",")
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	ps, err := h.Properties.Search(r.Context(), f)
	if err != nil {
		response.FromError(w, r, "property.search", err)
		return
	}
	response.JSON(w, http.StatusOK, ps)
}

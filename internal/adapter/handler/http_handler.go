package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/kbreuer/artikelstamm/internal/core/domain"
	"github.com/kbreuer/artikelstamm/internal/core/service"
)

type ArtikelHandler struct {
	artikelService *service.ArtikelService
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BestandRequest struct {
	Delta int `json:"delta"`
}

func NewArtikelHandler(artikelService *service.ArtikelService) *ArtikelHandler {
	return &ArtikelHandler{artikelService: artikelService}
}

func (h *ArtikelHandler) Save(w http.ResponseWriter, r *http.Request) {
	// decode into a defaulted entity so omitted fields keep their defaults
	a := domain.NewArtikel()
	if err := json.NewDecoder(r.Body).Decode(a); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	create := a.ID == 0
	saved, err := h.artikelService.Save(r.Context(), a)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if create {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (h *ArtikelHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid artikel id"})
		return
	}

	a, err := h.artikelService.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "artikel not found"})
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *ArtikelHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.artikelService.Search(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if result == nil {
		result = []*domain.Artikel{}
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ArtikelHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	artikel := make([]*domain.Artikel, 0, len(raws))
	for _, raw := range raws {
		a := domain.NewArtikel()
		if err := json.Unmarshal(raw, a); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid artikel in batch"})
			return
		}
		artikel = append(artikel, a)
	}

	result, err := h.artikelService.ProcessBatch(r.Context(), artikel)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ArtikelHandler) UpdateBestand(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid artikel id"})
		return
	}

	var req BestandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	a, err := h.artikelService.UpdateLagerbestand(r.Context(), id, req.Delta)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *ArtikelHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid artikel id"})
		return
	}

	a, err := h.artikelService.Deactivate(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *ArtikelHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ArtikelHandler) writeServiceError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error()})
	case errors.Is(err, domain.ErrArtikelNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "artikel not found"})
	case errors.Is(err, service.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "insufficient stock"})
	case errors.Is(err, service.ErrBatchInProgress):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "batch import already running"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func filterFromQuery(r *http.Request) (domain.SuchFilter, error) {
	q := r.URL.Query()
	filter := domain.SuchFilter{
		Bezeichnung: q.Get("bezeichnung"),
		Kategorie:   q.Get("kategorie"),
		Lieferant:   q.Get("lieferant"),
	}

	if v := q.Get("preisMin"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("invalid preisMin")
		}
		filter.PreisMin = &d
	}
	if v := q.Get("preisMax"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("invalid preisMax")
		}
		filter.PreisMax = &d
	}
	if v := q.Get("nurAktive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("invalid nurAktive")
		}
		filter.NurAktive = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = n
	}

	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

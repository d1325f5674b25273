package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/item"
)

const (
	errInternal = "internal server error"
	errNotFound = "Item not found"

	maxBodyBytes = 1 << 20
)

type handlers struct {
	catalog Catalog
	logger  zerolog.Logger
}

type itemsResponse struct {
	Items   []item.Item `json:"items"`
	Total   int         `json:"total"`
	Showing int         `json:"showing"`
	Offset  int         `json:"offset"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	page, err := h.catalog.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, itemsResponse{
		Items:   page.Items,
		Total:   page.Total,
		Showing: page.Showing(),
		Offset:  page.Offset,
	})
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, errNotFound, nil)
		return
	}

	it, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	var candidate item.Candidate
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&candidate); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", nil)
		return
	}

	created, err := h.catalog.Create(r.Context(), candidate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// fail maps catalog errors onto responses. Anything unrecognised is a 500 whose
// detail only reaches the log.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *item.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Error(), inputErr.Fields)
	case errors.Is(err, item.ErrNotFound):
		writeError(w, http.StatusNotFound, errNotFound, nil)
	default:
		h.logger.Error().Err(err).
			Str("request_id", RequestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, errInternal, nil)
	}
}

// parseQuery reads q, limit and offset. A missing limit means no limit; a present
// one must be a positive integer. offset must be a non-negative integer.
func parseQuery(r *http.Request) (item.Query, error) {
	values := r.URL.Query()
	q := item.Query{Search: values.Get("q")}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return item.Query{}, fmt.Errorf("invalid limit %q: must be a positive integer", raw)
		}
		q.Limit = n
	}
	if raw := values.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return item.Query{}, fmt.Errorf("invalid offset %q: must be a non-negative integer", raw)
		}
		q.Offset = n
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, errorResponse{Error: msg, Fields: fields})
}

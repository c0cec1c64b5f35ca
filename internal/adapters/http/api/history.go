package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/onthisday/internal/domain/model"
	"github.com/okian/onthisday/internal/domain/selection"
)

type bestResponse struct {
	Month int         `json:"month"`
	Day   int         `json:"day"`
	Event model.Event `json:"event"`
}

type topResponse struct {
	Month  int           `json:"month"`
	Day    int           `json:"day"`
	Count  int           `json:"count"`
	Events []model.Event `json:"events"`
}

// HistoryHandler serves event selections for a calendar date.
type HistoryHandler struct {
	deps     Dependencies
	maxCount int
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies, maxCount int) *HistoryHandler {
	if maxCount < 1 {
		maxCount = DefaultMaxCount
	}
	return &HistoryHandler{deps: deps, maxCount: maxCount}
}

// HandleBest handles GET /history/best?month=M&day=D requests.
func (h *HistoryHandler) HandleBest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_best"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	month, day, err := h.date(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	event, err := h.deps.Best(r.Context(), month, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, bestResponse{Month: month, Day: day, Event: event})
}

// HandleTop handles GET /history?month=M&day=D&count=N requests.
func (h *HistoryHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	month, day, err := h.date(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	count := selection.DefaultCount
	if raw := q.Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("count must be a positive integer")))
			return
		}
	}
	if count > h.maxCount {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	events, err := h.deps.Top(r.Context(), month, day, count)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, topResponse{Month: month, Day: day, Count: len(events), Events: events})
}

// date reads month and day, defaulting both to today's UTC date when absent.
func (h *HistoryHandler) date(q url.Values) (month, day int, err error) {
	rawMonth, rawDay := q.Get("month"), q.Get("day")
	if rawMonth == "" && rawDay == "" {
		now := h.deps.Now().UTC()
		return int(now.Month()), now.Day(), nil
	}
	if rawMonth == "" || rawDay == "" {
		return 0, 0, errors.New("month and day must be given together")
	}
	month, errM := strconv.Atoi(rawMonth)
	day, errD := strconv.Atoi(rawDay)
	if errM != nil || errD != nil || !model.ValidDate(month, day) {
		return 0, 0, errors.New("invalid month/day")
	}
	return month, day, nil
}

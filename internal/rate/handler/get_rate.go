package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// GetRate godoc
// @Summary Get rate by code and date
// @Description Get the stored mid/bid/ask rate of one currency for a date (today by default)
// @Tags Rates
// @Produce json
// @Param code path string true "Currency code" example(USD)
// @Param date query string false "Effective date, YYYY-MM-DD"
// @Success 200 {object} RateResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/{code} [get]
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	rt, err := h.service.GetRate(r.Context(), code, date)
	if err != nil {
		writeServiceError(w, err, "GetRate", logrus.Fields{"code": code, "date": date})
		return
	}
	writeJSON(w, http.StatusOK, toRateResponse(rt))
}

package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// GetRates godoc
// @Summary List rates for a date
// @Tags Rates
// @Produce json
// @Param date query string false "Effective date, YYYY-MM-DD"
// @Success 200 {array} RateResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	rates, err := h.service.GetRates(r.Context(), date)
	if err != nil {
		writeServiceError(w, err, "GetRates", logrus.Fields{"date": date})
		return
	}
	writeJSON(w, http.StatusOK, toRateResponses(rates))
}

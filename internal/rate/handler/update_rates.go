package handler

import (
	"net/http"

	"nbprates/internal/rate"

	"github.com/sirupsen/logrus"
)

// UpdateRates godoc
// @Summary Upsert rates in bulk
// @Description Rates with an unknown code/date pair are inserted, the rest updated, all in one transaction
// @Tags Rates
// @Accept json
// @Produce json
// @Param rates body []RateRequest true "Rates"
// @Success 200 {object} rate.ReconcileResult
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/batch [put]
func (h *Handler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	var reqs []RateRequest
	if err := decodeBody(w, r, maxBatchBody, &reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := toDomainBatch(reqs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var res rate.ReconcileResult
	if res, err = h.service.UpdateRates(r.Context(), in); err != nil {
		writeServiceError(w, err, "UpdateRates", logrus.Fields{"count": len(in)})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

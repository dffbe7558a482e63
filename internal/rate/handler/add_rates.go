package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// AddRates godoc
// @Summary Add rates in bulk
// @Description Insert all rates in one transaction, or none if any is invalid or already stored
// @Tags Rates
// @Accept json
// @Produce json
// @Param rates body []RateRequest true "Rates"
// @Success 201 {array} RateResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/batch [post]
func (h *Handler) AddRates(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.service.AddRates(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "AddRates", logrus.Fields{"count": len(in)})
		return
	}
	writeJSON(w, http.StatusCreated, toRateResponses(created))
}

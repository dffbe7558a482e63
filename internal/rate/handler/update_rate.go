package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// UpdateRate godoc
// @Summary Update a rate
// @Description Replace name, mid, bid and ask of an existing code/date pair
// @Tags Rates
// @Accept json
// @Produce json
// @Param rate body RateRequest true "Rate"
// @Success 200 {object} RateResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates [put]
func (h *Handler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := decodeBody(w, r, maxRateBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.UpdateRate(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "UpdateRate", logrus.Fields{"code": in.Code, "date": in.EffectiveDate})
		return
	}
	writeJSON(w, http.StatusOK, toRateResponse(updated))
}

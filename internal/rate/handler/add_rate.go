package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// AddRate godoc
// @Summary Add a rate
// @Description Insert one rate; the code/date pair must not exist yet
// @Tags Rates
// @Accept json
// @Produce json
// @Param rate body RateRequest true "Rate"
// @Success 201 {object} RateResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates [post]
func (h *Handler) AddRate(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.service.AddRate(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "AddRate", logrus.Fields{"code": in.Code, "date": in.EffectiveDate})
		return
	}
	writeJSON(w, http.StatusCreated, toRateResponse(created))
}

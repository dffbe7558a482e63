package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DeleteRate godoc
// @Summary Delete a rate
// @Tags Rates
// @Param code path string true "Currency code"
// @Param date query string false "Effective date, YYYY-MM-DD"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/{code} [delete]
func (h *Handler) DeleteRate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err = h.service.DeleteRate(r.Context(), code, date); err != nil {
		writeServiceError(w, err, "DeleteRate", logrus.Fields{"code": code, "date": date})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

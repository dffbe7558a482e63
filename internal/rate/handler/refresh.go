package handler

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Refresh godoc
// @Summary Refresh rates now
// @Description Fetch the last two weeks from NBP and reconcile them with storage
// @Tags Rates
// @Produce json
// @Success 200 {object} rate.ReconcileResult
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	// a started cycle runs to completion even if the client goes away
	res, err := h.refresher.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Refresh", nil)
		return
	}
	logrus.Infof("Manual refresh: %d inserted, %d updated", res.Inserted, res.Updated)
	writeJSON(w, http.StatusOK, res)
}

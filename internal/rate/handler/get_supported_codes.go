package handler

import (
	"net/http"
)

type GetSupportedCodesResponse struct {
	Codes []string `json:"codes" example:"EUR,USD"`
}

// GetSupportedCodes godoc
// @Summary List available currencies
// @Description Distinct currency codes present in storage, sorted
// @Tags Rates
// @Produce json
// @Success 200 {object} GetSupportedCodesResponse
// @Failure 500 {object} errorResponse
// @Router /codes [get]
func (h *Handler) GetSupportedCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.GetAvailableCodes(r.Context())
	if err != nil {
		writeServiceError(w, err, "GetSupportedCodes", nil)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, GetSupportedCodesResponse{Codes: codes})
}

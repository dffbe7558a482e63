package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type ExchangeRateResponse struct {
	Code string          `json:"code" example:"USD"`
	Name string          `json:"name" example:"dolar amerykański"`
	Mid  decimal.Decimal `json:"mid" swaggertype:"string" example:"4.0123"`
	Bid  decimal.Decimal `json:"bid" swaggertype:"string" example:"3.9712"`
	Ask  decimal.Decimal `json:"ask" swaggertype:"string" example:"4.0514"`
}

// GetExchangeRates godoc
// @Summary Today's exchange rates
// @Tags Rates
// @Produce json
// @Success 200 {array} ExchangeRateResponse
// @Failure 500 {object} errorResponse
// @Router /exchange-rates [get]
func (h *Handler) GetExchangeRates(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.GetExchangeRates(r.Context())
	if err != nil {
		writeServiceError(w, err, "GetExchangeRates", nil)
		return
	}

	res := make([]ExchangeRateResponse, 0, len(views))
	for _, v := range views {
		res = append(res, ExchangeRateResponse(v))
	}
	writeJSON(w, http.StatusOK, res)
}

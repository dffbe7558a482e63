package handler

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ConvertResponse struct {
	Source string          `json:"source" example:"USD"`
	Target string          `json:"target" example:"EUR"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
	Result decimal.Decimal `json:"result" swaggertype:"string" example:"108.25"`
}

// Convert godoc
// @Summary Convert an amount between currencies
// @Description Uses today's mid rates of both currencies
// @Tags Rates
// @Produce json
// @Param source query string true "Source currency code"
// @Param target query string true "Target currency code"
// @Param amount query string true "Amount, positive decimal"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /convert [get]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := strings.ToUpper(strings.TrimSpace(q.Get("source")))
	target := strings.ToUpper(strings.TrimSpace(q.Get("target")))

	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	result, err := h.service.ConvertRate(r.Context(), source, target, amount)
	if err != nil {
		writeServiceError(w, err, "Convert", logrus.Fields{"source": source, "target": target, "amount": amount})
		return
	}
	writeJSON(w, http.StatusOK, ConvertResponse{
		Source: source,
		Target: target,
		Amount: amount,
		Result: result,
	})
}

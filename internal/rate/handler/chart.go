package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ChartResponse struct {
	Code   string            `json:"code" example:"USD"`
	Labels []string          `json:"labels" example:"1 Jan,2 Jan"`
	Values []decimal.Decimal `json:"values" swaggertype:"array,string" example:"4.01,4.02"`
}

// Chart godoc
// @Summary Mid rate history for a chart
// @Description Mid rates of the last two weeks, oldest first
// @Tags Rates
// @Produce json
// @Param code path string true "Currency code"
// @Success 200 {object} ChartResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/{code}/chart [get]
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	series, err := h.service.ChartData(r.Context(), code)
	if err != nil {
		writeServiceError(w, err, "Chart", logrus.Fields{"code": code})
		return
	}

	res := ChartResponse{
		Code:   series.Code,
		Labels: make([]string, 0, len(series.Points)),
		Values: make([]decimal.Decimal, 0, len(series.Points)),
	}
	for _, p := range series.Points {
		res.Labels = append(res.Labels, p.Label)
		res.Values = append(res.Values, p.Mid)
	}
	writeJSON(w, http.StatusOK, res)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"nbprates/internal/domain"
	"nbprates/internal/rate"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const internalErrorMsg = "An unexpected error occurred. Please try again later."

const (
	maxRateBody  = 4 << 10
	maxBatchBody = 1 << 20
)

type Service interface {
	GetRate(ctx context.Context, code string, date time.Time) (domain.Rate, error)
	GetRates(ctx context.Context, date time.Time) ([]domain.Rate, error)
	GetAvailableCodes(ctx context.Context) ([]string, error)
	GetExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error)
	ConvertRate(ctx context.Context, source, target string, amount decimal.Decimal) (decimal.Decimal, error)
	ChartData(ctx context.Context, code string) (domain.ChartSeries, error)
	AddRate(ctx context.Context, r domain.Rate) (domain.Rate, error)
	AddRates(ctx context.Context, rates []domain.Rate) ([]domain.Rate, error)
	UpdateRate(ctx context.Context, r domain.Rate) (domain.Rate, error)
	UpdateRates(ctx context.Context, rates []domain.Rate) (rate.ReconcileResult, error)
	DeleteRate(ctx context.Context, code string, date time.Time) error
}

type Refresher interface {
	Refresh(ctx context.Context) (rate.ReconcileResult, error)
}

type Handler struct {
	service   Service
	refresher Refresher
	now       func() time.Time
}

func NewRateHandler(service Service, refresher Refresher) *Handler {
	return &Handler{service: service, refresher: refresher, now: time.Now}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps domain errors to statuses; anything unknown is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error, handler string, fields logrus.Fields) {
	switch {
	case errors.Is(err, domain.ErrInvalidData):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logrus.WithError(err).WithField("handler", handler).WithFields(fields).Error("request failed")
		writeError(w, http.StatusInternalServerError, internalErrorMsg)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// dateParam reads ?date=YYYY-MM-DD, falling back to today.
func (h *Handler) dateParam(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return domain.DateOf(h.now()), nil
	}
	return time.Parse(time.DateOnly, raw)
}

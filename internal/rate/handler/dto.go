package handler

import (
	"errors"
	"strings"
	"time"

	"nbprates/internal/domain"

	"github.com/shopspring/decimal"
)

var errMissingDate = errors.New("effective_date is required")

type RateRequest struct {
	Code          string              `json:"code" example:"USD"`
	Name          string              `json:"name" example:"dolar amerykański"`
	Mid           decimal.NullDecimal `json:"mid" swaggertype:"string" example:"4.0123"`
	Bid           decimal.NullDecimal `json:"bid" swaggertype:"string" example:"3.9712"`
	Ask           decimal.NullDecimal `json:"ask" swaggertype:"string" example:"4.0514"`
	EffectiveDate string              `json:"effective_date" example:"2024-01-15"`
}

func (req RateRequest) toDomain() (domain.Rate, error) {
	raw := strings.TrimSpace(req.EffectiveDate)
	if raw == "" {
		return domain.Rate{}, errMissingDate
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return domain.Rate{}, err
	}
	return domain.Rate{
		Code:          strings.TrimSpace(req.Code),
		Name:          req.Name,
		Mid:           req.Mid,
		Bid:           req.Bid,
		Ask:           req.Ask,
		EffectiveDate: date,
	}, nil
}

func toDomainBatch(reqs []RateRequest) ([]domain.Rate, error) {
	rates := make([]domain.Rate, 0, len(reqs))
	for _, req := range reqs {
		r, err := req.toDomain()
		if err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, nil
}

type RateResponse struct {
	ID            string              `json:"id" example:"77b5d9f5-0569-47e3-aee2-f659d59fbd97"`
	Code          string              `json:"code" example:"USD"`
	Name          string              `json:"name" example:"dolar amerykański"`
	Mid           decimal.NullDecimal `json:"mid" swaggertype:"string" example:"4.0123"`
	Bid           decimal.NullDecimal `json:"bid" swaggertype:"string" example:"3.9712"`
	Ask           decimal.NullDecimal `json:"ask" swaggertype:"string" example:"4.0514"`
	EffectiveDate string              `json:"effective_date" example:"2024-01-15"`
}

func toRateResponse(r domain.Rate) RateResponse {
	return RateResponse{
		ID:            r.ID.String(),
		Code:          r.Code,
		Name:          r.Name,
		Mid:           r.Mid,
		Bid:           r.Bid,
		Ask:           r.Ask,
		EffectiveDate: r.EffectiveDate.Format(time.DateOnly),
	}
}

func toRateResponses(rates []domain.Rate) []RateResponse {
	res := make([]RateResponse, 0, len(rates))
	for _, r := range rates {
		res = append(res, toRateResponse(r))
	}
	return res
}

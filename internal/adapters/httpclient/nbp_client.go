package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nbprates/internal/domain"

	"github.com/shopspring/decimal"
)

// NbpClient reads exchange rate tables from the NBP web API.
type NbpClient struct {
	http    *http.Client
	baseURL string
}

type nbpTable struct {
	Table         string    `json:"table"`
	No            string    `json:"no"`
	EffectiveDate string    `json:"effectiveDate"`
	Rates         []nbpRate `json:"rates"`
}

type nbpRate struct {
	Currency string              `json:"currency"`
	Code     string              `json:"code"`
	Mid      decimal.NullDecimal `json:"mid"`
	Bid      decimal.NullDecimal `json:"bid"`
	Ask      decimal.NullDecimal `json:"ask"`
}

// FetchTables returns every published table of the given type between from and to, both inclusive.
// NBP answers 404 when nothing was published in the range; that is an empty result, not an error.
func (c *NbpClient) FetchTables(ctx context.Context, table string, from, to time.Time) ([]domain.RateTable, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf("/exchangerates/tables/%s/%s/%s/",
		table, from.Format(time.DateOnly), to.Format(time.DateOnly))
	u.RawQuery = url.Values{"format": {"json"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for table %q: %w", table, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request for table %q: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []domain.RateTable{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d for table %q: %s", resp.StatusCode, table, resp.Status)
	}

	var body []nbpTable
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response for table %q: %w", table, err)
	}

	tables := make([]domain.RateTable, 0, len(body))
	for _, t := range body {
		date, parseErr := time.Parse(time.DateOnly, t.EffectiveDate)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid effective date %q in table %s: %w", t.EffectiveDate, t.No, parseErr)
		}
		rates := make([]domain.TableRate, 0, len(t.Rates))
		for _, r := range t.Rates {
			rates = append(rates, domain.TableRate{
				Code: r.Code,
				Name: r.Currency,
				Mid:  r.Mid,
				Bid:  r.Bid,
				Ask:  r.Ask,
			})
		}
		tables = append(tables, domain.RateTable{
			Table:         t.Table,
			No:            t.No,
			EffectiveDate: date,
			Rates:         rates,
		})
	}
	return tables, nil
}

func NewNbpClient(httpClient *http.Client, baseURL string) *NbpClient {
	return &NbpClient{http: httpClient, baseURL: baseURL}
}

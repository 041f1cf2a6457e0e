// Package dynatarif is a client for the api.dynatarif.de dynamic tariff API.
// It delivers quarter-hour price quotes for today and tomorrow in the
// tariff's local timezone.
package dynatarif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haukew/stromtarif-go/slots"
	"github.com/haukew/stromtarif-go/types"
)

const tariffTimezone = "Europe/Berlin"

type Dynatarif struct {
	baseUrl    string
	email      string
	password   string
	client     *http.Client
	token      string
	contractId string
}

func New(baseUrl, email, password string) *Dynatarif {
	return &Dynatarif{
		baseUrl:  baseUrl,
		email:    email,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Login authenticates with the password grant and resolves the account's
// first contract. Called lazily by GetPrices, but may be called up front to
// fail fast on bad credentials.
func (d *Dynatarif) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", d.email)
	form.Set("password", d.password)

	var tok tokenResponse
	if err := d.request(ctx, "POST", "/tokens/", form, &tok); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("login failed: empty access token")
	}
	d.token = tok.AccessToken

	var user userResponse
	if err := d.request(ctx, "GET", "/users/me/", nil, &user); err != nil {
		return fmt.Errorf("fetching user: %w", err)
	}
	if len(user.Contracts) == 0 {
		return fmt.Errorf("account has no contracts")
	}
	d.contractId = user.Contracts[0].ContractId

	return nil
}

// GetPrices fetches the prognosis for the current tariff day plus the next,
// sorted ascending by start.
func (d *Dynatarif) GetPrices(ctx context.Context) (types.PriceSeries, error) {
	if d.token == "" {
		if err := d.Login(ctx); err != nil {
			return nil, err
		}
	}

	todayStart := slots.TariffDayStart(time.Now())
	tomorrowEnd := todayStart.AddDate(0, 0, 2)

	params := url.Values{}
	params.Set("timezone", tariffTimezone)
	params.Set("page_size", "200")
	params.Set("pages_list", "false")
	params.Set("sort", "valid_from:asc")
	params.Add("filters", fmt.Sprintf("valid_from:gte:%s", todayStart.Format(time.RFC3339)))
	params.Add("filters", fmt.Sprintf("valid_from:lte:%s", tomorrowEnd.Format(time.RFC3339)))
	params.Set("contract_id", d.contractId)

	var body prognosisResponse
	if err := d.request(ctx, "GET", "/tariffs/prognosis?"+params.Encode(), nil, &body); err != nil {
		return nil, fmt.Errorf("fetching prognosis: %w", err)
	}

	series := make(types.PriceSeries, 0, len(body.Data))
	for _, raw := range body.Data {
		start, err := time.Parse(time.RFC3339, raw.Start)
		if err != nil {
			return nil, fmt.Errorf("parsing sample start %q: %w", raw.Start, err)
		}
		end, err := time.Parse(time.RFC3339, raw.End)
		if err != nil {
			return nil, fmt.Errorf("parsing sample end %q: %w", raw.End, err)
		}
		series = append(series, types.PriceSample{
			Start:      start,
			End:        end,
			PriceCtKWh: raw.PriceCtKWh,
		})
	}

	return series, nil
}

func (d *Dynatarif) request(ctx context.Context, method, path string, form url.Values, out any) error {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseUrl+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if d.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", d.token))
	}
	req.Header.Set("Accept", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("got status %s", res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"parkingpass/internal/types"
)

const (
	// DefaultHolidayBaseURL is the SpcdeInfo rest-day endpoint.
	DefaultHolidayBaseURL = "http://apis.data.go.kr/B090041/openapi/service/SpcdeInfoService/getRestDeInfo"

	// HolidayKeyPlaceholder is the sample value shipped in .env templates.
	HolidayKeyPlaceholder = "your_holiday_key"
)

// HolidayClient calls the special-day information feed.
type HolidayClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
	timeout time.Duration
}

// HolidayClientConfig configures a HolidayClient.
type HolidayClientConfig struct {
	BaseURL string
	APIKey  types.SecretString
	Timeout time.Duration
}

// NewHolidayClient builds a holiday feed client.
func NewHolidayClient(cfg HolidayClientConfig, opts ...BaseClientOption) *HolidayClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHolidayBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &HolidayClient{
		base: NewBaseClient(
			&http.Client{Timeout: cfg.Timeout},
			"kasi-spcde-info",
			DefaultRetryPolicy(),
			"ParkingPass/1.0",
			opts...,
		),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
	}
}

type holidayEnvelope struct {
	Response struct {
		Body struct {
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// holidayItems holds either a single object or an array under "item".
type holidayItems struct {
	Item json.RawMessage `json:"item"`
}

type holidayItem struct {
	LocDate   flexString `json:"locdate"`
	DateName  string     `json:"dateName"`
	IsHoliday string     `json:"isHoliday"`
}

// flexString accepts a JSON string or number. The feed emits locdate as a
// bare integer.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// RestDays implements HolidayFeed.
func (c *HolidayClient) RestDays(ctx context.Context, year, month int) ([]RestDay, error) {
	if !c.apiKey.Usable(HolidayKeyPlaceholder) {
		return nil, types.NewAppError(types.ErrCodeUpstreamCredentials, "holiday feed key is not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("serviceKey", c.apiKey.Unmask())
	q.Set("solYear", strconv.Itoa(year))
	q.Set("solMonth", fmt.Sprintf("%02d", month))
	q.Set("_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build holiday request", err)
	}

	var env holidayEnvelope
	if err := c.base.GetJSON(req, types.ErrCodeUpstreamHoliday, &env); err != nil {
		return nil, err
	}

	raw, err := normalizeItems(env.Response.Body.Items)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamHoliday, "holiday feed returned malformed items", err)
	}

	days := make([]RestDay, 0, len(raw))
	for _, it := range raw {
		days = append(days, RestDay{
			LocDate:   string(it.LocDate),
			DateName:  it.DateName,
			IsHoliday: it.IsHoliday == "Y",
		})
	}
	return days, nil
}

// normalizeItems decodes the items block into a list. A month without rest
// days yields an empty string for items, and a month with one yields a bare
// object for item.
func normalizeItems(rawItems json.RawMessage) ([]holidayItem, error) {
	trimmed := bytes.TrimSpace(rawItems)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}

	var items holidayItems
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}

	item := bytes.TrimSpace(items.Item)
	switch {
	case len(item) == 0:
		return nil, nil
	case item[0] == '[':
		var list []holidayItem
		if err := json.Unmarshal(item, &list); err != nil {
			return nil, err
		}
		return list, nil
	case item[0] == '{':
		var single holidayItem
		if err := json.Unmarshal(item, &single); err != nil {
			return nil, err
		}
		return []holidayItem{single}, nil
	default:
		return nil, fmt.Errorf("unexpected item token %q", item[0])
	}
}

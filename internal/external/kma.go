package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"parkingpass/internal/types"
)

const (
	// DefaultKMABaseURL is the VilageFcst 2.0 short-term forecast endpoint.
	DefaultKMABaseURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getVilageFcst"

	// KMAKeyPlaceholder is the sample value shipped in .env templates.
	KMAKeyPlaceholder = "your_kma_key"

	kmaResultNormal = "00"
)

// KMAClient calls the short-term forecast feed.
type KMAClient struct {
	base      *BaseClient
	baseURL   string
	apiKey    types.SecretString
	numOfRows int
	timeout   time.Duration
}

// KMAClientConfig configures a KMAClient.
type KMAClientConfig struct {
	BaseURL   string
	APIKey    types.SecretString
	NumOfRows int
	Timeout   time.Duration
}

// NewKMAClient builds a forecast feed client.
func NewKMAClient(cfg KMAClientConfig, opts ...BaseClientOption) *KMAClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultKMABaseURL
	}
	if cfg.NumOfRows <= 0 {
		cfg.NumOfRows = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &KMAClient{
		base: NewBaseClient(
			&http.Client{Timeout: cfg.Timeout},
			"kma-vilage-fcst",
			DefaultRetryPolicy(),
			"ParkingPass/1.0",
			opts...,
		),
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		numOfRows: cfg.NumOfRows,
		timeout:   cfg.Timeout,
	}
}

type kmaEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			// Items is an object on success and an empty string when the
			// run has no data yet.
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type kmaItems struct {
	Item []kmaItem `json:"item"`
}

type kmaItem struct {
	Category  string `json:"category"`
	FcstDate  string `json:"fcstDate"`
	FcstTime  string `json:"fcstTime"`
	FcstValue string `json:"fcstValue"`
}

// VilageForecast implements ForecastFeed. Only the items whose forecast
// timestamp equals that of the first item are collected.
func (c *KMAClient) VilageForecast(ctx context.Context, baseDate, baseTime string, nx, ny int) (*VilageForecast, error) {
	if !c.apiKey.Usable(KMAKeyPlaceholder) {
		return nil, types.NewAppError(types.ErrCodeUpstreamCredentials, "forecast feed key is not configured", nil)
	}

	// Timeout bounds the whole call, retries included.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("serviceKey", c.apiKey.Unmask())
	q.Set("pageNo", "1")
	q.Set("numOfRows", strconv.Itoa(c.numOfRows))
	q.Set("dataType", "JSON")
	q.Set("base_date", baseDate)
	q.Set("base_time", baseTime)
	q.Set("nx", strconv.Itoa(nx))
	q.Set("ny", strconv.Itoa(ny))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build forecast request", err)
	}

	var env kmaEnvelope
	if err := c.base.GetJSON(req, types.ErrCodeUpstreamWeather, &env); err != nil {
		return nil, err
	}

	hdr := env.Response.Header
	if hdr.ResultCode != kmaResultNormal {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeUpstreamWeather, "forecast feed returned an error result", nil,
			map[string]any{"result_code": hdr.ResultCode, "result_msg": hdr.ResultMsg})
	}

	var items kmaItems
	if err := json.Unmarshal(env.Response.Body.Items, &items); err != nil || len(items.Item) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "forecast feed returned no items", err)
	}

	first := items.Item[0]
	out := &VilageForecast{
		FcstDate: first.FcstDate,
		FcstTime: first.FcstTime,
		Values:   make(map[string]string, 4),
	}
	for _, it := range items.Item {
		if it.FcstDate != first.FcstDate || it.FcstTime != first.FcstTime {
			continue
		}
		out.Values[it.Category] = it.FcstValue
	}
	return out, nil
}

// Package busapi resolves the bus routes serving a stop through the Seoul
// bus information service (getRouteByStation).
package busapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/rally-detour/internal/observability"
)

// DefaultBaseURL is the getRouteByStation endpoint.
const DefaultBaseURL = "http://ws.bus.go.kr/api/rest/stationinfo/getRouteByStation"

// Route label fields of a getRouteByStation item.
const (
	FieldRouteName   = "busRouteNm"
	FieldRouteAbbrev = "busRouteAbrv"
)

// APIError is a non-zero headerCd in an otherwise successful response.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bus api error: headerCd=%s, headerMsg=%s", e.Code, e.Message)
}

// Client implements domain.RouteLookup against getRouteByStation.
type Client struct {
	serviceKey string
	routeField string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRouteField selects which item field is read as the route label.
func WithRouteField(field string) Option {
	return func(c *Client) { c.routeField = field }
}

// NewClient creates a route lookup client. The service key is sent as-is.
func NewClient(serviceKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		serviceKey: serviceKey,
		routeField: FieldRouteName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RoutesByStop returns the distinct, non-blank route labels at a stop in
// response order.
func (c *Client) RoutesByStop(ctx context.Context, stopID string) ([]string, error) {
	params := url.Values{
		"serviceKey": {c.serviceKey},
		"arsId":      {strings.TrimSpace(stopID)},
		"resultType": {"json"},
	}

	start := time.Now()
	routes, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.RouteLookupDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.RouteLookups.WithLabelValues("error").Inc()
		return nil, err
	case len(routes) == 0:
		c.metrics.RouteLookups.WithLabelValues("empty").Inc()
	default:
		c.metrics.RouteLookups.WithLabelValues("success").Inc()
	}
	c.logger.Debug("route lookup", "stop_id", stopID, "routes", len(routes))
	return routes, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bus api error: status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	header, body := env.unwrap()
	if header != nil && !header.HeaderCd.ok() {
		return nil, &APIError{Code: string(header.HeaderCd), Message: header.HeaderMsg}
	}
	if body == nil {
		return nil, nil
	}
	return routeLabels(body.ItemList, c.routeField), nil
}

func routeLabels(items itemList, field string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, it := range items {
		label := strings.TrimSpace(it.text(field))
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// getRouteByStation response types. The service answers either with
// msgHeader/msgBody at the top level or wrapped in ServiceResult.

type envelope struct {
	MsgHeader     *msgHeader `json:"msgHeader"`
	MsgBody       *msgBody   `json:"msgBody"`
	ServiceResult *struct {
		MsgHeader *msgHeader `json:"msgHeader"`
		MsgBody   *msgBody   `json:"msgBody"`
	} `json:"ServiceResult"`
}

func (e envelope) unwrap() (*msgHeader, *msgBody) {
	header, body := e.MsgHeader, e.MsgBody
	if e.ServiceResult != nil {
		if header == nil {
			header = e.ServiceResult.MsgHeader
		}
		if body == nil {
			body = e.ServiceResult.MsgBody
		}
	}
	return header, body
}

type msgHeader struct {
	HeaderCd  headerCode `json:"headerCd"`
	HeaderMsg string     `json:"headerMsg"`
}

type msgBody struct {
	ItemList itemList `json:"itemList"`
}

// headerCode accepts the result code as a JSON string or number.
type headerCode string

func (h *headerCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*h = headerCode(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("headerCd: %w", err)
	}
	*h = headerCode(n.String())
	return nil
}

func (h headerCode) ok() bool {
	return h == "" || h == "0"
}

type item map[string]any

func (it item) text(field string) string {
	switch v := it[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// itemList accepts a single object or an array of objects.
type itemList []item

func (l *itemList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '{':
		var one item
		if err := json.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("itemList: %w", err)
		}
		*l = itemList{one}
		return nil
	default:
		var many []item
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("itemList: %w", err)
		}
		*l = many
		return nil
	}
}

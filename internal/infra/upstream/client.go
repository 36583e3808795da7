package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gardiens/internal/app/policies"
	domainlistings "gardiens/internal/domain/listings"
)

var ErrBaseURLRequired = errors.New("upstream: base url is required")

// StatusError is a non-2xx answer from the marketplace backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps the status to the application error it stands for.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return policies.ErrUnauthorized
	case e.Code == http.StatusNotFound:
		return policies.ErrListingNotFound
	case e.Code >= http.StatusInternalServerError:
		return policies.ErrUpstreamUnavailable
	default:
		return nil
	}
}

// Client talks to the marketplace REST backend on behalf of a bearer credential.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("upstream: invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: timeout}, Logger: logger}, nil
}

type announcementPayload struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"ownerId"`
	Title       *string  `json:"title"`
	Location    *string  `json:"location"`
	Description *string  `json:"description"`
	CareType    *string  `json:"careType"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	IsFavorite  bool     `json:"isFavorite"`
	Status      string   `json:"status"`
	UpdatedAt   string   `json:"updatedAt"`
}

func (p announcementPayload) toDomain() *domainlistings.Listing {
	status, ok := domainlistings.ParseStatus(p.Status)
	if !ok {
		status = domainlistings.Status(strings.ToLower(p.Status))
	}
	listing := &domainlistings.Listing{
		ID:          domainlistings.ListingID(p.ID),
		Owner:       domainlistings.OwnerID(p.OwnerID),
		Title:       deref(p.Title),
		Location:    deref(p.Location),
		Description: deref(p.Description),
		CareType:    deref(p.CareType),
		StartDate:   deref(p.StartDate),
		EndDate:     deref(p.EndDate),
		PriceCents:  int64(math.Round(p.Price * 100)),
		Images:      append([]string(nil), p.Images...),
		Favorite:    p.IsFavorite,
		Status:      status,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.UpdatedAt); err == nil {
		listing.UpdatedAt = ts.UTC()
	}
	return listing
}

// ListAnnouncements fetches the announcements with the given publication status.
func (c *Client) ListAnnouncements(ctx context.Context, credential string, status domainlistings.Status) ([]*domainlistings.Listing, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	raw, err := c.do(ctx, http.MethodGet, "/announcements", query, credential, nil)
	if err != nil {
		return nil, err
	}
	var payloads []announcementPayload
	if err := decodeCollection(raw, &payloads); err != nil {
		return nil, fmt.Errorf("upstream: decode announcements: %w", err)
	}
	out := make([]*domainlistings.Listing, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, p.toDomain())
	}
	return out, nil
}

// ToggleFavorite flips the favorite flag of a listing and returns the new value.
func (c *Client) ToggleFavorite(ctx context.Context, credential string, id domainlistings.ListingID) (bool, error) {
	path := "/favorites/" + url.PathEscape(string(id)) + "/toggle"
	raw, err := c.do(ctx, http.MethodPost, path, nil, credential, []byte(`{}`))
	if err != nil {
		return false, err
	}
	var resp struct {
		Favorite   *bool `json:"favorite"`
		IsFavorite *bool `json:"isFavorite"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, fmt.Errorf("upstream: decode favorite toggle: %w", err)
	}
	switch {
	case resp.Favorite != nil:
		return *resp.Favorite, nil
	case resp.IsFavorite != nil:
		return *resp.IsFavorite, nil
	default:
		return false, errors.New("upstream: favorite toggle response without flag")
	}
}

// CareTypes returns the category vocabulary, in backend order.
func (c *Client) CareTypes(ctx context.Context, credential string) ([]string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/care-types", nil, credential, nil)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := decodeCollection(raw, &items); err != nil {
		return nil, fmt.Errorf("upstream: decode care types: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var label string
		if err := json.Unmarshal(item, &label); err != nil {
			var named struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(item, &named); err != nil {
				return nil, fmt.Errorf("upstream: decode care type: %w", err)
			}
			label = named.Name
		}
		if label = strings.TrimSpace(label); label != "" {
			out = append(out, label)
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, credential string, body []byte) ([]byte, error) {
	if c == nil || c.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.log().WarnContext(ctx, "upstream request failed", "method", method, "path", path, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %w", policies.ErrUpstreamUnavailable, context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("%w: %w", policies.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	c.log().DebugContext(ctx, "upstream request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", policies.ErrUpstreamUnavailable, err)
	}
	return raw, nil
}

// decodeCollection accepts a bare JSON array or one wrapped as {"data": [...]}.
func decodeCollection(raw []byte, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return err
		}
		trimmed = envelope.Data
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.Unmarshal(trimmed, dst)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ policies.ListingSource = (*Client)(nil)

package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	"GrantReport/internal/config"
	"GrantReport/internal/domain"
	"GrantReport/internal/ports"
)

const defaultPageSize = 50000

// Client pages through the grants API and returns every application.
type Client struct {
	client   *http.Client
	baseURL  string
	token    string
	pageSize int
	schema   *gojsonschema.Schema
	logger   *slog.Logger
}

var _ ports.ApplicationSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets the configured request timeout.
func NewClient(cfg config.UpstreamConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout()}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		client:   client,
		baseURL:  cfg.URL,
		token:    cfg.Token,
		pageSize: pageSize,
		schema:   compiledItemSchema,
		logger:   logger,
	}
}

type envelope struct {
	AvailableRecords *int               `json:"available_records"`
	Items            *[]json.RawMessage `json:"items"`
}

// FetchAll walks every page. progress, when set, is called after each page.
func (c *Client) FetchAll(ctx context.Context, progress func(loaded, total int)) ([]domain.Application, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	var results []domain.Application
	skip := 0
	for {
		page, err := c.fetchPage(ctx, skip)
		if err != nil {
			return nil, fmt.Errorf("page at skip %d: %w", skip, err)
		}

		total := *page.AvailableRecords
		items := *page.Items

		for i, raw := range items {
			app, err := decodeItem(c.schema, skip+i, raw)
			if err != nil {
				return nil, err
			}
			results = append(results, app)
		}

		c.debug("page fetched", "skip", skip, "items", len(items), "total", total)
		if progress != nil {
			progress(len(results), total)
		}

		skip += c.pageSize
		if len(items) == 0 || skip >= total {
			break
		}
	}

	return results, nil
}

func (c *Client) fetchPage(ctx context.Context, skip int) (envelope, error) {
	pageURL, err := buildPageURL(c.baseURL, skip, c.pageSize)
	if err != nil {
		return envelope{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("read page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return envelope{}, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var page envelope
	if err := json.Unmarshal(body, &page); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	if page.AvailableRecords == nil || page.Items == nil {
		return envelope{}, ErrUnexpectedPayload
	}

	return page, nil
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid api url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

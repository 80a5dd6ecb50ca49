package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"cover-manager/core/bib"
	"cover-manager/core/clients"
	"cover-manager/core/reconcile"
	"cover-manager/core/retry"
	"cover-manager/core/utils"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
)

// coverSet is the resolver set searched for covers.
const coverSet = "covers"

// maxThumbnail caps the size of a thumbnail response.
const maxThumbnail = 10 << 20

// searchEntry is one cover in a search response.
type searchEntry struct {
	Source   string `json:"source"`
	IDType   string `json:"id_type"`
	BaseID   string `json:"base_id"`
	IDCode   string `json:"id_code"`
	// IsActive is absent on older resolvers and sometimes sent as 0/1.
	IsActive any    `json:"is_active"`
}

type searchResult struct {
	Data []searchEntry `json:"data"`
}

// Thumbnail is a fetched cover image.
type Thumbnail struct {
	ContentType string
	Data        []byte
}

// Client is the resolver client.
type Client struct {
	cfg    Config
	http   *http.Client
	policy retry.Policy
	logger *zap.Logger
}

// New creates a resolver client.
func New(cfg Config, policy retry.Policy, logger *zap.Logger) *Client {
	cfg.BaseURL = clients.BaseURL(cfg.BaseURL)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   clients.NewHTTPClient(cfg.TimeoutSeconds),
		policy: policy,
		logger: logger,
	}
}

// SearchURL builds the search query for ids. Empty identifier kinds are
// left out of the query document.
func (c *Client) SearchURL(ids bib.IdentifierSet) (string, error) {
	query, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode identifiers: %w", err)
	}

	params := url.Values{}
	params.Set("query", string(query))
	params.Set("set", coverSet)
	params.Set("inst", c.cfg.Key)
	return c.cfg.BaseURL + "search?" + params.Encode(), nil
}

// ThumbnailURL returns the display location of a cover.
func (c *Client) ThumbnailURL(source, coverCode string) string {
	params := url.Values{}
	params.Set("set", source)
	params.Set("inst", c.cfg.Key)
	params.Set("from_cache", "0")
	return c.cfg.BaseURL + url.PathEscape(coverCode) + "/thumbnail?" + params.Encode()
}

// FetchAll returns every cover the resolver knows for ids, grouped by
// source. Transient failures are retried.
func (c *Client) FetchAll(ctx context.Context, ids bib.IdentifierSet) (*reconcile.LiveCoverSet, error) {
	if ids.IsEmpty() {
		return &reconcile.LiveCoverSet{}, nil
	}

	target, err := c.SearchURL(ids)
	if err != nil {
		return nil, err
	}

	results, err := retry.Do(ctx, c.policy, "resolver.search", func(ctx context.Context) ([]searchResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := clients.Do(c.http, req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var results []searchResult
		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}

	live := &reconcile.LiveCoverSet{}
	if len(results) == 0 {
		return live, nil
	}

	for _, entry := range results[0].Data {
		active := true
		if entry.IsActive != nil {
			active = utils.ToBool(entry.IsActive)
		}
		live.Add(reconcile.CoverRecord{
			Source:    entry.Source,
			IDType:    entry.IDType,
			IDCode:    entry.BaseID,
			CoverCode: entry.IDCode,
			IsActive:  active,
			CoverURL:  c.ThumbnailURL(entry.Source, entry.IDCode),
		})
	}

	c.logger.Debug("Fetched live covers",
		zap.String("mmsid", ids.MMSID),
		zap.Int("covers", live.Len()),
		zap.Strings("sources", live.Sources()),
	)
	return live, nil
}

// FetchOne downloads the thumbnail of a single cover.
func (c *Client) FetchOne(ctx context.Context, source, coverCode string) (*Thumbnail, error) {
	params := url.Values{}
	params.Set("set", source)
	params.Set("inst", c.cfg.Key)
	target := c.cfg.BaseURL + url.PathEscape(coverCode) + "/thumbnail?" + params.Encode()

	return retry.Do(ctx, c.policy, "resolver.thumbnail", func(ctx context.Context) (*Thumbnail, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}

		resp, err := clients.Do(c.http, req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnail))
		if err != nil {
			return nil, fmt.Errorf("failed to read thumbnail: %w", err)
		}
		return &Thumbnail{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
	})
}

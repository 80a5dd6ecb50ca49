package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"

	"cover-manager/core/auth"
	"cover-manager/core/bib"
	"cover-manager/core/clients"
	"cover-manager/core/retry"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
)

// ErrNoRecordService is returned by Persist when no record service is configured.
var ErrNoRecordService = errors.New("record service url is not configured")

var institutionPattern = regexp.MustCompile(`^(.*)_(.*)$`)

// Institution identifies the catalog tenant, e.g. "01ABC_INST" splits into
// tenant "01ABC" and inst "INST".
type Institution struct {
	Full   string `json:"full"`
	Tenant string `json:"tenant"`
	Inst   string `json:"inst"`
}

// ParseInstitution splits a full institution code on its last underscore.
func ParseInstitution(full string) (Institution, error) {
	m := institutionPattern.FindStringSubmatch(full)
	if m == nil {
		return Institution{}, fmt.Errorf("invalid institution code %q", full)
	}
	return Institution{Full: full, Tenant: m[1], Inst: m[2]}, nil
}

// Client is the catalog client.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens auth.TokenSource
	policy retry.Policy
	logger *zap.Logger
}

// New creates a catalog client.
func New(cfg Config, tokens auth.TokenSource, policy retry.Policy, logger *zap.Logger) *Client {
	cfg.BaseURL = clients.BaseURL(cfg.BaseURL)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   clients.NewHTTPClient(cfg.TimeoutSeconds),
		tokens: tokens,
		policy: policy,
		logger: logger,
	}
}

// Fetch loads a record by id. Transient failures are retried.
func (c *Client) Fetch(ctx context.Context, mmsID string) (*bib.Record, error) {
	return retry.Do(ctx, c.policy, "catalog.fetch", func(ctx context.Context) (*bib.Record, error) {
		return c.fetch(ctx, mmsID)
	})
}

func (c *Client) fetch(ctx context.Context, mmsID string) (*bib.Record, error) {
	req, err := c.newRead(ctx, "bibs/"+url.PathEscape(mmsID))
	if err != nil {
		return nil, err
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	rec, err := bib.Decode(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Fetched record", zap.String("mms_id", mmsID), zap.String("title", rec.Title))
	return rec, nil
}

// Persist writes the active-cover annotation of recordID and returns the
// record as stored afterwards. It is never retried.
func (c *Client) Persist(ctx context.Context, recordID string, payload *bib.CoverIDs) (*bib.Record, error) {
	if c.cfg.RecordService == "" {
		return nil, ErrNoRecordService
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}

	coverset, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coverset: %w", err)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("mmsid", recordID); err != nil {
		return nil, err
	}
	if err := form.WriteField("coverset", string(coverset)); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RecordService, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Persisted active covers",
		zap.String("record_id", recordID),
		zap.ByteString("coverset", coverset),
	)
	return bib.Decode(body)
}

// Institution reads the institution code from the general configuration.
func (c *Client) Institution(ctx context.Context) (Institution, error) {
	inst, err := retry.Do(ctx, c.policy, "catalog.institution", func(ctx context.Context) (Institution, error) {
		req, err := c.newRead(ctx, "conf/general")
		if err != nil {
			return Institution{}, err
		}
		body, err := c.send(req)
		if err != nil {
			return Institution{}, err
		}

		var general struct {
			Institution struct {
				Value string `json:"value"`
			} `json:"institution"`
		}
		if err := json.Unmarshal(body, &general); err != nil {
			return Institution{}, fmt.Errorf("failed to decode general configuration: %w", err)
		}
		return ParseInstitution(general.Institution.Value)
	})
	if err != nil {
		return Institution{}, fmt.Errorf("failed to load institution: %w", err)
	}
	return inst, nil
}

func (c *Client) newRead(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "apikey "+c.cfg.APIKey)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := clients.Do(c.http, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

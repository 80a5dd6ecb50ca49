package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sync"

	"cover-manager/core/auth"
	"cover-manager/core/clients"
	"cover-manager/core/clients/catalog"

	"go.uber.org/zap"
)

// InstitutionSource resolves the institution the cover server stores covers under.
type InstitutionSource interface {
	Institution(ctx context.Context) (catalog.Institution, error)
}

// Cover is an image to upload.
type Cover struct {
	// Type is the identifier type the cover is attached to, e.g. "mmsid".
	Type string
	// Code is the identifier value.
	Code string
	// Filename is the original file name.
	Filename string
	// ContentType is the sniffed media type of Data.
	ContentType string
	// Data is the image content.
	Data []byte
}

// Client is the cover server client.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens auth.TokenSource
	source InstitutionSource
	logger *zap.Logger

	mu   sync.Mutex
	inst *catalog.Institution
}

// New creates a cover server client. The institution comes from
// cfg.Institution when set, otherwise from source on first use.
func New(cfg Config, tokens auth.TokenSource, source InstitutionSource, logger *zap.Logger) *Client {
	cfg.BaseURL = clients.BaseURL(cfg.BaseURL)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   clients.NewHTTPClient(cfg.TimeoutSeconds),
		tokens: tokens,
		source: source,
		logger: logger,
	}
}

// Institution returns the institution used in cover server paths.
func (c *Client) Institution(ctx context.Context) (catalog.Institution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inst != nil {
		return *c.inst, nil
	}

	var (
		inst catalog.Institution
		err  error
	)
	switch {
	case c.cfg.Institution != "":
		inst, err = catalog.ParseInstitution(c.cfg.Institution)
	case c.source != nil:
		inst, err = c.source.Institution(ctx)
	default:
		err = fmt.Errorf("no institution configured")
	}
	if err != nil {
		return catalog.Institution{}, err
	}

	c.inst = &inst
	return inst, nil
}

func (c *Client) endpoint(ctx context.Context) (string, error) {
	inst, err := c.Institution(ctx)
	if err != nil {
		return "", err
	}
	return c.cfg.BaseURL + url.PathEscape(inst.Tenant) + "/" + url.PathEscape(inst.Full), nil
}

// Upload sends a new cover image.
func (c *Client) Upload(ctx context.Context, cover Cover) error {
	target, err := c.endpoint(ctx)
	if err != nil {
		return err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain token: %w", err)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cover"; filename=%q`, cover.Filename))
	if cover.ContentType != "" {
		header.Set("Content-Type", cover.ContentType)
	}
	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(cover.Data); err != nil {
		return err
	}
	if err := form.WriteField("type", cover.Type); err != nil {
		return err
	}
	if err := form.WriteField("code", cover.Code); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", token)

	if err := c.send(req); err != nil {
		return fmt.Errorf("failed to upload cover: %w", err)
	}

	c.logger.Info("Uploaded cover",
		zap.String("type", cover.Type),
		zap.String("code", cover.Code),
		zap.Int("size", len(cover.Data)),
	)
	return nil
}

// Delete removes the cover attached to the given identifier.
func (c *Client) Delete(ctx context.Context, idType, idCode string) error {
	target, err := c.endpoint(ctx)
	if err != nil {
		return err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain token: %w", err)
	}

	params := url.Values{}
	params.Set("type", idType)
	params.Set("code", idCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token)

	if err := c.send(req); err != nil {
		return fmt.Errorf("failed to delete cover: %w", err)
	}

	c.logger.Info("Deleted cover", zap.String("type", idType), zap.String("code", idCode))
	return nil
}

func (c *Client) send(req *http.Request) error {
	resp, err := clients.Do(c.http, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Package figma renders a Figma frame to a PNG through the Figma images API.
package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.figma.com"
	DefaultTimeout = 60 * time.Second
	tokenHeader    = "X-Figma-Token"
	serviceName    = "figma"
	maxImageBytes  = 20 << 20
)

var linkPattern = regexp.MustCompile(`/design/([^/]+)/.*\?(?:.*&)?node-id=([^&#]+)`)

// Link identifies one node of a Figma file.
type Link struct {
	FileKey string
	NodeID  string
}

// ParseLink extracts the file key and node id from a Figma design URL.
func ParseLink(raw string) (Link, error) {
	m := linkPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Link{}, domain.InvalidInput("please provide a valid link")
	}
	node, err := url.QueryUnescape(m[2])
	if err != nil || node == "" {
		return Link{}, domain.InvalidInput("please provide a valid link")
	}
	return Link{FileKey: m[1], NodeID: node}, nil
}

// imageKey is the node id in the form the images API keys its answer by.
func (l Link) imageKey() string {
	return strings.ReplaceAll(l.NodeID, "-", ":")
}

type Config struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{token: cfg.Token, baseURL: strings.TrimRight(base, "/"), http: hc}
}

// Render resolves link to a PNG and downloads it.
func (c *Client) Render(ctx context.Context, link string) (domain.DesignImage, error) {
	l, err := ParseLink(link)
	if err != nil {
		return domain.DesignImage{}, err
	}

	start := time.Now()
	img, err := c.render(ctx, l)
	metrics.ObserveExternal(serviceName, start, err)
	if err != nil {
		logger.FromContext(ctx).Warn("figma render failed", "file_key", l.FileKey, "node_id", l.NodeID, "error", err)
		return domain.DesignImage{}, err
	}
	return img, nil
}

func (c *Client) render(ctx context.Context, l Link) (domain.DesignImage, error) {
	q := url.Values{}
	q.Set("ids", l.NodeID)
	q.Set("format", "png")
	endpoint := fmt.Sprintf("%s/v1/images/%s?%s", c.baseURL, url.PathEscape(l.FileKey), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.DesignImage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.DesignImage{}, domain.External("figma request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.DesignImage{}, domain.InvalidInput("figma link must be public")
	case resp.StatusCode != http.StatusOK:
		return domain.DesignImage{}, domain.External("figma request failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body struct {
		Err    any                `json:"err"`
		Images map[string]*string `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.DesignImage{}, domain.External("figma response malformed", err)
	}
	imageURL := body.Images[l.imageKey()]
	if imageURL == nil {
		imageURL = body.Images[l.NodeID]
	}
	if imageURL == nil || *imageURL == "" {
		return domain.DesignImage{}, domain.External("figma did not render the node", fmt.Errorf("no image for node %s", l.NodeID))
	}

	data, contentType, err := c.download(ctx, *imageURL)
	if err != nil {
		return domain.DesignImage{}, domain.External("figma image download failed", err)
	}
	return domain.DesignImage{Data: data, ContentType: contentType, SourceURL: *imageURL}, nil
}

func (c *Client) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}

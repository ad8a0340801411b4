package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saizk/whapbot/internal/browser"
)

const (
	// DefaultTimeout bounds a single feed request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with feed requests; GitHub rejects empty agents.
	DefaultUserAgent = "whapbot/1.0"

	maxFeedBody = 8 << 20
)

// FeedClient queries the upstream release feeds of every family.
type FeedClient struct {
	client    *http.Client
	userAgent string
	osTag     string
	endpoints map[browser.Family]string
}

// NewFeedClient creates a client for the given OS tag. The tag is used as the
// platform marker when scraping the Edge page.
func NewFeedClient(osTag string) *FeedClient {
	return &FeedClient{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		osTag:     osTag,
		endpoints: map[browser.Family]string{},
	}
}

// SetEndpoint overrides the feed URL of a family, e.g. for a mirror.
func (c *FeedClient) SetEndpoint(f browser.Family, url string) {
	c.endpoints[f] = url
}

func (c *FeedClient) endpoint(f browser.Family) (string, browser.FeedKind, error) {
	spec, ok := browser.Lookup(f)
	if !ok {
		return "", 0, fmt.Errorf("unknown browser family %q", f)
	}
	if url, ok := c.endpoints[f]; ok {
		return url, spec.Feed, nil
	}
	return spec.FeedURL, spec.Feed, nil
}

// Latest returns the newest driver version published for f.
func (c *FeedClient) Latest(ctx context.Context, f browser.Family) (string, error) {
	_, kind, err := c.endpoint(f)
	if err != nil {
		return "", err
	}
	switch kind {
	case browser.FeedChromium:
		return c.ChromiumVersion(ctx, f, "")
	case browser.FeedMetadata:
		return c.MetadataVersion(ctx, f)
	case browser.FeedScraped:
		return c.EdgeVersion(ctx)
	default:
		return "", fmt.Errorf("no feed for %s", f)
	}
}

// ChromiumVersion reads the plain-text version pointer. A non-empty major
// selects the driver matching that browser major version.
func (c *FeedClient) ChromiumVersion(ctx context.Context, f browser.Family, major string) (string, error) {
	url, _, err := c.endpoint(f)
	if err != nil {
		return "", err
	}
	if major != "" {
		url += "_" + major
	}

	body, err := c.get(ctx, url, "text/plain")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(body), "\n")
	version := strings.TrimSpace(line)
	if version == "" {
		return "", fmt.Errorf("empty version in %s", url)
	}
	return version, nil
}

type releaseMetadata struct {
	TagName string `json:"tag_name"`
}

// MetadataVersion reads tag_name from a GitHub release document.
func (c *FeedClient) MetadataVersion(ctx context.Context, f browser.Family) (string, error) {
	url, _, err := c.endpoint(f)
	if err != nil {
		return "", err
	}

	body, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return "", err
	}
	var meta releaseMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("decode release metadata: %w", err)
	}
	if meta.TagName == "" {
		return "", fmt.Errorf("release metadata at %s has no tag_name", url)
	}
	return meta.TagName, nil
}

func (c *FeedClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

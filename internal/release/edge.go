package release

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/saizk/whapbot/internal/browser"
)

const edgeVersionMarker = "Version:"

var versionToken = regexp.MustCompile(`\d+(?:\.\d+)+`)

// EdgeVersion scrapes the Edge WebDriver download page.
func (c *FeedClient) EdgeVersion(ctx context.Context) (string, error) {
	url, _, err := c.endpoint(browser.Edge)
	if err != nil {
		return "", err
	}
	body, err := c.get(ctx, url, "text/html")
	if err != nil {
		return "", err
	}
	text, err := pageText(body)
	if err != nil {
		return "", err
	}
	return ScrapeEdgeVersion(text, c.osTag)
}

// pageText returns the visible text of an HTML document.
func pageText(body []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

// ScrapeEdgeVersion finds the first "OS <osTag>" marker that follows a
// "Version:" marker and returns the version token printed after the closest
// preceding "Version:".
func ScrapeEdgeVersion(text, osTag string) (string, error) {
	first := strings.Index(text, edgeVersionMarker)
	if first < 0 {
		return "", fmt.Errorf("marker %q not found in edge page", edgeVersionMarker)
	}

	osMarker := "OS " + osTag
	end := strings.Index(text[first:], osMarker)
	if end < 0 {
		return "", fmt.Errorf("marker %q not found after %q", osMarker, edgeVersionMarker)
	}
	end += first

	start := strings.LastIndex(text[:end], edgeVersionMarker) + len(edgeVersionMarker)
	version := versionToken.FindString(text[start:end])
	if version == "" {
		return "", fmt.Errorf("no version between %q and %q", edgeVersionMarker, osMarker)
	}
	return version, nil
}

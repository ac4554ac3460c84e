package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"ai-researcher-be/internal/pkg/logger"
)

const (
	maxBodyBytes    = 2 << 20 // 2MB per page
	maxContentChars = 50000
	maxParallel     = 8
	cacheTTL        = 30 * time.Minute
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t]{2,}`)
)

// Page is the extracted text of one scraped URL.
type Page struct {
	URL     string
	Title   string
	Content string
}

// Scraper fetches pages concurrently and reduces them to plain text. Fetched
// pages are cached by URL so overlapping sub-queries inside one process do
// not refetch the same site.
type Scraper struct {
	userAgent string
	client    *http.Client
	cache     *gocache.Cache
	log       logger.ILogger
}

func New(userAgent string, timeout time.Duration, log logger.ILogger) *Scraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Scraper{
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		cache:     gocache.New(cacheTTL, 10*time.Minute),
		log:       log,
	}
}

// Scrape fetches every URL and returns the pages that could be retrieved, in
// input order. A URL that fails is dropped from the result set; the gather
// that asked for it proceeds with whatever was retrievable.
func (s *Scraper) Scrape(ctx context.Context, urls []string) []Page {
	results := make([]*Page, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			page, err := s.fetchOne(gctx, u)
			if err != nil {
				s.log.Warn("scraper", "Dropping url after fetch failure", map[string]interface{}{
					"url":   u,
					"error": err.Error(),
				})
				return nil
			}
			results[i] = page
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]Page, 0, len(urls))
	for _, p := range results {
		if p != nil && p.Content != "" {
			pages = append(pages, *p)
		}
	}
	return pages
}

func (s *Scraper) fetchOne(ctx context.Context, url string) (*Page, error) {
	if cached, found := s.cache.Get(url); found {
		page := cached.(Page)
		return &page, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var title, content string
	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/pdf") || strings.HasSuffix(strings.ToLower(url), ".pdf"):
		content, err = extractPDFText(body)
		if err != nil {
			return nil, err
		}
	case strings.Contains(contentType, "text/plain") || strings.Contains(contentType, "text/markdown"):
		content = strings.TrimSpace(string(body))
	default:
		title, content, err = ExtractText(string(body))
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
	}

	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	page := Page{URL: url, Title: title, Content: content}
	s.cache.Set(url, page, gocache.DefaultExpiration)
	return &page, nil
}

// ExtractText reduces an HTML document to its title and readable text.
// Markup is dropped rather than rewritten to markdown: the text feeds an
// embedding ranker, and link/emphasis syntax only adds noise there.
func ExtractText(htmlContent string) (title, text string, err error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", err
	}

	var sb strings.Builder
	var walk func(*html.Node, int)
	walk = func(n *html.Node, depth int) {
		if depth > 50 {
			return
		}

		switch n.Type {
		case html.TextNode:
			t := strings.TrimSpace(n.Data)
			if t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header", "form", "aside":
				return
			case "title":
				if title == "" {
					title = textContent(n)
				}
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "section", "article", "tr":
				sb.WriteString("\n\n")
			case "br", "li":
				sb.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(doc, 0)

	return title, cleanText(sb.String()), nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func cleanText(s string) string {
	s = multiSpacePattern.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")

	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

package reddit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/core/service/normalize"
)

const (
	DefaultScrapeBaseURL = "https://old.reddit.com"

	NameScrape = "scrape"
)

// ScrapeSource reads old.reddit.com HTML when both JSON APIs are unusable.
type ScrapeSource struct {
	collector *colly.Collector
	baseURL   string
	log       zerolog.Logger
}

var _ out.ContentSource = (*ScrapeSource)(nil)

type ScrapeConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
}

func NewScrapeSource(cfg ScrapeConfig, log zerolog.Logger) (*ScrapeSource, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultScrapeBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid scrape base url %q", cfg.BaseURL)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.AllowURLRevisit(),
	)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		c.WithTransport(cfg.Transport)
	}

	return &ScrapeSource{
		collector: c,
		baseURL:   base.String(),
		log:       log.With().Str("source", NameScrape).Logger(),
	}, nil
}

func (s *ScrapeSource) Name() string { return NameScrape }

func (s *ScrapeSource) SearchByKeyword(ctx context.Context, keyword string, limit int, mode domain.RecencyMode) ([]*domain.Post, error) {
	sort, window := "relevance", "all"
	if mode == domain.RecencyLatest {
		sort, window = "new", "week"
	}
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("sort", sort)
	q.Set("t", window)
	searchURL := s.baseURL + "/search?" + q.Encode()

	var raws []domain.ScrapedPost
	c := s.collector.Clone()
	c.OnHTML("div.search-result-link", func(e *colly.HTMLElement) {
		if limit > 0 && len(raws) >= limit {
			return
		}
		raws = append(raws, parseSearchResult(e.DOM))
	})

	if err := s.visit(ctx, c, searchURL); err != nil {
		return nil, err
	}

	budget := newCommentBudget()
	posts := make([]*domain.Post, 0, len(raws))
	for _, raw := range raws {
		if budget.take(ctx) {
			thread, err := s.scrapeThread(ctx, threadPath(raw))
			switch {
			case err != nil:
				budget.fail()
				s.log.Debug().Err(err).Str("thread", raw.FullName).Msg("comments unavailable, skipping the rest")
			case thread != nil:
				raw.Comments = thread.Comments
			}
		}
		posts = append(posts, normalize.Normalize(raw, domain.SearchCommentCap))
	}
	return posts, nil
}

func (s *ScrapeSource) FetchByID(ctx context.Context, id string) (*domain.Post, error) {
	raw, err := s.scrapeThread(ctx, "/comments/"+url.PathEscape(id)+"/")
	if err != nil || raw == nil {
		return nil, err
	}
	return normalize.Normalize(*raw, domain.ThreadCommentCap), nil
}

// visit runs a blocking colly request, honouring ctx cancellation before
// the request starts.
func (s *ScrapeSource) visit(ctx context.Context, c *colly.Collector, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		if r.StatusCode == 0 {
			visitErr = fmt.Errorf("scrape %s: %w", r.Request.URL.Path, err)
			return
		}
		visitErr = &statusError{Status: r.StatusCode, Path: r.Request.URL.Path}
	})
	err := c.Visit(target)
	c.Wait()
	if visitErr != nil {
		return visitErr
	}
	return err
}

// scrapeThread loads a thread page. A 404 means the thread is absent.
func (s *ScrapeSource) scrapeThread(ctx context.Context, path string) (*domain.ScrapedPost, error) {
	if path == "" {
		return nil, nil
	}
	var body []byte
	c := s.collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := s.visit(ctx, c, s.baseURL+path); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scrape %s: parse: %w", path, err)
	}
	return parseThread(doc), nil
}

func threadPath(raw domain.ScrapedPost) string {
	if u, err := url.Parse(raw.Href); err == nil && strings.Contains(u.Path, "/comments/") {
		return u.Path
	}
	if id := strings.TrimPrefix(raw.FullName, "t3_"); id != "" {
		return "/comments/" + id + "/"
	}
	return ""
}

// =============================================================================
// HTML parsing
// =============================================================================

func parseSearchResult(sel *goquery.Selection) domain.ScrapedPost {
	href, _ := sel.Find("a.search-comments").First().Attr("href")
	if href == "" {
		href, _ = sel.Find("a.search-title").First().Attr("href")
	}
	return domain.ScrapedPost{
		FullName:  attr(sel, "data-fullname"),
		Title:     text(sel.Find("a.search-title").First()),
		Author:    text(sel.Find("a.author").First()),
		Subreddit: text(sel.Find("a.search-subreddit-link").First()),
		Href:      href,
		ScoreText: text(sel.Find("span.search-score").First()),
	}
}

func parseThread(doc *goquery.Document) *domain.ScrapedPost {
	thing := doc.Find("#siteTable div.thing.link").First()
	if thing.Length() == 0 {
		return nil
	}

	raw := &domain.ScrapedPost{
		FullName:  attr(thing, "data-fullname"),
		Title:     text(thing.Find("a.title").First()),
		Author:    attr(thing, "data-author"),
		Subreddit: attr(thing, "data-subreddit"),
		Href:      attr(thing, "data-permalink"),
		ScoreText: text(thing.Find("div.score.unvoted").First()),
	}

	doc.Find("div.commentarea > div.sitetable > div.thing.comment").Each(func(_ int, c *goquery.Selection) {
		body := text(c.Find("div.entry div.usertext-body").First())
		if body == "" {
			return
		}
		raw.Comments = append(raw.Comments, domain.ScrapedComment{
			Author: attr(c, "data-author"),
			Body:   body,
		})
	})
	return raw
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/internradar/internal/model"
	"github.com/amishk599/internradar/internal/ratelimit"
)

const internshalaBaseURL = "https://internshala.com"

// InternshalaAdapter scrapes Internshala keyword search pages. Each fetch
// runs one search per keyword, up to maxSearches.
type InternshalaAdapter struct {
	client      *http.Client
	limiter     *ratelimit.Limiter
	keywords    []string
	maxSearches int
	baseURL     string
	logger      *slog.Logger
}

// NewInternshalaAdapter creates an adapter searching the first maxSearches
// keywords. With no keywords the unfiltered listing is read instead.
func NewInternshalaAdapter(client *http.Client, limiter *ratelimit.Limiter, keywords []string, maxSearches int, logger *slog.Logger) *InternshalaAdapter {
	if maxSearches < 1 {
		maxSearches = 1
	}
	return &InternshalaAdapter{
		client:      client,
		limiter:     limiter,
		keywords:    keywords,
		maxSearches: maxSearches,
		baseURL:     internshalaBaseURL,
		logger:      logger.With("platform", string(model.PlatformInternshala)),
	}
}

func (a *InternshalaAdapter) Platform() model.Platform {
	return model.PlatformInternshala
}

// FetchPostings runs every search and merges the results, dropping postings
// returned by more than one search. Failed searches are logged and skipped;
// the fetch only fails when every search fails.
func (a *InternshalaAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	searches := a.searchURLs()

	var (
		postings []model.Posting
		errs     []error
		seen     = make(map[string]bool)
	)
	for _, searchURL := range searches {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx, string(model.PlatformInternshala)); err != nil {
				return nil, err
			}
		}

		got, err := a.fetchSearch(ctx, searchURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			a.logger.Warn("internshala search failed", "url", searchURL, "error", err)
			errs = append(errs, err)
			continue
		}

		for _, p := range got {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			postings = append(postings, p)
		}
	}

	if len(errs) == len(searches) {
		return nil, errors.Join(errs...)
	}
	return postings, nil
}

func (a *InternshalaAdapter) searchURLs() []string {
	var urls []string
	for _, kw := range a.keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		urls = append(urls, a.baseURL+"/internships/keywords-"+url.PathEscape(kw)+"/")
		if len(urls) == a.maxSearches {
			break
		}
	}
	if len(urls) == 0 {
		urls = append(urls, a.baseURL+"/internships/")
	}
	return urls
}

func (a *InternshalaAdapter) fetchSearch(ctx context.Context, searchURL string) ([]model.Posting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("internshala search: %w", err)
	}
	setBrowserHeaders(req, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("internshala search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("internshala search: %w", statusError(resp))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("internshala search: parsing html: %w", err)
	}

	base, err := url.Parse(a.baseURL + "/internships/")
	if err != nil {
		return nil, fmt.Errorf("internshala search: %w", err)
	}

	postings, skipped := parseInternshala(doc, base)
	if skipped > 0 {
		a.logger.Debug("skipped malformed cards", "url", searchURL, "skipped", skipped)
	}
	return postings, nil
}

// parseInternshala extracts postings from a search results page. Cards
// without a title are skipped and counted.
func parseInternshala(doc *goquery.Document, base *url.URL) ([]model.Posting, int) {
	var postings []model.Posting
	skipped := 0
	doc.Find(".container-fluid.individual_internship").Each(func(_ int, card *goquery.Selection) {
		title := firstTextOf(card, ".job-internship-name a.job-title-href", "a.job-title-href")
		if title == "" {
			skipped++
			return
		}

		p := model.Posting{
			Platform:       model.PlatformInternshala,
			Title:          title,
			Company:        firstText(card, ".company-name"),
			Location:       firstTextOf(card, ".locations span a", ".locations span"),
			Stipend:        firstText(card, ".stipend"),
			Duration:       internshalaDuration(card),
			PostedOn:       firstText(card, ".status-success span"),
			Kind:           firstText(card, ".status-li span"),
			URL:            resolveHref(card, "a.job-title-href", base),
			ActivelyHiring: card.Find(".actively-hiring-badge").Length() > 0,
		}
		p.ID = model.NewPostingID(p.Platform, p.URL, p.Company, p.Title, p.Location)
		postings = append(postings, p)
	})
	return postings, skipped
}

// internshalaDuration reads the span after the calendar icon, falling back
// to any row item mentioning months.
func internshalaDuration(card *goquery.Selection) string {
	if d := firstText(card, ".ic-16-calendar + span"); d != "" {
		return d
	}
	var duration string
	card.Find(".row-1-item span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := cleanText(s.Text()); strings.Contains(strings.ToLower(t), "month") {
			duration = t
			return false
		}
		return true
	})
	return duration
}

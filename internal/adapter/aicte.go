package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/internradar/internal/model"
	"github.com/amishk599/internradar/internal/ratelimit"
)

const (
	aicteListURL = "https://internship.aicte-india.org/class/class_internship.php"
	// Card links are relative to the public listing page.
	aicteBaseURL = "https://internship.aicte-india.org/recentlyposted.php"
)

// aicteResponse is the AJAX envelope; list carries a rendered HTML fragment.
type aicteResponse struct {
	List string `json:"list"`
}

// AICTEAdapter scrapes the AICTE internship portal's "recently posted" feed.
type AICTEAdapter struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	pages   int
	listURL string
	baseURL *url.URL
	logger  *slog.Logger
}

// NewAICTEAdapter creates an adapter that reads up to pages listing pages per
// fetch. Requests share the limiter under the platform's key.
func NewAICTEAdapter(client *http.Client, limiter *ratelimit.Limiter, pages int, logger *slog.Logger) *AICTEAdapter {
	if pages < 1 {
		pages = 1
	}
	base, _ := url.Parse(aicteBaseURL)
	return &AICTEAdapter{
		client:  client,
		limiter: limiter,
		pages:   pages,
		listURL: aicteListURL,
		baseURL: base,
		logger:  logger.With("platform", string(model.PlatformAICTE)),
	}
}

func (a *AICTEAdapter) Platform() model.Platform {
	return model.PlatformAICTE
}

// FetchPostings reads listing pages in order, stopping at the first empty
// page. A failure on the first page fails the fetch; later page failures
// keep what was already collected.
func (a *AICTEAdapter) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	for page := 1; page <= a.pages; page++ {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx, string(model.PlatformAICTE)); err != nil {
				return nil, err
			}
		}

		got, err := a.fetchPage(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			a.logger.Warn("aicte page failed, keeping earlier pages", "page", page, "error", err)
			break
		}
		if len(got) == 0 {
			break
		}
		postings = append(postings, got...)
	}
	return postings, nil
}

func (a *AICTEAdapter) fetchPage(ctx context.Context, page int) ([]model.Posting, error) {
	form := url.Values{
		"action":             {"load_internship"},
		"location":           {"all"},
		"internship_type":    {"all"},
		"internship_stipend": {"all"},
		"page":               {strconv.Itoa(page)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.listURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("aicte page %d: %w", page, err)
	}
	setBrowserHeaders(req, "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aicte page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aicte page %d: %w", page, statusError(resp))
	}

	var envelope aicteResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("aicte page %d: decoding envelope: %w", page, err)
	}

	postings, skipped, err := parseAICTE(envelope.List, a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("aicte page %d: %w", page, err)
	}
	if skipped > 0 {
		a.logger.Debug("skipped malformed cards", "page", page, "skipped", skipped)
	}
	return postings, nil
}

// parseAICTE extracts postings from the listing fragment. Cards without a
// title are skipped and counted.
func parseAICTE(fragment string, base *url.URL) ([]model.Posting, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing listing html: %w", err)
	}

	var postings []model.Posting
	skipped := 0
	doc.Find(".card.internship-item").Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, ".job-title")
		if title == "" {
			skipped++
			return
		}

		p := model.Posting{
			Platform:  model.PlatformAICTE,
			Title:     title,
			Company:   firstText(card, ".company-name"),
			Kind:      firstText(card, ".wfh span"),
			PostedOn:  firstText(card, ".posted-on span"),
			Location:  firstText(card, ".location span"),
			Duration:  firstText(card, ".duration span"),
			StartDate: firstText(card, ".start-date span"),
			Stipend:   firstText(card, ".stipend span"),
			ApplyBy:   firstText(card, ".apply-by span"),
			URL:       resolveHref(card, "a.btn.btn-primary", base),
		}
		p.ID = model.NewPostingID(p.Platform, p.URL, p.Company, p.Title, p.Location)
		postings = append(postings, p)
	})
	return postings, skipped, nil
}

package indeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/scrape/types"
	"leadscout-engine/internal/scrape/util"
)

const pageSize = 10

type Config struct {
	BaseURL  string // override for tests; defaults to the public site
	MaxPages int
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.Limiter
	rotator *util.Rotator
	hosts   *util.HostLimiter
	proxy   *util.Proxy
}

func New(cfg Config, limiter *util.Limiter, rotator *util.Rotator, proxy *util.Proxy) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.indeed.com"
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		rotator: rotator,
		hosts:   util.NewHostLimiter(1.0, 2),
		proxy:   proxy,
	}
}

func (s *Scraper) Name() string          { return "indeed" }
func (s *Scraper) Source() domain.Source { return domain.SourceIndeed }

func (s *Scraper) Fetch(ctx context.Context, q types.Query) ([]types.RawLead, error) {
	var out []types.RawLead
	seen := map[string]bool{}

	for page := 0; page < s.cfg.MaxPages; page++ {
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			break
		}

		pageURL := fmt.Sprintf("%s/jobs?q=%s&l=%s&start=%d",
			s.cfg.BaseURL, url.QueryEscape(q.Role), url.QueryEscape(q.Location), page*pageSize)

		doc, err := s.get(ctx, pageURL)
		if err != nil {
			if len(out) > 0 {
				// keep what earlier pages produced
				return out, nil
			}
			return nil, err
		}

		cards := doc.Find("div.job_seen_beacon")
		if cards.Length() == 0 {
			if page == 0 {
				return nil, fmt.Errorf("indeed: no result cards for %q: %w", q.Role, types.ErrParse)
			}
			break // ran out of pages
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			if q.MaxResults > 0 && len(out) >= q.MaxResults {
				return
			}
			lead, ok := s.parseCard(card, q.Role)
			if !ok || seen[lead.SourceJobID] {
				return
			}
			seen[lead.SourceJobID] = true
			out = append(out, lead)
		})
	}
	return out, nil
}

func (s *Scraper) parseCard(card *goquery.Selection, role string) (types.RawLead, bool) {
	a := card.Find("h2.jobTitle a").First()
	href, ok := a.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return types.RawLead{}, false
	}

	abs := href
	if strings.HasPrefix(href, "/") {
		abs = s.cfg.BaseURL + href
	}

	lead := types.RawLead{
		Source:      domain.SourceIndeed,
		SourceJobID: jobKey(abs),
		Title:       strings.TrimSpace(a.Text()),
		Company:     strings.TrimSpace(card.Find(`span[data-testid="company-name"]`).First().Text()),
		Location:    strings.TrimSpace(card.Find(`div[data-testid="text-location"]`).First().Text()),
		Summary:     strings.TrimSpace(card.Find("div.job-snippet").First().Text()),
		DatePosted:  strings.TrimSpace(card.Find(`span[data-testid="myJobsStateDate"], span.date`).First().Text()),
		URL:         abs,
		Role:        role,
	}
	if lead.Title == "" {
		if t, ok := a.Find("span").Attr("title"); ok {
			lead.Title = strings.TrimSpace(t)
		}
	}
	return lead, lead.Title != ""
}

// jobKey pulls Indeed's jk token out of a posting URL.
func jobKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("jk")
}

func (s *Scraper) get(ctx context.Context, target string) (*goquery.Document, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("indeed: %w", err)
	}
	if err := s.hosts.WaitURL(ctx, target); err != nil {
		return nil, fmt.Errorf("indeed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.proxy.Wrap(target), nil)
	if err != nil {
		return nil, fmt.Errorf("indeed: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.rotator.Next())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indeed: get %s: %v: %w", target, err, types.ErrTransient)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("indeed: read body: %v: %w", err, types.ErrTransient)
	}
	if cerr := types.ClassifyResponse(res.StatusCode, sample(body)); cerr != nil {
		return nil, fmt.Errorf("indeed: %w", cerr)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("indeed: parse html: %w", types.ErrParse)
	}
	return doc, nil
}

func sample(body []byte) string {
	const n = 2048
	if len(body) > n {
		body = body[:n]
	}
	return string(body)
}

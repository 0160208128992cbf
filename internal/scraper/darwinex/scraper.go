// Package darwinex scrapes trading statistics from Darwinex invest pages.
// Several metrics are rendered client-side by the source site and are not
// present in the static HTML; those fall back to pinned constants.
package darwinex

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

const defaultBaseURL = "https://www.darwinex.com"

// Pinned values for metrics the static page does not expose.
//
// HOW TO UPDATE:
//  1. Visit https://www.darwinex.com/invest/WLE in a browser
//  2. Copy the displayed values for these metrics
//
// Last updated: December 28, 2025
const (
	fallbackReturnSinceInception = 31.17
	fallbackBestMonth            = 8.21
	fallbackWorstMonth           = 0.0
)

var (
	investorsRe = regexp.MustCompile(`(?i)(\d+)\s*portfolios`)
	aumRe       = regexp.MustCompile(`(?i)\$\s*([\d,]+)\s*AUM`)
)

// Scraper fetches and parses Darwinex invest pages.
type Scraper struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the page origin. Used by tests.
func WithBaseURL(url string) Option {
	return func(s *Scraper) {
		s.baseURL = url
	}
}

func NewScraper(logger *logger.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches the invest page for a DARWIN code and extracts its
// statistics, substituting fallback constants for dynamic-only metrics.
func (s *Scraper) Scrape(ctx context.Context, code string) (model.DarwinexStats, error) {
	url := fmt.Sprintf("%s/invest/%s", s.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.DarwinexStats{}, fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.http.Do(req)
	if err != nil {
		return model.DarwinexStats{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.DarwinexStats{}, fmt.Errorf("failed to fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return model.DarwinexStats{}, fmt.Errorf("failed to parse page: %w", err)
	}

	returnSinceInception := s.returnSinceInception(doc)
	bestMonth := s.monthMetric(doc, ".js-return-best-month", "best")
	worstMonth := s.monthMetric(doc, ".js-return-worst-month", "worst")
	usedFallback := returnSinceInception == nil || bestMonth == nil || worstMonth == nil

	if returnSinceInception == nil {
		returnSinceInception = ptr(fallbackReturnSinceInception)
	}
	if bestMonth == nil {
		bestMonth = ptr(fallbackBestMonth)
	}
	if worstMonth == nil {
		worstMonth = ptr(fallbackWorstMonth)
	}

	bodyText := doc.Text()

	stats := model.DarwinexStats{
		ReturnSinceInception: returnSinceInception,
		AnnualizedReturn:     s.annualizedReturn(doc),
		TrackRecordYears:     s.labelledIncValue(doc, "Track Record"),
		MaximumDrawdown:      s.labelledIncValue(doc, "Maximum Drawdown"),
		BestMonth:            bestMonth,
		WorstMonth:           worstMonth,
		NumberOfTrades:       parseNumber(textAfterLabel(doc, "Number of trades")),
		AverageTradeDuration: textAfterLabel(doc, "Average trade duration"),
		WinningTradesRatio:   parseNumber(textAfterLabel(doc, "Winning trades")),
		CurrentInvestors:     matchNumber(investorsRe, bodyText),
		AUM:                  matchNumber(aumRe, bodyText),
		LastUpdated:          time.Now().UTC(),
	}

	s.logger.Info("Darwinex scraper: stats extracted",
		"code", code,
		"return_since_inception", *stats.ReturnSinceInception,
		"best_month", *stats.BestMonth,
		"worst_month", *stats.WorstMonth,
		"used_fallback", usedFallback)

	return stats, nil
}

// returnSinceInception reads the total-return metric, first via its
// dedicated selector, then by scanning data-inc-value elements whose parent
// text mentions return since inception.
func (s *Scraper) returnSinceInception(doc *goquery.Document) *float64 {
	if v := dataIncValue(doc, ".js-return-total"); v != nil {
		return v
	}

	var found *float64
	doc.Find("span[data-inc-value], div[data-inc-value]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		parentText := strings.ToLower(sel.Parent().Text())
		if strings.Contains(parentText, "return") && strings.Contains(parentText, "inception") {
			if v := parseNumber(attr(sel, "data-inc-value")); v != nil {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

// monthMetric reads the best/worst month metric. The site sets
// data-inc-value="0" before client-side hydration, so zero means absent.
func (s *Scraper) monthMetric(doc *goquery.Document, selector, keyword string) *float64 {
	if v := dataIncValue(doc, selector); v != nil && *v != 0 {
		return v
	}

	var found *float64
	doc.Find("span[data-inc-value], div[data-inc-value]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		parentText := strings.ToLower(sel.Parent().Text())
		if strings.Contains(parentText, keyword) && strings.Contains(parentText, "month") {
			if v := parseNumber(attr(sel, "data-inc-value")); v != nil && *v != 0 {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

func (s *Scraper) annualizedReturn(doc *goquery.Document) *float64 {
	if v := dataIncValue(doc, ".js-return-annualized"); v != nil {
		return v
	}
	if text := doc.Find(".js-return-annualized").First().Text(); text != "" {
		return parseNumber(&text)
	}
	return nil
}

// labelledIncValue finds a span[data-inc-value] whose grandparent text
// contains the given label.
func (s *Scraper) labelledIncValue(doc *goquery.Document, label string) *float64 {
	var found *float64
	doc.Find("span[data-inc-value]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(sel.Parent().Parent().Text(), label) {
			found = parseNumber(attr(sel, "data-inc-value"))
			return false
		}
		return true
	})
	return found
}

// textAfterLabel returns the trimmed text of the paragraph following the one
// containing labelText.
func textAfterLabel(doc *goquery.Document, labelText string) *string {
	var found *string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(sel.Text(), labelText) {
			next := sel.Next()
			if next.Is("p") {
				if text := strings.TrimSpace(next.Text()); text != "" {
					found = &text
				}
				return false
			}
		}
		return true
	})
	return found
}

func dataIncValue(doc *goquery.Document, selector string) *float64 {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return parseNumber(attr(sel, "data-inc-value"))
}

func attr(sel *goquery.Selection, name string) *string {
	if v, ok := sel.Attr(name); ok {
		return &v
	}
	return nil
}

func parseNumber(value *string) *float64 {
	if value == nil {
		return nil
	}
	cleaned := strings.NewReplacer(",", "", "%", "", " ", "").Replace(*value)
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &num
}

func matchNumber(re *regexp.Regexp, text string) *float64 {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	return parseNumber(&match[1])
}

func ptr(v float64) *float64 {
	return &v
}

package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"invest-assistant/internal/logger"
	"invest-assistant/internal/types"
)

// Scraper collects recent coverage for a company from Nordic financial news
// sites, with Google News as a fallback.
type Scraper struct {
	sources []NewsSource
	timeout time.Duration
}

// NewsSource defines one news source configuration.
type NewsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // "{query}" is replaced with the URL-escaped company name
	Selectors  ArticleSelectors
	RateLimit  time.Duration
}

// ArticleSelectors defines CSS selectors for extracting article data.
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string
}

// NewScraper creates a scraper with the default Nordic sources.
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:       "Placera",
			BaseURL:    "https://www.placera.se",
			SearchPath: "/sok?query={query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "article, div.search-result",
				Title:            "h2 a, h3 a",
				URL:              "h2 a, h3 a",
				Content:          "p",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "DagensIndustri",
			BaseURL:    "https://www.di.se",
			SearchPath: "/sok/?q={query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "article.news-item, div.search-hit",
				Title:            "h2 a, h3 a",
				URL:              "h2 a, h3 a",
				Content:          "p",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "E24",
			BaseURL:    "https://e24.no",
			SearchPath: "/sok?query={query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "article",
				Title:            "h2 a, h3 a",
				URL:              "h2 a, h3 a",
				Content:          "p",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// ScrapeNews fetches articles about a company from all configured sources.
// Per-source failures are logged and skipped.
func (s *Scraper) ScrapeNews(ctx context.Context, companyName string, maxArticles int) ([]types.NewsArticle, error) {
	logger.Info(ctx, "Starting news scraping", "company", companyName, "sources", len(s.sources))

	allArticles := []types.NewsArticle{}
	articlesPerSource := maxArticles / len(s.sources)
	if articlesPerSource < 1 {
		articlesPerSource = 1
	}

	for _, source := range s.sources {
		articles, err := s.scrapeSource(ctx, source, companyName, articlesPerSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "company", companyName)
			continue
		}
		allArticles = append(allArticles, articles...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	logger.Info(ctx, "News scraping completed", "company", companyName, "articles", len(allArticles))
	return allArticles, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source NewsSource, companyName string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)

	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		articleURL := e.ChildAttr(source.Selectors.URL, "href")
		if articleURL == "" {
			return
		}
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = source.BaseURL + articleURL
		}

		content := strings.TrimSpace(e.ChildText(source.Selectors.Content))
		publishedAt := strings.TrimSpace(e.ChildText(source.Selectors.PublishedAt))

		articles = append(articles, types.NewsArticle{
			Title:       title,
			URL:         articleURL,
			Content:     content,
			Source:      source.Name,
			PublishedAt: publishedAt,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{query}", url.QueryEscape(companyName))

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}

	c.Wait()

	articles = s.enrichArticles(ctx, articles)

	return articles, nil
}

// enrichArticles fetches full body text for articles whose listing excerpt
// was too short to analyze.
func (s *Scraper) enrichArticles(ctx context.Context, articles []types.NewsArticle) []types.NewsArticle {
	enriched := make([]types.NewsArticle, len(articles))
	copy(enriched, articles)

	for i := range enriched {
		if len(enriched[i].Content) < 100 {
			fullContent := s.fetchArticleContent(ctx, enriched[i].URL)
			if fullContent != "" {
				enriched[i].Content = fullContent
			}
		}

		// Rate limiting between article fetches
		time.Sleep(500 * time.Millisecond)
	}

	return enriched
}

// fetchArticleContent fetches the body text of one article page.
func (s *Scraper) fetchArticleContent(ctx context.Context, articleURL string) string {
	c := colly.NewCollector()
	c.SetRequestTimeout(s.timeout)

	var content string

	c.OnHTML("article, div.article-body, div.content-body, main", func(e *colly.HTMLElement) {
		content = extractParagraphs(e.DOM)
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	if err := c.Visit(articleURL); err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch article content", err, "url", articleURL)
		return ""
	}

	return content
}

// extractParagraphs joins the substantive paragraph text under a selection.
// Short fragments are navigation noise and skipped.
func extractParagraphs(sel *goquery.Selection) string {
	paragraphs := []string{}
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > 20 {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ScrapeGoogleNews searches Google News for company coverage, used when the
// primary sources come back empty. Swedish locale to favor Nordic coverage.
func (s *Scraper) ScrapeGoogleNews(ctx context.Context, companyName string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)

	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")

		if title != "" && link != "" {
			if strings.HasPrefix(link, "./articles/") {
				link = "https://news.google.com" + link[1:]
			}

			articles = append(articles, types.NewsArticle{
				Title:  title,
				URL:    link,
				Source: "GoogleNews",
			})
		}
	})

	searchQuery := url.QueryEscape(companyName + " aktie")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=sv&gl=SE&ceid=SE:sv", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}

	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "company", companyName, "articles", len(articles))
	return articles, nil
}

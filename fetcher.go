package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
	"go.uber.org/zap"
)

const (
	bodyCtxKey   = "body"
	statusCtxKey = "status"
)

var errEmptyResponse = errors.New("empty response")

// PageSource returns the parsed markup behind a URL.
type PageSource interface {
	Fetch(url string) (*goquery.Document, error)
}

// FetcherConfig holds the collector settings.
type FetcherConfig struct {
	UserAgent string
	// Delay is the courtesy pause applied after every request.
	Delay   time.Duration
	Timeout time.Duration
	Debug   bool
}

// PageFetcher fetches pages one at a time through a single colly collector.
// The collector's limit rule allows one request in flight and sleeps Delay
// after each, which paces the whole run.
type PageFetcher struct {
	collector *colly.Collector
	log       *zap.Logger
}

// NewPageFetcher builds the collector used for the listing and every detail page.
func NewPageFetcher(cfg FetcherConfig, log *zap.Logger) (*PageFetcher, error) {
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}
	if cfg.Debug {
		opts = append(opts, colly.Debugger(&debug.LogDebugger{}))
	}

	c := colly.NewCollector(opts...)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("set limit rule: %w", err)
	}

	c.OnRequest(func(r *colly.Request) {
		log.Debug("Visiting", zap.String("url", r.URL.String()))
	})

	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(bodyCtxKey, r.Body)
		r.Ctx.Put(statusCtxKey, r.StatusCode)
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Ctx != nil {
			r.Ctx.Put(statusCtxKey, r.StatusCode)
		}
	})

	return &PageFetcher{collector: c, log: log}, nil
}

// Fetch issues a GET and parses the body. Any network failure, non-success
// status or unreadable body is returned as *FetchError.
func (f *PageFetcher) Fetch(url string) (*goquery.Document, error) {
	body, err := f.get(url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}

// Download returns the raw body behind url, paced like every page fetch.
func (f *PageFetcher) Download(url string) ([]byte, error) {
	return f.get(url)
}

func (f *PageFetcher) get(url string) ([]byte, error) {
	ctx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, url, nil, ctx, nil); err != nil {
		status, _ := ctx.GetAny(statusCtxKey).(int)
		return nil, &FetchError{URL: url, StatusCode: status, Err: err}
	}

	body, _ := ctx.GetAny(bodyCtxKey).([]byte)
	if len(body) == 0 {
		status, _ := ctx.GetAny(statusCtxKey).(int)
		return nil, &FetchError{URL: url, StatusCode: status, Err: errEmptyResponse}
	}
	return body, nil
}

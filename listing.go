package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingAnchorSelector matches the entity links of the national dex table.
const listingAnchorSelector = "a.ent-name"

// RawAnchor is an entity link as it appears on the listing page.
type RawAnchor struct {
	Name string
	Href string
}

// FetchListing retrieves the index page and returns its entity anchors in
// document order. The returned error is a *FetchError.
func FetchListing(src PageSource, listingURL string) ([]RawAnchor, error) {
	doc, err := src.Fetch(listingURL)
	if err != nil {
		return nil, err
	}
	return ListingAnchors(doc.Selection), nil
}

// ListingAnchors collects the entity anchors of a parsed listing page.
func ListingAnchors(page *goquery.Selection) []RawAnchor {
	var anchors []RawAnchor
	page.Find(listingAnchorSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		anchors = append(anchors, RawAnchor{
			Name: normalizeText(a.Text()),
			Href: strings.TrimSpace(href),
		})
	})
	return anchors
}

// ResolveReferences joins every href against baseURL and keeps the first
// anchor for each distinct absolute URL. Variant rows on the listing link to
// their base form's page, so they collapse into a single reference here.
// Anchors without a usable href are dropped.
func ResolveReferences(baseURL string, anchors []RawAnchor) ([]EntityReference, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	seen := make(map[string]bool, len(anchors))
	refs := make([]EntityReference, 0, len(anchors))
	for _, a := range anchors {
		if a.Href == "" {
			continue
		}
		rel, err := url.Parse(a.Href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(rel)
		abs.Fragment = ""
		link := abs.String()
		if seen[link] {
			continue
		}
		seen[link] = true
		refs = append(refs, EntityReference{Name: a.Name, URL: link})
	}
	return refs, nil
}

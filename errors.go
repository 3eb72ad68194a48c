package main

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldMissing marks a labelled field that the detail page does not carry.
	ErrFieldMissing = errors.New("field missing")
	// ErrNoPokedexData is returned when a detail page has none of the recognised labels.
	ErrNoPokedexData = errors.New("no pokedex data on page")
)

// FetchError is a network failure or a non-success HTTP status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError is a field that was absent or could not be parsed.
// Field is empty when the whole page was unusable.
type ExtractionError struct {
	URL   string
	Field string
	Value string
	Err   error
}

func (e *ExtractionError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
	case e.Value == "":
		return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Field, e.Err)
	default:
		return fmt.Sprintf("extract %s: %s %q: %v", e.URL, e.Field, e.Value, e.Err)
	}
}

func (e *ExtractionError) Unwrap() error { return e.Err }

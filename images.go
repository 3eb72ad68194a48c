package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	spriteHost     = "https://img.pokemondb.net"
	failedListName = "failed_pokemon.txt"
)

type imageStatus int

const (
	imageSaved imageStatus = iota
	imageExisting
	imageMissing
	imageFailed
)

// Downloader returns the raw bytes behind a URL.
type Downloader interface {
	Download(url string) ([]byte, error)
}

// ArtworkURL returns the official artwork link of a detail page, falling back
// to the first sprite image. It returns "" when the page has neither.
func ArtworkURL(page *goquery.Selection) string {
	if href, ok := page.Find(`a[rel="lightbox"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return absoluteImageURL(strings.TrimSpace(href))
	}
	if src, ok := page.Find(`img[src*="/sprites/"]`).First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		return absoluteImageURL(strings.TrimSpace(src))
	}
	return ""
}

// absoluteImageURL fixes protocol-relative and root-relative image links.
func absoluteImageURL(u string) string {
	switch {
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/"):
		return spriteHost + u
	}
	return u
}

// imageBaseName is the lowercased name with spaces turned into underscores.
func imageBaseName(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(base)
}

func imageFileName(name string) string {
	return imageBaseName(name) + "_image.jpg"
}

// ImageSaver stores the artwork of collected entities in one directory.
type ImageSaver struct {
	dir string
	src Downloader
	log *zap.Logger
}

// NewImageSaver creates dir if needed.
func NewImageSaver(dir string, src Downloader, log *zap.Logger) (*ImageSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &ImageSaver{dir: dir, src: src, log: log}, nil
}

// SaveAll downloads the artwork of every outcome whose file is not already in
// the directory. Results are counted on run. When any download failed, the
// names are written to failed_pokemon.txt in the directory; only that write
// can return an error.
func (s *ImageSaver) SaveAll(outcomes []Outcome, run *RunContext) error {
	var failed []string
	for _, out := range outcomes {
		status, err := s.save(out)
		run.recordImage(out.Reference, status, err)

		switch status {
		case imageSaved:
			s.log.Debug("Saved image", zap.String("name", out.Reference.Name), zap.String("image_url", out.ImageURL))
		case imageExisting:
			s.log.Debug("Image already exists", zap.String("name", out.Reference.Name))
		case imageMissing:
			s.log.Info("No artwork or sprite found", zap.String("name", out.Reference.Name))
		case imageFailed:
			failed = append(failed, imageBaseName(out.Reference.Name))
			s.log.Warn("Image download failed",
				zap.String("name", out.Reference.Name),
				zap.String("image_url", out.ImageURL),
				zap.Error(err),
			)
		}
	}

	if len(failed) == 0 {
		return nil
	}
	path := filepath.Join(s.dir, failedListName)
	if err := os.WriteFile(path, []byte(strings.Join(failed, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", failedListName, err)
	}
	return nil
}

func (s *ImageSaver) save(out Outcome) (imageStatus, error) {
	path := filepath.Join(s.dir, imageFileName(out.Reference.Name))
	if _, err := os.Stat(path); err == nil {
		return imageExisting, nil
	}

	if out.ImageURL == "" {
		var fetchErr *FetchError
		if errors.As(out.Err, &fetchErr) {
			return imageFailed, out.Err
		}
		return imageMissing, nil
	}

	body, err := s.src.Download(out.ImageURL)
	if err != nil {
		return imageFailed, err
	}
	if err := writeImage(path, body); err != nil {
		return imageFailed, err
	}
	return imageSaved, nil
}

// writeImage replaces path in one step; a truncated image is never left behind.
func writeImage(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".image-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

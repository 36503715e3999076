package airspace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"airdata/internal/core/logger"
	"airdata/internal/core/types"
	"airdata/internal/transport"

	"github.com/PuerkitoBio/goquery"
)

const DefaultListingURL = "https://storage.googleapis.com/29f98e10-a489-4c82-ae5e-489dbcd4912f"

// Directory lists the airspace files published upstream. Implementations
// never fail: when the source cannot be read they return Snapshot().
type Directory interface {
	ListAvailable(ctx context.Context) []types.DirectoryEntry
}

var keyPattern = regexp.MustCompile(`^[A-Za-z]{2}_asp\.xml$`)

// ParseListing extracts the airspace files and their sizes from a bucket
// listing. Entries with a size of zero are dropped.
func ParseListing(r io.Reader) ([]types.DirectoryEntry, error) {
	// The HTML parser lowercases element names, so <Contents> becomes contents.
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	entries := []types.DirectoryEntry{}
	doc.Find("contents").Each(func(_ int, s *goquery.Selection) {
		key := strings.TrimSpace(s.Find("key").First().Text())
		if !keyPattern.MatchString(key) {
			return
		}
		size, err := strconv.ParseUint(strings.TrimSpace(s.Find("size").First().Text()), 10, 64)
		if err != nil || size == 0 {
			return
		}
		entries = append(entries, types.DirectoryEntry{Key: key, Size: types.Bytes(size)})
	})
	return entries, nil
}

type ListingOption func(*ListingDirectory)

func ListingWithURL(url string) ListingOption {
	return func(d *ListingDirectory) {
		d.url = url
	}
}

func ListingWithTransfer(ht *transport.HTTPTransfer) ListingOption {
	return func(d *ListingDirectory) {
		d.transfer = ht
	}
}

func ListingWithLogger(log *logger.Logger) ListingOption {
	return func(d *ListingDirectory) {
		d.logger = log
	}
}

// ListingDirectory reads the public bucket listing over HTTP.
type ListingDirectory struct {
	url      string
	transfer *transport.HTTPTransfer
	logger   *logger.Logger
}

func NewListingDirectory(opts ...ListingOption) *ListingDirectory {
	d := &ListingDirectory{url: DefaultListingURL}
	for _, opt := range opts {
		opt(d)
	}
	if d.transfer == nil {
		d.transfer = transport.NewHTTPTransfer()
	}
	if d.logger == nil {
		d.logger = logger.NewLogger(logger.WithName("directory"))
	}
	return d
}

func (d *ListingDirectory) ListAvailable(ctx context.Context) []types.DirectoryEntry {
	var entries []types.DirectoryEntry
	err := d.transfer.Get(ctx, d.url, func(resp *http.Response) error {
		var err error
		entries, err = ParseListing(resp.Body)
		return err
	})
	if err != nil {
		d.logger.Warn("airspace listing unavailable, using snapshot", "url", d.url, "snapshot", SnapshotDate, "error", err)
		return Snapshot()
	}
	return entries
}

// Lookup returns the first entry published for country.
func Lookup(entries []types.DirectoryEntry, country string) (types.DirectoryEntry, bool) {
	for _, entry := range entries {
		if strings.HasPrefix(entry.Key, country) {
			return entry, true
		}
	}
	return types.DirectoryEntry{}, false
}

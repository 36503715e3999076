package download

import "context"

// Fetcher is the download capability the caches depend on.
type Fetcher interface {
	Download(ctx context.Context, targetPath, sourceURL string, onProgress ProgressFunc) error
}

var _ Fetcher = (*Downloader)(nil)

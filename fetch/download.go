package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/byte4ever/staticweaver/digester"
)

// DefaultURL is the base URL of the stock template set.
const DefaultURL = "https://raw.githubusercontent.com/" +
	"sebastienrousseau/shokunin/main/template/"

// FileTimeout bounds the download of a single file.
const FileTimeout = 10 * time.Second

// DefaultFiles lists the files of a complete template set.
var DefaultFiles = []string{
	"contact.html",
	"index.html",
	"page.html",
	"post.html",
	"main.js",
	"sw.js",
}

// Download fetches files from src into dir using at most
// parallelism concurrent requests. Each file gets its own
// FileTimeout. A file whose on-disk content already matches
// is not rewritten. Failures are not retried.
func Download(
	ctx context.Context,
	src Source,
	dir string,
	files []string,
	parallelism int,
) error {
	const errCtx = "downloading templates"

	if parallelism <= 0 {
		parallelism = 1
	}

	slog.Debug(
		"downloading templates",
		"dir", dir,
		"count", len(files),
		"parallelism", parallelism,
	)

	// Worker pool with bounded concurrency.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	sem := make(chan struct{}, parallelism)

	for _, name := range files {
		if ctx.Err() != nil {
			mu.Lock()
			errs = append(errs, ctx.Err())
			mu.Unlock()

			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := downloadFile(ctx, src, dir, name); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf(
					"fetch %s: %w", name, err,
				))
				mu.Unlock()
			}
		}(name)
	}

	wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf(
			"%s: %d errors, first: %w",
			errCtx, len(errs), errs[0],
		)
	}

	return nil
}

func downloadFile(
	ctx context.Context,
	src Source,
	dir string,
	name string,
) error {
	ctx, cancel := context.WithTimeout(ctx, FileTimeout)
	defer cancel()

	data, err := src.Fetch(ctx, name)
	if err != nil {
		return err
	}

	written, err := digester.WriteIfChanged(
		filepath.Join(dir, filepath.FromSlash(name)), data,
	)
	if err != nil {
		return err
	}

	if written {
		slog.Debug("wrote template", "name", name, "bytes", len(data))
	} else {
		slog.Debug("template unchanged", "name", name)
	}

	return nil
}

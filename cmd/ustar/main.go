// Command ustar lists the headers of USTAR archives.
//
// Usage:
//
//	ustar [flags] ARCHIVE...
//
// Archives may be plain or compressed with gzip, zstd or lz4. The exit status
// is 1 if any archive could not be loaded or ended truncated or corrupt; the
// headers decoded before the failure are still printed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/ustar"
	"github.com/meigma/ustar/index"
	"github.com/meigma/ustar/source"
)

type config struct {
	json           bool
	indexPath      string
	missingTrailer bool
	maxSize        uint64
	jobs           int
	verbose        bool
}

// result is the outcome of loading and iterating one archive.
type result struct {
	path    string
	archive *source.Archive
	headers []ustar.Header
	err     error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, paths, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	os.Exit(run(ctx, cfg, paths, os.Stdout, os.Stderr))
}

func parseFlags(fs *flag.FlagSet, args []string) (config, []string, error) {
	var cfg config
	fs.BoolVar(&cfg.json, "json", false, "emit one JSON document per archive")
	fs.StringVar(&cfg.indexPath, "index", "", "write the FlatBuffers header index of the archive to this file")
	fs.BoolVar(&cfg.missingTrailer, "missing-trailer", false, "accept archives without an end-of-archive block")
	fs.Uint64Var(&cfg.maxSize, "max-size", source.DefaultMaxSize, "maximum decompressed archive size in bytes")
	fs.IntVar(&cfg.jobs, "jobs", 4, "number of archives loaded concurrently")
	fs.BoolVar(&cfg.verbose, "v", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: ustar [flags] ARCHIVE...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return config{}, nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return config{}, nil, errors.New("no archives given")
	}
	if cfg.indexPath != "" && fs.NArg() != 1 {
		fmt.Fprintln(fs.Output(), "-index requires exactly one archive")
		return config{}, nil, errors.New("-index requires exactly one archive")
	}
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}
	return cfg, fs.Args(), nil
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func run(ctx context.Context, cfg config, paths []string, stdout, stderr io.Writer) int {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	results := load(ctx, cfg, paths, logger)

	status := 0
	for i := range results {
		res := &results[i]
		if err := printResult(stdout, cfg, res); err != nil {
			logger.Error("write output", slog.Any("error", err))
			return 1
		}
		if res.err != nil {
			logger.Error("archive failed", slog.String("path", res.path), slog.Any("error", res.err))
			status = 1
		}
	}

	if cfg.indexPath != "" && status == 0 {
		if err := writeIndex(cfg.indexPath, &results[0]); err != nil {
			logger.Error("write index", slog.String("path", cfg.indexPath), slog.Any("error", err))
			return 1
		}
		logger.Info("index written", slog.String("path", cfg.indexPath), slog.Int("entries", len(results[0].headers)))
	}
	return status
}

// load reads and iterates every archive, at most cfg.jobs at a time. Results
// are returned in argument order; per-archive failures are kept in the result.
//
//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func load(ctx context.Context, cfg config, paths []string, logger *slog.Logger) []result {
	results := make([]result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.jobs)
	for i, path := range paths {
		g.Go(func() error {
			res := &results[i]
			res.path = path

			a, err := source.Load(gctx, path,
				source.WithMaxSize(cfg.maxSize),
				source.WithLogger(logger.With(slog.String("path", path))),
			)
			if err != nil {
				res.err = err
				return nil
			}
			res.archive = a
			res.headers, res.err = ustar.Headers(a.Data,
				ustar.WithMissingTrailer(cfg.missingTrailer),
				ustar.WithLogger(logger.With(slog.String("path", path))),
			)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers record errors in their results

	return results
}

func writeIndex(path string, res *result) error {
	data := index.Build(res.headers,
		index.WithArchiveSize(int64(len(res.archive.Data))),
		index.WithArchiveDigest(res.archive.Digest),
	)
	return os.WriteFile(path, data, 0o644) //nolint:gosec // index files are not secret
}

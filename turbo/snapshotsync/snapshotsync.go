// Package snapshotsync scans the dump directory and drives the
// concurrent bload of every basis found there at startup (§4.3 "load()"
// and §6 "On startup every *.dmp is loaded; the basename becomes the
// bkey"). The shape — build a list of independent fetch requests, fan
// them out with one goroutine per request, log progress while waiting —
// is carried over from this package's original job of fetching
// independent chain-snapshot segments; here the "segments" are per-basis
// dump files instead.
package snapshotsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"
	"golang.org/x/sync/errgroup"
)

// DumpRequest names one basis dump file discovered on disk.
type DumpRequest struct {
	BKey string
	Path string
}

// NewDumpRequest builds a DumpRequest for bkey at path.
func NewDumpRequest(bkey, path string) DumpRequest {
	return DumpRequest{BKey: bkey, Path: path}
}

// ScanDumpDir lists every "<bkey>.dmp" file directly under dir, sorted
// by bkey. A missing directory is not an error: it means "no bases
// persisted yet", matching §8 property 4 ("Idempotence of load").
func ScanDumpDir(dir string) ([]DumpRequest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan dump dir %s: %w", dir, err)
	}
	out := make([]DumpRequest, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !strings.HasSuffix(name, ".dmp") {
			continue
		}
		bkey := strings.TrimSuffix(name, ".dmp")
		out = append(out, NewDumpRequest(bkey, filepath.Join(dir, name)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BKey < out[j].BKey })
	return out, nil
}

// LoadAll fans reqs out to loader, one goroutine per request, logging
// progress every two seconds until every request completes or one
// fails. The first error cancels the rest via ctx, mirroring this
// package's original WaitForDownloader progress loop.
func LoadAll(ctx context.Context, logPrefix string, reqs []DumpRequest, loader func(ctx context.Context, bkey, path string) error) error {
	if len(reqs) == 0 {
		return nil
	}
	logger := log.Root().New("scope", "load", "prefix", logPrefix)
	g, gctx := errgroup.WithContext(ctx)

	done := make(chan struct{})
	defer close(done)
	go reportProgress(gctx, done, logger, logPrefix, len(reqs))

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			if err := loader(gctx, req.BKey, req.Path); err != nil {
				return fmt.Errorf("%s: basis %q: %w", logPrefix, req.BKey, err)
			}
			logger.Debug(logPrefix+": basis loaded", "bkey", req.BKey)
			return nil
		})
	}
	return g.Wait()
}

func reportProgress(ctx context.Context, done <-chan struct{}, logger log.Logger, logPrefix string, total int) {
	t := time.NewTicker(2 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-t.C:
			logger.Info(logPrefix+": loading bases", "total", total)
		}
	}
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kotoba-labs/shiftvoice/internal/httpc"
	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
)

// maxDatasetBytes caps how much of the remote document we will read.
const maxDatasetBytes = 16 << 20

// fetchRemote retrieves the canonical dataset document. There is no
// retry: the fallback chain is cache then remote, once. The result is
// returned to the caller without populating the cache.
func (s *BadgerStore) fetchRemote(ctx context.Context) (*schedule.Dataset, error) {
	if s.cfg.RemoteURL == "" {
		return nil, fmt.Errorf("%w: no cached dataset and no remote URL configured", ErrDatasetUnavailable)
	}

	resp, err := httpc.Get(ctx, s.cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrDatasetUnavailable, s.cfg.RemoteURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: unexpected status %d", ErrDatasetUnavailable, s.cfg.RemoteURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDatasetUnavailable, s.cfg.RemoteURL, err)
	}

	var d schedule.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrDatasetUnavailable, s.cfg.RemoteURL, err)
	}

	s.log.Info("dataset fetched from remote", "url", s.cfg.RemoteURL, "users", len(d.Users))
	return &d, nil
}

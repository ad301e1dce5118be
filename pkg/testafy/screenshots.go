package testafy

import (
	"context"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// DefaultScreenshotConcurrency bounds parallel screenshot downloads.
const DefaultScreenshotConcurrency = 4

// ListScreenshots returns the screenshot file names of run. A run that was
// never submitted has none.
func (c *Client) ListScreenshots(ctx context.Context, run TestRun) ([]string, TestRun, error) {
	if !run.Submitted() {
		return nil, run, nil
	}

	resp, run, err := c.call(ctx, run, OpScreenshots, runParams(run))
	if err != nil {
		return nil, run, err
	}

	var names []string
	resp.Get("screenshots").ForEach(func(_, v gjson.Result) bool {
		if name := v.String(); name != "" {
			names = append(names, name)
		}
		return true
	})
	return names, run, nil
}

// FetchScreenshotBase64 downloads one screenshot as base64 text.
func (c *Client) FetchScreenshotBase64(ctx context.Context, run TestRun, name string) (string, TestRun, error) {
	if !run.Submitted() {
		return "", run, nil
	}

	params := runParams(run)
	params["filename"] = name

	resp, run, err := c.call(ctx, run, OpScreenshot, params)
	if err != nil {
		return "", run, err
	}
	return resp.Get("screenshot").String(), run, nil
}

// FetchAllScreenshotsBase64 lists the run's screenshots and downloads each of
// them, returning name -> base64. Downloads run concurrently, bounded by
// WithScreenshotConcurrency; the first failure cancels the rest.
func (c *Client) FetchAllScreenshotsBase64(ctx context.Context, run TestRun) (map[string]string, TestRun, error) {
	names, run, err := c.ListScreenshots(ctx, run)
	if err != nil {
		return nil, run, err
	}

	shots := make(map[string]string, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.screenshotConcurrency)
	for _, name := range names {
		g.Go(func() error {
			data, _, err := c.FetchScreenshotBase64(gctx, run, name)
			if err != nil {
				return fmt.Errorf("failed to fetch screenshot %s: %w", name, err)
			}
			mu.Lock()
			shots[name] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, run, err
	}
	return shots, run, nil
}

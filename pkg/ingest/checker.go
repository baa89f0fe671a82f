package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Checker sends HEAD requests to every registered source URL and records
// whether the upstream dataset is still reachable.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
	onCheck  func(CheckSummary)
}

// CheckSummary counts the outcome of one pass.
type CheckSummary struct {
	OK     int
	Failed int
}

// NewChecker creates a Checker that verifies source URLs every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// OnCheck registers fn to receive the summary of every pass.
func (c *Checker) OnCheck(fn func(CheckSummary)) {
	c.onCheck = fn
}

// Start runs an immediate check then repeats every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll checks every source once and persists the results.
func (c *Checker) CheckAll(ctx context.Context) CheckSummary {
	var sum CheckSummary
	sources, err := c.sources.ListSources()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return sum
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			return sum
		}
		if src.URL == "" {
			continue
		}

		status, checkErr := c.checkOne(ctx, src.URL)
		errMsg := ""
		if checkErr != nil {
			errMsg = checkErr.Error()
		}

		if err := c.sources.UpdateCheck(src.ID, status, errMsg); err != nil {
			c.logger.Error("source check: update", "source", src.ID, "error", err)
		}

		if status >= 200 && status < 400 {
			sum.OK++
			continue
		}
		sum.Failed++
		c.logger.Warn("source unreachable",
			"source", src.ID,
			"url", src.URL,
			"status", status,
			"error", errMsg,
		)
	}

	c.logger.Info("source check complete", "total", sum.OK+sum.Failed, "ok", sum.OK, "failed", sum.Failed)
	if c.onCheck != nil {
		c.onCheck(sum)
	}
	return sum
}

// checkOne returns the HTTP status of a HEAD request; 0 on network error.
func (c *Checker) checkOne(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

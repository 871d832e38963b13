// Package sheets adapts the Google Sheets API to the domain SheetSource
// contract: raw string grids in, an empty grid on any failure.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/abristow3/Hunt-Bot/internal/platform/retry"
)

// Client reads raw grids from one spreadsheet.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	policy        retry.Policy
}

// NewClient builds a read-only Sheets client using a service-account
// credentials file.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string) (*Client, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   500 * time.Millisecond,
			RateLimitBackoff: 5 * time.Second,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Retrying sheet read", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}, nil
}

// Rows fetches the full grid of a sheet tab. Per the ingestion contract it
// returns an empty grid on any failure; callers treat empty as "not found".
func (c *Client) Rows(ctx context.Context, sheetName string) [][]string {
	return c.fetch(ctx, sheetName)
}

// RangeRows fetches a bounded A1 range of a sheet tab.
func (c *Client) RangeRows(ctx context.Context, sheetName, cellRange string) [][]string {
	return c.fetch(ctx, a1Notation(sheetName, cellRange))
}

func (c *Client) fetch(ctx context.Context, readRange string) [][]string {
	resp, err := retry.Do(ctx, c.policy, classify, func() (*sheets.ValueRange, error) {
		return c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	})
	if err != nil {
		slog.Error("Unable to get data from sheet", "range", readRange, "error", err)
		return [][]string{}
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprintf("%v", cell)
		}
		grid[i] = cells
	}
	return grid
}

// classify treats rate limits and server-side errors as retryable; anything
// else (bad range, missing tab, auth) fails fast.
func classify(err error) retry.Action {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return retry.After
		case apiErr.Code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	// Transport-level failures (timeouts, resets) are worth retrying.
	return retry.Retry
}

func a1Notation(sheetName, cellRange string) string {
	return fmt.Sprintf("%s!%s", sheetName, cellRange)
}

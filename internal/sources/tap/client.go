// Package tap executes synchronous ADQL queries against a TAP service
// and streams the decoded rows through a RowSink.
package tap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skymaps/tilefinder/internal/utils"
)

// MosaicProductQuery is the query that feeds a tile index.
const MosaicProductQuery = "SELECT tile_index, fov, " +
	"filter_name, instrument_name, file_name, file_path " +
	"FROM sedm.mosaic_product"

// RowSink consumes the rows of one query result. AcceptRow is called once
// per row in response order; EndRows once after the last row.
type RowSink interface {
	AcceptRow(row Row)
	EndRows()
}

// Client runs synchronous queries against one TAP endpoint.
type Client struct {
	tapURL string
	http   *http.Client
}

// NewClient creates a client for the given TAP base URL
// (ex: https://easotf.esac.esa.int/tap-server/tap).
func NewClient(tapURL string, timeout time.Duration) *Client {
	return &Client{
		tapURL: strings.TrimRight(tapURL, "/"),
		http:   &http.Client{Timeout: timeout},
	}
}

// Query posts adql to the sync endpoint and feeds every result row to
// sink. Transport, HTTP status and decode failures are all returned as
// errors; no partial rows are delivered after a decode failure.
func (c *Client) Query(ctx context.Context, adql string, sink RowSink) error {
	form := url.Values{
		"REQUEST": {"doQuery"},
		"LANG":    {"ADQL"},
		"FORMAT":  {"json"},
		"QUERY":   {adql},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tapURL+"/sync", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build tap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tap query failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tap query returned status %d", resp.StatusCode)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode tap response: %w", err)
	}

	for i, cells := range result.Data {
		row, err := decodeRow(cells)
		if err != nil {
			return fmt.Errorf("bad row %d: %w", i, err)
		}
		sink.AcceptRow(row)
	}
	sink.EndRows()

	return nil
}

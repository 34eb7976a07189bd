// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dvrclient is the typed HTTP/SSE transport to the Channels DVR
// server (spec §4.2, §6). Every outbound call is wrapped by a
// sony/gobreaker circuit breaker, following the teacher's
// eventprocessor/circuitbreaker.go pattern, so a wedged upstream trips
// the breaker instead of piling up goroutines on slow reads.
package dvrclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Client is the typed DVR Client described in spec §4.2.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func New(baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:        "dvr-client",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// do executes req (which must already carry its own context/timeout)
// through the circuit breaker and decodes a JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	res, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return fmt.Errorf("dvrclient: %s: %w", req.URL.Path, err)
	}
	resp := res.(*http.Response)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dvrclient: %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("dvrclient: %s: decode: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, timeout time.Duration, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// ListChannels -> GET /api/v1/channels.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var out []Channel
	err := c.get(ctx, 10*time.Second, "/api/v1/channels", &out)
	return out, err
}

// ListJobs -> GET /api/v1/jobs (also reachable at /dvr/jobs upstream).
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var out []Job
	err := c.get(ctx, 10*time.Second, "/api/v1/jobs", &out)
	return out, err
}

// GetJob fetches a single job by id, or ErrNotFound.
func (c *Client) GetJob(ctx context.Context, id string) (Job, error) {
	jobs, err := c.ListJobs(ctx)
	if err != nil {
		return Job{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return Job{}, ErrNotFound
}

// GetRecording -> GET /api/v1/recordings/{id}, falling back to the
// catalog lookup on a 404 (spec §4.2 "fallback to catalog lookup").
func (c *Client) GetRecording(ctx context.Context, fileID string) (Recording, error) {
	var out Recording
	err := c.get(ctx, 15*time.Second, "/api/v1/recordings/"+fileID, &out)
	if err == nil {
		return out, nil
	}
	if err != ErrNotFound {
		return Recording{}, err
	}
	items, catErr := c.ListVOD(ctx)
	if catErr != nil {
		return Recording{}, err
	}
	for _, it := range items {
		if it.FileID == fileID {
			return Recording{
				FileID:    it.FileID,
				Title:     it.Title,
				Processed: true,
				Completed: true,
				ImageURL:  it.ImageURL,
			}, nil
		}
	}
	return Recording{}, ErrNotFound
}

// ListVOD -> GET /api/v1/all (full catalog: VOD + recordings).
func (c *Client) ListVOD(ctx context.Context) ([]VODItem, error) {
	var out []VODItem
	err := c.get(ctx, 20*time.Second, "/api/v1/all", &out)
	return out, err
}

// ListRecordings is an alias of ListVOD per spec §4.2 ("list_recordings /
// list_vod -> catalog"): both share the same upstream endpoint.
func (c *Client) ListRecordings(ctx context.Context) ([]VODItem, error) {
	return c.ListVOD(ctx)
}

// GetStatus -> GET /status, used for keep-alive and post-reconnect liveness.
func (c *Client) GetStatus(ctx context.Context) error {
	return c.get(ctx, 5*time.Second, "/status", nil)
}

// GetDiskStatus -> GET /dvr (disk info).
func (c *Client) GetDiskStatus(ctx context.Context) (DiskStatus, error) {
	var out DiskStatus
	err := c.get(ctx, 5*time.Second, "/dvr", &out)
	return out, err
}

// FetchXMLTV -> GET /devices/ANY/guide/xmltv (30s read timeout per §4.2).
func (c *Client) FetchXMLTV(ctx context.Context) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices/ANY/guide/xmltv", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dvrclient: fetch xmltv: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("dvrclient: fetch xmltv: unexpected status %d", resp.StatusCode)
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// SubscribeEvents opens the SSE stream (spec §4.1: GET
// /dvr/events/subscribe with Accept: text/event-stream). The caller owns
// the returned body and must Close it to release the connection.
func (c *Client) SubscribeEvents(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dvr/events/subscribe", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dvrclient: subscribe events: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("dvrclient: subscribe events: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Package entropy supplies the random sources the arena runs on.
// Seeds come from random.org when an API key is configured and fall back
// to crypto/rand otherwise; the per-game source itself is a seeded math/rand.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const randomOrgURL = "https://api.random.org/json-rpc/4/invoke"

// Client pulls true random integers from random.org into a local pool.
type Client struct {
	apiKey string
	url    string
	client *http.Client

	mu   sync.Mutex
	pool []int64
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		url:    randomOrgURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Seed returns a 63-bit seed built from two pooled random.org integers.
// Falls back to crypto/rand when the API cannot be reached.
func (c *Client) Seed() int64 {
	if !c.Enabled() {
		return CryptoSeed()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 2 {
		c.refill()
	}
	if len(c.pool) < 2 {
		return CryptoSeed()
	}

	hi, lo := c.pool[0], c.pool[1]
	c.pool = c.pool[2:]
	return (hi<<31 | lo) & (1<<63 - 1)
}

func (c *Client) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": c.apiKey,
			"n":      20,
			"min":    0,
			"max":    1<<31 - 1,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return
	}

	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return
	}

	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return
	}

	c.pool = append(c.pool, result.Result.Random.Data...)
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
}

// CryptoSeed generates a non-negative seed using crypto/rand.
func CryptoSeed() int64 {
	seed, err := readCryptoSeed()
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		return time.Now().UnixNano() & (1<<63 - 1)
	}
	return seed
}

func readCryptoSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}

// NewSeed returns a seed from the client if available, or crypto/rand.
func NewSeed(c *Client) int64 {
	if c.Enabled() {
		return c.Seed()
	}
	return CryptoSeed()
}

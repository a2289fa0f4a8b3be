package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultHeartbeatInterval = 45 * time.Second

	// maxConsecutiveHeartbeatFailures is how many heartbeats may fail in a
	// row before the session is considered lost.
	maxConsecutiveHeartbeatFailures = 3
)

// Config holds platform session settings.
type Config struct {
	// Token authenticates the bot session. Required.
	Token string

	// BaseURL is the platform API root, e.g. "https://chat.example.com/api/v1".
	BaseURL string

	// HeartbeatInterval is how often Run pings the platform. Zero means the
	// default of 45s.
	HeartbeatInterval time.Duration
}

// identity is the bot's own user record, returned on connect.
type identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Client is the long-lived session against the remote chat platform. It is
// constructed once and shared by the resolver, dispatcher and enumerator.
// The guild cache is populated at connect time and refreshed only by
// explicit FetchGuild calls.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger

	mu     sync.RWMutex
	guilds map[string]*Guild
	self   identity
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		guilds: make(map[string]*Guild),
	}
}

// Connect validates the session token and loads the bot's guilds into the
// cache. It must succeed before the HTTP listener is started.
func (c *Client) Connect(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.Token) == "" {
		return fmt.Errorf("connect: no session token configured")
	}

	var self identity
	if err := c.get(ctx, "/users/@me", &self); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	var guilds []Guild
	if err := c.get(ctx, "/users/@me/guilds", &guilds); err != nil {
		return fmt.Errorf("load guilds: %w", err)
	}

	c.mu.Lock()
	c.self = self
	for i := range guilds {
		g := guilds[i]
		c.guilds[g.ID] = &g
	}
	c.mu.Unlock()

	c.logger.Info("session established", "username", self.Username, "guilds", len(guilds))
	return nil
}

// Run keeps the session alive until ctx is cancelled. It returns an error
// when the session is lost; the caller treats that as fatal.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := c.get(ctx, "/users/@me", &identity{})
			switch {
			case err == nil:
				failures = 0
			case errors.Is(err, ErrUnauthorized):
				return fmt.Errorf("session token rejected: %w", err)
			default:
				failures++
				c.logger.Warn("heartbeat failed", "failures", failures, "error", err)
				if failures >= maxConsecutiveHeartbeatFailures {
					return fmt.Errorf("session lost after %d failed heartbeats: %w", failures, err)
				}
			}
		}
	}
}

// Guild returns a guild from the session cache.
func (c *Client) Guild(guildID string) (*Guild, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.guilds[guildID]
	return g, ok
}

// FetchGuild fetches a guild from the platform and caches it. A missing
// guild yields ErrNotFound.
func (c *Client) FetchGuild(ctx context.Context, guildID string) (*Guild, error) {
	var g Guild
	if err := c.get(ctx, "/guilds/"+guildID, &g); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.guilds[g.ID] = &g
	c.mu.Unlock()
	return &g, nil
}

// FetchMember fetches a single member record from the platform. A user that
// is not a member of the guild yields ErrNotFound.
func (c *Client) FetchMember(ctx context.Context, guildID, userID string) (*Member, error) {
	var m Member
	if err := c.get(ctx, "/guilds/"+guildID+"/members/"+userID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SendDirectMessage delivers a private message to a user. A recipient that
// blocks DMs from the bot yields ErrForbidden.
func (c *Client) SendDirectMessage(ctx context.Context, userID, content string) error {
	body := struct {
		Content string `json:"content"`
	}{Content: content}
	return c.post(ctx, "/users/"+userID+"/messages", body, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func statusErr(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
}

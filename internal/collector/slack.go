package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/VarunAIFund/pulse/internal/models"
	"github.com/VarunAIFund/pulse/pkg/clients"
	"github.com/VarunAIFund/pulse/pkg/logging"
)

const defaultBaseURL = "https://slack.com/api"

// APIError is a Slack API-level failure (ok=false in the response body)
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s returned error: %s", e.Method, e.Code)
}

// SlackClient pulls channel history from the Slack Web API. Calls are
// paced by RateLimitDelay and retried with backoff on 429/5xx.
type SlackClient struct {
	baseURL        string
	token          string
	client         *http.Client
	retryConfig    clients.RetryConfig
	rateLimitDelay time.Duration
	logger         logging.Logger
}

type Option func(*SlackClient)

func NewSlackClient(token string, logger logging.Logger, opts ...Option) *SlackClient {
	c := &SlackClient{
		baseURL:        defaultBaseURL,
		token:          token,
		client:         &http.Client{Timeout: 30 * time.Second},
		retryConfig:    clients.DefaultRetryConfig(),
		rateLimitDelay: time.Second,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithBaseURL(baseURL string) Option {
	return func(c *SlackClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *SlackClient) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithRateLimitDelay(d time.Duration) Option {
	return func(c *SlackClient) {
		c.rateLimitDelay = d
	}
}

type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type channelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type conversationsListResponse struct {
	apiEnvelope
	Channels         []channelInfo `json:"channels"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type historyMessage struct {
	Type      string            `json:"type"`
	Subtype   string            `json:"subtype"`
	BotID     string            `json:"bot_id"`
	User      string            `json:"user"`
	Text      string            `json:"text"`
	TS        string            `json:"ts"`
	ThreadTS  string            `json:"thread_ts"`
	Reactions []models.Reaction `json:"reactions"`
}

type conversationsHistoryResponse struct {
	apiEnvelope
	Messages         []historyMessage `json:"messages"`
	HasMore          bool             `json:"has_more"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type reactionsGetResponse struct {
	apiEnvelope
	Message struct {
		Reactions []models.Reaction `json:"reactions"`
	} `json:"message"`
}

type authTestResponse struct {
	apiEnvelope
	User string `json:"user"`
	Team string `json:"team"`
}

func (c *SlackClient) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := clients.DoWithRetry(ctx, c.client, req, c.retryConfig)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack %s returned status: %d", method, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

func (c *SlackClient) pause(ctx context.Context) {
	if c.rateLimitDelay <= 0 {
		return
	}
	select {
	case <-time.After(c.rateLimitDelay):
	case <-ctx.Done():
	}
}

// TestConnection verifies the token against auth.test
func (c *SlackClient) TestConnection(ctx context.Context) error {
	var out authTestResponse
	if err := c.call(ctx, "auth.test", url.Values{}, &out); err != nil {
		return err
	}
	if !out.OK {
		return &APIError{Method: "auth.test", Code: out.Error}
	}
	if c.logger != nil {
		c.logger.WithFields(logging.Fields{
			"user": out.User,
			"team": out.Team,
		}).Info("Slack connection verified")
	}
	return nil
}

// ResolveChannels maps the wanted channel names (with or without a
// leading #) to channel IDs. Names that cannot be resolved from the
// public listing are retried against the private listing.
func (c *SlackClient) ResolveChannels(ctx context.Context, names []string) (map[string]string, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.TrimPrefix(name, "#")] = true
	}

	resolved := make(map[string]string, len(names))
	if err := c.listInto(ctx, "public_channel,private_channel", wanted, resolved); err != nil {
		return nil, err
	}

	if len(resolved) < len(wanted) {
		if c.logger != nil {
			c.logger.WithField("missing", len(wanted)-len(resolved)).Info("Retrying unresolved channels against private listing")
		}
		if err := c.listInto(ctx, "private_channel", wanted, resolved); err != nil && c.logger != nil {
			c.logger.WithError(err).Warn("Could not fetch private channels")
		}
	}

	c.pause(ctx)
	return resolved, nil
}

func (c *SlackClient) listInto(ctx context.Context, types string, wanted map[string]bool, resolved map[string]string) error {
	cursor := ""
	for {
		params := url.Values{
			"types": {types},
			"limit": {"200"},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var out conversationsListResponse
		if err := c.call(ctx, "conversations.list", params, &out); err != nil {
			return err
		}
		if !out.OK {
			return &APIError{Method: "conversations.list", Code: out.Error}
		}

		for _, ch := range out.Channels {
			if wanted[ch.Name] {
				resolved[ch.Name] = ch.ID
			}
		}

		cursor = out.ResponseMetadata.NextCursor
		if cursor == "" {
			return nil
		}
		c.pause(ctx)
	}
}

// ChannelHistory fetches user messages from one channel going back the
// given number of days. Bot messages, system subtypes and empty texts are
// filtered out.
func (c *SlackClient) ChannelHistory(ctx context.Context, channelName, channelID string, daysBack int) ([]models.Message, error) {
	oldest := time.Now().AddDate(0, 0, -daysBack).Unix()

	var messages []models.Message
	cursor := ""
	for {
		params := url.Values{
			"channel": {channelID},
			"oldest":  {strconv.FormatInt(oldest, 10)},
			"limit":   {"200"},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var out conversationsHistoryResponse
		if err := c.call(ctx, "conversations.history", params, &out); err != nil {
			return nil, err
		}
		if !out.OK {
			return nil, &APIError{Method: "conversations.history", Code: out.Error}
		}

		for _, msg := range out.Messages {
			if msg.BotID != "" || msg.Type != "message" || msg.Subtype != "" {
				continue
			}
			if strings.TrimSpace(msg.Text) == "" {
				continue
			}
			messages = append(messages, models.Message{
				Channel:   channelName,
				Timestamp: msg.TS,
				Text:      msg.Text,
				User:      msg.User,
				ThreadTS:  msg.ThreadTS,
				Reactions: msg.Reactions,
			})
		}

		if !out.HasMore {
			break
		}
		cursor = out.ResponseMetadata.NextCursor
		c.pause(ctx)
	}

	return messages, nil
}

// MessageReactions fetches the reactions for one message. History
// payloads usually carry reactions already; this covers the ones that
// arrive without them.
func (c *SlackClient) MessageReactions(ctx context.Context, channelID, timestamp string) ([]models.Reaction, error) {
	params := url.Values{
		"channel":   {channelID},
		"timestamp": {timestamp},
		"full":      {"true"},
	}

	var out reactionsGetResponse
	if err := c.call(ctx, "reactions.get", params, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, &APIError{Method: "reactions.get", Code: out.Error}
	}
	c.pause(ctx)
	return out.Message.Reactions, nil
}

// CollectChannelData resolves the named channels and pulls their recent
// history. A channel that fails to collect is logged and reported in the
// failed list without aborting the others.
func (c *SlackClient) CollectChannelData(ctx context.Context, channelNames []string, daysBack int) (map[string][]models.Message, []string, error) {
	channels, err := c.ResolveChannels(ctx, channelNames)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve channels: %w", err)
	}

	data := make(map[string][]models.Message, len(channels))
	var failed []string

	for _, name := range channelNames {
		name = strings.TrimPrefix(name, "#")
		id, ok := channels[name]
		if !ok {
			if c.logger != nil {
				c.logger.WithField("channel", name).Warn("Channel not found, skipping")
			}
			failed = append(failed, name)
			continue
		}

		messages, err := c.ChannelHistory(ctx, name, id, daysBack)
		if err != nil {
			if c.logger != nil {
				c.logger.WithError(err).WithField("channel", name).Error("Failed to collect channel history")
			}
			failed = append(failed, name)
			continue
		}

		data[name] = messages
		if c.logger != nil {
			c.logger.WithFields(logging.Fields{
				"channel":  name,
				"messages": len(messages),
			}).Info("Collected channel history")
		}
	}

	return data, failed, nil
}

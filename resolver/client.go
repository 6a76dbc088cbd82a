package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"albumbot/logger"
	"albumbot/model"
)

// ErrNoMatch is returned when the lookup succeeds but no entry for the
// target platform is present in the response.
var ErrNoMatch = errors.New("no entry for target platform")

// Resolution is the outcome of a successful lookup: the canonical page URL
// and the matched platform's metadata.
type Resolution struct {
	PageURL string       `json:"pageUrl"`
	Entity  model.Entity `json:"entity"`
}

// Resolver turns a raw media URL into canonical URL plus platform metadata.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*Resolution, error)
}

// Client calls the Odesli links API.
type Client struct {
	baseURL     string
	userCountry string
	platform    string
	httpClient  *http.Client
}

// NewClient creates a lookup client. platform is the tag the per-platform
// entries are filtered on (for example YANDEX or ITUNES); the two known
// deployments of the source bot disagreed on it, so it is configuration.
func NewClient(baseURL, userCountry, platform string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userCountry: userCountry,
		platform:    platform,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// SetTimeout sets the request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Resolve performs the lookup. It returns ErrNoMatch when the call succeeds
// but none of the returned entries belongs to the target platform.
func (c *Client) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	params := url.Values{}
	params.Set("url", rawURL)
	params.Set("userCountry", c.userCountry)
	endpoint := fmt.Sprintf("%s/v1-alpha.1/links?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var result struct {
		PageURL  string                  `json:"pageUrl"`
		Entities map[string]model.Entity `json:"entitiesByUniqueId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}

	for key, entity := range result.Entities {
		if platformTag(key) == c.platform {
			logger.Debug("resolved release link",
				logger.String("url", rawURL),
				logger.String("platform", c.platform),
				logger.String("title", entity.Title))
			return &Resolution{PageURL: result.PageURL, Entity: entity}, nil
		}
	}

	logger.Debug("no matching platform entry",
		logger.String("url", rawURL),
		logger.String("platform", c.platform),
		logger.Int("entities", len(result.Entities)))
	return nil, ErrNoMatch
}

// platformTag extracts the platform tag from an entity key. Keys look like
// "YANDEX_SONG::12345": the tag is the part before the first underscore of
// the part before the first colon.
func platformTag(key string) string {
	head, _, _ := strings.Cut(key, ":")
	tag, _, _ := strings.Cut(head, "_")
	return tag
}

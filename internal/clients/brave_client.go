package clients

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/optifeed/optifeed/internal/models"
)

const (
	BRAVE_NEWS_ENDPOINT = "https://api.search.brave.com/res/v1/news/search"

	// The query mirrors the macro themes the classifier cares about so the
	// feed is pre-narrowed server side.
	braveNewsQuery = "earnings OR acquisition OR downgrade OR bankruptcy OR war OR oil OR inflation OR " +
		"fed OR ECB OR recession OR strike OR cyberattack OR terror OR election OR commodities OR climate OR terrorist"

	braveRequestTimeout   = 10 * time.Second
	DEFAULT_BRAVE_LIMIT   = 30
	braveNewsLimitEnvName = "BRAVE_NEWS_LIMIT"
)

var (
	braveInstance *BraveClient
	braveOnce     sync.Once
)

type BraveClient struct {
	Client *http.Client
	APIKey string
	Limit  int
}

func GetBraveClient() *BraveClient {
	braveOnce.Do(func() {
		limit := DEFAULT_BRAVE_LIMIT
		if raw := os.Getenv(braveNewsLimitEnvName); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}
		braveInstance = &BraveClient{
			Client: &http.Client{Timeout: braveRequestTimeout},
			APIKey: os.Getenv("BRAVE_API_KEY"),
			Limit:  limit,
		}
	})
	return braveInstance
}

// GetNews queries the Brave news search endpoint once, no retry.
func (c *BraveClient) GetNews() ([]models.BraveNewsResult, error) {
	if c.APIKey == "" {
		return nil, errors.New("[BraveClient] API key is missing")
	}

	req, err := http.NewRequest(http.MethodGet, BRAVE_NEWS_ENDPOINT, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.APIKey)

	q := req.URL.Query()
	q.Set("q", braveNewsQuery)
	q.Set("count", strconv.Itoa(c.Limit))
	q.Set("country", "ALL")
	req.URL.RawQuery = q.Encode()

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Warn("[BraveClient] Unexpected status code",
			slog.Int("status", res.StatusCode))
		return nil, errors.New("[BraveClient] unexpected status code")
	}

	var response models.BraveNewsResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, err
	}

	return response.Results, nil
}

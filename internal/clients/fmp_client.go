package clients

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/optifeed/optifeed/internal/models"
)

const (
	FMP_ARTICLES_ENDPOINT = "https://financialmodelingprep.com/api/v3/fmp/articles"
	FMP_PROFILE_ENDPOINT  = "https://financialmodelingprep.com/api/v3/profile/"

	fmpRequestTimeout = 10 * time.Second
)

var (
	fmpInstance *FMPClient
	fmpOnce     sync.Once
)

type FMPClient struct {
	Client *http.Client
	APIKey string
}

func GetFMPClient() *FMPClient {
	fmpOnce.Do(func() {
		fmpInstance = &FMPClient{
			Client: &http.Client{Timeout: fmpRequestTimeout},
			APIKey: os.Getenv("FMP_API_KEY"),
		}
	})
	return fmpInstance
}

// GetArticles fetches the latest FMP editorial articles. No retry here: the
// scheduler owns the cadence, a failed cycle is simply skipped.
func (c *FMPClient) GetArticles() ([]models.FMPArticle, error) {
	if c.APIKey == "" {
		return nil, errors.New("[FMPClient] API key is missing")
	}

	endpoint := FMP_ARTICLES_ENDPOINT + "?apikey=" + url.QueryEscape(c.APIKey)
	res, err := c.Client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Warn("[FMPClient] Unexpected status code",
			slog.Int("status", res.StatusCode))
		return nil, errors.New("[FMPClient] unexpected status code")
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var response models.FMPArticlesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	return response.Content, nil
}

// GetCompanyProfile fetches fundamentals for a single ticker.
func (c *FMPClient) GetCompanyProfile(ticker string) (*models.FMPProfile, error) {
	if c.APIKey == "" {
		return nil, errors.New("[FMPClient] API key is missing")
	}

	endpoint := FMP_PROFILE_ENDPOINT + url.PathEscape(ticker) + "?apikey=" + url.QueryEscape(c.APIKey)
	res, err := c.Client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.New("[FMPClient] unexpected status code")
	}

	var profiles []models.FMPProfile
	if err := json.NewDecoder(res.Body).Decode(&profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.New("[FMPClient] no profile data for ticker " + ticker)
	}

	return &profiles[0], nil
}

package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Response codes returned by the Open Trivia DB API.
const (
	CodeSuccess     = 0
	CodeNoResults   = 1
	CodeRateLimited = 5
)

// OpenTDBClient fetches questions from the Open Trivia DB (no API key).
type OpenTDBClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenTDBClient(baseURL string, httpClient *http.Client) *OpenTDBClient {
	if baseURL == "" {
		baseURL = "https://opentdb.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenTDBClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type OpenTDBQuestion struct {
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	Question        string   `json:"question"`
	CorrectAnswer   string   `json:"correct_answer"`
	IncorrectAnswer []string `json:"incorrect_answers"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []OpenTDBQuestion `json:"results"`
}

// APIError reports a non-zero OpenTDB response code so callers can tell
// rate limiting apart from other failures.
type APIError struct {
	Code int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opentdb response code %d", e.Code)
}

// RateLimited reports whether err is an OpenTDB rate-limit rejection.
func RateLimited(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == CodeRateLimited
}

func (c *OpenTDBClient) Fetch(ctx context.Context, amount int, difficulty, qType string) ([]OpenTDBQuestion, error) {
	values := url.Values{}
	values.Set("amount", fmt.Sprint(amount))
	if difficulty != "" {
		values.Set("difficulty", difficulty)
	}
	if qType != "" {
		values.Set("type", qType)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api.php?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{Code: CodeRateLimited}
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("opentdb non-200: %d", resp.StatusCode)
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != CodeSuccess {
		return nil, &APIError{Code: payload.ResponseCode}
	}
	return payload.Results, nil
}

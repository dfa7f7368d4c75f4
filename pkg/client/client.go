package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/quill-social/quill/pkg/config"
	"github.com/quill-social/quill/pkg/logger"
)

// UserAgent is sent on every request
const UserAgent = "Quill-CLI/0.1.0"

var httpClient *resty.Client
var authToken string

// Init initializes the HTTP client from configuration
func Init() {
	Configure(
		config.GetString("api.base_url"),
		config.GetString("api.anon_key"),
		config.GetSeconds("api.timeout"),
	)
}

// Configure builds the HTTP client against an explicit endpoint. The anon key is
// the project's public API key; the backend rejects requests without it.
func Configure(baseURL, anonKey string, timeout time.Duration) {
	httpClient = resty.New()

	httpClient.SetBaseURL(baseURL)
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	httpClient.SetHeader("User-Agent", UserAgent)
	httpClient.SetHeader("Accept", "application/json")
	if anonKey != "" {
		httpClient.SetHeader("apikey", anonKey)
	}
	if authToken != "" {
		httpClient.SetAuthToken(authToken)
	}

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		requestID := uuid.New().String()
		req.Header.Set("X-Request-Id", requestID)
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "request_id", requestID)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get("X-Request-Id"),
			"elapsed", resp.Time(),
		)
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the bearer token used for authenticated requests
func SetAuthToken(token string) {
	authToken = token
	GetClient().SetAuthToken(token)
}

// ClearAuthToken drops the bearer token; requests fall back to the anon key
func ClearAuthToken() {
	authToken = ""
	if httpClient == nil {
		Init()
		return
	}
	httpClient.Token = ""
}

// HasAuthToken reports whether requests are authenticated
func HasAuthToken() bool {
	return authToken != ""
}

package vesync

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vesync-bridge/internal/logger"
)

const defaultBaseURL = "https://smartapi.vesync.com"

// Config holds cloud API connection configuration
type Config struct {
	// BaseURL overrides the production endpoint, mainly for tests
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// Client talks to the VeSync cloud API
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client

	token     string
	accountID string
}

// APIError is a non-zero application code in an otherwise successful
// HTTP exchange.
type APIError struct {
	Code int
	Msg  string
}

func (e APIError) Error() string {
	return fmt.Sprintf("vesync api error %d: %s", e.Code, strings.TrimSpace(e.Msg))
}

// HTTPStatusError is a non-2xx HTTP response from the cloud.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("vesync http error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// NewClient creates a new cloud API client
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		email:      cfg.Email,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login authenticates and stores the session token and account ID for
// subsequent calls
func (c *Client) Login(ctx context.Context) error {
	sum := md5.Sum([]byte(c.password))

	body := map[string]interface{}{
		"email":    c.email,
		"password": hex.EncodeToString(sum[:]),
		"method":   "login",
		"userType": "1",
		"devToken": "",
	}

	var result struct {
		Token     string `json:"token"`
		AccountID string `json:"accountID"`
	}

	if err := c.post(ctx, "/cloud/v1/user/login", body, &result); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if result.Token == "" || result.AccountID == "" {
		return fmt.Errorf("login response missing credentials")
	}

	c.token = result.Token
	c.accountID = result.AccountID

	logger.Debug("Logged in to VeSync cloud (account %s)", c.accountID)
	return nil
}

// Devices returns all units registered to the account
func (c *Client) Devices(ctx context.Context) ([]DeviceInfo, error) {
	body := map[string]interface{}{
		"method":   "devices",
		"pageNo":   1,
		"pageSize": 100,
	}

	var result struct {
		List []DeviceInfo `json:"list"`
	}

	if err := c.post(ctx, "/cloud/v1/deviceManaged/devices", body, &result); err != nil {
		return nil, fmt.Errorf("device list failed: %w", err)
	}

	return result.List, nil
}

// Humidifier wraps a device record in a command handle
func (c *Client) Humidifier(info DeviceInfo) *Humidifier {
	return &Humidifier{client: c, info: info}
}

// bypass issues a device-scoped command through the bypassV2 endpoint.
// out, when non-nil, receives the inner result payload.
func (c *Client) bypass(ctx context.Context, info DeviceInfo, method string, data interface{}, out interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}

	body := map[string]interface{}{
		"cid":          info.CID,
		"configModule": info.ConfigModule,
		"method":       "bypassV2",
		"payload": map[string]interface{}{
			"method": method,
			"source": "APP",
			"data":   data,
		},
	}

	if out == nil {
		return c.post(ctx, "/cloud/v2/deviceManaged/bypassV2", body, nil)
	}

	// bypass responses nest the payload one level deeper
	var result struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.post(ctx, "/cloud/v2/deviceManaged/bypassV2", body, &result); err != nil {
		return err
	}
	if len(result.Result) == 0 {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return fmt.Errorf("%s: parse result: %w", method, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("tk", c.token)
		req.Header.Set("accountid", c.accountID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HTTPStatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if env.Code != 0 {
		return APIError{Code: env.Code, Msg: env.Msg}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("parse result: %w", err)
		}
	}

	return nil
}

package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

const (
	defaultTokenURL   = "https://oauth2.googleapis.com/token"
	defaultBaseURL    = "https://googleads.googleapis.com/v17"
	tokenExpiryMargin = 60 * time.Second
	conversionLayout  = "2006-01-02 15:04:05-07:00"
)

type Config struct {
	DeveloperToken     string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	CustomerID         string
	LoginCustomerID    string
	ConversionActionID string

	TokenURL string
	BaseURL  string
	Timeout  time.Duration
}

func (c Config) missing() []string {
	required := []struct {
		name  string
		value string
	}{
		{"developer token", c.DeveloperToken},
		{"client id", c.ClientID},
		{"client secret", c.ClientSecret},
		{"refresh token", c.RefreshToken},
		{"customer id", c.CustomerID},
		{"conversion action id", c.ConversionActionID},
	}
	var out []string
	for _, r := range required {
		if r.value == "" {
			out = append(out, r.name)
		}
	}
	return out
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logrus.FieldLogger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	refresh     singleflight.Group
	now         func() time.Time
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	cfg.CustomerID = digitsOnly(cfg.CustomerID)
	cfg.LoginCustomerID = digitsOnly(cfg.LoginCustomerID)
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.WithField("service", "google_ads"),
		now:  time.Now,
	}
}

// UploadConversion never returns an error; the outcome is in the result.
func (c *Client) UploadConversion(ctx context.Context, clickID string, value float64, currency string, when time.Time) entity.ConversionResult {
	if !entity.IsValidClickID(clickID) {
		return entity.ConversionResult{Error: "invalid click id"}
	}
	if missing := c.cfg.missing(); len(missing) > 0 {
		c.log.WithField("missing", missing).Debug("⚠️ Google Ads: not configured, skipping upload")
		return entity.ConversionResult{Error: "google ads not configured"}
	}
	if when.IsZero() {
		when = c.now()
	}
	if currency == "" {
		currency = "USD"
	}

	token, err := c.token(ctx)
	if err != nil {
		c.log.WithError(err).Error("❌ Google Ads: token refresh failed")
		return entity.ConversionResult{Error: "token refresh failed", Details: err.Error()}
	}

	payload := uploadRequest{
		Conversions: []clickConversion{{
			Gclid:              strings.TrimSpace(clickID),
			ConversionAction:   fmt.Sprintf("customers/%s/conversionActions/%s", c.cfg.CustomerID, c.cfg.ConversionActionID),
			ConversionDateTime: when.UTC().Format(conversionLayout),
			ConversionValue:    value,
			CurrencyCode:       currency,
		}},
		PartialFailure: true,
	}
	body, _ := json.Marshal(payload)

	endpoint := fmt.Sprintf("%s/customers/%s:uploadClickConversions", c.cfg.BaseURL, c.cfg.CustomerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return entity.ConversionResult{Error: "build request failed", Details: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("developer-token", c.cfg.DeveloperToken)
	if c.cfg.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", c.cfg.LoginCustomerID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return entity.ConversionResult{Error: "upload request failed", Details: err.Error()}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
	}
	if resp.StatusCode != http.StatusOK {
		return entity.ConversionResult{Error: fmt.Sprintf("upload failed with status %d", resp.StatusCode), Details: string(respBody)}
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return entity.ConversionResult{Error: "decode upload response failed", Details: string(respBody)}
	}
	if out.PartialFailureError != nil && out.PartialFailureError.Message != "" {
		return entity.ConversionResult{Error: "partial failure", Details: out.PartialFailureError.Message}
	}
	return entity.ConversionResult{Success: true}
}

// token returns the cached access token, refreshing it at most once for any
// number of concurrent callers.
func (c *Client) token(ctx context.Context) (string, error) {
	if t, ok := c.cachedToken(); ok {
		return t, nil
	}

	// The flight is shared, so it must not die with whichever caller started it.
	ch := c.refresh.DoChan("token", func() (interface{}, error) {
		// A flight that finished just before this one may have filled the cache.
		if t, ok := c.cachedToken(); ok {
			return t, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()
		return c.fetchToken(fctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, true
	}
	return "", false
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {c.cfg.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || tr.AccessToken == "" {
		return "", errors.New("token exchange rejected: " + strings.TrimSpace(tr.Error+" "+tr.ErrorDesc))
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	c.mu.Lock()
	c.accessToken = tr.AccessToken
	c.expiresAt = c.now().Add(ttl - tokenExpiryMargin)
	c.mu.Unlock()

	c.log.Debug("🔑 Google Ads: access token refreshed")
	return tr.AccessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

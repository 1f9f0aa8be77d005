package augusta

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/metrics"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/phone"
)

type Config struct {
	Endpoint   string
	ReferralID string
	Timeout    time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log.WithField("service", "augusta")}
}

func BuildPayload(lead *entity.Lead, referralID string) SubmitLeadPayload {
	return SubmitLeadPayload{
		FirstName:  lead.FirstName,
		LastName:   lead.LastName,
		Email:      lead.Email,
		Phone:      phone.NormalizeE164(lead.Phone),
		ReferralID: referralID,
		SubID:      lead.ID,
	}
}

// Submit makes a single attempt. Any transport error or non-2xx reply is a
// rejection; nothing is returned as an error.
func (c *Client) Submit(ctx context.Context, lead *entity.Lead) bool {
	log := c.log.WithField("lead_id", lead.ID)

	if c.cfg.Endpoint == "" {
		log.Warn("⚠️ Augusta: endpoint not configured")
		return false
	}

	body, err := json.Marshal(BuildPayload(lead, c.cfg.ReferralID))
	if err != nil {
		log.WithError(err).Error("❌ Augusta: failed to encode payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("❌ Augusta: failed to build request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordIntegrationError("augusta")
		log.WithError(err).Error("❌ Augusta: request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.RecordIntegrationError("augusta")
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Error("❌ Augusta: lead rejected")
		return false
	}

	log.Info("✅ Augusta: lead accepted")
	return true
}

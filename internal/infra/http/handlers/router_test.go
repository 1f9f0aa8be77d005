package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/filestore"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/http/middleware"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/lock"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

type stubChannel struct {
	mu    sync.Mutex
	next  int64
	texts []string
}

func (c *stubChannel) Send(ctx context.Context, text string, urgent bool) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.texts = append(c.texts, text)
	return c.next, nil
}

func (c *stubChannel) Edit(ctx context.Context, id int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *stubChannel) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1]
}

type stubPartner struct {
	mu     sync.Mutex
	accept bool
	calls  int
}

func (p *stubPartner) Submit(ctx context.Context, lead *entity.Lead) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.accept
}

type testServer struct {
	handler http.Handler
	leads   *filestore.LeadRepository
	channel *stubChannel
	partner *stubPartner
}

func newTestServer(t *testing.T, perMinute int) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()
	dir := t.TempDir()

	leads, err := filestore.NewLeadRepository(dir)
	require.NoError(t, err)
	quiz, err := filestore.NewQuizLeadRepository(dir)
	require.NoError(t, err)
	postbacks, err := filestore.NewPostbackRepository(dir)
	require.NoError(t, err)

	s := &testServer{leads: leads, channel: &stubChannel{}, partner: &stubPartner{accept: true}}
	lifecycle := usecase.NewLeadLifecycle(leads, s.channel, s.partner, lock.NewKeyedMutex(), nil, log)

	var limiter *middleware.IPRateLimiter
	if perMinute > 0 {
		limiter = middleware.NewIPRateLimiter(perMinute)
	}

	s.handler = NewRouter(RouterConfig{
		CORSOrigins: []string{"*"},
		RateLimiter: limiter,
		AdminKey:    testAdminKey,
		Leads:       NewLeadHandler(lifecycle, log),
		Quiz:        NewQuizHandler(usecase.NewQuizLeadUseCase(quiz, s.channel, log), log),
		Postbacks:   NewPostbackHandler(usecase.NewPostbackUseCase(postbacks, lifecycle, nil, log), log),
		Clicks:      NewClickHandler(usecase.NewClickTrackingUseCase(nil, nil, 1, log)),
		Health:      NewHealthHandler("file", nil, nil, nil),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" && headers["Content-Type"] == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const testAdminKey = "test-admin-key"

var adminHeaders = map[string]string{middleware.AdminKeyHeader: testAdminKey}

const leadBody = `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","phone":"(650) 253-0000","source":"youtube"}`

func (s *testServer) createLead(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/leads", leadBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decodeBody(t, rec)["leadId"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCaptureLead_Created(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodPost, "/api/leads", leadBody, map[string]string{
		"X-Vercel-IP-City":           url.QueryEscape("San José"),
		"X-Vercel-IP-Country-Region": "CA",
		"X-Vercel-IP-Country":        "US",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	stored, err := s.leads.FindByID(context.Background(), body["leadId"].(string))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, stored.Status)
	assert.NotZero(t, stored.TelegramMessageID)
	assert.Contains(t, s.channel.last(), "📍 San José, CA, US")
}

func TestCaptureLead_InvalidJSON(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodPost, "/api/leads", `{"firstName":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeBody(t, rec)["error"])
}

func TestCaptureLead_MissingFields(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodPost, "/api/leads", `{"firstName":"Jane","email":"jane@example.com"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	assert.Equal(t, false, body["success"])
	assert.ElementsMatch(t, []interface{}{"lastName", "phone"}, body["missingFields"])
}

func TestEnrichAndSubmitFlow(t *testing.T) {
	s := newTestServer(t, 0)
	id := s.createLead(t)

	rec := s.do(t, http.MethodPatch, "/api/leads/"+id+"/enrichment",
		`{"totalRetirementSavings":"250k_500k","percentageToProtect":50}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(125000), body["potentialDealMin"])
	assert.Equal(t, float64(250000), body["potentialDealMax"])

	rec = s.do(t, http.MethodPost, "/api/submit-to-augusta", `{"leadId":"`+id+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["augustaSubmitted"])
	assert.Equal(t, false, body["alreadySubmitted"])

	first, err := s.leads.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, first.AugustaSubmittedAt)
	time.Sleep(5 * time.Millisecond)

	rec = s.do(t, http.MethodPost, "/api/submit-to-augusta", `{"leadId":"`+id+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["alreadySubmitted"])
	assert.Equal(t, 1, s.partner.calls)

	stored, err := s.leads.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSentToAugusta, stored.Status)
	require.NotNil(t, stored.AugustaSubmittedAt)
	assert.True(t, first.AugustaSubmittedAt.Equal(*stored.AugustaSubmittedAt))
}

func TestSubmitToAugusta_Errors(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodPost, "/api/submit-to-augusta", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"leadId"}, decodeBody(t, rec)["missingFields"])

	rec = s.do(t, http.MethodPost, "/api/submit-to-augusta", `{"leadId":"3f2b8c1e-9d4a-4b6e-8f7a-1c2d3e4f5a6b"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "LEAD_NOT_FOUND", decodeBody(t, rec)["error"])
}

func TestLeadRoutes_MalformedIDIsBadRequest(t *testing.T) {
	s := newTestServer(t, 0)

	cases := []struct {
		name    string
		method  string
		target  string
		body    string
		headers map[string]string
	}{
		{"enrichment", http.MethodPatch, "/api/leads/not-a-uuid/enrichment", `{"totalRetirementSavings":"50k_100k","percentageToProtect":10}`, nil},
		{"status", http.MethodPatch, "/api/leads/not-a-uuid/status", `{"status":"qualified"}`, adminHeaders},
		{"submit", http.MethodPost, "/api/submit-to-augusta", `{"leadId":"not-a-uuid"}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.target, tc.body, tc.headers)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_ID", decodeBody(t, rec)["error"])
		})
	}
	assert.Zero(t, s.partner.calls)
}

func TestAdminRoutes_RequireKey(t *testing.T) {
	s := newTestServer(t, 0)
	id := s.createLead(t)

	rec := s.do(t, http.MethodGet, "/api/leads/high-value", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeBody(t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/api/quiz-leads", "", map[string]string{middleware.AdminKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/leads/"+id+"/status", `{"status":"converted"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	stored, err := s.leads.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, stored.Status)

	rec = s.do(t, http.MethodPatch, "/api/leads/"+id+"/status", `{"status":"converted"}`,
		map[string]string{"Authorization": "Bearer " + testAdminKey})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus_BackwardIsConflict(t *testing.T) {
	s := newTestServer(t, 0)
	id := s.createLead(t)

	rec := s.do(t, http.MethodPatch, "/api/leads/"+id+"/status", `{"status":"converted"}`, adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/leads/"+id+"/status", `{"status":"qualified"}`, adminHeaders)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/leads/"+id+"/status", `{}`, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListHighValue(t *testing.T) {
	s := newTestServer(t, 0)
	id := s.createLead(t)
	s.do(t, http.MethodPatch, "/api/leads/"+id+"/enrichment", `{"totalRetirementSavings":"over_1m","percentageToProtect":30}`, nil)
	s.createLead(t)

	rec := s.do(t, http.MethodGet, "/api/leads/high-value", "", adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	leads := decodeBody(t, rec)["leads"].([]interface{})
	require.Len(t, leads, 1)
	assert.Equal(t, id, leads[0].(map[string]interface{})["id"])

	rec = s.do(t, http.MethodGet, "/api/leads/high-value?min=abc", "", adminHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuizLeads(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodPost, "/api/quiz-leads",
		`{"productType":"gold_ira","budget":"500k_plus","answers":{"age":"60+"},"recommendedCompany":"Augusta"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)
	assert.Contains(t, s.channel.last(), "HIGH-VALUE QUIZ LEAD")

	rec = s.do(t, http.MethodGet, "/api/quiz-leads/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	quizLead := decodeBody(t, rec)["quizLead"].(map[string]interface{})
	assert.Equal(t, "500k_plus", quizLead["budget"])

	rec = s.do(t, http.MethodGet, "/api/quiz-leads/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/quiz-leads/3f2b8c1e-9d4a-4b6e-8f7a-1c2d3e4f5a6b", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/quiz-leads", `{"productType":"gold_ira","answers":[1],"recommendedCompany":"Augusta"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"budget"}, decodeBody(t, rec)["missingFields"])

	rec = s.do(t, http.MethodGet, "/api/quiz-leads", "", adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["quizLeads"], 1)
}

func TestPostback_AlwaysAcknowledges(t *testing.T) {
	s := newTestServer(t, 0)
	id := s.createLead(t)

	cases := []struct {
		name    string
		method  string
		target  string
		body    string
		headers map[string]string
		want    string
	}{
		{name: "query", method: http.MethodGet, target: "/api/postback?type=lead&sub_id=abc", want: "lead_capture"},
		{name: "json", method: http.MethodPost, target: "/api/postback", body: `{"event":"qualified","sub_id":"` + id + `","payout":12.5}`, want: "qualified_lead"},
		{name: "form", method: http.MethodPost, target: "/api/postback?type=lead", body: "type=sale&amount=100",
			headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, want: "trade_complete"},
		{name: "garbage", method: http.MethodPost, target: "/api/postback", body: `{"broken`, want: "lead_capture"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.target, tc.body, tc.headers)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, true, body["received"])
			assert.Equal(t, tc.want, body["eventType"])
		})
	}

	stored, err := s.leads.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusQualified, stored.Status)
}

func TestTrackClick_Redirects(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodGet, "/api/track-click?url="+url.QueryEscape("https://augusta.example.com/start")+"&company=Augusta", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://augusta.example.com/start", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodGet, "/api/track-click?url="+url.QueryEscape("javascript:alert(1)"), "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRateLimit_RejectsBurst(t *testing.T) {
	s := newTestServer(t, 2)
	headers := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/leads", leadBody, headers)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/api/leads", leadBody, headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeBody(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/leads", leadBody, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "file", body["storage"])
}

package augusta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

func testLead() *entity.Lead {
	return entity.NewLead("Jane", "Doe", "jane@example.com", "(650) 253-0000", "google", nil)
}

func TestClient_SubmitAccepted(t *testing.T) {
	lead := testLead()
	var got SubmitLeadPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	c := NewClient(Config{Endpoint: srv.URL, ReferralID: "REF-1"}, log)

	assert.True(t, c.Submit(context.Background(), lead))
	assert.Equal(t, "+16502530000", got.Phone)
	assert.Equal(t, "REF-1", got.ReferralID)
	assert.Equal(t, lead.ID, got.SubID)
}

func TestClient_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	log, hook := test.NewNullLogger()
	c := NewClient(Config{Endpoint: srv.URL}, log)

	assert.False(t, c.Submit(context.Background(), testLead()))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 422, hook.LastEntry().Data["status"])
}

func TestClient_SubmitTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	c := NewClient(Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond}, log)

	assert.False(t, c.Submit(context.Background(), testLead()))
}

func TestClient_SubmitWithoutEndpoint(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := NewClient(Config{}, log)
	assert.False(t, c.Submit(context.Background(), testLead()))
}

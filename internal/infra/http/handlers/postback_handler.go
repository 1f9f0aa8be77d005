package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

type PostbackHandler struct {
	UseCase *usecase.PostbackUseCase
	Log     logrus.FieldLogger
}

func NewPostbackHandler(uc *usecase.PostbackUseCase, log logrus.FieldLogger) *PostbackHandler {
	return &PostbackHandler{UseCase: uc, Log: log}
}

// Handle accepts GET and POST postbacks. The partner always gets a 200, even
// when recording fails, so it never starts retrying.
func (h *PostbackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	params := collectPostbackParams(r, h.Log)

	out, err := h.UseCase.Execute(r.Context(), usecase.PostbackInput{Params: params})
	if err != nil {
		h.Log.WithError(err).WithField("event_type", out.EventType).Error("❌ Postback processing failed")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"received":  true,
		"eventType": out.EventType,
	})
}

// collectPostbackParams merges query parameters with body fields. The body
// is tried as JSON, then as a form; body fields win over query parameters.
func collectPostbackParams(r *http.Request, log logrus.FieldLogger) map[string]string {
	params := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	if r.Body == nil || r.Method == http.MethodGet {
		return params
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.WithError(err).Warn("⚠️ Postback body unreadable, using query only")
		return params
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return params
	}

	if fields, ok := parseJSONObject(raw); ok {
		for k, v := range fields {
			params[k] = v
		}
		return params
	}
	if form, err := url.ParseQuery(string(raw)); err == nil {
		for k, v := range form {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
		return params
	}

	log.Warn("⚠️ Postback body is neither JSON nor form, using query only")
	return params
}

func parseJSONObject(raw []byte) (map[string]string, bool) {
	if raw[0] != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}

	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = fmt.Sprint(val)
		default:
			b, _ := json.Marshal(val)
			out[k] = strings.TrimSpace(string(b))
		}
	}
	return out, true
}

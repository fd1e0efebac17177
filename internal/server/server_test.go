package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spigell/talent-screener/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	srv := New(intake.New(), prometheus.NewRegistry(), nil)
	srv.newID = func() string { return "conv-1" }
	srv.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rr))
}

func TestStartConversation(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[TurnResponse](t, rr)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, intake.StageCollectName, resp.State.Stage)
	assert.Equal(t, intake.WelcomeMessage(), resp.Message)
	assert.InDelta(t, 0.2, resp.Progress, 1e-9)
	assert.False(t, resp.Completed)
}

func TestConversationRoundTrip(t *testing.T) {
	h := newTestServer(t)

	start := decode[TurnResponse](t, do(t, h, http.MethodPost, "/v1/conversations", nil))
	state := start.State

	inputs := []string{"Jane Doe", "jane@x.com", "5551234567", "3 years", "Backend Engineer", "Berlin", "Python, Docker"}
	for _, input := range inputs {
		rr := do(t, h, http.MethodPost, "/v1/turn", TurnRequest{ConversationID: start.ConversationID, State: state, Input: input})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decode[TurnResponse](t, rr)
		state = resp.State
	}

	assert.Equal(t, intake.StageTechnicalQuestions, state.Stage)
	require.Len(t, state.Questions, 4)

	var last TurnResponse
	for range state.Questions {
		last = decode[TurnResponse](t, do(t, h, http.MethodPost, "/v1/turn", TurnRequest{State: state, Input: "my answer"}))
		state = last.State
	}

	assert.True(t, last.Completed)
	assert.InDelta(t, 1.0, last.Progress, 1e-9)
	assert.Contains(t, last.Message, "Screening Complete")
	assert.Len(t, state.Answers, 4)

	rr := do(t, h, http.MethodPost, "/v1/summary", SummaryRequest{State: state})
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[SummaryResponse](t, rr)
	assert.Equal(t, intake.Summary(state), summary.Summary)
	assert.Contains(t, summary.Info, "• **Tech Stack:** Python, Docker")
	require.NotNil(t, summary.Candidate)
	assert.Equal(t, "jane@x.com", summary.Candidate.Email)
	assert.True(t, summary.Candidate.Completed)

	metrics := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metrics.Code)
	body := metrics.Body.String()
	assert.Contains(t, body, "talent_screener_conversations_started_total 1")
	assert.Contains(t, body, "talent_screener_conversations_completed_total 1")
	assert.Contains(t, body, `talent_screener_turns_total{stage="technical_questions"} 4`)
	assert.Contains(t, body, `talent_screener_stage_transitions_total{from="collect_name",to="collect_email"} 1`)
}

func TestTurnKeepsStateOnInvalidInput(t *testing.T) {
	h := newTestServer(t)

	state := intake.NewState()
	state.Stage = intake.StageCollectEmail
	state.Fields[intake.FieldName] = "Jane Doe"

	rr := do(t, h, http.MethodPost, "/v1/turn", TurnRequest{State: state, Input: "not-an-email"})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[TurnResponse](t, rr)
	assert.Equal(t, intake.StageCollectEmail, resp.State.Stage)
	assert.Equal(t, "Please provide a valid email address.", resp.Message)
	assert.Equal(t, "conv-1", resp.ConversationID)
}

func TestTurnRejectsBadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{name: "malformed json", body: `{"state":`},
		{name: "missing stage", body: `{"input":"hello"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := do(t, newTestServer(t), http.MethodPost, "/v1/turn", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rr)["error"])
		})
	}
}

func TestTurnRejectsInconsistentState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "negative question index",
			body: `{"state":{"stage":"technical_questions","questions":["q1","q2"],"current_question":-1},"input":"hi"}`,
		},
		{
			name: "question index past the end",
			body: `{"state":{"stage":"technical_questions","questions":["q1","q2"],"current_question":3},"input":"hi"}`,
		},
		{
			name: "too many questions",
			body: `{"state":{"stage":"technical_questions","questions":["q1","q2","q3","q4","q5","q6"]},"input":"hi"}`,
		},
		{
			name: "more answers than questions",
			body: `{"state":{"stage":"completed","questions":["q1"],"answers":[{"index":0},{"index":1}],"current_question":1},"input":"hi"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := do(t, newTestServer(t), http.MethodPost, "/v1/turn", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decode[map[string]string](t, rr)["error"], "invalid state")
		})
	}
}

func TestTurnMetricsFoldUnknownStages(t *testing.T) {
	srv := New(intake.New(), prometheus.NewRegistry(), nil)
	h := srv.Handler()

	for _, stage := range []string{"interview", "salary_talk", "onboarding"} {
		rr := do(t, h, http.MethodPost, "/v1/turn", `{"state":{"stage":"`+stage+`"},"input":"hi"}`)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := do(t, h, http.MethodPost, "/v1/turn", `{"state":{"stage":"collect_name"},"input":"Jane Doe"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 2, testutil.CollectAndCount(srv.metrics.turns))
	assert.InDelta(t, 3, testutil.ToFloat64(srv.metrics.turns.WithLabelValues(unknownStage)), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(srv.metrics.transitions))
}

func TestUnknownStageGetsRephrasePrompt(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/v1/turn", `{"state":{"stage":"interview"},"input":"hi"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[TurnResponse](t, rr)
	assert.Equal(t, "Please rephrase your response.", resp.Message)
	assert.Zero(t, resp.Progress)
}

func TestSummaryRejectsUnknownFields(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/v1/summary", `{"state":{"stage":"completed","fields":{"salary":"1"}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abcbank/voxteller/pkg/agent"
	"github.com/abcbank/voxteller/pkg/agent/tool/banking"
	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/repository/memory"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/abcbank/voxteller/pkg/service/llm"
	"github.com/abcbank/voxteller/pkg/usecase"
	"github.com/m-mizutani/gt"

	server "github.com/abcbank/voxteller/pkg/controller/http"
)

func newTestServer(t *testing.T, mock *llm.MockClient) (*server.Server, *usecase.UseCases) {
	t.Helper()
	registry := agent.NewRegistry(banking.New(dataset.NewSeeded())...)
	uc := usecase.New(memory.New(), agent.New(mock, registry))
	return server.New(uc), uc
}

func startSession(t *testing.T, srv *server.Server) model.Session {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/", nil))
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var session model.Session
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMock())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestChatTurnEndpoint(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Response: &model.ChatResponse{Text: "general_inquiry"}},
		llm.MockStep{Response: &model.ChatResponse{Text: "We are open weekdays nine to five."}},
	)
	srv, _ := newTestServer(t, mock)
	session := startSession(t, srv)

	body, _ := json.Marshal(map[string]string{"text": "What are your operating hours?"})
	req := httptest.NewRequest(http.MethodPost, "/api/session/"+session.ID.String()+"/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		TurnIndex int64  `json:"turn_index"`
		Response  string `json:"response"`
		Flow      string `json:"flow"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.Equal(t, resp.TurnIndex, int64(0))
	gt.Equal(t, resp.Flow, "general_inquiry")
	gt.String(t, resp.Response).Contains("nine to five")
}

func TestChatTurnUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMock())

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/session/no-such-session/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestChatTurnEndedSession(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMock())
	session := startSession(t, srv)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/"+session.ID.String()+"/end", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/session/"+session.ID.String()+"/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusConflict)
}

func TestChatTurnEmptyText(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMock())
	session := startSession(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/api/session/"+session.ID.String()+"/chat", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestListTurnsEndpoint(t *testing.T) {
	mock := llm.NewMock(
		llm.MockStep{Response: &model.ChatResponse{Text: "general_inquiry"}},
		llm.MockStep{Response: &model.ChatResponse{Text: "Hello!"}},
	)
	srv, _ := newTestServer(t, mock)
	session := startSession(t, srv)

	body, _ := json.Marshal(map[string]string{"text": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/session/"+session.ID.String()+"/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/"+session.ID.String()+"/turns", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Turns []*model.Turn `json:"turns"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.A(t, resp.Turns).Length(1)
	gt.Equal(t, resp.Turns[0].Transcript, "hi")
}

func TestConfigRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMock())

	cfg := model.AgentConfig{
		EnvKey:    "dev",
		ToolFlags: model.ToolFlags{"block_card": false},
		RoutingRules: model.RoutingRules{
			"card_issue": {"card", "stolen"},
		},
	}
	body, _ := json.Marshal(cfg)

	req := httptest.NewRequest(http.MethodPut, "/api/config/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config/?env=dev", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var got model.AgentConfig
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	gt.False(t, got.ToolFlags.Enabled("block_card"))
	gt.True(t, got.ToolFlags.Enabled("verify_identity"))
}

func TestSessionList(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewMock())
	startSession(t, srv)
	startSession(t, srv)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Sessions []*model.Session `json:"sessions"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.A(t, resp.Sessions).Length(2)
}

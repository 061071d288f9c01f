package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/auth"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/llm"
	"github.com/refrain2333/link-ai/internal/middleware"
	"github.com/refrain2333/link-ai/internal/ratelimit"
	"github.com/refrain2333/link-ai/internal/repository/memstore"
	"github.com/refrain2333/link-ai/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testSecret = "handler-test-secret-0123456789"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type HandlerSuite struct {
	suite.Suite

	store    *memstore.Store
	router   *gin.Engine
	upstream *httptest.Server
	failing   atomic.Bool
	hanging   atomic.Bool
	truncated atomic.Bool
	notifier  *recordingNotifier
	model     *domain.ModelConfig
}

type recordingNotifier struct {
	errs atomic.Int32
}

func (n *recordingNotifier) LogRegistration(*domain.User) {}
func (n *recordingNotifier) LogError(error, string)       { n.errs.Add(1) }

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

// fakeUpstream speaks the OpenAI chat completions protocol.
func (s *HandlerSuite) fakeUpstream(w http.ResponseWriter, r *http.Request) {
	if s.failing.Load() {
		http.Error(w, `{"error":"overloaded"}`, http.StatusBadGateway)
		return
	}
	if s.hanging.Load() {
		<-r.Context().Done()
		return
	}
	var req struct {
		Stream bool `json:"stream"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if !req.Stream {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Hello"}}],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"Hel"}}]}`+"\n\n")
	if s.truncated.Load() {
		return
	}
	fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"lo"}}]}`+"\n\n")
	fmt.Fprint(w, `data: {"choices":[],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`+"\n\n")
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.failing.Store(false)
	s.hanging.Store(false)
	s.truncated.Store(false)
	s.notifier = &recordingNotifier{}
	s.upstream = httptest.NewServer(http.HandlerFunc(s.fakeUpstream))

	s.store = memstore.New()
	models := service.NewModelService(s.store)
	authSvc := service.NewAuthService(s.store, auth.NewTokenIssuer(testSecret, time.Hour), decimal.NewFromInt(100), s.notifier)
	pipeline := service.NewChatPipeline(s.store, models, llm.NewRegistry(s.upstream.Client()), service.PipelineConfig{
		HistoryWindow:   10,
		Temperature:     0.7,
		MaxTokens:       1024,
		UpstreamTimeout: 5 * time.Second,
	}, s.notifier)

	var err error
	s.model, err = s.store.CreateModelConfig(context.Background(), domain.ModelConfig{
		Name:        "gpt-test",
		DisplayName: "GPT Test",
		Provider:    domain.ProviderOpenAI,
		BaseURL:     s.upstream.URL,
		APIKey:      "sk-secret",
		Enabled:     true,
	})
	s.Require().NoError(err)

	h := New(Deps{
		AuthService:  authSvc,
		ChatService:  service.NewChatService(s.store, models),
		ModelService: models,
		Pipeline:     pipeline,
		Notifier:     s.notifier,
		AuthLimiter:  ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 5, time.Hour),
		ChatLimiter:  ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 100, time.Hour),
	})
	s.router = gin.New()
	s.router.Use(middleware.RequestID(), middleware.Recover(nil))
	h.Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.upstream.Close()
}

func (s *HandlerSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) envelope(rec *httptest.ResponseRecorder, into any) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if into != nil {
		s.Require().NoError(json.Unmarshal(env.Data, into))
	}
	return env
}

func (s *HandlerSuite) register(email string) string {
	rec := s.request(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "secret1"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var res service.AuthResult
	s.envelope(rec, &res)
	return res.Token
}

// sseFrames splits an event-stream body into its data payloads.
func sseFrames(body string) []string {
	var frames []string
	for _, block := range strings.Split(body, "\n\n") {
		if payload, ok := strings.CutPrefix(block, "data: "); ok {
			frames = append(frames, payload)
		}
	}
	return frames
}

func (s *HandlerSuite) TestHealth() {
	rec := s.request(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	env := s.envelope(rec, nil)
	s.Equal(200, env.Code)
	s.Equal("success", env.Message)
}

func (s *HandlerSuite) TestRegisterLoginProfile() {
	s.register("a@x.com")

	rec := s.request(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var res service.AuthResult
	s.envelope(rec, &res)
	s.NotEmpty(res.Token)

	rec = s.request(http.MethodGet, "/user/profile", res.Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var user map[string]any
	s.envelope(rec, &user)
	s.Equal("a@x.com", user["email"])
	s.NotContains(user, "passwordHash")
	s.NotContains(rec.Body.String(), "$2a$")
}

func (s *HandlerSuite) TestErrorEnvelope() {
	rec := s.request(http.MethodPost, "/auth/register", "", gin.H{"password": "secret1"})
	s.Equal(http.StatusBadRequest, rec.Code)
	env := s.envelope(rec, nil)
	s.Equal(http.StatusBadRequest, env.Code)
	s.Equal("email is required", env.Message)
	s.Equal("null", string(env.Data))

	s.register("a@x.com")
	rec = s.request(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "wrong12"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	env = s.envelope(rec, nil)
	s.Equal(http.StatusUnauthorized, env.Code)
	s.Equal("invalid email or password", env.Message)

	rec = s.request(http.MethodGet, "/chats", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodGet, "/chats/abc", s.register("b@x.com"), nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestStreamingWireFormat() {
	token := s.register("a@x.com")

	rec := s.request(http.MethodPost, "/chat/message", token, gin.H{"content": "Hi there"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/event-stream", rec.Header().Get("Content-Type"))

	frames := sseFrames(rec.Body.String())
	s.Require().Len(frames, 4, rec.Body.String())
	s.JSONEq(`{"type":"content","content":"Hel"}`, frames[0])
	s.JSONEq(`{"type":"content","content":"lo"}`, frames[1])
	s.Equal("[DONE]", frames[3])

	var meta struct {
		Type string            `json:"type"`
		Data domain.AIResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal([]byte(frames[2]), &meta))
	s.Equal("meta", meta.Type)
	s.Equal("Hello", meta.Data.Content)
	s.Equal("gpt-test", meta.Data.Model)
	s.Equal(domain.Usage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}, meta.Data.Usage)
	s.NotZero(meta.Data.ChatID)
	s.NotZero(meta.Data.MessageID)

	rec = s.request(http.MethodGet, fmt.Sprintf("/chats/%d", meta.Data.ChatID), token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var chat domain.ChatWithMessages
	s.envelope(rec, &chat)
	s.Equal("Hi there", chat.Title)
	s.Len(chat.Messages, 2)
}

func (s *HandlerSuite) TestNonStreamingMatchesStreaming() {
	token := s.register("a@x.com")

	rec := s.request(http.MethodPost, "/chat/message", token, gin.H{"content": "Hi", "stream": false})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "application/json")
	var resp domain.AIResponse
	s.envelope(rec, &resp)
	s.Equal("Hello", resp.Content)
	s.Equal(6, resp.Usage.TotalTokens)
}

func (s *HandlerSuite) TestStreamingUpstreamFailureBeforeOutput() {
	token := s.register("a@x.com")
	s.failing.Store(true)

	rec := s.request(http.MethodPost, "/chat/message", token, gin.H{"content": "Hi"})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "application/json")
	env := s.envelope(rec, nil)
	s.Equal(http.StatusServiceUnavailable, env.Code)
	s.Contains(env.Message, "502")
	s.Equal(int32(1), s.notifier.errs.Load())

	rec = s.request(http.MethodGet, "/user/stats", token, nil)
	var stats domain.UserStats
	s.envelope(rec, &stats)
	s.Equal(int64(0), stats.MessageCount)
}

func (s *HandlerSuite) TestStreamingTruncatedAfterOutput() {
	token := s.register("a@x.com")
	s.truncated.Store(true)

	rec := s.request(http.MethodPost, "/chat/message", token, gin.H{"content": "Hi"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/event-stream", rec.Header().Get("Content-Type"))
	frames := sseFrames(rec.Body.String())
	s.Require().Len(frames, 2, rec.Body.String())
	s.JSONEq(`{"type":"content","content":"Hel"}`, frames[0])

	var ev struct {
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	s.Require().NoError(json.Unmarshal([]byte(frames[1]), &ev))
	s.Equal("error", ev.Type)
	s.Equal(http.StatusServiceUnavailable, ev.Code)
	s.NotContains(rec.Body.String(), "[DONE]")

	rec = s.request(http.MethodGet, "/user/stats", token, nil)
	var stats domain.UserStats
	s.envelope(rec, &stats)
	s.Equal(int64(0), stats.MessageCount)
	s.Equal("100", stats.Credits.String())
}

func (s *HandlerSuite) TestClientDisconnectIsNotAServerError() {
	token := s.register("a@x.com")
	s.hanging.Store(true)

	for _, stream := range []bool{false, true} {
		body, err := json.Marshal(gin.H{"content": "Hi", "stream": stream})
		s.Require().NoError(err)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		req := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body)).WithContext(ctx)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		cancel()

		s.Equal(statusClientClosedRequest, rec.Code, "stream=%v", stream)
		s.Empty(rec.Body.String())
	}
	s.Equal(int32(0), s.notifier.errs.Load())

	rec := s.request(http.MethodGet, "/user/stats", token, nil)
	var stats domain.UserStats
	s.envelope(rec, &stats)
	s.Equal(int64(0), stats.MessageCount)
}

func (s *HandlerSuite) TestValidationBeforeStreamUsesEnvelope() {
	token := s.register("a@x.com")

	rec := s.request(http.MethodPost, "/chat/message", token, gin.H{"content": "   "})
	s.Equal(http.StatusBadRequest, rec.Code)
	env := s.envelope(rec, nil)
	s.Equal("content must not be empty", env.Message)

	rec = s.request(http.MethodPost, "/chat/message", token, gin.H{"content": "hi", "chatId": 999})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestChatCRUD() {
	token := s.register("a@x.com")
	other := s.register("b@x.com")

	rec := s.request(http.MethodPost, "/chats", token, gin.H{"title": "Plans"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var chat domain.Chat
	s.envelope(rec, &chat)
	path := fmt.Sprintf("/chat/%d", chat.ID)

	rec = s.request(http.MethodPatch, path+"/title", token, gin.H{"title": "Renamed"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.envelope(rec, &chat)
	s.Equal("Renamed", chat.Title)

	rec = s.request(http.MethodPatch, path+"/model", token, gin.H{"modelId": s.model.ID})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPatch, path+"/title", other, gin.H{"title": "Mine now"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodGet, "/chats?page=1&pageSize=10", token, nil)
	var page service.ChatPage
	s.envelope(rec, &page)
	s.Equal(int64(1), page.Total)

	rec = s.request(http.MethodDelete, path+"/messages", token, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodDelete, fmt.Sprintf("/chats/%d", chat.ID), other, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	rec = s.request(http.MethodDelete, fmt.Sprintf("/chats/%d", chat.ID), token, nil)
	s.Equal(http.StatusOK, rec.Code)
	rec = s.request(http.MethodGet, fmt.Sprintf("/chats/%d", chat.ID), token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestPublicModelsHideCredentials() {
	token := s.register("a@x.com")

	rec := s.request(http.MethodGet, "/chat/models", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), s.upstream.URL)
	s.NotContains(rec.Body.String(), "sk-secret")
	var models []map[string]any
	s.envelope(rec, &models)
	s.Require().Len(models, 1)
	s.Equal("gpt-test", models[0]["name"])
}

func (s *HandlerSuite) TestAdminModels() {
	token := s.register("a@x.com")
	rec := s.request(http.MethodGet, "/admin/models", token, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	hash, err := auth.HashPassword("secret1")
	s.Require().NoError(err)
	_, err = s.store.CreateUser(context.Background(), domain.NewUser{
		Email: "root@x.com", PasswordHash: hash, Name: "root", Role: domain.RoleAdmin,
	})
	s.Require().NoError(err)
	rec = s.request(http.MethodPost, "/auth/login", "", gin.H{"email": "root@x.com", "password": "secret1"})
	var res service.AuthResult
	s.envelope(rec, &res)

	rec = s.request(http.MethodPost, "/admin/models", res.Token, gin.H{
		"name": "gemini-2.5-flash", "provider": "gemini", "creditsPer1k": "0.25", "sortOrder": 5,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var created map[string]any
	s.envelope(rec, &created)
	s.Equal(false, created["hasApiKey"])
	s.Equal(true, created["enabled"])

	id := int64(created["id"].(float64))
	rec = s.request(http.MethodPatch, fmt.Sprintf("/admin/models/%d", id), res.Token, gin.H{"enabled": false})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/chat/models", token, nil)
	var models []map[string]any
	s.envelope(rec, &models)
	s.Len(models, 1)

	rec = s.request(http.MethodGet, "/admin/models", res.Token, nil)
	var all []map[string]any
	s.envelope(rec, &all)
	s.Len(all, 2)
	s.Equal(true, all[0]["hasApiKey"])
}

func (s *HandlerSuite) TestAuthRateLimit() {
	for i := 0; i < 5; i++ {
		rec := s.request(http.MethodPost, "/auth/login", "", gin.H{"email": "x@x.com", "password": "nope123"})
		s.Equal(http.StatusUnauthorized, rec.Code)
	}
	rec := s.request(http.MethodPost, "/auth/login", "", gin.H{"email": "x@x.com", "password": "nope123"})
	s.Equal(http.StatusTooManyRequests, rec.Code)
	env := s.envelope(rec, nil)
	s.Equal(http.StatusTooManyRequests, env.Code)
}

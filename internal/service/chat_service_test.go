package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/safety"
	"github.com/Sameerk99/mental-health-hub/internal/service"
	"github.com/Sameerk99/mental-health-hub/pkg/llm"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// fakeSessionContextRepo 是 SessionContextRepository 的内存实现。
type fakeSessionContextRepo struct {
	assessments     map[uint]*model.SessionAssessment
	recommendations map[uint][]string
}

func newFakeSessionContextRepo() *fakeSessionContextRepo {
	return &fakeSessionContextRepo{
		assessments:     make(map[uint]*model.SessionAssessment),
		recommendations: make(map[uint][]string),
	}
}

func (f *fakeSessionContextRepo) SaveAssessment(_ context.Context, userID uint, sa model.SessionAssessment) error {
	f.assessments[userID] = &sa
	return nil
}

func (f *fakeSessionContextRepo) GetAssessment(_ context.Context, userID uint) (*model.SessionAssessment, error) {
	return f.assessments[userID], nil
}

func (f *fakeSessionContextRepo) SaveRecommendations(_ context.Context, userID uint, recommendations []string) error {
	f.recommendations[userID] = recommendations
	return nil
}

func (f *fakeSessionContextRepo) GetRecommendations(_ context.Context, userID uint) ([]string, error) {
	return f.recommendations[userID], nil
}

func (f *fakeSessionContextRepo) Clear(_ context.Context, userID uint) error {
	delete(f.assessments, userID)
	delete(f.recommendations, userID)
	return nil
}

// fakeLLMClient 记录调用并返回预设的回复或错误。
type fakeLLMClient struct {
	reply        string
	err          error
	calls        int
	lastMessages []llm.Message
}

func (f *fakeLLMClient) ChatCompletion(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	f.calls++
	f.lastMessages = messages
	return f.reply, f.err
}

var testRecommendations = []string{
	"Therapist Referral: Weekly CBT sessions for 8-12 weeks (45 mins/session)",
	"Medication Options: Discuss SSRI antidepressants with psychiatrist",
	"Safety Plan: Create crisis plan including emergency contacts",
	"Workplace Support: Request occupational health assessment",
	"Monitoring: Weekly PHQ-9 tracking with automatic alerts to designated contact",
}

func validChatRequest() *model.ChatRequest {
	return &model.ChatRequest{
		Message: "How do I get started with the therapy referral?",
		Context: &model.ChatContext{
			UserID:          "7",
			Type:            "phq9",
			Recommendations: testRecommendations,
		},
	}
}

func chatFixture() (*fakeSessionContextRepo, *fakeLLMClient, service.ChatService, *model.User) {
	repo := newFakeSessionContextRepo()
	client := &fakeLLMClient{reply: "  Start by calling your GP this week.  "}
	svc := service.NewChatService(repo, client)
	user := &model.User{ID: 7, Username: "sam"}
	repo.assessments[user.ID] = &model.SessionAssessment{Type: "phq9", Score: 12}
	return repo, client, svc, user
}

func TestChatRejectsMissingUser(t *testing.T) {
	_, client, svc, _ := chatFixture()

	_, err := svc.Handle(context.Background(), nil, validChatRequest())
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.Zero(t, client.calls)
}

func TestChatRejectsMissingAssessment(t *testing.T) {
	repo, client, svc, user := chatFixture()
	delete(repo.assessments, user.ID)

	_, err := svc.Handle(context.Background(), user, validChatRequest())
	assert.ErrorIs(t, err, service.ErrNoAssessment)
	assert.Zero(t, client.calls)
}

func TestChatRejectsMalformedRequest(t *testing.T) {
	_, client, svc, user := chatFixture()

	noMessage := validChatRequest()
	noMessage.Message = ""
	_, err := svc.Handle(context.Background(), user, noMessage)
	assert.ErrorIs(t, err, service.ErrChatBadRequest)

	noContext := validChatRequest()
	noContext.Context = nil
	_, err = svc.Handle(context.Background(), user, noContext)
	assert.ErrorIs(t, err, service.ErrChatBadRequest)

	assert.Zero(t, client.calls)
}

func TestChatRejectsSessionMismatch(t *testing.T) {
	_, client, svc, user := chatFixture()

	wrongType := validChatRequest()
	wrongType.Context.Type = "gad7"
	_, err := svc.Handle(context.Background(), user, wrongType)
	assert.ErrorIs(t, err, service.ErrSessionMismatch)

	wrongUser := validChatRequest()
	wrongUser.Context.UserID = "8"
	_, err = svc.Handle(context.Background(), user, wrongUser)
	assert.ErrorIs(t, err, service.ErrSessionMismatch)

	// 一致性校验失败时不得触发外部调用
	assert.Zero(t, client.calls)
}

func TestChatSafetyGateShortCircuits(t *testing.T) {
	_, client, svc, user := chatFixture()

	req := validChatRequest()
	req.Message = "some days I just want to KILL MYSELF"

	reply, err := svc.Handle(context.Background(), user, req)
	require.NoError(t, err)
	assert.Equal(t, safety.CrisisMessage, reply)
	// 命中危机词后不得调用外部模型
	assert.Zero(t, client.calls)
}

func TestChatBuildsGroundedPrompt(t *testing.T) {
	_, client, svc, user := chatFixture()

	req := validChatRequest()
	req.History = []model.ChatMessage{
		{Role: "user", Content: "I finished the PHQ-9 today."},
		{Role: "assistant", Content: "Thanks for sharing that."},
	}

	reply, err := svc.Handle(context.Background(), user, req)
	require.NoError(t, err)
	assert.Equal(t, "Start by calling your GP this week.", reply)

	require.Equal(t, 1, client.calls)
	require.Len(t, client.lastMessages, 4)

	system := client.lastMessages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "User ID: 7")
	assert.Contains(t, system.Content, "PHQ9 (12/27)")
	// grounding 只取请求回传建议的前 3 条
	assert.Contains(t, system.Content, testRecommendations[2])
	assert.NotContains(t, system.Content, testRecommendations[3])
	assert.Contains(t, system.Content, "Never suggest medications")

	assert.Equal(t, "I finished the PHQ-9 today.", client.lastMessages[1].Content)
	assert.Equal(t, "assistant", client.lastMessages[2].Role)
	assert.Equal(t, req.Message, client.lastMessages[3].Content)
}

func TestChatAcceptsNumericUserID(t *testing.T) {
	_, client, svc, user := chatFixture()

	// user_id 以 JSON 数字形式回传时同样进入一致性校验
	payload := `{
		"message": "How do I get started?",
		"context": {"user_id": 7, "type": "phq9", "recommendations": ["a", "b", "c"]}
	}`
	var req model.ChatRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	_, err := svc.Handle(context.Background(), user, &req)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)

	// 数字形式的错误 user_id 仍然被拒绝
	mismatch := `{
		"message": "How do I get started?",
		"context": {"user_id": 8, "type": "phq9", "recommendations": []}
	}`
	var bad model.ChatRequest
	require.NoError(t, json.Unmarshal([]byte(mismatch), &bad))

	_, err = svc.Handle(context.Background(), user, &bad)
	assert.ErrorIs(t, err, service.ErrSessionMismatch)
}

func TestChatClampsStoredScoreInPrompt(t *testing.T) {
	repo, client, svc, user := chatFixture()
	// 存储的分数越界时，prompt 中按收敛后的值展示
	repo.assessments[user.ID] = &model.SessionAssessment{Type: "phq9", Score: 99}

	_, err := svc.Handle(context.Background(), user, validChatRequest())
	require.NoError(t, err)
	assert.Contains(t, client.lastMessages[0].Content, "PHQ9 (27/27)")
}

func TestChatSurfacesExternalFailures(t *testing.T) {
	cases := []error{llm.ErrConnection, llm.ErrRateLimited, llm.ErrService}

	for _, sentinel := range cases {
		_, client, svc, user := chatFixture()
		client.err = fmt.Errorf("%w: upstream detail", sentinel)

		_, err := svc.Handle(context.Background(), user, validChatRequest())
		assert.True(t, errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
		// 失败不自动重试
		assert.Equal(t, 1, client.calls)
	}
}

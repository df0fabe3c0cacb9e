package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sameerk99/mental-health-hub/internal/assessment"
	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/repository"
	"github.com/Sameerk99/mental-health-hub/internal/safety"
	"github.com/Sameerk99/mental-health-hub/pkg/llm"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
)

// 聊天编排的业务错误。外部模型的失败分类（连接失败/限流/服务错误）
// 由 pkg/llm 的哨兵错误携带，这里原样向上传递。
var (
	// ErrUnauthenticated 表示请求没有绑定认证用户。
	ErrUnauthenticated = errors.New("no authenticated user in session")
	// ErrNoAssessment 表示会话中没有已完成的评估上下文。
	ErrNoAssessment = errors.New("no assessment context in session")
	// ErrChatBadRequest 表示聊天请求缺少 message 或 context。
	ErrChatBadRequest = errors.New("invalid chat request format")
	// ErrSessionMismatch 表示请求声明的上下文与会话中存储的评估不一致。
	ErrSessionMismatch = errors.New("chat context does not match session assessment")
)

// 聊天接口使用固定的采样配置，不受客户端影响。
var (
	chatTemperature = 0.7
	chatTopP        = 0.9
	chatMaxTokens   = 250
)

// ChatService 定义了聊天编排的接口。
// 每个请求独立同步处理，除读取会话上下文外不跨请求共享状态。
type ChatService interface {
	// Handle 校验请求、执行安全拦截、构建 grounded prompt 并调用外部模型。
	// 返回模型回复文本；命中危机词时返回固定的危机资源文本且不调用模型。
	Handle(ctx context.Context, user *model.User, req *model.ChatRequest) (string, error)
}

type chatService struct {
	sessionCtxRepo repository.SessionContextRepository
	llmClient      llm.Client
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(sessionCtxRepo repository.SessionContextRepository, llmClient llm.Client) ChatService {
	return &chatService{
		sessionCtxRepo: sessionCtxRepo,
		llmClient:      llmClient,
	}
}

// Handle 按固定顺序执行每个请求的守卫与编排：
// 前置条件 → 请求形态 → 一致性 → 安全拦截 → prompt 构建 → 外部调用。
func (s *chatService) Handle(ctx context.Context, user *model.User, req *model.ChatRequest) (string, error) {
	// 1. 前置条件：必须有认证用户和已完成的评估上下文
	if user == nil {
		return "", ErrUnauthenticated
	}
	sa, err := s.sessionCtxRepo.GetAssessment(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load session context: %w", err)
	}
	if sa == nil {
		return "", ErrNoAssessment
	}

	// 2. 请求形态：message 与 context 缺一不可
	if req == nil || req.Message == "" || req.Context == nil {
		return "", ErrChatBadRequest
	}

	// 3. 一致性：声明的用户与量表类型必须与会话中存储的评估一致，
	// 防止客户端携带过期或伪造的评估数据发起聊天
	if string(req.Context.UserID) != strconv.FormatUint(uint64(user.ID), 10) ||
		req.Context.Type != sa.Type {
		return "", ErrSessionMismatch
	}

	// 4. 安全拦截：无条件先于模型调用执行，命中即短路
	if safety.Scan(req.Message) {
		log.Infow("聊天安全拦截命中，返回危机资源", "userId", user.ID)
		return safety.CrisisMessage, nil
	}

	// 5. 构建 grounded prompt：一条 system 消息 + 客户端历史 + 新的用户消息
	instrument, err := assessment.ParseInstrument(sa.Type)
	if err != nil {
		return "", fmt.Errorf("corrupt session assessment type: %w", err)
	}
	systemPrompt := buildSystemPrompt(user.ID, instrument, sa.Score, req.Context.Recommendations)

	messages := make([]llm.Message, 0, len(req.History)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, turn := range req.History {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	// 6. 外部调用：固定采样配置，失败不自动重试，直接按分类上抛
	gen := &llm.GenerationParams{
		Temperature: &chatTemperature,
		TopP:        &chatTopP,
		MaxTokens:   &chatMaxTokens,
	}
	reply, err := s.llmClient.ChatCompletion(ctx, messages, gen)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(reply), nil
}

// buildSystemPrompt 生成嵌入评估事实与回复准则的 system 消息。
// 建议文本取自请求回传的推荐上下文的前 3 条（不在服务端重新解析），
// 该列表源自结果页由解析器自己的输出。
func buildSystemPrompt(userID uint, instrument assessment.Instrument, score int, recommendations []string) string {
	score = assessment.ClampScore(instrument, score)
	if len(recommendations) > 3 {
		recommendations = recommendations[:3]
	}

	return fmt.Sprintf(`You are a mental health support assistant. Context:
- User ID: %d
- Assessment: %s (%d/%d)
- Recommendations: %s

Guidelines:
1. Provide practical, non-medical advice
2. Focus on implementing recommendations
3. Use simple language (8th grade level)
4. Keep responses under 150 words
5. Include concrete examples
6. End with encouragement
7. Never suggest medications`,
		userID,
		strings.ToUpper(string(instrument)),
		score,
		instrument.MaxScore(),
		strings.Join(recommendations, ", "),
	)
}

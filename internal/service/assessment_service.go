package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Sameerk99/mental-health-hub/internal/assessment"
	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/repository"
	"github.com/Sameerk99/mental-health-hub/pkg/kafka"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
)

// AssessmentResult 是一次评分/解析的结果视图。
type AssessmentResult struct {
	Type            string   `json:"type"`
	Score           int      `json:"score"`
	MaxScore        int      `json:"maxScore"`
	Severity        string   `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// EventPublisher 发布评估完成事件。生产环境绑定 Kafka 生产者，
// 测试中可替换为记录器。
type EventPublisher func(ctx context.Context, event kafka.AssessmentEvent) error

// AssessmentService 接口定义了量表评估相关的业务操作。
type AssessmentService interface {
	// Submit 对提交的答案评分、解析等级、覆盖会话上下文并持久化评估行。
	Submit(ctx context.Context, userID uint, instrument assessment.Instrument, answers map[string]string) (*AssessmentResult, error)
	// Result 按收敛后的分数解析等级，并把建议列表缓存进会话上下文。
	Result(ctx context.Context, userID uint, instrument assessment.Instrument, score int) (*AssessmentResult, error)
}

// assessmentService 是 AssessmentService 接口的实现。
type assessmentService struct {
	assessmentRepo repository.AssessmentRepository
	sessionCtxRepo repository.SessionContextRepository
	publishEvent   EventPublisher
}

// NewAssessmentService 创建一个新的 AssessmentService 实例。
func NewAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	sessionCtxRepo repository.SessionContextRepository,
	publishEvent EventPublisher,
) AssessmentService {
	return &assessmentService{
		assessmentRepo: assessmentRepo,
		sessionCtxRepo: sessionCtxRepo,
		publishEvent:   publishEvent,
	}
}

// Submit 处理一次量表提交。
// 评分是纯函数，缺失/非法答案计 0 分，提交本身不会因答案内容失败。
func (s *assessmentService) Submit(ctx context.Context, userID uint, instrument assessment.Instrument, answers map[string]string) (*AssessmentResult, error) {
	score := assessment.Score(instrument, answers)
	tier := assessment.Resolve(instrument, score)

	// 1. 覆盖会话评估上下文，供后续聊天 grounding 校验使用
	sa := model.SessionAssessment{
		Type:      string(instrument),
		Score:     score,
		Timestamp: time.Now(),
	}
	if err := s.sessionCtxRepo.SaveAssessment(ctx, userID, sa); err != nil {
		return nil, err
	}

	// 2. 持久化评估行。推荐等级以结构化 JSON 存储，
	// 持久化形态是外部存储的事，核心流程从不回读。
	tierJSON, err := json.Marshal(tier)
	if err != nil {
		return nil, err
	}
	record := &model.Assessment{
		UserID:         userID,
		AssessmentType: string(instrument),
		Score:          score,
		Recommendation: string(tierJSON),
	}
	if err := s.assessmentRepo.Create(record); err != nil {
		return nil, err
	}

	// 3. 发布评估完成事件，失败只记录，不影响请求
	if s.publishEvent != nil {
		event := kafka.AssessmentEvent{
			UserID:     userID,
			Instrument: string(instrument),
			Score:      score,
			Severity:   tier.Severity,
			Timestamp:  sa.Timestamp,
		}
		if err := s.publishEvent(ctx, event); err != nil {
			log.Errorf("[AssessmentService] 发布评估事件失败, userID: %d, error: %v", userID, err)
		}
	}

	return &AssessmentResult{
		Type:            string(instrument),
		Score:           score,
		MaxScore:        instrument.MaxScore(),
		Severity:        tier.Severity,
		Recommendations: tier.Recommendations,
	}, nil
}

// Result 解析结果视图。分数先收敛到合法范围，越界值按边界处理；
// 解析出的建议列表缓存进会话上下文，聊天流程之后会携带它。
func (s *assessmentService) Result(ctx context.Context, userID uint, instrument assessment.Instrument, score int) (*AssessmentResult, error) {
	score = assessment.ClampScore(instrument, score)
	tier := assessment.Resolve(instrument, score)

	if err := s.sessionCtxRepo.SaveRecommendations(ctx, userID, tier.Recommendations); err != nil {
		return nil, err
	}

	return &AssessmentResult{
		Type:            string(instrument),
		Score:           score,
		MaxScore:        instrument.MaxScore(),
		Severity:        tier.Severity,
		Recommendations: tier.Recommendations,
	}, nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/go-redis/redis/v8"
)

// SessionContextRepository 定义了会话评估上下文的存取操作。
// 上下文归属于当前认证会话，随会话过期而消失，不是持久化的系统记录。
type SessionContextRepository interface {
	// SaveAssessment 覆盖写入会话中最近一次完成的评估上下文。
	SaveAssessment(ctx context.Context, userID uint, sa model.SessionAssessment) error
	// GetAssessment 读取会话中的评估上下文，不存在时返回 nil。
	GetAssessment(ctx context.Context, userID uint) (*model.SessionAssessment, error)
	// SaveRecommendations 缓存结果页解析出的建议列表，供聊天 grounding 使用。
	SaveRecommendations(ctx context.Context, userID uint, recommendations []string) error
	// GetRecommendations 读取缓存的建议列表，不存在时返回 nil。
	GetRecommendations(ctx context.Context, userID uint) ([]string, error)
	// Clear 销毁会话上下文（登出时调用）。
	Clear(ctx context.Context, userID uint) error
}

type redisSessionContextRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewSessionContextRepository 创建一个新的 SessionContextRepository 实例。
// ttl 即会话生存期，过期后上下文自动消失。
func NewSessionContextRepository(redisClient *redis.Client, ttl time.Duration) SessionContextRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisSessionContextRepository{redisClient: redisClient, ttl: ttl}
}

func assessmentKey(userID uint) string {
	return fmt.Sprintf("session:%d:assessment", userID)
}

func recommendationsKey(userID uint) string {
	return fmt.Sprintf("session:%d:recommendations", userID)
}

// SaveAssessment 覆盖写入评估上下文。同一会话至多保留一份，新的完成会替换旧的。
func (r *redisSessionContextRepository) SaveAssessment(ctx context.Context, userID uint, sa model.SessionAssessment) error {
	jsonData, err := json.Marshal(sa)
	if err != nil {
		return fmt.Errorf("failed to marshal session assessment: %w", err)
	}
	if err := r.redisClient.Set(ctx, assessmentKey(userID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session assessment: %w", err)
	}
	return nil
}

// GetAssessment 读取评估上下文，键不存在时返回 (nil, nil)。
func (r *redisSessionContextRepository) GetAssessment(ctx context.Context, userID uint) (*model.SessionAssessment, error) {
	jsonData, err := r.redisClient.Get(ctx, assessmentKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session assessment: %w", err)
	}
	var sa model.SessionAssessment
	if err := json.Unmarshal([]byte(jsonData), &sa); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session assessment: %w", err)
	}
	return &sa, nil
}

// SaveRecommendations 缓存建议列表，与评估上下文使用相同的生存期。
func (r *redisSessionContextRepository) SaveRecommendations(ctx context.Context, userID uint, recommendations []string) error {
	jsonData, err := json.Marshal(recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if err := r.redisClient.Set(ctx, recommendationsKey(userID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations: %w", err)
	}
	return nil
}

// GetRecommendations 读取缓存的建议列表，键不存在时返回 (nil, nil)。
func (r *redisSessionContextRepository) GetRecommendations(ctx context.Context, userID uint) ([]string, error) {
	jsonData, err := r.redisClient.Get(ctx, recommendationsKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	var recommendations []string
	if err := json.Unmarshal([]byte(jsonData), &recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	return recommendations, nil
}

// Clear 删除会话上下文的所有键。
func (r *redisSessionContextRepository) Clear(ctx context.Context, userID uint) error {
	return r.redisClient.Del(ctx, assessmentKey(userID), recommendationsKey(userID)).Err()
}

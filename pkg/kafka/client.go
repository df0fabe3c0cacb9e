// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Sameerk99/mental-health-hub/internal/config"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// AssessmentEvent 是每次完成量表评估后发布的事件，
// 供下游分析/归档消费。核心流程不读取它。
type AssessmentEvent struct {
	EventID    string    `json:"eventId"`
	UserID     uint      `json:"userId"`
	Instrument string    `json:"instrument"`
	Score      int       `json:"score"`
	Severity   string    `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceAssessmentEvent 发布一条评估完成事件。
// 事件 ID 在此处生成，调用方无需设置。
func ProduceAssessmentEvent(ctx context.Context, event AssessmentEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return producer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.EventID),
			Value: eventBytes,
		},
	)
}

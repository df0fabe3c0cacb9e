package model

import (
	"encoding/json"
	"time"
)

// ChatMessage 代表一条角色消息，"role" 取值为 system、user 或 assistant。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FlexibleID 是可以从 JSON 字符串或数字反序列化的标识符。
// 客户端回传的 user_id 两种形式都出现过，统一收敛为字符串参与比较。
type FlexibleID string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// SessionAssessment 代表存储在 Redis 中的会话评估上下文。
// 每次完成评估时整体覆盖，一个会话同一时刻至多存在一份。
type SessionAssessment struct {
	Type      string    `json:"type"` // "phq9" 或 "gad7"
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatContext 是聊天请求中客户端回传的上下文块。
// user_id 与 type 必须与会话中存储的评估上下文一致。
type ChatContext struct {
	UserID          FlexibleID `json:"user_id"`
	Type            string     `json:"type"`
	Recommendations []string   `json:"recommendations"`
}

// ChatRequest 定义了聊天接口的请求体结构。
type ChatRequest struct {
	Message string        `json:"message"`
	Context *ChatContext  `json:"context"`
	History []ChatMessage `json:"history"`
}

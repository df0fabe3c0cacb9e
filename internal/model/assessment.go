package model

import "time"

// Assessment 定义了 assessments 表的 ORM 模型。
// 每次完成量表评估后写入一行，recommendation 字段存储
// 序列化后的推荐等级（严重程度 + 建议列表）。
// 核心流程只写不读，评分与聊天依据的是会话上下文。
type Assessment struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"userId"`
	AssessmentType string    `gorm:"type:varchar(16);not null" json:"assessmentType"` // "phq9" 或 "gad7"
	Score          int       `gorm:"not null" json:"score"`
	Recommendation string    `gorm:"type:text" json:"recommendation"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Assessment) TableName() string {
	return "assessments"
}

// MoodEntry 定义了 mood_entries 表的 ORM 模型。
// mood 的取值范围为 1-5，由 service 层校验。
type MoodEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Mood      int       `gorm:"type:tinyint;not null" json:"mood"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (MoodEntry) TableName() string {
	return "mood_entries"
}

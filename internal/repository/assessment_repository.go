package repository

import (
	"github.com/Sameerk99/mental-health-hub/internal/model"
	"gorm.io/gorm"
)

// AssessmentRepository 接口定义了评估记录的持久化操作。
// 它是外部持久化协作方的写入口：核心流程只写入评估行，
// 评分与聊天 grounding 从不回读这些数据。
type AssessmentRepository interface {
	Create(assessment *model.Assessment) error
}

// assessmentRepository 是 AssessmentRepository 接口的 GORM 实现。
type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository 创建一个新的 AssessmentRepository 实例。
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// Create 在数据库中写入一条评估记录。
func (r *assessmentRepository) Create(assessment *model.Assessment) error {
	return r.db.Create(assessment).Error
}

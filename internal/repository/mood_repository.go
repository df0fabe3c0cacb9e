package repository

import (
	"github.com/Sameerk99/mental-health-hub/internal/model"
	"gorm.io/gorm"
)

// MoodRepository 接口定义了心情记录的持久化操作。
type MoodRepository interface {
	Create(entry *model.MoodEntry) error
	FindByUserID(userID uint) ([]model.MoodEntry, error)
	DeleteByIDAndUserID(entryID, userID uint) error
}

// moodRepository 是 MoodRepository 接口的 GORM 实现。
type moodRepository struct {
	db *gorm.DB
}

// NewMoodRepository 创建一个新的 MoodRepository 实例。
func NewMoodRepository(db *gorm.DB) MoodRepository {
	return &moodRepository{db: db}
}

// Create 写入一条心情记录。
func (r *moodRepository) Create(entry *model.MoodEntry) error {
	return r.db.Create(entry).Error
}

// FindByUserID 按时间倒序返回指定用户的所有心情记录。
func (r *moodRepository) FindByUserID(userID uint) ([]model.MoodEntry, error) {
	var entries []model.MoodEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// DeleteByIDAndUserID 删除指定用户名下的一条心情记录。
// 条件中带 user_id，用户无法删除他人的记录。
func (r *moodRepository) DeleteByIDAndUserID(entryID, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&model.MoodEntry{}).Error
}

package service

import (
	"errors"

	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/repository"
)

// ErrInvalidMood 表示心情值不在 1-5 范围内。
var ErrInvalidMood = errors.New("mood must be between 1 and 5")

// MoodEntryView 是心情记录的响应视图。
type MoodEntryView struct {
	ID        uint            `json:"id"`
	Mood      int             `json:"mood"`
	Notes     string          `json:"notes"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

// MoodHistory 是心情历史的响应视图：倒序的记录列表加上
// 按时间正序的图表序列。
type MoodHistory struct {
	Entries []MoodEntryView `json:"entries"`
	Dates   []string        `json:"dates"`
	Moods   []int           `json:"moods"`
}

// MoodService 接口定义了心情追踪相关的业务操作。
type MoodService interface {
	Record(userID uint, mood int, notes string) (*model.MoodEntry, error)
	History(userID uint) (*MoodHistory, error)
	Delete(entryID, userID uint) error
}

// moodService 是 MoodService 接口的实现。
type moodService struct {
	moodRepo repository.MoodRepository
}

// NewMoodService 创建一个新的 MoodService 实例。
func NewMoodService(moodRepo repository.MoodRepository) MoodService {
	return &moodService{moodRepo: moodRepo}
}

// Record 写入一条心情记录，mood 必须在 1-5 之间。
func (s *moodService) Record(userID uint, mood int, notes string) (*model.MoodEntry, error) {
	if mood < 1 || mood > 5 {
		return nil, ErrInvalidMood
	}
	entry := &model.MoodEntry{
		UserID: userID,
		Mood:   mood,
		Notes:  notes,
	}
	if err := s.moodRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History 返回心情记录列表（最新在前）和图表序列（按时间正序）。
func (s *moodService) History(userID uint) (*MoodHistory, error) {
	entries, err := s.moodRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	history := &MoodHistory{
		Entries: make([]MoodEntryView, 0, len(entries)),
		Dates:   make([]string, 0, len(entries)),
		Moods:   make([]int, 0, len(entries)),
	}
	for _, e := range entries {
		history.Entries = append(history.Entries, MoodEntryView{
			ID:        e.ID,
			Mood:      e.Mood,
			Notes:     e.Notes,
			CreatedAt: model.LocalTime(e.CreatedAt),
		})
	}
	// entries 按时间倒序，图表序列反向遍历得到正序
	for i := len(entries) - 1; i >= 0; i-- {
		history.Dates = append(history.Dates, entries[i].CreatedAt.Format("2006-01-02"))
		history.Moods = append(history.Moods, entries[i].Mood)
	}
	return history, nil
}

// Delete 删除当前用户的一条心情记录。
func (s *moodService) Delete(entryID, userID uint) error {
	return s.moodRepo.DeleteByIDAndUserID(entryID, userID)
}

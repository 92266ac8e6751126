package repository

import (
	"aware_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type MaterialRepository struct {
	DB *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) Create(material *model.CourseMaterial) error {
	return r.DB.Create(material).Error
}

func (r *MaterialRepository) FindByID(id string) (*model.CourseMaterial, error) {
	var m model.CourseMaterial
	err := r.DB.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepository) ListByCourse(courseID string) ([]model.CourseMaterial, error) {
	var materials []model.CourseMaterial
	err := r.DB.Where("course_id = ?", courseID).
		Order("created_at desc").Find(&materials).Error
	return materials, err
}

// ListByTopic 个性化出题时按主题取有文本内容的资料
func (r *MaterialRepository) ListByTopic(courseID, topic string) ([]model.CourseMaterial, error) {
	var materials []model.CourseMaterial
	err := r.DB.Where("course_id = ? AND topic = ? AND text_content <> ''", courseID, topic).
		Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) Delete(id string) error {
	return r.DB.Delete(&model.CourseMaterial{}, "id = ?", id).Error
}

func (r *MaterialRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseMaterial{}).
		Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

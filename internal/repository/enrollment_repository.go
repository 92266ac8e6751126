package repository

import (
	"aware_backend/internal/model"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Upsert 注册即更新：重复选课不会产生第二条记录，只刷新等级
func (r *EnrollmentRepository) Upsert(enrollment *model.Enrollment) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"proficiency_level", "updated_at"}),
	}).Create(enrollment).Error
}

// Find 未选课返回 (nil, nil)
func (r *EnrollmentRepository) Find(studentID uint, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Delete(studentID uint, courseID string) error {
	return r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&model.Enrollment{}).Error
}

// SetProficiency 分类器调用方使用：只更新等级与 updated_at，不碰 manual_override
func (r *EnrollmentRepository) SetProficiency(studentID uint, courseID string, level string) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("proficiency_level", level).Error
}

// SetProficiencyManual 教授手动设置等级并置位 manual_override
func (r *EnrollmentRepository) SetProficiencyManual(studentID uint, courseID string, level string) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Updates(map[string]interface{}{
			"proficiency_level": level,
			"manual_override":   true,
		}).Error
}

func (r *EnrollmentRepository) ClearManualOverride(studentID uint, courseID string) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("manual_override", false).Error
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("student_id = ?", studentID).
		Order("created_at desc").Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ListByCourse(courseID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Preload("Student").Where("course_id = ?", courseID).
		Find(&enrollments).Error
	return enrollments, err
}

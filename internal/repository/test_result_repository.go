package repository

import (
	"aware_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type TestResultRepository struct {
	DB *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{DB: db}
}

// Insert 只追加，结果一旦写入不再修改
func (r *TestResultRepository) Insert(result *model.TestResult) error {
	return r.DB.Create(result).Error
}

// FindLastN 返回某学生某课程最近 n 条结果，最新在前
func (r *TestResultRepository) FindLastN(studentID uint, courseID string, n int) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("created_at desc").Limit(n).Find(&results).Error
	return results, err
}

func (r *TestResultRepository) ListByStudentCourse(studentID uint, courseID string) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("created_at desc").Find(&results).Error
	return results, err
}

// FindByID 带学生校验，学生只能看自己的提交
func (r *TestResultRepository) FindByID(id string, studentID uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.DB.Where("id = ? AND student_id = ?", id, studentID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *TestResultRepository) ListByCourse(courseID string) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.Where("course_id = ?", courseID).
		Order("created_at desc").Find(&results).Error
	return results, err
}

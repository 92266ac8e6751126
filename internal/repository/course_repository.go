package repository

import (
	"aware_backend/internal/model"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const planCacheTTL = 5 * time.Minute

type CourseRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewCourseRepository(db *gorm.DB, rdb *redis.Client) *CourseRepository {
	return &CourseRepository{DB: db, RDB: rdb}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByProfessor(professorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("professor_id = ?", professorID).
		Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Professor").Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) UpdatePlan(courseID string, plan json.RawMessage) error {
	err := r.DB.Model(&model.Course{}).Where("id = ?", courseID).
		Update("plan", plan).Error
	if err == nil && r.RDB != nil {
		r.RDB.Del(context.Background(), planCacheKey(courseID))
	}
	return err
}

func (r *CourseRepository) UpdateObjectives(courseID string, objectives string) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", courseID).
		Update("objectives", objectives).Error
}

// GetPlan 课程大纲走 Redis 短缓存，出题和选题路径读得很频繁
func (r *CourseRepository) GetPlan(ctx context.Context, courseID string) (json.RawMessage, error) {
	if r.RDB != nil {
		if cached, err := r.RDB.Get(ctx, planCacheKey(courseID)).Bytes(); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	course, err := r.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || len(course.Plan) == 0 {
		return nil, nil
	}

	if r.RDB != nil {
		r.RDB.Set(ctx, planCacheKey(courseID), []byte(course.Plan), planCacheTTL)
	}
	return course.Plan, nil
}

func planCacheKey(courseID string) string {
	return "course:plan:" + courseID
}

// ReplaceRoster 整体替换点名册：重复上传覆盖旧名单
func (r *CourseRepository) ReplaceRoster(courseID string, entries []model.RosterEntry) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("course_id = ?", courseID).
			Delete(&model.RosterEntry{}).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].CourseID = courseID
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CourseRepository) ListRoster(courseID string) ([]model.RosterEntry, error) {
	var entries []model.RosterEntry
	err := r.DB.Where("course_id = ?", courseID).
		Order("student_name asc").Find(&entries).Error
	return entries, err
}

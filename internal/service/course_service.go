package service

import (
	"aware_backend/internal/model"
	"aware_backend/internal/proficiency"
	"aware_backend/internal/repository"
	"aware_backend/internal/util"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type CourseService struct {
	Courses     *repository.CourseRepository
	Enrollments *repository.EnrollmentRepository
}

func NewCourseService(courses *repository.CourseRepository, enrollments *repository.EnrollmentRepository) *CourseService {
	return &CourseService{Courses: courses, Enrollments: enrollments}
}

type CreateCourseReq struct {
	CourseName         string `json:"course_name" binding:"required"`
	DefaultProficiency string `json:"default_proficiency"`
}

func (s *CourseService) CreateCourse(professorID uint, req CreateCourseReq) (*model.Course, error) {
	levelStr := req.DefaultProficiency
	if levelStr == "" {
		levelStr = proficiency.Intermediate.String()
	}
	level, err := proficiency.ParseLevel(levelStr)
	if err != nil {
		return nil, util.ErrInvalidProficiency
	}

	course := &model.Course{
		Name:               req.CourseName,
		ProfessorID:        professorID,
		DefaultProficiency: level.String(),
	}
	if err := s.Courses.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(courseID string) (*model.Course, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

// GetOwnedCourse 教授操作前的归属校验
func (s *CourseService) GetOwnedCourse(professorID uint, courseID string) (*model.Course, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.ProfessorID != professorID {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) ListProfessorCourses(professorID uint) ([]model.Course, error) {
	return s.Courses.FindByProfessor(professorID)
}

// UploadPlan 上传课程大纲 JSON；至少要能解析出一个主题才接受
func (s *CourseService) UploadPlan(professorID uint, courseID string, plan json.RawMessage) error {
	if _, err := s.GetOwnedCourse(professorID, courseID); err != nil {
		return err
	}

	if !json.Valid(plan) || len(ExtractTopics(plan)) == 0 {
		return util.ErrTopicNotFound
	}
	return s.Courses.UpdatePlan(courseID, plan)
}

func (s *CourseService) SetObjectives(professorID uint, courseID, objectives string) error {
	if _, err := s.GetOwnedCourse(professorID, courseID); err != nil {
		return err
	}
	return s.Courses.UpdateObjectives(courseID, objectives)
}

// GetTopics 学生选题用的主题列表，大纲走 Redis 缓存
func (s *CourseService) GetTopics(ctx context.Context, courseID string) ([]string, error) {
	plan, err := s.Courses.GetPlan(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, util.ErrCoursePlanMissing
	}
	return ExtractTopics(plan), nil
}

// GetTopicContent 某主题的出题素材；主题不在大纲里时报 ErrTopicNotFound
func (s *CourseService) GetTopicContent(ctx context.Context, courseID, topic string) (string, error) {
	plan, err := s.Courses.GetPlan(ctx, courseID)
	if err != nil {
		return "", err
	}
	if plan == nil {
		return "", util.ErrCoursePlanMissing
	}

	content := TopicContent(plan, topic)
	if content == "" {
		return "", util.ErrTopicNotFound
	}
	return content, nil
}

// UploadRosterCSV 解析 studentName/emailID 两列的点名册并整体替换
func (s *CourseService) UploadRosterCSV(professorID uint, courseID string, r io.Reader) (int, error) {
	if _, err := s.GetOwnedCourse(professorID, courseID); err != nil {
		return 0, err
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, util.ErrEmptyRoster
	}

	nameIdx, emailIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "studentName":
			nameIdx = i
		case "emailID":
			emailIdx = i
		}
	}
	if nameIdx < 0 || emailIdx < 0 {
		return 0, util.ErrEmptyRoster
	}

	var entries []model.RosterEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		entries = appendRosterEntry(entries, record, nameIdx, emailIdx)
	}

	return s.replaceRoster(courseID, entries)
}

// UploadRosterXLSX 同 CSV，取第一个工作表，首行为表头
func (s *CourseService) UploadRosterXLSX(professorID uint, courseID string, r io.Reader) (int, error) {
	if _, err := s.GetOwnedCourse(professorID, courseID); err != nil {
		return 0, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, util.ErrEmptyRoster
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		return 0, util.ErrEmptyRoster
	}

	nameIdx, emailIdx := -1, -1
	for i, col := range rows[0] {
		switch strings.TrimSpace(col) {
		case "studentName":
			nameIdx = i
		case "emailID":
			emailIdx = i
		}
	}
	if nameIdx < 0 || emailIdx < 0 {
		return 0, util.ErrEmptyRoster
	}

	var entries []model.RosterEntry
	for _, row := range rows[1:] {
		entries = appendRosterEntry(entries, row, nameIdx, emailIdx)
	}

	return s.replaceRoster(courseID, entries)
}

func appendRosterEntry(entries []model.RosterEntry, record []string, nameIdx, emailIdx int) []model.RosterEntry {
	if nameIdx >= len(record) || emailIdx >= len(record) {
		return entries
	}
	name := strings.TrimSpace(record[nameIdx])
	email := strings.TrimSpace(record[emailIdx])
	if name == "" || email == "" {
		return entries
	}
	return append(entries, model.RosterEntry{StudentName: name, Email: email})
}

func (s *CourseService) replaceRoster(courseID string, entries []model.RosterEntry) (int, error) {
	if len(entries) == 0 {
		return 0, util.ErrEmptyRoster
	}
	if err := s.Courses.ReplaceRoster(courseID, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *CourseService) GetRoster(professorID uint, courseID string) ([]model.RosterEntry, error) {
	if _, err := s.GetOwnedCourse(professorID, courseID); err != nil {
		return nil, err
	}
	return s.Courses.ListRoster(courseID)
}

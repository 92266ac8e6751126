package service

import (
	"aware_backend/internal/model"
	"aware_backend/internal/proficiency"
	"aware_backend/internal/repository"
	"aware_backend/internal/util"
)

type StudentService struct {
	Enrollments *repository.EnrollmentRepository
	Courses     *repository.CourseRepository
}

func NewStudentService(enrollments *repository.EnrollmentRepository, courses *repository.CourseRepository) *StudentService {
	return &StudentService{Enrollments: enrollments, Courses: courses}
}

type EnrollReq struct {
	CourseID           string `json:"course_id" binding:"required"`
	DefaultProficiency string `json:"default_proficiency"`
}

// Enroll 选课，重复选课按 upsert 处理不报错。
// 初始等级优先取请求值，其次课程默认值。
func (s *StudentService) Enroll(studentID uint, req EnrollReq) error {
	course, err := s.Courses.FindByID(req.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		return util.ErrCourseNotFound
	}

	levelStr := req.DefaultProficiency
	if levelStr == "" {
		levelStr = course.DefaultProficiency
	}
	level, err := proficiency.ParseLevel(levelStr)
	if err != nil {
		return util.ErrInvalidProficiency
	}

	initial := level.String()
	return s.Enrollments.Upsert(&model.Enrollment{
		StudentID:        studentID,
		CourseID:         req.CourseID,
		ProficiencyLevel: &initial,
	})
}

func (s *StudentService) Unenroll(studentID uint, courseID string) error {
	return s.Enrollments.Delete(studentID, courseID)
}

// VerifyEnrollment 学生操作课程前的访问控制检查
func (s *StudentService) VerifyEnrollment(studentID uint, courseID string) (*model.Enrollment, error) {
	enrollment, err := s.Enrollments.Find(studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, util.ErrNotEnrolled
	}
	return enrollment, nil
}

// GetProficiency 未分类时按 intermediate 处理，与出题难度的默认档一致
func (s *StudentService) GetProficiency(studentID uint, courseID string) (string, error) {
	enrollment, err := s.Enrollments.Find(studentID, courseID)
	if err != nil {
		return "", err
	}
	if enrollment == nil {
		return "", util.ErrNotEnrolled
	}
	if enrollment.ProficiencyLevel == nil || *enrollment.ProficiencyLevel == "" {
		return proficiency.Intermediate.String(), nil
	}
	return *enrollment.ProficiencyLevel, nil
}

// UpdateOwnProficiency 学生自行调整难度档位，不置位 manual_override，
// 下一次满窗口提交仍会自动重分类。
func (s *StudentService) UpdateOwnProficiency(studentID uint, courseID, level string) error {
	parsed, err := proficiency.ParseLevel(level)
	if err != nil {
		return util.ErrInvalidProficiency
	}
	if _, err := s.VerifyEnrollment(studentID, courseID); err != nil {
		return err
	}
	return s.Enrollments.SetProficiency(studentID, courseID, parsed.String())
}

// SetStudentProficiency 教授为学生手动定级，置位 manual_override，
// 此后自动分类不再覆盖，直到教授解除锁定。
func (s *StudentService) SetStudentProficiency(professorID uint, courseID string, studentID uint, level string) error {
	parsed, err := proficiency.ParseLevel(level)
	if err != nil {
		return util.ErrInvalidProficiency
	}

	if err := s.verifyCourseOwner(professorID, courseID); err != nil {
		return err
	}

	enrollment, err := s.Enrollments.Find(studentID, courseID)
	if err != nil {
		return err
	}
	if enrollment == nil {
		return util.ErrEnrollmentNotFound
	}

	return s.Enrollments.SetProficiencyManual(studentID, courseID, parsed.String())
}

// ClearProficiencyOverride 解除手动锁定，恢复自动分类
func (s *StudentService) ClearProficiencyOverride(professorID uint, courseID string, studentID uint) error {
	if err := s.verifyCourseOwner(professorID, courseID); err != nil {
		return err
	}
	return s.Enrollments.ClearManualOverride(studentID, courseID)
}

func (s *StudentService) verifyCourseOwner(professorID uint, courseID string) error {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return util.ErrCourseNotFound
	}
	if course.ProfessorID != professorID {
		return util.ErrPermissionDenied
	}
	return nil
}

type EnrolledCourse struct {
	CourseID         string `json:"courseId"`
	CourseName       string `json:"courseName"`
	ProficiencyLevel string `json:"proficiencyLevel"`
	ManualOverride   bool   `json:"manualOverride"`
	EnrolledAt       string `json:"enrolledAt"`
	HasCoursePlan    bool   `json:"hasCoursePlan"`
}

func (s *StudentService) GetEnrolledCourses(studentID uint) ([]EnrolledCourse, error) {
	enrollments, err := s.Enrollments.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	courses := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.Courses.FindByID(e.CourseID)
		if err != nil {
			return nil, err
		}
		if course == nil {
			// 课程已被删除，跳过失效的选课记录
			continue
		}

		level := proficiency.Intermediate.String()
		if e.ProficiencyLevel != nil && *e.ProficiencyLevel != "" {
			level = *e.ProficiencyLevel
		}
		courses = append(courses, EnrolledCourse{
			CourseID:         course.ID,
			CourseName:       course.Name,
			ProficiencyLevel: level,
			ManualOverride:   e.ManualOverride,
			EnrolledAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			HasCoursePlan:    len(course.Plan) > 0,
		})
	}
	return courses, nil
}

type AvailableCourse struct {
	CourseID      string `json:"courseId"`
	CourseName    string `json:"courseName"`
	Professor     string `json:"professor"`
	IsEnrolled    bool   `json:"isEnrolled"`
	HasCoursePlan bool   `json:"hasCoursePlan"`
}

func (s *StudentService) GetAvailableCourses(studentID uint) ([]AvailableCourse, error) {
	all, err := s.Courses.FindAll()
	if err != nil {
		return nil, err
	}

	enrollments, err := s.Enrollments.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = true
	}

	courses := make([]AvailableCourse, 0, len(all))
	for _, course := range all {
		professor := ""
		if course.Professor != nil {
			professor = course.Professor.Username
		}
		courses = append(courses, AvailableCourse{
			CourseID:      course.ID,
			CourseName:    course.Name,
			Professor:     professor,
			IsEnrolled:    enrolled[course.ID],
			HasCoursePlan: len(course.Plan) > 0,
		})
	}
	return courses, nil
}

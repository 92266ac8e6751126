package service

import (
	"aware_backend/internal/proficiency"
	"aware_backend/internal/repository"
	"aware_backend/internal/util"
	"fmt"
	"math"
	"sort"
	"strings"
)

type AnalyticsService struct {
	Results     *repository.TestResultRepository
	Enrollments *repository.EnrollmentRepository
	Courses     *repository.CourseRepository
}

func NewAnalyticsService(results *repository.TestResultRepository, enrollments *repository.EnrollmentRepository, courses *repository.CourseRepository) *AnalyticsService {
	return &AnalyticsService{Results: results, Enrollments: enrollments, Courses: courses}
}

type TopicStat struct {
	Topic          string  `json:"topic"`
	Attempts       int     `json:"attempts"`
	AveragePercent float64 `json:"average_percent"`
}

type StudentStat struct {
	StudentID      uint    `json:"student_id"`
	Username       string  `json:"username"`
	Proficiency    string  `json:"proficiency"`
	ManualOverride bool    `json:"manual_override"`
	Attempts       int     `json:"attempts"`
	AveragePercent float64 `json:"average_percent"`
	LastTopic      string  `json:"last_topic"`
}

type CourseAnalytics struct {
	CourseID           string         `json:"course_id"`
	CourseName         string         `json:"course_name"`
	EnrolledCount      int            `json:"enrolled_count"`
	ActiveCount        int            `json:"active_count"`
	ParticipationRate  float64        `json:"participation_rate"`
	ClassAverage       float64        `json:"class_average"`
	LevelDistribution  map[string]int `json:"level_distribution"`
	Topics             []TopicStat    `json:"topics"`
	Students           []StudentStat  `json:"students"`
	TotalSubmissions  int            `json:"total_submissions"`
}

// GetCourseAnalytics 教授端学情面板：参与率、班级均分、等级分布、按主题和按学生的汇总
func (s *AnalyticsService) GetCourseAnalytics(professorID uint, courseID string) (*CourseAnalytics, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	if course.ProfessorID != professorID {
		return nil, util.ErrPermissionDenied
	}

	enrollments, err := s.Enrollments.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	results, err := s.Results.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}

	analytics := &CourseAnalytics{
		CourseID:          courseID,
		CourseName:        course.Name,
		EnrolledCount:     len(enrollments),
		LevelDistribution: map[string]int{},
		TotalSubmissions:  len(results),
	}

	type agg struct {
		attempts int
		sum      float64
	}
	topicAgg := map[string]*agg{}
	studentAgg := map[uint]*agg{}
	lastTopic := map[uint]string{}
	var total float64

	// 结果按 created_at 降序，首次出现即为该生最近一次测验
	for _, r := range results {
		total += r.Percentage

		if t, ok := topicAgg[r.Topic]; ok {
			t.attempts++
			t.sum += r.Percentage
		} else {
			topicAgg[r.Topic] = &agg{attempts: 1, sum: r.Percentage}
		}

		if sa, ok := studentAgg[r.StudentID]; ok {
			sa.attempts++
			sa.sum += r.Percentage
		} else {
			studentAgg[r.StudentID] = &agg{attempts: 1, sum: r.Percentage}
			lastTopic[r.StudentID] = r.Topic
		}
	}

	if len(results) > 0 {
		analytics.ClassAverage = round2(total / float64(len(results)))
	}
	analytics.ActiveCount = len(studentAgg)
	if len(enrollments) > 0 {
		analytics.ParticipationRate = round2(float64(analytics.ActiveCount) / float64(len(enrollments)) * 100)
	}

	for topic, a := range topicAgg {
		analytics.Topics = append(analytics.Topics, TopicStat{
			Topic:          topic,
			Attempts:       a.attempts,
			AveragePercent: round2(a.sum / float64(a.attempts)),
		})
	}
	sort.Slice(analytics.Topics, func(i, j int) bool {
		return analytics.Topics[i].Topic < analytics.Topics[j].Topic
	})

	for _, e := range enrollments {
		level := proficiency.Intermediate.String()
		if e.ProficiencyLevel != nil && *e.ProficiencyLevel != "" {
			level = *e.ProficiencyLevel
		}
		analytics.LevelDistribution[level]++

		stat := StudentStat{
			StudentID:      e.StudentID,
			Proficiency:    level,
			ManualOverride: e.ManualOverride,
			LastTopic:      lastTopic[e.StudentID],
		}
		if e.Student != nil {
			stat.Username = e.Student.Username
		}
		if a, ok := studentAgg[e.StudentID]; ok {
			stat.Attempts = a.attempts
			stat.AveragePercent = round2(a.sum / float64(a.attempts))
		}
		analytics.Students = append(analytics.Students, stat)
	}
	sort.Slice(analytics.Students, func(i, j int) bool {
		return analytics.Students[i].StudentID < analytics.Students[j].StudentID
	})

	return analytics, nil
}

// GetStudentBreakdown 教授查看单个学生在本课程的全部测验记录
func (s *AnalyticsService) GetStudentBreakdown(professorID uint, courseID string, studentID uint) ([]TestHistoryRow, error) {
	course, err := s.Courses.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	if course.ProfessorID != professorID {
		return nil, util.ErrPermissionDenied
	}

	results, err := s.Results.ListByStudentCourse(studentID, courseID)
	if err != nil {
		return nil, err
	}

	rows := make([]TestHistoryRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, TestHistoryRow{
			ID:               r.ID,
			SubmittedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Topic:            r.Topic,
			Score:            r.Score,
			TotalQuestions:   r.TotalQuestions,
			Percentage:       r.Percentage,
			ProficiencyLevel: r.ProficiencyLevel,
		})
	}
	return rows, nil
}

// StatsSummary 把主题汇总压成文本，供 AI 学情报告使用
func (s *AnalyticsService) StatsSummary(analytics *CourseAnalytics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "选课 %d 人，参与 %d 人，班级均分 %.2f。\n",
		analytics.EnrolledCount, analytics.ActiveCount, analytics.ClassAverage)
	for _, t := range analytics.Topics {
		fmt.Fprintf(&b, "主题「%s」：%d 次作答，平均 %.2f 分。\n", t.Topic, t.Attempts, t.AveragePercent)
	}
	for level, count := range analytics.LevelDistribution {
		fmt.Fprintf(&b, "等级 %s：%d 人。\n", level, count)
	}
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

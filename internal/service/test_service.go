package service

import (
	"aware_backend/internal/model"
	"aware_backend/internal/proficiency"
	"aware_backend/internal/util"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// 提交编排器对存储的依赖收窄成两个小接口，由 GORM 仓储实现；
// 测试里用内存桩替换，不需要 MySQL。
type testResultStore interface {
	Insert(result *model.TestResult) error
	FindLastN(studentID uint, courseID string, n int) ([]model.TestResult, error)
	ListByStudentCourse(studentID uint, courseID string) ([]model.TestResult, error)
	FindByID(id string, studentID uint) (*model.TestResult, error)
}

type enrollmentStore interface {
	Find(studentID uint, courseID string) (*model.Enrollment, error)
	SetProficiency(studentID uint, courseID string, level string) error
}

type TestService struct {
	Results     testResultStore
	Enrollments enrollmentStore
}

func NewTestService(results testResultStore, enrollments enrollmentStore) *TestService {
	return &TestService{Results: results, Enrollments: enrollments}
}

type SubmitTestReq struct {
	CourseID  string               `json:"course_id" binding:"required"`
	Topic     string               `json:"topic" binding:"required"`
	Questions []model.TestQuestion `json:"questions" binding:"required"`
	Answers   map[string]string    `json:"answers"`
}

// SubmissionOutcome 提交结果；ProficiencyUpdated 为空表示本次未改写等级
// （历史不足 3 条，或教授手动锁定）。
type SubmissionOutcome struct {
	ID                 string  `json:"test_id"`
	Score              int     `json:"score"`
	TotalQuestions     int     `json:"total_questions"`
	Percentage         float64 `json:"percentage"`
	ProficiencyUpdated *string `json:"proficiency_updated"`
}

// scoreAnswers 精确串匹配判分。没有标准答案或没作答的题不得分也不报错，
// 但所有题都计入总数。
func scoreAnswers(questions []model.TestQuestion, answers map[string]string) (score, total int, correct map[string]string) {
	correct = make(map[string]string, len(questions))
	for _, q := range questions {
		if q.QuestionNumber != 0 && q.CorrectAnswer != "" {
			correct[strconv.Itoa(q.QuestionNumber)] = q.CorrectAnswer
		}
	}

	for num, given := range answers {
		if want, ok := correct[num]; ok && want == given {
			score++
		}
	}
	return score, len(questions), correct
}

func roundPercentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(score) / float64(total) * 100
	return math.Round(p*100) / 100
}

// SubmitTest 唯一的写入入口：判分 → 落库 → 取最近 3 条 → 分类 → 更新等级。
// 持久化失败整体中止并上抛；不回滚部分状态，下一次提交重读窗口自然收敛。
func (s *TestService) SubmitTest(studentID uint, currentLevel string, req SubmitTestReq) (*SubmissionOutcome, error) {
	score, total, correct := scoreAnswers(req.Questions, req.Answers)
	percentage := roundPercentage(score, total)

	questionsJSON, _ := json.Marshal(req.Questions)
	answersJSON, _ := json.Marshal(req.Answers)
	correctJSON, _ := json.Marshal(correct)

	result := &model.TestResult{
		StudentID:        studentID,
		CourseID:         req.CourseID,
		Topic:            req.Topic,
		ProficiencyLevel: currentLevel,
		Questions:        questionsJSON,
		Answers:          answersJSON,
		CorrectAnswers:   correctJSON,
		Score:            score,
		TotalQuestions:   total,
		Percentage:       percentage,
	}

	if err := s.Results.Insert(result); err != nil {
		return nil, err
	}

	outcome := &SubmissionOutcome{
		ID:             result.ID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
	}

	window, err := s.Results.FindLastN(studentID, req.CourseID, proficiency.WindowSize)
	if err != nil {
		return nil, err
	}

	percentages := make([]float64, 0, len(window))
	for _, r := range window {
		percentages = append(percentages, r.Percentage)
	}

	level, ok := proficiency.Classify(percentages)
	if !ok {
		// 历史不足，跳过分类
		return outcome, nil
	}

	enrollment, err := s.Enrollments.Find(studentID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if enrollment != nil && enrollment.ManualOverride {
		// 教授手动锁定等级，分类结果不落库
		return outcome, nil
	}

	if err := s.Enrollments.SetProficiency(studentID, req.CourseID, level.String()); err != nil {
		return nil, err
	}

	updated := level.String()
	outcome.ProficiencyUpdated = &updated
	return outcome, nil
}

type TestHistoryRow struct {
	ID               string  `json:"id"`
	SubmittedAt      string  `json:"submittedAt"`
	Topic            string  `json:"topic"`
	Score            int     `json:"score"`
	TotalQuestions   int     `json:"totalQuestions"`
	Percentage       float64 `json:"percentage"`
	ProficiencyLevel string  `json:"proficiencyLevel"`
}

func (s *TestService) GetHistory(studentID uint, courseID string) ([]TestHistoryRow, error) {
	results, err := s.Results.ListByStudentCourse(studentID, courseID)
	if err != nil {
		return nil, err
	}

	rows := make([]TestHistoryRow, 0, len(results))
	for _, r := range results {
		level := r.ProficiencyLevel
		if level == "" {
			level = proficiency.Intermediate.String()
		}
		rows = append(rows, TestHistoryRow{
			ID:               r.ID,
			SubmittedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Topic:            r.Topic,
			Score:            r.Score,
			TotalQuestions:   r.TotalQuestions,
			Percentage:       r.Percentage,
			ProficiencyLevel: level,
		})
	}
	return rows, nil
}

type QuestionReview struct {
	QuestionNumber int               `json:"questionNumber"`
	Question       string            `json:"question"`
	Options        map[string]string `json:"options,omitempty"`
	StudentAnswer  string            `json:"studentAnswer"`
	CorrectAnswer  string            `json:"correctAnswer"`
	IsCorrect      bool              `json:"isCorrect"`
	Explanation    string            `json:"explanation,omitempty"`
}

type TestResultDetail struct {
	ID               string           `json:"id"`
	Topic            string           `json:"topic"`
	SubmittedAt      string           `json:"submittedAt"`
	ProficiencyLevel string           `json:"proficiencyLevel"`
	Score            int              `json:"score"`
	TotalQuestions   int              `json:"totalQuestions"`
	Percentage       float64          `json:"percentage"`
	QuestionsReview  []QuestionReview `json:"questionsReview"`
}

// GetResultDetail 逐题复盘：学生答案 vs 标准答案
func (s *TestService) GetResultDetail(testID string, studentID uint) (*TestResultDetail, error) {
	result, err := s.Results.FindByID(testID, studentID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, util.ErrTestResultNotFound
	}

	var questions []model.TestQuestion
	var answers map[string]string
	var correct map[string]string
	json.Unmarshal(result.Questions, &questions)
	json.Unmarshal(result.Answers, &answers)
	json.Unmarshal(result.CorrectAnswers, &correct)

	review := make([]QuestionReview, 0, len(questions))
	for _, q := range questions {
		num := strconv.Itoa(q.QuestionNumber)
		studentAnswer := answers[num]
		correctAnswer := correct[num]
		review = append(review, QuestionReview{
			QuestionNumber: q.QuestionNumber,
			Question:       q.Question,
			Options:        q.Options,
			StudentAnswer:  studentAnswer,
			CorrectAnswer:  correctAnswer,
			IsCorrect:      correctAnswer != "" && studentAnswer == correctAnswer,
			Explanation:    q.Explanation,
		})
	}

	return &TestResultDetail{
		ID:               result.ID,
		Topic:            result.Topic,
		SubmittedAt:      result.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		ProficiencyLevel: result.ProficiencyLevel,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Percentage:       result.Percentage,
		QuestionsReview:  review,
	}, nil
}

type TopicScore struct {
	Topic    string  `json:"topic"`
	AvgScore float64 `json:"avgScore"`
}

// PerformanceProfile 供个性化出题使用的学情画像
type PerformanceProfile struct {
	HasHistory         bool         `json:"hasHistory"`
	WeakTopics         []TopicScore `json:"weakTopics"`
	StrongTopics       []TopicScore `json:"strongTopics"`
	OverallPerformance string       `json:"overallPerformance"`
	TotalTests         int          `json:"totalTests"`
}

// GetPerformanceProfile 按主题聚合历史成绩，均分 <60 记为薄弱、>=80 记为强项
func (s *TestService) GetPerformanceProfile(studentID uint, courseID string) (*PerformanceProfile, error) {
	results, err := s.Results.ListByStudentCourse(studentID, courseID)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &PerformanceProfile{
			HasHistory:         false,
			WeakTopics:         []TopicScore{},
			StrongTopics:       []TopicScore{},
			OverallPerformance: proficiency.Intermediate.String(),
		}, nil
	}

	byTopic := make(map[string][]float64)
	var sum float64
	for _, r := range results {
		byTopic[r.Topic] = append(byTopic[r.Topic], r.Percentage)
		sum += r.Percentage
	}

	weak := []TopicScore{}
	strong := []TopicScore{}
	for topic, scores := range byTopic {
		var topicSum float64
		for _, s := range scores {
			topicSum += s
		}
		avg := math.Round(topicSum/float64(len(scores))*100) / 100
		if avg < 60 {
			weak = append(weak, TopicScore{Topic: topic, AvgScore: avg})
		} else if avg >= 80 {
			strong = append(strong, TopicScore{Topic: topic, AvgScore: avg})
		}
	}
	sort.Slice(weak, func(i, j int) bool { return weak[i].AvgScore < weak[j].AvgScore })
	sort.Slice(strong, func(i, j int) bool { return strong[i].AvgScore > strong[j].AvgScore })

	overallAvg := sum / float64(len(results))
	overall := proficiency.Intermediate
	if overallAvg < 60 {
		overall = proficiency.Beginner
	} else if overallAvg >= 80 {
		overall = proficiency.Advanced
	}

	return &PerformanceProfile{
		HasHistory:         true,
		WeakTopics:         weak,
		StrongTopics:       strong,
		OverallPerformance: overall.String(),
		TotalTests:         len(results),
	}, nil
}

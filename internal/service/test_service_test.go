package service

import (
	"aware_backend/internal/model"
	"aware_backend/internal/util"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResultStore struct {
	results   []model.TestResult
	insertErr error
}

func (f *fakeResultStore) Insert(result *model.TestResult) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	result.ID = fmt.Sprintf("result-%d", len(f.results)+1)
	result.CreatedAt = time.Now().Add(time.Duration(len(f.results)) * time.Second)
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeResultStore) FindLastN(studentID uint, courseID string, n int) ([]model.TestResult, error) {
	var matched []model.TestResult
	for i := len(f.results) - 1; i >= 0 && len(matched) < n; i-- {
		r := f.results[i]
		if r.StudentID == studentID && r.CourseID == courseID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (f *fakeResultStore) ListByStudentCourse(studentID uint, courseID string) ([]model.TestResult, error) {
	var matched []model.TestResult
	for i := len(f.results) - 1; i >= 0; i-- {
		r := f.results[i]
		if r.StudentID == studentID && r.CourseID == courseID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (f *fakeResultStore) FindByID(id string, studentID uint) (*model.TestResult, error) {
	for _, r := range f.results {
		if r.ID == id && r.StudentID == studentID {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

type fakeEnrollmentStore struct {
	enrollment *model.Enrollment
	setCalls   []string
	setErr     error
}

func (f *fakeEnrollmentStore) Find(studentID uint, courseID string) (*model.Enrollment, error) {
	return f.enrollment, nil
}

func (f *fakeEnrollmentStore) SetProficiency(studentID uint, courseID string, level string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls = append(f.setCalls, level)
	if f.enrollment != nil {
		f.enrollment.ProficiencyLevel = &level
	}
	return nil
}

func newTestService() (*TestService, *fakeResultStore, *fakeEnrollmentStore) {
	results := &fakeResultStore{}
	enrollments := &fakeEnrollmentStore{enrollment: &model.Enrollment{StudentID: 1, CourseID: "course-1"}}
	return NewTestService(results, enrollments), results, enrollments
}

func mcq(num int, correct string) model.TestQuestion {
	return model.TestQuestion{QuestionNumber: num, CorrectAnswer: correct}
}

func submitReq(questions []model.TestQuestion, answers map[string]string) SubmitTestReq {
	return SubmitTestReq{CourseID: "course-1", Topic: "pointers", Questions: questions, Answers: answers}
}

func TestSubmitTest_Scoring(t *testing.T) {
	svc, _, _ := newTestService()

	outcome, err := svc.SubmitTest(1, "intermediate", submitReq(
		[]model.TestQuestion{mcq(1, "A"), mcq(2, "B"), mcq(3, "C"), mcq(4, "D")},
		map[string]string{"1": "A", "2": "B", "3": "A"},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Score)
	assert.Equal(t, 4, outcome.TotalQuestions)
	assert.Equal(t, 50.0, outcome.Percentage)
	assert.NotEmpty(t, outcome.ID)
}

func TestSubmitTest_SingleQuestionFullMarks(t *testing.T) {
	svc, _, _ := newTestService()

	outcome, err := svc.SubmitTest(1, "intermediate", submitReq(
		[]model.TestQuestion{mcq(1, "A")},
		map[string]string{"1": "A"},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Score)
	assert.Equal(t, 1, outcome.TotalQuestions)
	assert.Equal(t, 100.0, outcome.Percentage)
}

func TestSubmitTest_EmptyTestNoDivisionError(t *testing.T) {
	svc, _, _ := newTestService()

	outcome, err := svc.SubmitTest(1, "intermediate", submitReq(nil, map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Score)
	assert.Equal(t, 0, outcome.TotalQuestions)
	assert.Equal(t, 0.0, outcome.Percentage)
}

func TestSubmitTest_MalformedInputIsNoMatchNotError(t *testing.T) {
	svc, _, _ := newTestService()

	// 无标准答案的题、没作答的题、答到不存在的题号都不报错
	outcome, err := svc.SubmitTest(1, "intermediate", submitReq(
		[]model.TestQuestion{mcq(1, "A"), {QuestionNumber: 2}, mcq(3, "C")},
		map[string]string{"1": "A", "2": "B", "99": "C"},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Score)
	assert.Equal(t, 3, outcome.TotalQuestions)
	assert.Equal(t, 33.33, outcome.Percentage)
}

func TestSubmitTest_FewerThanThreeSkipsClassification(t *testing.T) {
	svc, _, enrollments := newTestService()

	for i := 0; i < 2; i++ {
		outcome, err := svc.SubmitTest(1, "intermediate", submitReq(
			[]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "A"},
		))
		require.NoError(t, err)
		assert.Nil(t, outcome.ProficiencyUpdated)
	}
	assert.Empty(t, enrollments.setCalls)
}

func TestSubmitTest_ThirdSubmissionClassifies(t *testing.T) {
	svc, _, enrollments := newTestService()

	perfect := submitReq([]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "A"})
	svc.SubmitTest(1, "intermediate", perfect)
	svc.SubmitTest(1, "intermediate", perfect)
	outcome, err := svc.SubmitTest(1, "intermediate", perfect)
	require.NoError(t, err)

	require.NotNil(t, outcome.ProficiencyUpdated)
	assert.Equal(t, "advanced", *outcome.ProficiencyUpdated)
	assert.Equal(t, []string{"advanced"}, enrollments.setCalls)
}

func TestSubmitTest_LevelMovesDownToo(t *testing.T) {
	svc, _, _ := newTestService()

	perfect := submitReq([]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "A"})
	zero := submitReq([]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "B"})

	svc.SubmitTest(1, "intermediate", perfect)
	svc.SubmitTest(1, "intermediate", perfect)
	outcome, _ := svc.SubmitTest(1, "intermediate", perfect)
	assert.Equal(t, "advanced", *outcome.ProficiencyUpdated)

	// 连跌三次后窗口全部低于 30，回落到 beginner
	svc.SubmitTest(1, "advanced", zero)
	svc.SubmitTest(1, "advanced", zero)
	outcome, _ = svc.SubmitTest(1, "advanced", zero)
	require.NotNil(t, outcome.ProficiencyUpdated)
	assert.Equal(t, "beginner", *outcome.ProficiencyUpdated)
}

func TestSubmitTest_ManualOverrideSuppressesReclassification(t *testing.T) {
	svc, _, enrollments := newTestService()
	enrollments.enrollment.ManualOverride = true

	perfect := submitReq([]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "A"})
	svc.SubmitTest(1, "intermediate", perfect)
	svc.SubmitTest(1, "intermediate", perfect)
	outcome, err := svc.SubmitTest(1, "intermediate", perfect)
	require.NoError(t, err)

	assert.Nil(t, outcome.ProficiencyUpdated)
	assert.Empty(t, enrollments.setCalls)
}

func TestSubmitTest_ReplayedSubmissionConverges(t *testing.T) {
	// 双击重复提交的竞态：重放第 3 次提交，最终分类一致
	svc, _, enrollments := newTestService()

	perfect := submitReq([]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "A"})
	svc.SubmitTest(1, "intermediate", perfect)
	svc.SubmitTest(1, "intermediate", perfect)

	first, err := svc.SubmitTest(1, "intermediate", perfect)
	require.NoError(t, err)
	replay, err := svc.SubmitTest(1, "intermediate", perfect)
	require.NoError(t, err)

	assert.Equal(t, *first.ProficiencyUpdated, *replay.ProficiencyUpdated)
	last := enrollments.setCalls[len(enrollments.setCalls)-1]
	assert.Equal(t, "advanced", last)
}

func TestSubmitTest_PersistenceErrorAborts(t *testing.T) {
	svc, results, enrollments := newTestService()
	results.insertErr = errors.New("storage unavailable")

	outcome, err := svc.SubmitTest(1, "intermediate", submitReq(
		[]model.TestQuestion{mcq(1, "A")}, map[string]string{"1": "A"},
	))

	assert.Error(t, err)
	assert.Nil(t, outcome)
	assert.Empty(t, enrollments.setCalls)
}

func TestGetResultDetail_QuestionReview(t *testing.T) {
	svc, _, _ := newTestService()

	questions := []model.TestQuestion{
		{QuestionNumber: 1, Question: "What does * dereference?", Options: map[string]string{"A": "a pointer", "B": "an int"}, CorrectAnswer: "A", Explanation: "unary * follows the pointer"},
		{QuestionNumber: 2, Question: "Size of int?", Options: map[string]string{"A": "2", "B": "platform-dependent"}, CorrectAnswer: "B"},
	}
	outcome, err := svc.SubmitTest(1, "intermediate", submitReq(questions, map[string]string{"1": "A", "2": "A"}))
	require.NoError(t, err)

	detail, err := svc.GetResultDetail(outcome.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Len(t, detail.QuestionsReview, 2)
	assert.True(t, detail.QuestionsReview[0].IsCorrect)
	assert.False(t, detail.QuestionsReview[1].IsCorrect)
	assert.Equal(t, "B", detail.QuestionsReview[1].CorrectAnswer)
	assert.Equal(t, "A", detail.QuestionsReview[1].StudentAnswer)

	// 别人的提交查不到
	other, err := svc.GetResultDetail(outcome.ID, 2)
	assert.ErrorIs(t, err, util.ErrTestResultNotFound)
	assert.Nil(t, other)
}

func TestGetPerformanceProfile(t *testing.T) {
	svc, _, _ := newTestService()

	profile, err := svc.GetPerformanceProfile(1, "course-1")
	require.NoError(t, err)
	assert.False(t, profile.HasHistory)
	assert.Equal(t, "intermediate", profile.OverallPerformance)

	q := []model.TestQuestion{mcq(1, "A"), mcq(2, "B")}
	// pointers: 0%, 50% -> weak; loops: 100% -> strong
	svc.SubmitTest(1, "intermediate", SubmitTestReq{CourseID: "course-1", Topic: "pointers", Questions: q, Answers: map[string]string{"1": "X", "2": "Y"}})
	svc.SubmitTest(1, "intermediate", SubmitTestReq{CourseID: "course-1", Topic: "pointers", Questions: q, Answers: map[string]string{"1": "A", "2": "Y"}})
	svc.SubmitTest(1, "intermediate", SubmitTestReq{CourseID: "course-1", Topic: "loops", Questions: q, Answers: map[string]string{"1": "A", "2": "B"}})

	profile, err = svc.GetPerformanceProfile(1, "course-1")
	require.NoError(t, err)
	assert.True(t, profile.HasHistory)
	assert.Equal(t, 3, profile.TotalTests)
	require.Len(t, profile.WeakTopics, 1)
	assert.Equal(t, "pointers", profile.WeakTopics[0].Topic)
	assert.Equal(t, 25.0, profile.WeakTopics[0].AvgScore)
	require.Len(t, profile.StrongTopics, 1)
	assert.Equal(t, "loops", profile.StrongTopics[0].Topic)
}

func TestGetHistory_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService()

	q := []model.TestQuestion{mcq(1, "A")}
	svc.SubmitTest(1, "intermediate", SubmitTestReq{CourseID: "course-1", Topic: "first", Questions: q, Answers: map[string]string{"1": "A"}})
	svc.SubmitTest(1, "intermediate", SubmitTestReq{CourseID: "course-1", Topic: "second", Questions: q, Answers: map[string]string{"1": "A"}})

	rows, err := svc.GetHistory(1, "course-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "second", rows[0].Topic)
	assert.Equal(t, "first", rows[1].Topic)
}

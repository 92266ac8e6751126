package model

import "encoding/json"

// TestQuestion 测试题目，AI 生成或前端透传，correct_answer 为选项键（如 "A"）
type TestQuestion struct {
	QuestionNumber int               `json:"question_number"`
	Question       string            `json:"question,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	CorrectAnswer  string            `json:"correct_answer"`
	Explanation    string            `json:"explanation,omitempty"`
}

// TestResult 一次提交一条记录，只追加，从不修改或删除。
// 按 (student_id, course_id) 倒序读取，最近 3 条构成分类窗口。
// swagger:model TestResult
type TestResult struct {
	UUIDBase
	StudentID        uint            `gorm:"index:idx_result_student_course;type:bigint unsigned" json:"studentId"`
	CourseID         string          `gorm:"index:idx_result_student_course;type:varchar(36)" json:"courseId"`
	Topic            string          `gorm:"size:255" json:"topic"`
	ProficiencyLevel string          `gorm:"size:20" json:"proficiencyLevel"` // 提交时刻的等级
	Questions        json.RawMessage `gorm:"type:json" json:"questions,omitempty"`
	Answers          json.RawMessage `gorm:"type:json" json:"answers,omitempty"`
	CorrectAnswers   json.RawMessage `gorm:"type:json" json:"correctAnswers,omitempty"`
	Score            int             `gorm:"not null" json:"score"`
	TotalQuestions   int             `gorm:"not null" json:"totalQuestions"`
	Percentage       float64         `gorm:"not null" json:"percentage"`
}

func (TestResult) TableName() string {
	return "test_results"
}

package service

import (
	"aware_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestions(t *testing.T) {
	raw := `[
		{"question_number": 1, "question": "1+1=?", "options": {"A": "1", "B": "2"}, "correct_answer": "B", "explanation": "加法"},
		{"question_number": 2, "question": "2*2=?", "options": {"A": "4", "B": "5"}, "correct_answer": "A"}
	]`

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Equal(t, 2, questions[1].QuestionNumber)
}

func TestParseQuestionsCodeFence(t *testing.T) {
	raw := "```json\n[{\"question_number\": 1, \"question\": \"q\", \"correct_answer\": \"A\"}]\n```"

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestParseQuestionsWrappedObject(t *testing.T) {
	raw := `{"questions": [{"question": "q", "correct_answer": "C"}]}`

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	// 缺失的编号按位置补齐
	assert.Equal(t, 1, questions[0].QuestionNumber)
}

func TestParseQuestionsMalformed(t *testing.T) {
	cases := []string{
		"",
		"抱歉，我无法生成题目。",
		"[]",
		`[{"question": "", "correct_answer": "A"}]`,
		`[{"question": "q", "correct_answer": ""}]`,
	}
	for _, raw := range cases {
		_, err := ParseQuestions(raw)
		assert.ErrorIs(t, err, util.ErrAIResponseMalformed, "input: %q", raw)
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samplePlan = json.RawMessage(`{
	"outline": [
		{
			"label": "Unit 1: 基础",
			"children": [
				{"label": "Variables", "children": [
					{"label": "Declaration and scope"},
					{"label": "Type inference"}
				]},
				{"label": "Loops", "children": []}
			]
		},
		{
			"label": "Week 2",
			"children": [
				{"label": "Pointers"}
			]
		}
	]
}`)

func TestExtractTopics(t *testing.T) {
	topics := ExtractTopics(samplePlan)

	assert.Contains(t, topics, "Variables")
	assert.Contains(t, topics, "Loops")
	assert.Contains(t, topics, "Pointers")
	assert.NotContains(t, topics, "Unit 1: 基础")
	assert.NotContains(t, topics, "Week 2")
}

func TestExtractTopicsMalformed(t *testing.T) {
	assert.Nil(t, ExtractTopics(json.RawMessage(`not json`)))
	assert.Empty(t, ExtractTopics(json.RawMessage(`{"outline": []}`)))
}

func TestTopicContent(t *testing.T) {
	content := TopicContent(samplePlan, "Variables")
	assert.Equal(t, "Declaration and scope | Type inference", content)

	// 叶子主题没有子节点，返回主题本身
	assert.Equal(t, "Loops", TopicContent(samplePlan, "Loops"))

	// 不存在的主题
	assert.Equal(t, "", TopicContent(samplePlan, "Recursion"))
}

package service

import (
	"encoding/json"
	"strings"
)

// 课程大纲为 {outline: [{label, children: [...]}]} 的任意深度树，
// 与前端课程计划上传格式一致。
type outlineNode struct {
	Label    string        `json:"label"`
	Children []outlineNode `json:"children"`
}

type coursePlan struct {
	Outline []outlineNode `json:"outline"`
}

// ExtractTopics 展开大纲中的可测主题，跳过 Unit/Week 之类的章节标题
func ExtractTopics(plan json.RawMessage) []string {
	var parsed coursePlan
	if err := json.Unmarshal(plan, &parsed); err != nil {
		return nil
	}

	var topics []string
	var walk func(nodes []outlineNode)
	walk = func(nodes []outlineNode) {
		for _, node := range nodes {
			label := node.Label
			if label != "" && !isSectionHeader(label) {
				topics = append(topics, label)
			}
			if len(node.Children) > 0 {
				walk(node.Children)
			}
		}
	}
	walk(parsed.Outline)
	return topics
}

func isSectionHeader(label string) bool {
	lower := strings.ToLower(label)
	if strings.HasPrefix(lower, "unit ") || strings.HasPrefix(lower, "week ") {
		return true
	}
	return strings.Contains(lower, "unit") && strings.Contains(label, ":")
}

// TopicContent 找到主题节点并把子节点标签拼成出题素材；
// 找不到返回空串，由调用方决定回退策略。
func TopicContent(plan json.RawMessage, topic string) string {
	var parsed coursePlan
	if err := json.Unmarshal(plan, &parsed); err != nil {
		return ""
	}

	var find func(nodes []outlineNode) string
	find = func(nodes []outlineNode) string {
		for _, node := range nodes {
			if node.Label == topic {
				var parts []string
				for _, child := range node.Children {
					if child.Label != "" {
						parts = append(parts, child.Label)
					}
				}
				if len(parts) == 0 {
					return topic
				}
				return strings.Join(parts, " | ")
			}
			if result := find(node.Children); result != "" {
				return result
			}
		}
		return ""
	}
	return find(parsed.Outline)
}

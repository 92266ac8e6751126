package service

import (
	"aware_backend/internal/config"
	"aware_backend/internal/model"
	"aware_backend/internal/util"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// UpdateConfig 配置热加载入口，换接入点或模型不用重启
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) chat(system, prompt string) (string, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	if cfg.APIKey == "" {
		return "", util.ErrAINotConfigured
	}

	messages := []AIChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	reqBody := ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

// stripCodeFence 模型偶尔会把 JSON 包在 ```json 围栏里，解析前剥掉
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

const testSystemPrompt = "你是一个出题助教。只输出 JSON 数组，不要输出任何解释性文字。" +
	"数组中每个元素形如 {\"question_number\": 1, \"question\": \"...\", " +
	"\"options\": {\"A\": \"...\", \"B\": \"...\", \"C\": \"...\", \"D\": \"...\"}, " +
	"\"correct_answer\": \"A\", \"explanation\": \"...\"}。"

// GenerateTest 按主题素材和学生当前等级生成一套单选题
func (s *AIService) GenerateTest(topic, content, level string, numQuestions int) ([]model.TestQuestion, error) {
	if numQuestions <= 0 {
		numQuestions = 5
	}

	prompt := fmt.Sprintf(
		"请围绕主题「%s」出 %d 道单选题，难度面向 %s 水平的学生。\n\n参考素材：\n%s",
		topic, numQuestions, level, content)

	return s.requestQuestions(prompt)
}

// GeneratePersonalizedTest 结合薄弱主题出题，薄弱项占更大比重
func (s *AIService) GeneratePersonalizedTest(topic, content, level string, weakTopics []string, numQuestions int) ([]model.TestQuestion, error) {
	if len(weakTopics) == 0 {
		return s.GenerateTest(topic, content, level, numQuestions)
	}
	if numQuestions <= 0 {
		numQuestions = 5
	}

	prompt := fmt.Sprintf(
		"请围绕主题「%s」出 %d 道单选题，难度面向 %s 水平的学生。\n"+
			"该学生在以下主题上表现薄弱：%s。请让至少一半题目覆盖这些薄弱点。\n\n参考素材：\n%s",
		topic, numQuestions, level, strings.Join(weakTopics, "、"), content)

	return s.requestQuestions(prompt)
}

func (s *AIService) requestQuestions(prompt string) ([]model.TestQuestion, error) {
	raw, err := s.chat(testSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	questions, err := ParseQuestions(raw)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ParseQuestions 解析模型输出的题目数组，宽容围栏和编号缺失
func ParseQuestions(raw string) ([]model.TestQuestion, error) {
	cleaned := stripCodeFence(raw)

	var questions []model.TestQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		// 有的模型会包一层 {"questions": [...]}
		var wrapped struct {
			Questions []model.TestQuestion `json:"questions"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil || len(wrapped.Questions) == 0 {
			return nil, util.ErrAIResponseMalformed
		}
		questions = wrapped.Questions
	}

	if len(questions) == 0 {
		return nil, util.ErrAIResponseMalformed
	}

	for i := range questions {
		if questions[i].QuestionNumber == 0 {
			questions[i].QuestionNumber = i + 1
		}
		if questions[i].Question == "" || questions[i].CorrectAnswer == "" {
			return nil, util.ErrAIResponseMalformed
		}
	}
	return questions, nil
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// GenerateFlashcards 按主题素材生成复习卡片
func (s *AIService) GenerateFlashcards(topic, content string, count int) ([]Flashcard, error) {
	if count <= 0 {
		count = 10
	}

	system := "你是一个复习卡片生成器。只输出 JSON 数组，" +
		"每个元素形如 {\"front\": \"问题或概念\", \"back\": \"答案或解释\"}。"
	prompt := fmt.Sprintf("请围绕主题「%s」生成 %d 张复习卡片。\n\n参考素材：\n%s", topic, count, content)

	raw, err := s.chat(system, prompt)
	if err != nil {
		return nil, err
	}

	var cards []Flashcard
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &cards); err != nil || len(cards) == 0 {
		return nil, util.ErrAIResponseMalformed
	}
	return cards, nil
}

// GenerateCourseReport 面向教授的班级学情总结，纯文本输出
func (s *AIService) GenerateCourseReport(courseName, objectives, statsSummary string) (string, error) {
	system := "你是一个教学数据分析助手，请用简洁的中文为教授总结班级学情，给出可执行的教学建议。"
	prompt := fmt.Sprintf(
		"课程：%s\n教学目标：%s\n\n以下是按主题汇总的测验数据：\n%s\n\n请输出一份学情报告。",
		courseName, objectives, statsSummary)

	return s.chat(system, prompt)
}

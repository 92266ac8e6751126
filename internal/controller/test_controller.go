package controller

import (
	"aware_backend/internal/service"
	"aware_backend/internal/util"
	"aware_backend/pkg/monitoring"
	"errors"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService     *service.TestService
	StudentService  *service.StudentService
	MaterialService *service.MaterialService
	AIService       *service.AIService
}

func NewTestController(testService *service.TestService, studentService *service.StudentService, materialService *service.MaterialService, aiService *service.AIService) *TestController {
	return &TestController{
		TestService:     testService,
		StudentService:  studentService,
		MaterialService: materialService,
		AIService:       aiService,
	}
}

type generateTestReq struct {
	CourseID     string `json:"course_id" binding:"required"`
	Topic        string `json:"topic" binding:"required"`
	NumQuestions int    `json:"num_questions"`
	Personalized bool   `json:"personalized"`
}

// GenerateTest godoc
// @Summary 生成测验
// @Description 按主题素材和学生当前等级出题；personalized 会让薄弱主题占更大比重
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body generateTestReq true "出题请求"
// @Success 200 {object} util.Response{data=[]model.TestQuestion}
// @Failure 404 {object} util.Response "主题不存在"
// @Failure 503 {object} util.Response "AI 服务不可用"
// @Router /api/student/tests/generate [post]
func (c *TestController) GenerateTest(ctx *gin.Context) {
	var req generateTestReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if _, err := c.StudentService.VerifyEnrollment(claims.UserID, req.CourseID); err != nil {
		respondEnrollmentErr(ctx, err)
		return
	}

	level, err := c.StudentService.GetProficiency(claims.UserID, req.CourseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	content, err := c.MaterialService.ContentForTopic(ctx.Request.Context(), req.CourseID, req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTopicNotFound):
			util.NotFound(ctx, "主题不在课程大纲中")
		case errors.Is(err, util.ErrCoursePlanMissing):
			util.NotFound(ctx, "课程尚未上传大纲")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if req.Personalized {
		profile, err := c.TestService.GetPerformanceProfile(claims.UserID, req.CourseID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		weak := make([]string, 0, len(profile.WeakTopics))
		for _, t := range profile.WeakTopics {
			weak = append(weak, t.Topic)
		}
		qs, err := c.AIService.GeneratePersonalizedTest(req.Topic, content, level, weak, req.NumQuestions)
		if err != nil {
			respondAIErr(ctx, err)
			return
		}
		util.Success(ctx, qs)
		return
	}

	qs, err := c.AIService.GenerateTest(req.Topic, content, level, req.NumQuestions)
	if err != nil {
		respondAIErr(ctx, err)
		return
	}
	util.Success(ctx, qs)
}

// SubmitTest godoc
// @Summary 提交测验
// @Description 判分并追加记录；凑满最近三次成绩后自动重估熟练度
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubmitTestReq true "答卷"
// @Success 200 {object} util.Response{data=service.SubmissionOutcome}
// @Failure 403 {object} util.Response "未选修该课程"
// @Router /api/student/tests/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	var req service.SubmitTestReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if _, err := c.StudentService.VerifyEnrollment(claims.UserID, req.CourseID); err != nil {
		respondEnrollmentErr(ctx, err)
		return
	}

	level, err := c.StudentService.GetProficiency(claims.UserID, req.CourseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	outcome, err := c.TestService.SubmitTest(claims.UserID, level, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	monitoring.TestSubmissions.WithLabelValues(req.CourseID).Inc()
	if outcome.ProficiencyUpdated != nil {
		monitoring.ProficiencyChanges.WithLabelValues(*outcome.ProficiencyUpdated).Inc()
	}

	util.Success(ctx, outcome)
}

// History godoc
// @Summary 测验历史
// @Description 按提交时间倒序返回该课程的全部测验记录
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=[]service.TestHistoryRow}
// @Router /api/student/courses/{courseId}/tests [get]
func (c *TestController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	rows, err := c.TestService.GetHistory(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// ResultDetail godoc
// @Summary 测验详情
// @Description 逐题返回题面、学生作答和正确答案，仅本人可见
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   testId path string true "测验记录 ID"
// @Success 200 {object} util.Response{data=service.TestResultDetail}
// @Failure 404 {object} util.Response
// @Router /api/student/tests/{testId} [get]
func (c *TestController) ResultDetail(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	detail, err := c.TestService.GetResultDetail(ctx.Param("testId"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrTestResultNotFound) {
			util.NotFound(ctx, "测验记录不存在")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// Performance godoc
// @Summary 个人学情画像
// @Description 按主题聚合平均分，标出薄弱和擅长的主题
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=service.PerformanceProfile}
// @Router /api/student/courses/{courseId}/performance [get]
func (c *TestController) Performance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	profile, err := c.TestService.GetPerformanceProfile(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

type flashcardsReq struct {
	CourseID string `json:"course_id" binding:"required"`
	Topic    string `json:"topic" binding:"required"`
	Count    int    `json:"count"`
}

// Flashcards godoc
// @Summary 生成复习卡片
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body flashcardsReq true "卡片请求"
// @Success 200 {object} util.Response{data=[]service.Flashcard}
// @Failure 503 {object} util.Response "AI 服务不可用"
// @Router /api/student/flashcards [post]
func (c *TestController) Flashcards(ctx *gin.Context) {
	var req flashcardsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if _, err := c.StudentService.VerifyEnrollment(claims.UserID, req.CourseID); err != nil {
		respondEnrollmentErr(ctx, err)
		return
	}

	content, err := c.MaterialService.ContentForTopic(ctx.Request.Context(), req.CourseID, req.Topic)
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx, "主题不在课程大纲中")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	cards, err := c.AIService.GenerateFlashcards(req.Topic, content, req.Count)
	if err != nil {
		respondAIErr(ctx, err)
		return
	}
	util.Success(ctx, cards)
}

func respondAIErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAINotConfigured):
		util.ServiceUnavailable(ctx, "AI 服务未配置")
	case errors.Is(err, util.ErrAIResponseMalformed):
		util.ServiceUnavailable(ctx, "AI 返回内容无法解析，请重试")
	default:
		util.LogInternalError(ctx, err)
	}
}

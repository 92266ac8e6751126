package controller

import (
	"aware_backend/internal/service"
	"aware_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	StudentService   *service.StudentService
	CourseService    *service.CourseService
	AIService        *service.AIService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, studentService *service.StudentService, courseService *service.CourseService, aiService *service.AIService) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analyticsService,
		StudentService:   studentService,
		CourseService:    courseService,
		AIService:        aiService,
	}
}

// CourseAnalytics godoc
// @Summary 课程学情面板
// @Description 参与率、班级均分、等级分布、按主题和按学生的成绩汇总
// @Tags 学情分析
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=service.CourseAnalytics}
// @Failure 403 {object} util.Response
// @Router /api/professor/courses/{courseId}/analytics [get]
func (c *AnalyticsController) CourseAnalytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	analytics, err := c.AnalyticsService.GetCourseAnalytics(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}

// StudentBreakdown godoc
// @Summary 单个学生的测验记录
// @Tags 学情分析
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   studentId path int true "学生 ID"
// @Success 200 {object} util.Response{data=[]service.TestHistoryRow}
// @Router /api/professor/courses/{courseId}/students/{studentId}/tests [get]
func (c *AnalyticsController) StudentBreakdown(ctx *gin.Context) {
	studentID, err := strconv.ParseUint(ctx.Param("studentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "学生 ID 不合法")
		return
	}

	claims := util.GetUserFromContext(ctx)
	rows, err := c.AnalyticsService.GetStudentBreakdown(claims.UserID, ctx.Param("courseId"), uint(studentID))
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

type setProficiencyReq struct {
	Proficiency string `json:"proficiency" binding:"required"`
}

// SetStudentProficiency godoc
// @Summary 手动设定学生等级
// @Description 教授设定的等级会锁定，后续测验不再自动重估，直到解除锁定
// @Tags 学情分析
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   studentId path int true "学生 ID"
// @Param   body body setProficiencyReq true "等级"
// @Success 200 {object} util.Response
// @Router /api/professor/courses/{courseId}/students/{studentId}/proficiency [put]
func (c *AnalyticsController) SetStudentProficiency(ctx *gin.Context) {
	var req setProficiencyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	studentID, err := strconv.ParseUint(ctx.Param("studentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "学生 ID 不合法")
		return
	}

	claims := util.GetUserFromContext(ctx)
	err = c.StudentService.SetStudentProficiency(claims.UserID, ctx.Param("courseId"), uint(studentID), req.Proficiency)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidProficiency):
			util.BadRequest(ctx, "等级必须是 beginner、intermediate 或 advanced")
		case errors.Is(err, util.ErrEnrollmentNotFound):
			util.NotFound(ctx, "该学生未选修本课程")
		default:
			respondCourseErr(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "等级已设定并锁定"})
}

// ClearProficiencyOverride godoc
// @Summary 解除等级锁定
// @Description 恢复按最近三次成绩自动重估
// @Tags 学情分析
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   studentId path int true "学生 ID"
// @Success 200 {object} util.Response
// @Router /api/professor/courses/{courseId}/students/{studentId}/proficiency [delete]
func (c *AnalyticsController) ClearProficiencyOverride(ctx *gin.Context) {
	studentID, err := strconv.ParseUint(ctx.Param("studentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "学生 ID 不合法")
		return
	}

	claims := util.GetUserFromContext(ctx)
	err = c.StudentService.ClearProficiencyOverride(claims.UserID, ctx.Param("courseId"), uint(studentID))
	if err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx, "该学生未选修本课程")
			return
		}
		respondCourseErr(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "已解除锁定"})
}

// CourseReport godoc
// @Summary AI 学情报告
// @Description 基于班级测验数据生成文字版学情总结和教学建议
// @Tags 学情分析
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 503 {object} util.Response "AI 服务不可用"
// @Router /api/professor/courses/{courseId}/report [get]
func (c *AnalyticsController) CourseReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := ctx.Param("courseId")

	course, err := c.CourseService.GetOwnedCourse(claims.UserID, courseID)
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}

	analytics, err := c.AnalyticsService.GetCourseAnalytics(claims.UserID, courseID)
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}

	report, err := c.AIService.GenerateCourseReport(course.Name, course.Objectives, c.AnalyticsService.StatsSummary(analytics))
	if err != nil {
		respondAIErr(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"report": report})
}

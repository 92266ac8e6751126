package controller

import (
	"aware_backend/internal/service"
	"aware_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
	CourseService  *service.CourseService
}

func NewStudentController(studentService *service.StudentService, courseService *service.CourseService) *StudentController {
	return &StudentController{StudentService: studentService, CourseService: courseService}
}

// Enroll godoc
// @Summary 选课
// @Description 重复选课是幂等的，不会覆盖已有的熟练度等级
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.EnrollReq true "选课请求"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/student/enroll [post]
func (c *StudentController) Enroll(ctx *gin.Context) {
	var req service.EnrollReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.StudentService.Enroll(claims.UserID, req); err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "课程不存在")
		case errors.Is(err, util.ErrInvalidProficiency):
			util.BadRequest(ctx, "等级必须是 beginner、intermediate 或 advanced")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "选课成功"})
}

// Unenroll godoc
// @Summary 退课
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response
// @Router /api/student/courses/{courseId} [delete]
func (c *StudentController) Unenroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.StudentService.Unenroll(claims.UserID, ctx.Param("courseId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "已退课"})
}

// EnrolledCourses godoc
// @Summary 已选课程列表
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.EnrolledCourse}
// @Router /api/student/courses [get]
func (c *StudentController) EnrolledCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.StudentService.GetEnrolledCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// AvailableCourses godoc
// @Summary 可选课程列表
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AvailableCourse}
// @Router /api/student/courses/available [get]
func (c *StudentController) AvailableCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.StudentService.GetAvailableCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// Topics godoc
// @Summary 课程主题列表
// @Description 从课程大纲解析主题，学生据此选择测验范围
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=[]string}
// @Failure 404 {object} util.Response "课程不存在或未上传大纲"
// @Router /api/student/courses/{courseId}/topics [get]
func (c *StudentController) Topics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := ctx.Param("courseId")

	if _, err := c.StudentService.VerifyEnrollment(claims.UserID, courseID); err != nil {
		respondEnrollmentErr(ctx, err)
		return
	}

	topics, err := c.CourseService.GetTopics(ctx.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, util.ErrCoursePlanMissing) {
			util.NotFound(ctx, "课程尚未上传大纲")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// GetProficiency godoc
// @Summary 查看当前熟练度
// @Tags 学生
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/student/courses/{courseId}/proficiency [get]
func (c *StudentController) GetProficiency(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	level, err := c.StudentService.GetProficiency(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		respondEnrollmentErr(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"proficiency": level})
}

type proficiencyReq struct {
	Proficiency string `json:"proficiency" binding:"required"`
}

// UpdateProficiency godoc
// @Summary 学生自报熟练度
// @Description 仅更新等级，不影响后续的自动重分类
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   body body proficiencyReq true "等级"
// @Success 200 {object} util.Response
// @Router /api/student/courses/{courseId}/proficiency [put]
func (c *StudentController) UpdateProficiency(ctx *gin.Context) {
	var req proficiencyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.StudentService.UpdateOwnProficiency(claims.UserID, ctx.Param("courseId"), req.Proficiency); err != nil {
		if errors.Is(err, util.ErrInvalidProficiency) {
			util.BadRequest(ctx, "等级必须是 beginner、intermediate 或 advanced")
			return
		}
		respondEnrollmentErr(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "等级已更新"})
}

func respondEnrollmentErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotEnrolled):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx, "课程不存在")
	case errors.Is(err, util.ErrEnrollmentNotFound):
		util.NotFound(ctx, "未选修该课程")
	default:
		util.LogInternalError(ctx, err)
	}
}

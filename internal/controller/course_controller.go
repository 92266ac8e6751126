package controller

import (
	"aware_backend/internal/service"
	"aware_backend/internal/util"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService   *service.CourseService
	MaterialService *service.MaterialService
}

func NewCourseController(courseService *service.CourseService, materialService *service.MaterialService) *CourseController {
	return &CourseController{CourseService: courseService, MaterialService: materialService}
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateCourseReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/professor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CreateCourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidProficiency) {
			util.BadRequest(ctx, "默认等级必须是 beginner、intermediate 或 advanced")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// ListCourses godoc
// @Summary 教授的课程列表
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/professor/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.CourseService.ListProfessorCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/professor/courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.GetOwnedCourse(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UploadPlan godoc
// @Summary 上传课程大纲
// @Description 大纲为 JSON 文件，格式 {"outline": [{"label": "...", "children": [...]}]}
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   file formData file true "大纲 JSON 文件"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "大纲无法解析或没有主题"
// @Router /api/professor/courses/{courseId}/plan [post]
func (c *CourseController) UploadPlan(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少大纲文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	var plan json.RawMessage
	if err := json.NewDecoder(f).Decode(&plan); err != nil {
		util.BadRequest(ctx, "大纲不是合法的 JSON")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.CourseService.UploadPlan(claims.UserID, ctx.Param("courseId"), plan); err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.BadRequest(ctx, "大纲里解析不出任何主题")
			return
		}
		respondCourseErr(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "大纲已更新"})
}

type objectivesReq struct {
	Objectives string `json:"objectives" binding:"required"`
}

// SetObjectives godoc
// @Summary 设置教学目标
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   body body objectivesReq true "教学目标"
// @Success 200 {object} util.Response
// @Router /api/professor/courses/{courseId}/objectives [put]
func (c *CourseController) SetObjectives(ctx *gin.Context) {
	var req objectivesReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.CourseService.SetObjectives(claims.UserID, ctx.Param("courseId"), req.Objectives); err != nil {
		respondCourseErr(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "教学目标已更新"})
}

// UploadRoster godoc
// @Summary 上传点名册
// @Description 接受 CSV 或 XLSX，表头需包含 studentName 和 emailID 两列，整体替换旧点名册
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   file formData file true "点名册文件"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "文件为空或缺少必需列"
// @Router /api/professor/courses/{courseId}/roster [post]
func (c *CourseController) UploadRoster(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少点名册文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	claims := util.GetUserFromContext(ctx)
	courseID := ctx.Param("courseId")

	var count int
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".xlsx":
		count, err = c.CourseService.UploadRosterXLSX(claims.UserID, courseID, f)
	default:
		count, err = c.CourseService.UploadRosterCSV(claims.UserID, courseID, f)
	}
	if err != nil {
		if errors.Is(err, util.ErrEmptyRoster) {
			util.BadRequest(ctx, "点名册为空或缺少 studentName/emailID 列")
			return
		}
		respondCourseErr(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"imported": count})
}

// GetRoster godoc
// @Summary 查看点名册
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=[]model.RosterEntry}
// @Router /api/professor/courses/{courseId}/roster [get]
func (c *CourseController) GetRoster(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	entries, err := c.CourseService.GetRoster(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// UploadMaterial godoc
// @Summary 上传课程资料
// @Description 视频会探测时长，文本类文件会抽取内容供出题使用
// @Tags 课程资料
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   topic formData string false "关联主题"
// @Param   file formData file true "资料文件"
// @Success 201 {object} util.Response{data=model.CourseMaterial}
// @Router /api/professor/courses/{courseId}/materials [post]
func (c *CourseController) UploadMaterial(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少资料文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	claims := util.GetUserFromContext(ctx)
	material, err := c.MaterialService.Upload(ctx.Request.Context(), claims.UserID, service.UploadMaterialReq{
		CourseID:    ctx.Param("courseId"),
		Topic:       ctx.PostForm("topic"),
		Filename:    filepath.Base(file.Filename),
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Reader:      f,
	})
	if err != nil {
		respondCourseErr(ctx, err)
		return
	}

	util.Created(ctx, material)
}

// ListMaterials godoc
// @Summary 课程资料列表
// @Tags 课程资料
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Success 200 {object} util.Response{data=[]model.CourseMaterial}
// @Router /api/professor/courses/{courseId}/materials [get]
func (c *CourseController) ListMaterials(ctx *gin.Context) {
	materials, err := c.MaterialService.List(ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}

// DownloadMaterial godoc
// @Summary 下载课程资料
// @Tags 课程资料
// @Produce  octet-stream
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   materialId path string true "资料 ID"
// @Success 200 {file} binary
// @Failure 404 {object} util.Response
// @Router /api/professor/courses/{courseId}/materials/{materialId} [get]
func (c *CourseController) DownloadMaterial(ctx *gin.Context) {
	rc, material, err := c.MaterialService.Download(ctx.Request.Context(), ctx.Param("courseId"), ctx.Param("materialId"))
	if err != nil {
		if errors.Is(err, util.ErrMaterialNotFound) {
			util.NotFound(ctx, "资料不存在")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", `attachment; filename="`+material.Filename+`"`)
	ctx.DataFromReader(200, material.Size, material.ContentType, rc, nil)
}

// DeleteMaterial godoc
// @Summary 删除课程资料
// @Tags 课程资料
// @Produce  json
// @Security BearerAuth
// @Param   courseId path string true "课程 ID"
// @Param   materialId path string true "资料 ID"
// @Success 200 {object} util.Response
// @Router /api/professor/courses/{courseId}/materials/{materialId} [delete]
func (c *CourseController) DeleteMaterial(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	err := c.MaterialService.Delete(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"), ctx.Param("materialId"))
	if err != nil {
		if errors.Is(err, util.ErrMaterialNotFound) {
			util.NotFound(ctx, "资料不存在")
			return
		}
		respondCourseErr(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "资料已删除"})
}

// respondCourseErr 课程归属类错误的统一映射
func respondCourseErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx, "课程不存在")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

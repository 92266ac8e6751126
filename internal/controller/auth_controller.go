package controller

import (
	"aware_backend/internal/service"
	"aware_backend/internal/util"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary 注册新用户
// @Description 使用用户名和密码注册学生或教授账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterReq true "注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名已被占用"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUsernameTaken):
			util.Conflict(ctx, "该用户名已被注册")
		case errors.Is(err, util.ErrInvalidRole):
			util.BadRequest(ctx, "角色必须是 student 或 professor")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.ID, "username": user.Username, "role": user.Role})
}

// Login godoc
// @Summary 登录
// @Description 校验凭据并签发访问令牌，同一账号同时只允许一个活跃会话
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginReq true "登录凭据"
// @Success 200 {object} util.Response{data=service.TokenResp}
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Failure 409 {object} util.Response "该账号已在其他设备登录"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCredentials):
			util.Error(ctx, 401, "用户名或密码错误")
		case errors.Is(err, util.ErrAlreadyLoggedIn):
			util.Conflict(ctx, "该账号已在其他设备登录，请先登出")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, token)
}

// Logout godoc
// @Summary 登出
// @Description 吊销当前访问令牌
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	tokenString := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
	if tokenString == "" {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AuthService.Logout(ctx.Request.Context(), tokenString); err != nil {
		if errors.Is(err, util.ErrTokenRevoked) {
			util.Success(ctx, gin.H{"message": "令牌已失效"})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "登出成功"})
}

// Profile godoc
// @Summary 当前用户信息
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response
// @Router /api/me [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetProfile(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx, "用户不存在")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

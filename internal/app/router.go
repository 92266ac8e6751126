package app

import (
	"aware_backend/docs"
	"aware_backend/internal/config"
	"aware_backend/internal/middleware"
	"aware_backend/internal/model"
	"aware_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, repos.token), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/me", c.auth.Profile)

		a.registerStudentRoutes(authGroup, c)
		a.registerProfessorRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.POST("/enroll", c.student.Enroll)
		student.GET("/courses", c.student.EnrolledCourses)
		student.GET("/courses/available", c.student.AvailableCourses)
		student.DELETE("/courses/:courseId", c.student.Unenroll)
		student.GET("/courses/:courseId/topics", c.student.Topics)
		student.GET("/courses/:courseId/proficiency", c.student.GetProficiency)
		student.PUT("/courses/:courseId/proficiency", c.student.UpdateProficiency)

		student.POST("/tests/generate", c.test.GenerateTest)
		student.POST("/tests/submit", c.test.SubmitTest)
		student.GET("/tests/:testId", c.test.ResultDetail)
		student.GET("/courses/:courseId/tests", c.test.History)
		student.GET("/courses/:courseId/performance", c.test.Performance)
		student.POST("/flashcards", c.test.Flashcards)
	}
}

func (a *App) registerProfessorRoutes(rg *gin.RouterGroup, c *controllers) {
	professor := rg.Group("/professor")
	professor.Use(middleware.RoleMiddleware(model.Professor))
	{
		professor.POST("/courses", c.course.CreateCourse)
		professor.GET("/courses", c.course.ListCourses)
		professor.GET("/courses/:courseId", c.course.GetCourse)
		professor.POST("/courses/:courseId/plan", c.course.UploadPlan)
		professor.PUT("/courses/:courseId/objectives", c.course.SetObjectives)
		professor.POST("/courses/:courseId/roster", c.course.UploadRoster)
		professor.GET("/courses/:courseId/roster", c.course.GetRoster)

		professor.POST("/courses/:courseId/materials", c.course.UploadMaterial)
		professor.GET("/courses/:courseId/materials", c.course.ListMaterials)
		professor.GET("/courses/:courseId/materials/:materialId", c.course.DownloadMaterial)
		professor.DELETE("/courses/:courseId/materials/:materialId", c.course.DeleteMaterial)

		professor.GET("/courses/:courseId/analytics", c.analytics.CourseAnalytics)
		professor.GET("/courses/:courseId/report", c.analytics.CourseReport)
		professor.GET("/courses/:courseId/students/:studentId/tests", c.analytics.StudentBreakdown)
		professor.PUT("/courses/:courseId/students/:studentId/proficiency", c.analytics.SetStudentProficiency)
		professor.DELETE("/courses/:courseId/students/:studentId/proficiency", c.analytics.ClearProficiencyOverride)
	}
}

package app

import (
	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/internal/middleware"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. AI 出题模块，独立于课程/测试数据
	a.registerGeneratorRoutes(router, c)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerGeneratorRoutes(router *gin.Engine, c *controllers) {
	g := router.Group("/api/generator")
	{
		g.POST("/generate", c.generator.Generate)

		g.GET("/quizzes", c.generator.ListQuizzes)
		g.POST("/quizzes", c.generator.SaveQuiz)
		g.GET("/quizzes/:id", c.generator.GetQuiz)
		g.PUT("/quizzes/:id", c.generator.SaveQuiz)
		g.DELETE("/quizzes/:id", c.generator.RemoveQuiz)

		g.GET("/quizzes/:id/attempts", c.generator.ListAttempts)
		g.POST("/quizzes/:id/attempts", c.generator.SubmitAttempt)
		g.GET("/quizzes/:id/attempt-limit", c.generator.GetAttemptLimit)
		g.PUT("/quizzes/:id/attempt-limit", c.generator.SetAttemptLimit)

		g.GET("/session", c.generator.GetSession)
		g.PUT("/session", c.generator.SetSession)
	}
}

// 学生/通用 授权接口
func (a *App) registerStudentRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/profile", c.auth.Profile)

	api.GET("/courses", c.course.List)
	api.GET("/courses/:id", c.course.Get)

	api.GET("/tests", c.test.List)
	api.GET("/tests/:id", c.test.Get)

	// 题目列表按角色返回不同字段
	api.GET("/questions", c.question.List)

	api.POST("/tests/:id/attempts", middleware.RoleMiddleware(model.Student), c.attempt.Start)
	api.GET("/attempts/:id", c.attempt.Get)
	api.POST("/attempts/:id/violations", middleware.RoleMiddleware(model.Student), c.attempt.RecordViolation)
	api.POST("/attempts/:id/submit", middleware.RoleMiddleware(model.Student), c.attempt.Submit)
}

// 教师相关接口
func (a *App) registerTeacherRoutes(api *gin.RouterGroup, c *controllers) {
	teacher := api.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.course.Create)
		teacher.PUT("/courses/:id", c.course.Update)
		teacher.DELETE("/courses/:id", c.course.Delete)

		teacher.POST("/tests", c.test.Create)
		teacher.PUT("/tests/:id", c.test.Update)
		teacher.DELETE("/tests/:id", c.test.Delete)
		teacher.GET("/tests/:id/attempts", c.attempt.ListByTest)

		teacher.GET("/questions/:id", c.question.Get)
		teacher.POST("/questions", c.question.Create)
		teacher.PUT("/questions/:id", c.question.Update)
		teacher.DELETE("/questions/:id", c.question.Delete)
	}
}

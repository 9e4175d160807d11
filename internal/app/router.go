package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/me", c.auth.Me)

		a.registerQuizRoutes(authGroup, c)

		questions := authGroup.Group("/questions")
		{
			questions.GET("/delete-confirmation", c.questionBank.DeleteConfirmation)
			questions.POST("/delete", c.questionBank.DeleteQuestions)
			questions.GET("/:id/version-info", c.questionBank.VersionInfo)
		}

		badges := authGroup.Group("/badges")
		{
			badges.GET("/:id/recipients", c.badge.Recipients)
			badges.POST("/:id/image", c.badge.UploadImage)
		}

		authGroup.GET("/users/:userId/courses/:courseId/report-nodes", c.report.ReportNodes)
	}
}

// registerQuizRoutes 测验结构编辑接口
func (a *App) registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	quiz := group.Group("/quizzes/:quizId")
	{
		quiz.GET("/edit", c.quizStructure.GetEditPage)
		quiz.POST("/repaginate", c.quizStructure.Repaginate)
		quiz.PUT("/maximum-grade", c.quizStructure.UpdateMaximumGrade)
		quiz.GET("/timelimit", c.quizStructure.GetTimeLimit)
		quiz.PUT("/timelimit", c.quizStructure.UpdateTimeLimit)

		quiz.POST("/slots/delete", c.quizStructure.DeleteSlots)
		quiz.DELETE("/slots/:slotId", c.quizStructure.DeleteSlot)
		quiz.POST("/slots/:slotId/move", c.quizStructure.MoveSlot)
		quiz.POST("/slots/:slotId/pagebreak", c.quizStructure.UpdatePageBreak)
		quiz.POST("/slots/:slotId/dependency", c.quizStructure.UpdateDependency)
		quiz.GET("/slots/:slotId/maxmark", c.quizStructure.GetMaxMark)
		quiz.PUT("/slots/:slotId/maxmark", c.quizStructure.UpdateMaxMark)

		quiz.POST("/sections", c.section.AddSection)
		quiz.DELETE("/sections/:sectionId", c.section.DeleteSection)
		quiz.GET("/sections/:sectionId/heading", c.section.GetHeading)
		quiz.PUT("/sections/:sectionId/heading", c.section.RenameSection)
		quiz.PUT("/sections/:sectionId/shuffle", c.section.SetShuffle)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/services"
	"github.com/quizbank/admin-service/internal/utils"
	"github.com/quizbank/admin-service/internal/validator"
)

type HandlerManager struct {
	serviceManager   services.ServiceManager
	quizHandler      *QuizHandler
	taxonomyHandler  *TaxonomyHandler
	dashboardHandler *DashboardHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:   serviceManager,
		quizHandler:      NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), validator, logger),
		taxonomyHandler:  NewTaxonomyHandler(serviceManager.Taxonomy(), validator, logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/export", hm.quizHandler.ExportQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
		}

		// Taxonomy routes, one group per collection
		taxonomies := []struct {
			path string
			kind models.TaxonomyKind
		}{
			{"/exams", models.KindExam},
			{"/chapters", models.KindChapter},
			{"/classes", models.KindClass},
			{"/subjects", models.KindSubject},
		}
		for _, t := range taxonomies {
			group := v1.Group(t.path)
			group.POST("", hm.taxonomyHandler.Create(t.kind))
			group.GET("", hm.taxonomyHandler.List(t.kind))
			group.GET("/:id", hm.taxonomyHandler.Get(t.kind))
			group.PATCH("/:id", hm.taxonomyHandler.Rename(t.kind))
			group.DELETE("/:id", hm.taxonomyHandler.Delete(t.kind))
		}

		// Dashboard routes
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", hm.dashboardHandler.GetDashboardStats)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "quizbank-admin-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quizbank-admin-service",
		})
	})
}

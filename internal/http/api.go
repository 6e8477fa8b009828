package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskhub/internal/auth"
	"taskhub/internal/domain"
	"taskhub/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	tasks      service.TaskService
	users      service.UserService
	tokens     *auth.TokenManager
	log        *logrus.Logger
	corsOrigin string
}

func NewHandler(tasks service.TaskService, users service.UserService, tokens *auth.TokenManager, log *logrus.Logger, corsOrigin string) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		tasks:      tasks,
		users:      users,
		tokens:     tokens,
		log:        log,
		corsOrigin: corsOrigin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware(h.corsOrigin))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.POST("/token", h.issueToken)

	users := router.Group("/users")
	{
		users.POST("/", h.optionalAuth(), h.createUser)
		users.GET("/me/", h.requireAuth(), h.me)
		users.GET("/", h.requireAuth(), h.listUsers)
		users.GET("/:id", h.requireAuth(), h.getUser)
		users.PUT("/:id", h.requireAuth(), h.updateUser)
		users.DELETE("/:id", h.requireAuth(), h.deleteUser)
	}

	tasks := router.Group("/tasks", h.requireAuth())
	{
		tasks.POST("/", h.createTask)
		tasks.GET("/", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reqOrigin := c.GetHeader("Origin"); reqOrigin != "" && reqOrigin == origin {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Writer.Header().Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// fail maps service errors onto status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		forbidden *domain.ForbiddenError
		invalid   *domain.ValidationError
	)
	switch {
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": forbidden.Reason})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": invalid.Message, "field": invalid.Field})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	default:
		entry(c, h.log).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// badRequest reports a payload that failed binding.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid id", "field": "id"})
		return 0, false
	}
	return id, true
}

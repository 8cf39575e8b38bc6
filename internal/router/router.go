package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/config"
	"github.com/stemsi/classwork-backend/internal/handler"
	"github.com/stemsi/classwork-backend/internal/logger"
	"github.com/stemsi/classwork-backend/internal/middleware"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Assignment *handler.AssignmentHandler
	Question   *handler.QuestionHandler
	Submission *handler.SubmissionHandler
	Link       *handler.LinkHandler
	Media      *handler.MediaHandler
	WS         *handler.WSHandler
	Class      *handler.ClassHandler
	Subject    *handler.SubjectHandler
	User       *handler.UserHandler
	Dashboard  *handler.DashboardHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// mediaDir is the directory behind the public media bucket.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	mediaDir string,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request IDs come first so the access log and every envelope carry one.
	router.Use(response.RequestIDMiddleware())
	router.Use(logger.AccessLog(log, "/health"))

	// Images, audio and PDFs pass through uncompressed.
	router.Use(middleware.Brotli())

	// Media keys are never reused, so files can be cached for a year.
	mediaGroup := router.Group("/files/media")
	mediaGroup.Use(middleware.PublicCache(365*24*time.Hour, true))
	{
		mediaGroup.Static("/", mediaDir)
	}
	router.GET("/files/signed", middleware.NoStore(), handlers.Media.DownloadSigned)

	router.GET("/health", handlers.System.Health)

	// Logged-in routes reject tokens revoked by logout.
	revoked := middleware.RejectRevokedSession(authService, log)

	// ─── 0. Public Group (No Auth, Rate Limited) ───────────────────────
	publicLimiter := middleware.NewRateLimiter(60, time.Minute)
	// One counted view per visitor per link every ten minutes, shared by
	// the GET and the explicit POST.
	viewLimiter := middleware.NewRateLimiter(1, 10*time.Minute)
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(publicLimiter.Middleware())
	{
		publicAPI.GET("/links/:token",
			viewLimiter.MarkBy(middleware.ByIPAndParam("token")),
			handlers.Link.GetSharedAssignment,
		)
		publicAPI.POST("/links/:token/views",
			viewLimiter.MiddlewareBy(middleware.ByIPAndParam("token")),
			handlers.Link.CountView,
		)
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireJWT(authService), revoked, handlers.Auth.GetProfile)
		auth.POST("/logout", middleware.RequireJWT(authService), revoked, handlers.Auth.Logout)
	}

	// ─── 2. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService), revoked, middleware.NoStore())
	{
		studentAPI.GET("/assignments", handlers.Assignment.ListStudentAssignments)
		studentAPI.GET("/assignments/:id", handlers.Assignment.GetStudentAssignment)
		studentAPI.POST("/assignments/:id/start", handlers.Submission.StartAssignment)
		studentAPI.POST("/assignments/:id/submit", handlers.Submission.SubmitAssignment)
		studentAPI.GET("/assignments/:id/submission", handlers.Submission.GetMySubmission)
	}

	// ─── 3. WebSocket Group (Staff WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStaffWSAuth(authService), revoked)
	{
		ws.GET("/admin/assignments/:id/feed",
			middleware.RequirePermission(model.PermissionSubmissionsRead),
			handlers.WS.SubmissionFeed,
		)
	}

	// ─── 4. Admin Group (Staff JWT + RBAC) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireStaffJWT(authService), revoked, middleware.NoStore())
	{
		adminAPI.GET("/dashboard",
			middleware.RequirePermission(model.PermissionDashboardRead),
			handlers.Dashboard.GetDashboardData,
		)
		adminAPI.GET("/system/status",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.System.Status,
		)

		// Media
		adminAPI.POST("/media/upload",
			middleware.RequirePermission(model.PermissionMediaUpload),
			handlers.Media.UploadMedia,
		)
		adminAPI.GET("/media",
			middleware.RequirePermission(model.PermissionMediaUpload),
			handlers.Media.ListMedia,
		)

		// Class management
		adminAPI.GET("/classes", handlers.Class.ListClasses)
		adminAPI.POST("/classes",
			middleware.RequirePermission(model.PermissionClassesWrite),
			handlers.Class.CreateClass,
		)
		adminAPI.PUT("/classes/:id",
			middleware.RequirePermission(model.PermissionClassesWrite),
			handlers.Class.UpdateClass,
		)
		adminAPI.DELETE("/classes/:id",
			middleware.RequirePermission(model.PermissionClassesWrite),
			handlers.Class.DeleteClass,
		)

		// Subject management
		adminAPI.GET("/subjects", handlers.Subject.GetAll)
		adminAPI.POST("/subjects",
			middleware.RequirePermission(model.PermissionSubjectsWrite),
			handlers.Subject.Create,
		)
		adminAPI.PUT("/subjects/:id",
			middleware.RequirePermission(model.PermissionSubjectsWrite),
			handlers.Subject.Update,
		)
		adminAPI.DELETE("/subjects/:id",
			middleware.RequirePermission(model.PermissionSubjectsWrite),
			handlers.Subject.Delete,
		)

		// User management
		adminAPI.GET("/users",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.ListUsers,
		)
		adminAPI.POST("/users",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.CreateUser,
		)
		adminAPI.PUT("/users/:id/password",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.ResetPassword,
		)

		// Assignment authoring
		adminAPI.GET("/question-types",
			middleware.RequirePermission(model.PermissionAssignmentsRead),
			handlers.Question.ListQuestionTypes,
		)
		adminAPI.GET("/assignments",
			middleware.RequirePermission(model.PermissionAssignmentsRead),
			handlers.Assignment.ListAssignments,
		)
		adminAPI.POST("/assignments",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Assignment.CreateAssignment,
		)
		adminAPI.GET("/assignments/:id",
			middleware.RequirePermission(model.PermissionAssignmentsRead),
			handlers.Assignment.GetAssignment,
		)
		adminAPI.PATCH("/assignments/:id",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Assignment.UpdateAssignment,
		)
		adminAPI.DELETE("/assignments/:id",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Assignment.DeleteAssignment,
		)
		adminAPI.PUT("/assignments/:id/questions",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Question.ReplaceQuestions,
		)
		adminAPI.POST("/assignments/:id/publish",
			middleware.RequirePermission(model.PermissionAssignmentsPublish),
			handlers.Assignment.PublishAssignment,
		)
		adminAPI.POST("/assignments/:id/archive",
			middleware.RequirePermission(model.PermissionAssignmentsPublish),
			handlers.Assignment.ArchiveAssignment,
		)
		adminAPI.POST("/assignments/:id/attachments",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Assignment.AddAttachments,
		)
		adminAPI.DELETE("/assignments/:id/attachments/:attachment_id",
			middleware.RequirePermission(model.PermissionAssignmentsWrite),
			handlers.Assignment.DeleteAttachment,
		)

		// Submissions and grading
		adminAPI.GET("/assignments/:id/submissions",
			middleware.RequirePermission(model.PermissionSubmissionsRead),
			handlers.Submission.ListSubmissions,
		)
		adminAPI.GET("/submissions/:id",
			middleware.RequirePermission(model.PermissionSubmissionsRead),
			handlers.Submission.GetSubmission,
		)
		adminAPI.POST("/submissions/:id/grade",
			middleware.RequirePermission(model.PermissionSubmissionsGrade),
			handlers.Submission.GradeSubmission,
		)

		// Share links
		adminAPI.GET("/links",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.ListLinks,
		)
		adminAPI.POST("/links",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.CreateLink,
		)
		adminAPI.GET("/links/:id",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.GetLink,
		)
		adminAPI.GET("/links/:id/qr",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.GetLinkQRCode,
		)
		adminAPI.POST("/links/:id/deactivate",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.DeactivateLink,
		)
		adminAPI.POST("/links/:id/reactivate",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.ReactivateLink,
		)
		adminAPI.DELETE("/links/:id",
			middleware.RequirePermission(model.PermissionLinksWrite),
			handlers.Link.DeleteLink,
		)
	}

	return router
}

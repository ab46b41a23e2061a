package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"newera.app/reentry/internal/config"
	"newera.app/reentry/internal/middleware"
	caseloadHttp "newera.app/reentry/internal/modules/caseload/delivery/http"
	caseloadRepo "newera.app/reentry/internal/modules/caseload/repository"
	caseloadService "newera.app/reentry/internal/modules/caseload/service"
	notiHttp "newera.app/reentry/internal/modules/notification/delivery/http"
	notifRepo "newera.app/reentry/internal/modules/notification/repository"
	notifService "newera.app/reentry/internal/modules/notification/service"
	"newera.app/reentry/internal/modules/notifier"
	referralHttp "newera.app/reentry/internal/modules/referral/delivery/http"
	referralRepo "newera.app/reentry/internal/modules/referral/repository"
	referralService "newera.app/reentry/internal/modules/referral/service"
	resourceHttp "newera.app/reentry/internal/modules/resource/delivery/http"
	resourceRepo "newera.app/reentry/internal/modules/resource/repository"
	resourceService "newera.app/reentry/internal/modules/resource/service"
	searchService "newera.app/reentry/internal/modules/search/service"
	tagHttp "newera.app/reentry/internal/modules/tag/delivery/http"
	tagRepo "newera.app/reentry/internal/modules/tag/repository"
	tagService "newera.app/reentry/internal/modules/tag/service"
	userHttp "newera.app/reentry/internal/modules/user/delivery/http"
	userRepo "newera.app/reentry/internal/modules/user/repository"
	userService "newera.app/reentry/internal/modules/user/service"
	"newera.app/reentry/internal/scheduler"
	"newera.app/reentry/pkg/ratelimiter"
	"newera.app/reentry/pkg/storage"
)

// Dependencies are the optional backing services. Nil members disable the
// features that need them.
type Dependencies struct {
	Redis   *redis.Client
	Meili   meilisearch.ServiceManager
	Storage storage.ImageStorage
}

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	clicks      resourceService.ClickCounter
	scheduler   *scheduler.Scheduler
	cfg         *config.Config
	logger      *zap.Logger
}

func NewServer(cfg *config.Config, db *gorm.DB, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)
	adminSvc := userService.NewAdminService(userRepository)
	adminHandler := userHttp.NewAdminHandler(adminSvc)

	caseLoadRepository := caseloadRepo.NewCaseLoadRepository(db)
	caseLoadSvc := caseloadService.NewCaseLoadService(caseLoadRepository, userRepository)
	caseLoadHandler := caseloadHttp.NewCaseLoadHandler(caseLoadSvc)

	tagRepository := tagRepo.NewTagRepository(db)
	tagSvc := tagService.NewTagService(tagRepository)
	tagHandler := tagHttp.NewTagHandler(tagSvc)

	var searchSvc searchService.SearchService
	if deps.Meili != nil {
		searchSvc = searchService.NewMeiliSearchService(deps.Meili, logger)
	}

	resourceRepository := resourceRepo.NewResourceRepository(db)
	clicks := resourceService.NewClickCounter(deps.Redis, resourceRepository, logger)
	resourceSvc := resourceService.NewResourceService(resourceRepository, tagRepository, resourceService.Options{
		Search:      searchSvc,
		Storage:     deps.Storage,
		Clicks:      clicks,
		ImageFolder: cfg.CloudinaryUploadFolder,
		Logger:      logger,
	})

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, deps.Redis, logger)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, deps.Redis, originChecker(cfg.AllowedOrigins), logger)

	referralRepository := referralRepo.NewReferralRepository(db)
	referralSvc := referralService.NewReferralService(referralRepository, caseLoadRepository, resourceRepository, notificationSvc, logger)

	referralNotifier, err := newNotifier(cfg)
	if err != nil {
		return nil, err
	}
	referralHandler := referralHttp.NewReferralHandler(referralSvc, referralNotifier, ratelimiter.New(deps.Redis), cfg.RateLimitReferral, logger)

	resourceHandler := resourceHttp.NewResourceHandler(resourceSvc, referralSvc)

	jobs := scheduler.New(logger, 30*time.Minute)
	if searchSvc != nil && cfg.SearchReindexSchedule != "" {
		if err := jobs.Register(scheduler.NewSearchReindexJob(cfg.SearchReindexSchedule, resourceSvc, logger)); err != nil {
			return nil, err
		}
	}
	jobHandler := scheduler.NewHandler(jobs)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/notifications/ws"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes. Clients reach resources through referral links without an account.
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}
	api.GET("/tags", tagHandler.ListTags)
	api.GET("/resources", resourceHandler.ListResources)
	api.GET("/resources/search", resourceHandler.SearchResources)
	api.GET("/resources/:id", resourceHandler.GetResource)
	api.GET("/resources/:id/image", resourceHandler.GetResourceImage)

	staff := api.Group("")
	staff.Use(authMiddleware.RequireAuth(), authMiddleware.RequireStaff())
	{
		staff.GET("/caseload", caseLoadHandler.ListCaseLoad)
		staff.POST("/caseload", caseLoadHandler.AddClient)
		staff.PUT("/caseload/:id", caseLoadHandler.UpdateClient)
		staff.DELETE("/caseload/:id", caseLoadHandler.RemoveClient)
		staff.GET("/caseload/recipients", caseLoadHandler.ListRecipients)

		staff.POST("/referrals", referralHandler.CreateReferral)
		staff.GET("/referrals", referralHandler.ListReferrals)
		staff.GET("/referrals/:id", referralHandler.GetReferral)

		staff.POST("/resources", resourceHandler.CreateResource)
		staff.PUT("/resources/:id", resourceHandler.UpdateResource)
		staff.PUT("/resources/:id/image", resourceHandler.UploadImage)

		staff.POST("/tags", tagHandler.CreateTag)
		staff.PUT("/tags/:id", tagHandler.RenameTag)

		staff.GET("/notifications", notificationHandler.GetNotifications)
		staff.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		staff.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		staff.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		staff.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		adminGroup.POST("/users", adminHandler.RegisterUser)
		adminGroup.GET("/users", adminHandler.ListStaff)
		adminGroup.PUT("/users/:id/active", adminHandler.SetActive)
		adminGroup.GET("/referrals/export", referralHandler.ExportReferrals)
		adminGroup.GET("/jobs", jobHandler.ListJobs)
		adminGroup.POST("/jobs/:name/run", jobHandler.RunJob)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: deps.Redis,
		clicks:      clicks,
		scheduler:   jobs,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Run starts the background workers and blocks serving HTTP until ctx is done
// or the listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	if s.redisClient != nil {
		go s.clicks.StartClickSyncWorker(ctx, s.cfg.ClickSyncInterval)
	}
	s.scheduler.Start()
	defer s.scheduler.Stop()

	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func newNotifier(cfg *config.Config) (*notifier.Notifier, error) {
	renderer, err := notifier.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	var mail notifier.MailTransport
	if cfg.Mail.Enabled() {
		mail = notifier.NewSMTPTransport(notifier.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			UseTLS:   cfg.Mail.UseTLS,
		})
	}

	var sms notifier.SMSGateway
	if cfg.SMS.Enabled() {
		sms = notifier.NewTwilioGateway(notifier.TwilioConfig{
			BaseURL:    cfg.SMS.APIBaseURL,
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
		})
	}

	return notifier.New(notifier.Config{
		OrgName:  cfg.Site.OrgName,
		BaseURL:  cfg.Site.BaseURL,
		MailFrom: cfg.Mail.From,
		SMSFrom:  cfg.SMS.FromNumber,
	}, mail, sms, renderer), nil
}

func splitOrigins(allowedOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func originChecker(allowedOrigins string) func(r *http.Request) bool {
	origins := splitOrigins(allowedOrigins)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

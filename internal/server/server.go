package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"paceline.app/community/internal/config"
	"paceline.app/community/internal/metrics"
	"paceline.app/community/internal/middleware"
	"paceline.app/community/internal/scheduler"
	"paceline.app/community/pkg/storage"

	achievementHttp "paceline.app/community/internal/modules/achievement/delivery/http"
	achievementRepo "paceline.app/community/internal/modules/achievement/repository"
	achievementService "paceline.app/community/internal/modules/achievement/service"

	activityHttp "paceline.app/community/internal/modules/activity/delivery/http"
	activityRepo "paceline.app/community/internal/modules/activity/repository"
	activityService "paceline.app/community/internal/modules/activity/service"

	adminHttp "paceline.app/community/internal/modules/admin/delivery/http"
	adminService "paceline.app/community/internal/modules/admin/service"

	challengeHttp "paceline.app/community/internal/modules/challenge/delivery/http"
	challengeRepo "paceline.app/community/internal/modules/challenge/repository"
	challengeService "paceline.app/community/internal/modules/challenge/service"

	eventHttp "paceline.app/community/internal/modules/event/delivery/http"
	eventRepo "paceline.app/community/internal/modules/event/repository"
	eventService "paceline.app/community/internal/modules/event/service"

	leaderboardHttp "paceline.app/community/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "paceline.app/community/internal/modules/leaderboard/repository"
	leaderboardService "paceline.app/community/internal/modules/leaderboard/service"

	notiHttp "paceline.app/community/internal/modules/notification/delivery/http"
	notifService "paceline.app/community/internal/modules/notification/service"

	pbHttp "paceline.app/community/internal/modules/personalbest/delivery/http"
	pbRepo "paceline.app/community/internal/modules/personalbest/repository"
	pbService "paceline.app/community/internal/modules/personalbest/service"

	profileHttp "paceline.app/community/internal/modules/profile/delivery/http"
	profileService "paceline.app/community/internal/modules/profile/service"

	runHttp "paceline.app/community/internal/modules/run/delivery/http"
	runRepo "paceline.app/community/internal/modules/run/repository"
	runService "paceline.app/community/internal/modules/run/service"

	searchService "paceline.app/community/internal/modules/search/service"

	shoeHttp "paceline.app/community/internal/modules/shoe/delivery/http"
	shoeRepo "paceline.app/community/internal/modules/shoe/repository"
	shoeService "paceline.app/community/internal/modules/shoe/service"

	statHttp "paceline.app/community/internal/modules/stat/delivery/http"
	statRepo "paceline.app/community/internal/modules/stat/repository"
	statService "paceline.app/community/internal/modules/stat/service"

	streakHttp "paceline.app/community/internal/modules/streak/delivery/http"
	streakRepo "paceline.app/community/internal/modules/streak/repository"
	streakService "paceline.app/community/internal/modules/streak/service"

	userRepo "paceline.app/community/internal/modules/user/repository"
)

// Deps are the optional backing services. Any of them may be nil.
type Deps struct {
	// Redis backs the leaderboard cache and live notifications.
	Redis *redis.Client

	// Meili backs event search; without it search matches titles in SQL.
	Meili meilisearch.ServiceManager

	Photos storage.PhotoStorage
}

type Server struct {
	engine    *gin.Engine
	http      *http.Server
	db        *gorm.DB
	scheduler *scheduler.Scheduler
}

// Services groups what the CLI reuses outside of HTTP.
type Services struct {
	Challenges   challengeService.ChallengeService
	Achievements achievementService.AchievementService
	Runs         runService.RunService
	Scheduler    *scheduler.Scheduler
}

// NewServices builds the domain services and registers the scheduled jobs.
func NewServices(cfg *config.Config, db *gorm.DB, deps Deps) *Services {
	services, _ := build(cfg, db, deps)
	return services
}

func build(cfg *config.Config, db *gorm.DB, deps Deps) (*Services, *routes) {
	userRepository := userRepo.NewUserRepository(db)

	notificationSvc := notifService.NewNotificationService(deps.Redis)

	activitySvc := activityService.NewActivityService(activityRepo.NewActivityRepository(db))
	pbSvc := pbService.NewPersonalBestService(pbRepo.NewPersonalBestRepository(db), activitySvc, notificationSvc)
	streakSvc := streakService.NewStreakService(streakRepo.NewStreakRepository(db))
	achievementSvc := achievementService.NewAchievementService(achievementRepo.NewAchievementRepository(db), activitySvc, notificationSvc)
	challengeSvc := challengeService.NewChallengeService(challengeRepo.NewChallengeRepository(db))
	eventSvc := eventService.NewEventService(eventRepo.NewEventRepository(db), searchService.NewEventIndex(deps.Meili))
	shoeSvc := shoeService.NewShoeService(shoeRepo.NewShoeRepository(db), deps.Photos)

	runSvc := runService.NewRunService(runRepo.NewRunRepository(db), runService.Cascade{
		PersonalBests: pbSvc,
		Streaks:       streakSvc,
		Achievements:  achievementSvc,
		Challenges:    challengeSvc,
		Events:        eventSvc,
		Shoes:         shoeSvc,
		Activity:      activitySvc,
	}, cfg.SyncMaxBatch)

	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), deps.Redis, cfg.LeaderboardCacheTTL)
	profileSvc := profileService.NewProfileService(userRepository, deps.Photos)
	statSvc := statService.NewStatService(statRepo.NewStatRepository(db))

	jobs := scheduler.NewScheduler()
	for _, job := range []scheduler.Job{
		scheduler.NewChallengeGenerationJob(challengeSvc, cfg.ChallengeSchedule),
		scheduler.NewReconcileJob(achievementSvc, cfg.ReconcileSchedule, cfg.ReconcileLookback),
	} {
		if err := jobs.Register(job); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}

	adminSvc := adminService.NewAdminService(userRepository, jobs)

	r := &routes{
		auth:          middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret),
		runs:          runHttp.NewRunHandler(runSvc),
		leaderboards:  leaderboardHttp.NewLeaderboardHandler(leaderboardSvc),
		achievements:  achievementHttp.NewAchievementHandler(achievementSvc),
		streaks:       streakHttp.NewStreakHandler(streakSvc),
		pbs:           pbHttp.NewPersonalBestHandler(pbSvc),
		challenges:    challengeHttp.NewChallengeHandler(challengeSvc),
		events:        eventHttp.NewEventHandler(eventSvc),
		activities:    activityHttp.NewActivityHandler(activitySvc),
		shoes:         shoeHttp.NewShoeHandler(shoeSvc),
		profile:       profileHttp.NewProfileHandler(profileSvc),
		notifications: notiHttp.NewNotificationHandler(deps.Redis, cfg.AllowedOrigins),
		stats:         statHttp.NewStatHandler(statSvc),
		admin:         adminHttp.NewAdminHandler(adminSvc),
	}

	return &Services{
		Challenges:   challengeSvc,
		Achievements: achievementSvc,
		Runs:         runSvc,
		Scheduler:    jobs,
	}, r
}

type routes struct {
	auth          *middleware.AuthMiddleware
	runs          *runHttp.RunHandler
	leaderboards  *leaderboardHttp.LeaderboardHandler
	achievements  *achievementHttp.AchievementHandler
	streaks       *streakHttp.StreakHandler
	pbs           *pbHttp.PersonalBestHandler
	challenges    *challengeHttp.ChallengeHandler
	events        *eventHttp.EventHandler
	activities    *activityHttp.ActivityHandler
	shoes         *shoeHttp.ShoeHandler
	profile       *profileHttp.ProfileHandler
	notifications *notiHttp.NotificationHandler
	stats         *statHttp.StatHandler
	admin         *adminHttp.AdminHandler
}

func NewServer(cfg *config.Config, db *gorm.DB, deps Deps) *Server {
	services, r := build(cfg, db, deps)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	r.register(router, db)

	return &Server{
		engine: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:        db,
		scheduler: services.Scheduler,
	}
}

func (r *routes) register(router *gin.Engine, db *gorm.DB) {
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(r.auth.RequireAuth())
	{
		// Run sync
		protected.POST("/runs/sync", r.runs.SyncRuns)
		protected.GET("/runs", r.runs.ListRuns)

		// Profile routes
		protected.GET("/profile/me", r.profile.GetCurrentProfile)
		protected.PUT("/profile/community", r.profile.UpdateCommunity)
		protected.POST("/profile/photo", r.profile.UploadPhoto)

		// Shoe routes
		protected.GET("/shoes", r.shoes.ListShoes)
		protected.POST("/shoes", r.shoes.CreateShoe)
		protected.PUT("/shoes/:shoe_id", r.shoes.UpdateShoe)
		protected.DELETE("/shoes/:shoe_id", r.shoes.DeleteShoe)
		protected.POST("/shoes/:shoe_id/photo", r.shoes.UploadPhoto)

		protected.GET("/activities", r.activities.GetFeed)
		protected.GET("/notifications/ws", r.notifications.HandleWebSocket)

		community := protected.Group("/community")
		{
			community.GET("/leaderboards/yearly-distance", r.leaderboards.GetYearlyDistance)
			community.GET("/leaderboards/best-time", r.leaderboards.GetBestTime)

			community.GET("/achievements", r.achievements.GetCatalog)
			community.GET("/achievements/mine", r.achievements.GetMine)
			community.GET("/achievements/unnotified", r.achievements.GetUnnotified)
			community.POST("/achievements/mark-notified", r.achievements.MarkNotified)

			community.GET("/streak", r.streaks.GetMine)
			community.GET("/personal-bests", r.pbs.GetMine)

			community.GET("/challenges", r.challenges.ListChallenges)
			community.GET("/challenges/:challenge_id", r.challenges.GetChallenge)
			community.POST("/challenges/:challenge_id/join", r.challenges.JoinChallenge)

			community.GET("/events", r.events.ListEvents)
			community.GET("/events/search", r.events.SearchEvents)
			community.GET("/events/:event_id", r.events.GetEvent)
			community.POST("/events/:event_id/register", r.events.Register)
			community.DELETE("/events/:event_id/register", r.events.Unregister)
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(r.auth.RequireAdmin())
		{
			adminGroup.GET("/events", r.events.AdminListEvents)
			adminGroup.POST("/events", r.events.CreateEvent)
			adminGroup.PUT("/events/:event_id", r.events.UpdateEvent)
			adminGroup.POST("/events/:event_id/deactivate", r.events.DeactivateEvent)
			adminGroup.DELETE("/events/:event_id", r.events.DeleteEvent)
			adminGroup.GET("/events/:event_id/registrations", r.events.ListRegistrations)

			adminGroup.POST("/challenges/generate", r.challenges.GenerateChallenges)
			adminGroup.GET("/stats", r.stats.GetCommunityStats)
			adminGroup.PUT("/users/:user_id/admin", r.admin.SetAdmin)
			adminGroup.GET("/jobs", r.admin.ListJobs)
			adminGroup.POST("/jobs/:job", r.admin.RunJob)
		}
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	// Current challenges should exist before the first request.
	if err := s.scheduler.RunByName(ctx, metrics.JobChallengeGeneration); err != nil {
		log.Printf("⚠️ Startup challenge generation failed: %v", err)
	}
	s.scheduler.Start()
	defer s.scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

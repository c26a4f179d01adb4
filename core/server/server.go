package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"classtime/core/cache"
	"classtime/core/config"
	"classtime/core/constants"
	"classtime/core/controller"
	"classtime/core/database"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/metrics"
	"classtime/core/middleware"
	"classtime/core/queue"
	"classtime/core/scheduler"
	"classtime/modules/auth"
	"classtime/modules/booking"
	"classtime/modules/chat"
	"classtime/modules/notification"
	"classtime/modules/tutor"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run loads configuration, wires every module and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, JSONOutput: cfg.Log.JSON})

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db.SQLx().DB, "up"); err != nil {
			return err
		}
	}

	appCache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer appCache.Close()

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug
	e.HTTPErrorHandler = errorHandler(e)

	mw := middleware.NewMiddleware(appCache, cfg.Admin.APIKey)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(mw.RequestLogger())

	e.GET("/healthz", health(db, appCache))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	loc := cfg.Location()
	notificationService := notification.Init(e, db, mw)

	enqueuer, worker, closeQueue := newQueue(cfg, notificationService)
	defer closeQueue()

	authService := auth.Init(e, db, appCache, mw, cfg)
	tutorService := tutor.Init(e, db, mw, loc)
	bookingService := booking.Init(e, db, mw, enqueuer, loc)
	chat.Init(e, appCache, mw, cfg, tutorService, bookingService)

	if worker != nil {
		if err := worker.Start(); err != nil {
			return fmt.Errorf("start queue worker: %w", err)
		}
		defer worker.Shutdown()
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New()
		if err := sched.Add("recurring_sweep", cfg.Scheduler.RecurringSweepSpec, func(ctx context.Context) error {
			resp, appErr := bookingService.SweepRecurring(ctx)
			if appErr != nil {
				return appErr
			}
			logger.Info("Scheduler:RecurringSweep:Done", "checked", resp.Checked, "booked", resp.Booked)
			return nil
		}); err != nil {
			return err
		}
		if err := sched.Add("oauth_state_cleanup", cfg.Scheduler.OAuthCleanupSpec, authService.CleanupExpiredOAuthStates); err != nil {
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start", "addr", srv.Addr)
		if err := e.StartServer(srv); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		logger.Info("Server:Shutdown", "signal", sig.String())
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = constants.ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if sched != nil {
		sched.Stop(ctx)
	}
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server:Stopped")
	return nil
}

// newCache uses Redis when an address is configured, otherwise a process-local cache.
func newCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("Cache:Memory", "reason", "redis address not configured, dialog state and token blacklist are process-local")
		return cache.NewMemoryCache(), nil
	}
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return nil, err
	}
	return redisCache, nil
}

// newQueue returns the enqueuer for auto-booking notices and, with Redis, the
// asynq worker that drains it.
func newQueue(cfg *config.Config, handler queue.AutoBookingNoticeHandler) (queue.Enqueuer, *queue.Server, func()) {
	if cfg.Redis.Addr == "" {
		return queue.InlineEnqueuer{Handler: handler}, nil, func() {}
	}

	opt := queue.RedisOpt(cfg.Redis)
	client := queue.NewClient(opt)
	return client, queue.NewServer(opt, handler), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Queue:Close:Error", "error", err)
		}
	}
}

// errorHandler renders AppErrors that reach echo unconverted with the standard
// envelope; everything else goes through echo's default handler.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	base := controller.NewBaseController()
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if _, ok := errors.As(err); ok {
			if respErr := base.ErrorResponse(c, err); respErr != nil {
				logger.Error("Server:ErrorHandler:Error", "error", respErr)
			}
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func health(db database.IDatabase, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), constants.DefaultTimeout)
		defer cancel()

		status := map[string]string{"database": "ok", "cache": "ok"}
		code := http.StatusOK
		if err := db.PingContext(reqCtx); err != nil {
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := c.Ping(reqCtx); err != nil {
			status["cache"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		return ctx.JSON(code, status)
	}
}

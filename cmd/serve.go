package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/canteen-pay/meal-go/calendar"
	"github.com/canteen-pay/meal-go/clients/telegram"
	"github.com/canteen-pay/meal-go/clients/vision"
	appctx "github.com/canteen-pay/meal-go/context"
	"github.com/canteen-pay/meal-go/face"
	"github.com/canteen-pay/meal-go/handlers"
	"github.com/canteen-pay/meal-go/liveness"
	"github.com/canteen-pay/meal-go/logging"
	"github.com/canteen-pay/meal-go/middleware"
	"github.com/canteen-pay/meal-go/payment"
	"github.com/canteen-pay/meal-go/token"
	sentry "github.com/getsentry/sentry-go"
	"github.com/go-chi/chi"
	chiware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServeCmd starts the authorization server
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the canteen payment authorization server",
	Run:   Perform("serve", RunServe),
}

func init() {
	RootCmd.AddCommand(ServeCmd)

	flagBuilder := NewFlagBuilder(ServeCmd)

	flagBuilder.String("address", ":3333",
		"the server listen address").
		Bind("address").
		Env("ADDR")

	flagBuilder.Bool("migrate", true,
		"run database migrations on start").
		Bind("migrate").
		Env("MIGRATE")

	flagBuilder.String("jwt-secret", "",
		"the HMAC secret signing liveness tokens").
		Bind("jwt-secret").
		Env("JWT_SECRET")

	flagBuilder.Int("liveness-token-ttl-sec", 60,
		"liveness token lifetime in seconds").
		Bind("liveness-token-ttl-sec").
		Env("LIVENESS_TOKEN_TTL_SEC")

	flagBuilder.Int("liveness-session-ttl-sec", 25,
		"liveness session lifetime in seconds").
		Bind("liveness-session-ttl-sec").
		Env("LIVENESS_SESSION_TTL_SEC")

	flagBuilder.Int64("subsidy-daily-cents", payment.DefaultSubsidyDailyCents,
		"daily state subsidy in cents").
		Bind("subsidy-daily-cents").
		Env("SUBSIDY_DAILY_CENTS")

	flagBuilder.Int64("max-meal-cents", payment.DefaultMaxMealCents,
		"maximum meal amount in cents").
		Bind("max-meal-cents").
		Env("MAX_MEAL_CENTS")

	flagBuilder.Int64("max-receipt-cents", payment.DefaultMaxReceiptCents,
		"maximum receipt amount in cents").
		Bind("max-receipt-cents").
		Env("MAX_RECEIPT_CENTS")

	flagBuilder.Float64("face-dist-threshold", face.DefaultDistanceThreshold,
		"embedding distance cutoff for a face match").
		Bind("face-dist-threshold").
		Env("FACE_DIST_THRESHOLD")

	flagBuilder.String("app-timezone", "Europe/Moscow",
		"the business-day timezone").
		Bind("app-timezone").
		Env("APP_TZ")

	flagBuilder.String("telegram-bot-token", "",
		"telegram bot token for payment notifications").
		Bind("telegram-bot-token").
		Env("TELEGRAM_BOT_TOKEN")

	flagBuilder.String("vision-url", "http://127.0.0.1:8500",
		"the face analysis sidecar url").
		Bind("vision-url").
		Env("VISION_URL")

	flagBuilder.String("face-model", vision.DefaultModelName,
		"label stored on enrolled face templates").
		Bind("face-model").
		Env("FACE_MODEL")
}

// RunServe is the runner for the serve command
func RunServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logger, err := appctx.GetLogger(ctx)
	if err != nil {
		ctx, logger = logging.SetupLogger(ctx)
	}

	sentryDsn := os.Getenv("SENTRY_DSN")
	if sentryDsn != "" {
		buildTime, _ := ctx.Value(appctx.BuildTimeCTXKey).(string)
		commit, _ := ctx.Value(appctx.CommitCTXKey).(string)
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     sentryDsn,
			Release: fmt.Sprintf("meal-go@%s-%s", commit, buildTime),
		})
		defer sentry.Flush(2 * time.Second)
		if err != nil {
			logger.Panic().Err(err).Msg("unable to setup reporting!")
		}
	}
	logger.Info().Str("prefix", "main").Msg("Starting server")

	// a blank signing secret must never be served
	tokens, err := token.NewService(
		viper.GetString("jwt-secret"),
		time.Duration(viper.GetInt("liveness-token-ttl-sec"))*time.Second,
	)
	if err != nil {
		return fmt.Errorf("JWT_SECRET must be configured: %w", err)
	}

	location, err := time.LoadLocation(viper.GetString("app-timezone"))
	if err != nil {
		return fmt.Errorf("failed to load APP_TZ: %w", err)
	}
	ctx = context.WithValue(ctx, appctx.AppTimezoneCTXKey, location.String())

	databaseURL := viper.GetString("datastore")

	paymentDB, err := payment.NewPostgres(databaseURL, viper.GetBool("migrate"))
	if err != nil {
		return fmt.Errorf("unable to connect to payment db: %w", err)
	}
	livenessDB, err := liveness.NewPostgres(databaseURL, false)
	if err != nil {
		return fmt.Errorf("unable to connect to liveness db: %w", err)
	}
	faceDB, err := face.NewPostgres(databaseURL, false)
	if err != nil {
		return fmt.Errorf("unable to connect to face db: %w", err)
	}
	calendarDB, err := calendar.NewPostgres(databaseURL, false)
	if err != nil {
		return fmt.Errorf("unable to connect to calendar db: %w", err)
	}

	oracle := vision.New(viper.GetString("vision-url"), viper.GetString("face-model"))
	matcher := face.NewMatcher(viper.GetFloat64("face-dist-threshold"))
	sessionTTL := time.Duration(viper.GetInt("liveness-session-ttl-sec")) * time.Second

	calendarService := calendar.InitService(calendarDB)
	livenessService := liveness.InitService(livenessDB, oracle, matcher, tokens, sessionTTL)
	faceService := face.InitService(faceDB, oracle)

	var notifier telegram.Client
	if botToken := viper.GetString("telegram-bot-token"); botToken != "" {
		notifier = telegram.New(botToken)
	}

	paymentService := payment.InitService(
		paymentDB, tokens, calendarService, notifier, location,
		viper.GetInt64("subsidy-daily-cents"),
		viper.GetInt64("max-meal-cents"),
		viper.GetInt64("max-receipt-cents"),
	)

	r := setupRouter(ctx, logger, paymentDB, paymentService, livenessService, faceService)

	go func() {
		err := http.ListenAndServe(":9090", middleware.Metrics())
		if err != nil {
			sentry.CaptureException(err)
			logger.Panic().Err(err).Msg("metrics HTTP server start failed!")
		}
	}()

	srv := http.Server{
		Addr:         viper.GetString("address"),
		Handler:      chi.ServerBaseContext(ctx, r),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 20 * time.Second,
	}
	err = srv.ListenAndServe()
	if err != nil {
		sentry.CaptureException(err)
		logger.Panic().Err(err).Msg("HTTP server start failed!")
	}
	return nil
}

func setupRouter(
	ctx context.Context,
	logger *zerolog.Logger,
	terminals middleware.TerminalLookup,
	paymentService *payment.Service,
	livenessService *liveness.Service,
	faceService *face.Service,
) *chi.Mux {
	buildTime, _ := ctx.Value(appctx.BuildTimeCTXKey).(string)
	commit, _ := ctx.Value(appctx.CommitCTXKey).(string)
	version, _ := ctx.Value(appctx.VersionCTXKey).(string)

	r := chi.NewRouter()

	// chain is:
	// id / transfer -> ip -> heartbeat -> request logger / recovery
	// -> terminal token check -> rate limit -> instrumentation -> handler
	r.Use(chiware.RequestID)
	r.Use(middleware.RequestIDTransfer)
	r.Use(chiware.RealIP)
	r.Use(chiware.Heartbeat("/ping"))
	if logger != nil {
		// Also handles panic recovery
		r.Use(hlog.NewHandler(*logger))
		r.Use(hlog.UserAgentHandler("user_agent"))
		r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
		r.Use(middleware.RequestLogger(logger))
	}
	r.Use(chiware.Timeout(15 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Terminal-Token", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.HealthCheckHandler(version, buildTime, commit))
	r.Get("/metrics", middleware.Metrics())

	r.Route("/api", func(api chi.Router) {
		// resolve the terminal before throttling so only
		// unauthenticated traffic burns the per-IP quota
		api.Use(middleware.TerminalTransfer(terminals))
		api.Use(middleware.RateLimiter)
		api.Use(middleware.TerminalAuthorizedOnly(terminals))

		api.Method("GET", "/employee_info",
			middleware.InstrumentHandler("GetEmployeeInfo", payment.GetEmployeeInfoHandler(paymentService)))
		api.Method("POST", "/pay",
			middleware.InstrumentHandler("PostPay", payment.PostPay(paymentService)))
		api.Method("POST", "/start_liveness",
			middleware.InstrumentHandler("StartLiveness", liveness.StartLivenessHandler(livenessService)))
		api.Method("POST", "/liveness_frame",
			middleware.InstrumentHandler("SubmitFrame", liveness.SubmitFrameHandler(livenessService)))
		api.Method("POST", "/finish_liveness",
			middleware.InstrumentHandler("FinishLiveness", liveness.FinishLivenessHandler(livenessService)))
		api.Method("POST", "/enroll_face",
			middleware.InstrumentHandler("EnrollFace", face.EnrollFaceHandler(faceService)))
	})

	return r
}

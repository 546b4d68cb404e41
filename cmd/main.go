package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	httpapi "github.com/qb9r2873g/voice-room/internal/api/http"
	"github.com/qb9r2873g/voice-room/internal/auth"
	"github.com/qb9r2873g/voice-room/internal/config"
	"github.com/qb9r2873g/voice-room/internal/repository"
	"github.com/qb9r2873g/voice-room/internal/repository/model"
	"github.com/qb9r2873g/voice-room/internal/service"
	"github.com/qb9r2873g/voice-room/lib/logger/slogpretty"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	var (
		meetingRepo     repository.MeetingRepository
		participantRepo repository.ParticipantRepository
		signalRepo      repository.SignalRepository
	)

	if cfg.Database.DSN != "" {
		db, err := connectDatabase(cfg.Database)
		if err != nil {
			log.Error("failed to connect database", slog.Any("error", err))
			os.Exit(1)
		}
		meetingRepo = repository.NewPostgresMeetingRepository(db)
		participantRepo = repository.NewPostgresParticipantRepository(db)
		signalRepo = repository.NewPostgresSignalRepository(db)
	} else {
		log.Warn("no database dsn configured, using in-memory store")
		meetingRepo = repository.NewInMemoryMeetingRepository()
		participantRepo = repository.NewInMemoryParticipantRepository()
		signalRepo = repository.NewInMemorySignalRepository()
	}

	hasher := auth.NewBcryptHasher()
	authority := auth.NewAuthority(hasher)
	locks := service.NewMeetingLocks()

	meetingService := service.NewMeetingService(meetingRepo, participantRepo, authority, hasher, locks, log)
	rosterService := service.NewRosterService(meetingRepo, participantRepo, authority, locks, log)
	signalService := service.NewSignalService(meetingRepo, participantRepo, signalRepo, log)

	meetingController := httpapi.NewMeetingController(meetingService, rosterService)
	participantController := httpapi.NewParticipantController(rosterService)
	signalController := httpapi.NewSignalController(signalService)

	router := httpapi.SetupRouter(meetingController, participantController, signalController)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&model.Meeting{}, &model.Participant{}, &model.Signal{})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

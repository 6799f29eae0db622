package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jackc/pgx/v5/pgxpool"
	playground "github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"twocare/config"
	"twocare/internal/mirror"
	"twocare/internal/repository"
	"twocare/internal/service"
	"twocare/internal/storage"
	"twocare/internal/transport/rest"
	"twocare/pkg/database"
	"twocare/pkg/logger"
	"twocare/pkg/validator"
)

func main() {
	root := &cobra.Command{
		Use:           "twocare",
		Short:         "REST API сервиса подбора сиделок",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var skipMigrations bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер и воркеры синхронизации поиска",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(skipMigrations)
		},
	}
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Не применять миграции при запуске")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}

	mirrorCmd := &cobra.Command{
		Use:   "mirror",
		Short: "Управление поисковым индексом сиделок",
	}
	mirrorCmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Поставить все профили сиделок в очередь индексации",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex()
		},
	})

	root.AddCommand(serveCmd, migrateCmd, mirrorCmd)
	// без подкоманды запускается сервер
	root.RunE = serveCmd.RunE

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

// app - общие зависимости всех команд.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *pgxpool.Pool
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	log, err := logger.NewLogger(cfg.Environment, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать логгер: %w", err)
	}

	db, err := database.NewPostgresDB(ctx, cfg.Postgres, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	return &app{cfg: cfg, logger: log, db: db}, nil
}

func (a *app) close() {
	a.db.Close()
	_ = a.logger.Sync()
}

func runMigrate() error {
	ctx := context.Background()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	return database.RunMigrations(ctx, a.db, a.cfg.Postgres.MigrationsDir, a.logger)
}

func runReindex() error {
	ctx := context.Background()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	notifier, closeRedis := a.newNotifier()
	defer closeRedis()

	services := service.NewServices(service.Deps{
		Repos:    repository.NewRepositories(a.db, a.cfg.Mirror.MaxAttempts),
		Logger:   a.logger,
		Config:   a.cfg,
		Notifier: notifier,
	})

	n, err := services.Caregiver.Reindex(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("в очередь индексации поставлено профилей: %d\n", n)
	return nil
}

func runServe(skipMigrations bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !skipMigrations {
		a.logger.Info("Запуск миграций базы данных")
		if err := database.RunMigrations(ctx, a.db, a.cfg.Postgres.MigrationsDir, a.logger); err != nil {
			return fmt.Errorf("ошибка при выполнении миграций: %w", err)
		}
		a.logger.Info("Миграции успешно выполнены")
	}

	if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
		if err := validator.Register(v); err != nil {
			return fmt.Errorf("ошибка регистрации валидаторов: %w", err)
		}
	}

	var fileStorage storage.FileStorage
	if a.cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(ctx, a.cfg.S3, a.logger)
		if err != nil {
			return fmt.Errorf("не удалось инициализировать S3 хранилище: %w", err)
		}
		fileStorage = s3Storage
		a.logger.Info("S3 хранилище успешно инициализировано", zap.String("endpoint", a.cfg.S3.Endpoint))
	} else {
		a.logger.Warn("S3 хранилище не настроено, загрузка фото будет недоступна")
	}

	checks := []rest.HealthCheck{{Name: "postgres", Check: a.db.Ping}}

	var search mirror.Store = mirror.DisabledStore{}
	var typesenseStore *mirror.TypesenseStore
	if a.cfg.Typesense.URL != "" {
		typesenseStore = mirror.NewTypesenseStore(a.cfg.Typesense, a.logger)
		if err := typesenseStore.InitSchema(ctx); err != nil {
			a.logger.Warn("не удалось подготовить коллекцию поиска", zap.Error(err))
		}
		search = typesenseStore
		checks = append(checks, rest.HealthCheck{Name: "typesense", Check: typesenseStore.Ping})
	} else {
		a.logger.Warn("Typesense не настроен, поиск сиделок будет недоступен")
	}

	notifier, closeRedis := a.newNotifier()
	defer closeRedis()

	repos := repository.NewRepositories(a.db, a.cfg.Mirror.MaxAttempts)

	services := service.NewServices(service.Deps{
		Repos:       repos,
		Logger:      a.logger,
		Config:      a.cfg,
		FileStorage: fileStorage,
		Search:      search,
		Notifier:    notifier,
	})

	var pool *mirror.WorkerPool
	if typesenseStore != nil {
		pool = mirror.NewWorkerPool(repos.Outbox, repos.Caregiver, typesenseStore, notifier, a.cfg.Mirror, a.logger)
		pool.Start(ctx)
	}

	handler := rest.NewHandler(services, a.logger, a.cfg, checks...)

	if a.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.InitRoutes(router)

	srv := &http.Server{
		Addr:           ":" + a.cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    a.cfg.HTTP.ReadTimeout,
		WriteTimeout:   a.cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: a.cfg.HTTP.MaxHeaderMB << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	a.logger.Info("Сервер запущен", zap.String("addr", srv.Addr))

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			a.logger.Error("Ошибка запуска сервера", zap.Error(err))
		}
	}
	a.logger.Info("Выключение сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}

	if pool != nil {
		pool.Stop()
	}

	a.logger.Info("Сервер успешно остановлен")
	return nil
}

// newNotifier подключает Redis для пробуждения воркеров. Без Redis воркеры работают по таймеру.
func (a *app) newNotifier() (mirror.Notifier, func()) {
	addr := a.cfg.Redis.Addr()
	if addr == "" {
		return mirror.NopNotifier{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warn("Redis недоступен, воркеры будут опрашивать очередь по таймеру", zap.String("addr", addr), zap.Error(err))
	}

	return mirror.NewRedisNotifier(client, a.cfg.Redis.Channel, a.logger), func() {
		if err := client.Close(); err != nil {
			a.logger.Warn("ошибка закрытия Redis", zap.Error(err))
		}
	}
}

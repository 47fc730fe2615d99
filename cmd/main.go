package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	adjustSlotCapacityHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/adjust_slot_capacity"
	deleteScheduleHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/delete_schedule"
	getDayCalendarHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/get_day_calendar"
	getRepairJobHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/get_repair_job"
	listCustomerRepairJobsHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/list_customer_repair_jobs"
	listSchedulesHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/list_schedules"
	listSlotRepairJobsHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/list_slot_repair_jobs"
	releaseSlotHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/release_slot"
	reserveSlotHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/reserve_slot"
	updateRepairJobStatusHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/update_repair_job_status"
	upsertScheduleHandler "github.com/m04kA/SMC-RepairSlotService/internal/api/handlers/upsert_schedule"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/config"
	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/internal/infra/events"
	repairJobsService "github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs"
	scheduleService "github.com/m04kA/SMC-RepairSlotService/internal/service/schedule"
	adjustSlotCapacityUC "github.com/m04kA/SMC-RepairSlotService/internal/usecase/adjust_slot_capacity"
	getDayCalendarUC "github.com/m04kA/SMC-RepairSlotService/internal/usecase/get_day_calendar"
	releaseSlotUC "github.com/m04kA/SMC-RepairSlotService/internal/usecase/release_slot"
	reserveSlotUC "github.com/m04kA/SMC-RepairSlotService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
	"github.com/m04kA/SMC-RepairSlotService/pkg/metrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

// eventPublisher общий интерфейс RabbitMQ и no-op публикации
type eventPublisher interface {
	Publish(ctx context.Context, event domain.RepairJobEvent) error
	Close() error
}

func main() {
	// Загружаем конфигурацию (путь можно переопределить через CONFIG_PATH)
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-RepairSlotService...")

	loc, err := cfg.Slots.Location()
	if err != nil {
		log.Fatal("Failed to load timezone: %v", err)
	}
	log.Info("Configuration loaded (store=%s, timezone=%s)", cfg.Store.Backend, loc)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к хранилищу
	store, err := openBackend(context.Background(), cfg, loc, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer store.close()

	// Redis для rate limiting (необязателен: без него лимитер отключен)
	var rateLimitClient redis.Scripter
	if cfg.RateLimit.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unavailable at %s, rate limiting will fail open: %v", cfg.Redis.Addr, err)
		} else {
			log.Info("Connected to Redis at %s", cfg.Redis.Addr)
		}
		cancel()
		defer rdb.Close()
		rateLimitClient = rdb
	}

	// Публикация событий о заявках
	var publisher eventPublisher = events.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PublishTimeout(), log)
		if err != nil {
			log.Warn("RabbitMQ is unavailable, events will not be published: %v", err)
		} else {
			log.Info("RabbitMQ publisher initialized (queue=%s)", cfg.RabbitMQ.Queue)
			publisher = rabbit
		}
	}
	defer publisher.Close()

	// Расписание по умолчанию из конфигурации
	defaults := domain.Schedule{
		OpenTime:        types.TimeString(cfg.Slots.OpenTime),
		CloseTime:       types.TimeString(cfg.Slots.CloseTime),
		IntervalMinutes: cfg.Slots.IntervalMinutes,
		Capacity:        cfg.Slots.DefaultCapacity,
	}

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(store.schedules, defaults, log)
	repairJobsSvc := repairJobsService.NewService(store.repairJobs, loc, log)

	// Инициализируем use cases
	getDayCalendarUseCase := getDayCalendarUC.NewUseCase(
		store.slots,
		scheduleSvc,
		loc,
		log,
	)
	reserveSlotUseCase := reserveSlotUC.NewUseCase(
		store.slots,
		store.repairJobs,
		scheduleSvc,
		store.tx,
		publisher,
		metricsCollector,
		loc,
		log,
	)
	releaseSlotUseCase := releaseSlotUC.NewUseCase(
		store.slots,
		store.repairJobs,
		store.tx,
		publisher,
		metricsCollector,
		log,
	)
	adjustSlotCapacityUseCase := adjustSlotCapacityUC.NewUseCase(
		store.slots,
		scheduleSvc,
		store.tx,
		loc,
		log,
	)

	// Инициализируем handlers
	getDayCalendar := getDayCalendarHandler.NewHandler(getDayCalendarUseCase, log)
	reserveSlot := reserveSlotHandler.NewHandler(reserveSlotUseCase, log)
	releaseSlot := releaseSlotHandler.NewHandler(releaseSlotUseCase, log)
	adjustSlotCapacity := adjustSlotCapacityHandler.NewHandler(adjustSlotCapacityUseCase, log)
	getRepairJob := getRepairJobHandler.NewHandler(repairJobsSvc, log)
	updateRepairJobStatus := updateRepairJobStatusHandler.NewHandler(repairJobsSvc, log)
	listCustomerRepairJobs := listCustomerRepairJobsHandler.NewHandler(repairJobsSvc, log)
	listSlotRepairJobs := listSlotRepairJobsHandler.NewHandler(repairJobsSvc, log)
	listSchedules := listSchedulesHandler.NewHandler(scheduleSvc, log)
	upsertSchedule := upsertScheduleHandler.NewHandler(scheduleSvc, log)
	deleteSchedule := deleteScheduleHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (X-User-ID необязателен, X-User-Role: admin открывает полный календарь)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.Identity)

	// Календарь дня
	public.HandleFunc("/calendar/{date}", getDayCalendar.Handle).Methods(http.MethodGet)

	// Расписания
	public.HandleFunc("/schedules", listSchedules.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Заявки на ремонт ---
	// Создание заявки с бронированием места (с rate limiting)
	protected.Handle("/repair-jobs",
		middleware.RateLimit(cfg.RateLimit, rateLimitClient, log)(http.HandlerFunc(reserveSlot.Handle)),
	).Methods(http.MethodPost)

	// Получение заявки по ID
	protected.HandleFunc("/repair-jobs/{jobId}", getRepairJob.Handle).Methods(http.MethodGet)

	// Отмена заявки и освобождение места
	protected.HandleFunc("/repair-jobs/{jobId}/cancel", releaseSlot.Handle).Methods(http.MethodPatch)

	// Смена статуса заявки администратором (места в слоте не меняются)
	protected.HandleFunc("/repair-jobs/{jobId}/status", updateRepairJobStatus.Handle).Methods(http.MethodPatch)

	// История заявок клиента
	protected.HandleFunc("/customers/{customerId}/repair-jobs", listCustomerRepairJobs.Handle).Methods(http.MethodGet)

	// --- Управление мастерской (X-User-Role: admin) ---
	// Заявки слота
	protected.HandleFunc("/slots/{slotId}/repair-jobs", listSlotRepairJobs.Handle).Methods(http.MethodGet)

	// Изменение емкости слота
	protected.HandleFunc("/slots/{slotId}/capacity", adjustSlotCapacity.Handle).Methods(http.MethodPut)

	// Расписания
	protected.HandleFunc("/schedules/{key}", upsertSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/schedules/{key}", deleteSchedule.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

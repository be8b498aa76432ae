package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/bookline/booking-service/internal/api/handlers/cancel_appointment"
	confirmAppointmentHandler "github.com/bookline/booking-service/internal/api/handlers/confirm_appointment"
	createBookingHandler "github.com/bookline/booking-service/internal/api/handlers/create_booking"
	createWaitlistEntryHandler "github.com/bookline/booking-service/internal/api/handlers/create_waitlist_entry"
	getAppointmentHandler "github.com/bookline/booking-service/internal/api/handlers/get_appointment"
	getAppointmentByTokenHandler "github.com/bookline/booking-service/internal/api/handlers/get_appointment_by_token"
	getAvailableSlotsHandler "github.com/bookline/booking-service/internal/api/handlers/get_available_slots"
	getCustomerPackagesHandler "github.com/bookline/booking-service/internal/api/handlers/get_customer_packages"
	getPackageHandler "github.com/bookline/booking-service/internal/api/handlers/get_package"
	getPackageRedemptionsHandler "github.com/bookline/booking-service/internal/api/handlers/get_package_redemptions"
	getWaitlistCandidatesHandler "github.com/bookline/booking-service/internal/api/handlers/get_waitlist_candidates"
	getWaitlistEntryHandler "github.com/bookline/booking-service/internal/api/handlers/get_waitlist_entry"
	listAppointmentsHandler "github.com/bookline/booking-service/internal/api/handlers/list_appointments"
	listWaitlistHandler "github.com/bookline/booking-service/internal/api/handlers/list_waitlist"
	notifyWaitlistHandler "github.com/bookline/booking-service/internal/api/handlers/notify_waitlist"
	redeemPackageHandler "github.com/bookline/booking-service/internal/api/handlers/redeem_package"
	resolveWaitlistHandler "github.com/bookline/booking-service/internal/api/handlers/resolve_waitlist"
	sellPackageHandler "github.com/bookline/booking-service/internal/api/handlers/sell_package"
	updateAppointmentStatusHandler "github.com/bookline/booking-service/internal/api/handlers/update_appointment_status"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/config"
	appointmentRepo "github.com/bookline/booking-service/internal/infra/storage/appointment"
	catalogRepo "github.com/bookline/booking-service/internal/infra/storage/catalog"
	customerRepo "github.com/bookline/booking-service/internal/infra/storage/customer"
	packagesRepo "github.com/bookline/booking-service/internal/infra/storage/packages"
	scheduleRepo "github.com/bookline/booking-service/internal/infra/storage/schedule"
	waitlistRepo "github.com/bookline/booking-service/internal/infra/storage/waitlist"
	notifierClient "github.com/bookline/booking-service/internal/integrations/notifier"
	appointmentsService "github.com/bookline/booking-service/internal/service/appointments"
	packagesService "github.com/bookline/booking-service/internal/service/packages"
	waitlistService "github.com/bookline/booking-service/internal/service/waitlist"
	createBookingUC "github.com/bookline/booking-service/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/bookline/booking-service/internal/usecase/get_available_slots"
	"github.com/bookline/booking-service/pkg/dbmetrics"
	"github.com/bookline/booking-service/pkg/logger"
	"github.com/bookline/booking-service/pkg/metrics"
	"github.com/bookline/booking-service/pkg/simpletxmanager"
	"github.com/bookline/booking-service/pkg/txmanager"
)

// TxManager общий интерфейс обоих transaction manager'ов
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting booking-service...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента сервиса уведомлений
	notifier := notifierClient.NewClient(
		cfg.Notifier.URL,
		time.Duration(cfg.Notifier.Timeout)*time.Second,
		log,
	)
	log.Info("Notifier client initialized (url=%s, timeout=%ds)", cfg.Notifier.URL, cfg.Notifier.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		catalogRepository     *catalogRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		customerRepository    *customerRepo.Repository
		waitlistRepository    *waitlistRepo.Repository
		packagesRepository    *packagesRepo.Repository
		txMgr                 TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		customerRepository = customerRepo.NewRepository(wrappedDB)
		waitlistRepository = waitlistRepo.NewRepository(wrappedDB)
		packagesRepository = packagesRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		customerRepository = customerRepo.NewRepository(db)
		waitlistRepository = waitlistRepo.NewRepository(db)
		packagesRepository = packagesRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	waitlistSvc := waitlistService.NewService(
		waitlistRepository,
		catalogRepository,
		notifier,
		log,
	)
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		waitlistSvc,
		log,
	)
	packagesSvc := packagesService.NewService(
		packagesRepository,
		customerRepository,
		txMgr,
		&packagesService.UUIDGenerator{},
		&packagesService.RealTimeProvider{},
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		scheduleRepository,
		customerRepository,
		notifier,
		txMgr,
		&createBookingUC.UUIDTokenGenerator{},
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		scheduleRepository,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	getAppointmentByToken := getAppointmentByTokenHandler.NewHandler(appointmentsSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentsSvc, log)
	createWaitlistEntry := createWaitlistEntryHandler.NewHandler(waitlistSvc, log)
	listWaitlist := listWaitlistHandler.NewHandler(waitlistSvc, log)
	getWaitlistEntry := getWaitlistEntryHandler.NewHandler(waitlistSvc, log)
	getWaitlistCandidates := getWaitlistCandidatesHandler.NewHandler(waitlistSvc, log)
	notifyWaitlist := notifyWaitlistHandler.NewHandler(waitlistSvc, log)
	resolveWaitlist := resolveWaitlistHandler.NewHandler(waitlistSvc, log)
	sellPackage := sellPackageHandler.NewHandler(packagesSvc, log)
	redeemPackage := redeemPackageHandler.NewHandler(packagesSvc, log)
	getPackage := getPackageHandler.NewHandler(packagesSvc, log)
	getPackageRedemptions := getPackageRedemptionsHandler.NewHandler(packagesSvc, log)
	getCustomerPackages := getCustomerPackagesHandler.NewHandler(packagesSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (confirmation token сам является правом доступа)
	// ============================================================

	api.HandleFunc("/confirmations/{token}", getAppointmentByToken.Handle).Methods(http.MethodGet)
	api.HandleFunc("/confirmations/{token}/confirm", confirmAppointment.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-Tenant-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Доступные слоты ---
	protected.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// --- Записи ---
	protected.HandleFunc("/appointments", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)

	// --- Лист ожидания ---
	protected.HandleFunc("/waitlist", createWaitlistEntry.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/waitlist", listWaitlist.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/waitlist/candidates", getWaitlistCandidates.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/waitlist/{entryId}", getWaitlistEntry.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/waitlist/{entryId}/notify", notifyWaitlist.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/waitlist/{entryId}/resolve", resolveWaitlist.Handle).Methods(http.MethodPost)

	// --- Пакеты услуг ---
	protected.HandleFunc("/packages", sellPackage.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/packages/{packageId}", getPackage.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/packages/{packageId}/redeem", redeemPackage.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/packages/{packageId}/redemptions", getPackageRedemptions.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/customers/{customerId}/packages", getCustomerPackages.Handle).Methods(http.MethodGet)

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
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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

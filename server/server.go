package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/helmetguard/server/alert"
	"github.com/Daskott/helmetguard/server/eventlog"
	"github.com/Daskott/helmetguard/server/feed"
	"github.com/Daskott/helmetguard/server/gstorage"
	"github.com/Daskott/helmetguard/server/logger"
	"github.com/Daskott/helmetguard/server/twilio"
	"github.com/Daskott/helmetguard/shared"
	"github.com/Daskott/helmetguard/version"
	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
)

var logg = logger.NewLogger()

// NewRouter wires the HTTP API to the notifier and the event log.
func NewRouter(notifier *alert.Notifier, events EventReader, validate *validator.Validate) *mux.Router {
	h := &handlers{notifier: notifier, events: events, validate: validate}

	router := mux.NewRouter()
	router.Use(loggingMiddleware, corsMiddleware, jsonContentTypeMiddleware)

	router.HandleFunc("/", h.health).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/send-emergency-sms", h.sendEmergencySms).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/share-location", h.shareLocation).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/events", h.listEvents).Methods("GET", "OPTIONS")

	return router
}

// Start runs the HTTP API, the helmet feed listener and the scheduled event log
// backups until the process receives SIGINT or SIGTERM.
func Start(config shared.ServerConfig, devMode bool) {
	validate := validator.New()

	location, err := time.LoadLocation(config.HelmetGuard.TimeZone)
	fatalOnError(err)

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	storageConfig := config.Google.Storage
	if storageConfig.EnableEventLogBackup {
		gStorage, err := gstorage.NewGStorage(config.Google.ApplicationCredentials)
		fatalOnError(err)
		defer gStorage.Close()

		fatalOnError(restoreEventLog(gStorage, storageConfig, config.HelmetGuard.EventLogPath))
		fatalOnError(scheduleEventLogBackup(scheduler, gStorage, storageConfig, config.HelmetGuard.EventLogPath))
	}

	store, err := eventlog.NewStore(config.HelmetGuard.EventLogPath)
	fatalOnError(err)

	notifier := alert.NewNotifier(newGateway(config, devMode), store, location)
	if notifier.GatewayConfigured() {
		logg.Info("Twilio client initialized successfully")
	} else {
		logg.Warn("Twilio credentials missing, SMS will not work")
	}

	ctx, stopFeed := context.WithCancel(context.Background())
	startFeedListener(ctx, config, notifier)

	scheduler.StartAsync()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", config.HelmetGuard.Listener.Port),
		Handler: NewRouter(notifier, store, validate),
	}
	go serve(server)

	logg.Infof("%v v%v started", SERVICE_NAME, version.Version)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cleanup(stopFeed, scheduler, server)
}

// newGateway returns nil when twilio is not configured, so the notifier reports
// the gateway as unavailable. Dev mode falls back to a stub that sends nothing.
func newGateway(config shared.ServerConfig, devMode bool) alert.Gateway {
	countryCode := config.HelmetGuard.DefaultCountryCode

	if twilio.Configured(config.Twilio) {
		return twilio.NewClient(config.Twilio, countryCode)
	}

	if devMode {
		logg.Warn("dev mode: using stub sms gateway, no messages will be sent")
		return &twilio.ClientStub{CountryCode: countryCode}
	}

	return nil
}

func startFeedListener(ctx context.Context, config shared.ServerConfig, notifier *alert.Notifier) {
	if config.Firebase.DatabaseURL == "" {
		logg.Warn("Firebase database url missing, crash detection feed is disabled")
		return
	}

	contacts := feed.ContactsWithFallback(config.HelmetGuard.Contacts, config.Twilio.FallbackRecipient)
	if len(contacts) == 0 {
		logg.Warn("no contacts configured for feed emergencies, they will only be logged")
	}

	listener, err := feed.NewListener(config.Firebase, config.HelmetGuard.Rider, contacts, notifier)
	fatalOnError(err)

	listener.Start(ctx)
}

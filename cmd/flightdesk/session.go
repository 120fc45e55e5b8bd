package main

import (
	"context"
	"fmt"
	"time"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/domain/repository"
	"flightdesk-service/internal/infrastructure/config"
	"flightdesk-service/internal/infrastructure/oauth"
	"flightdesk-service/internal/infrastructure/persistence"
	gateways "flightdesk-service/internal/interface/repository"
	"flightdesk-service/internal/usecase"
	"flightdesk-service/pkg/logger"
	"flightdesk-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// eventTimeout bounds how long a command waits for a controller event
const eventTimeout = 2 * time.Minute

// session wires one controller to the configured gateway and turns its
// events into channels a command can wait on
type session struct {
	ctrl     *usecase.ListDetailController
	view     entity.ViewDefinition
	gateway  repository.CollectionGateway
	listener usecase.Listener
	log      *logger.ZapLogger
	events   chan sessionEvent
	cancel   context.CancelFunc
	closer   func()
}

type sessionEvent struct {
	kind       string
	collection entity.Collection
	fault      *entity.Fault
	nav        entity.Navigation
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	view := entity.FlightBookingView()

	gateway, closer, err := openGateway(ctx, cfg, view, log)
	if err != nil {
		return nil, err
	}

	s := &session{
		view:    view,
		gateway: gateway,
		log:     log,
		events:  make(chan sessionEvent, 16),
		closer:  closer,
	}
	listener := usecase.ListenerFuncs{
		OnCollectionChanged: func(c entity.Collection) {
			s.events <- sessionEvent{kind: "collection", collection: c}
		},
		OnFilteredViewChanged: func(c entity.Collection) {
			s.events <- sessionEvent{kind: "filtered", collection: c}
		},
		OnFaultOccurred: func(f *entity.Fault) {
			s.events <- sessionEvent{kind: "fault", fault: f}
		},
		OnNavigationRequested: func(n entity.Navigation) {
			s.events <- sessionEvent{kind: "navigation", nav: n}
		},
		OnFormCleared: func() {
			s.events <- sessionEvent{kind: "formCleared"}
		},
	}

	s.listener = listener

	m := metrics.NewMetrics("flightdesk", prometheus.DefaultRegisterer)
	s.ctrl = usecase.NewListDetailController(view, gateway, listener, log, m)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.ctrl.Run(runCtx)
	return s, nil
}

func openGateway(ctx context.Context, cfg *config.Config, view entity.ViewDefinition, log logger.Logger) (repository.CollectionGateway, func(), error) {
	switch cfg.GatewayBackend {
	case config.BackendMongo:
		client, db, err := persistence.NewMongoDatabase(ctx, persistence.MongoOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
			Username: cfg.MongoUser,
			Password: cfg.MongoPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		}
		return gateways.NewMongoGateway(db, cfg.MongoCollection, view, log), closer, nil

	case config.BackendPostgres:
		db, err := persistence.NewPostgresDB(ctx, cfg.PostgresURI)
		if err != nil {
			return nil, nil, err
		}
		gw := gateways.NewGormBookingGateway(db, log)
		if err := gw.AutoMigrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate bookings table: %w", err)
		}
		closer := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return gw, closer, nil

	default:
		auth := oauth.NewODataOAuth(cfg.ODataClientID, cfg.ODataClientSecret, cfg.ODataTokenURL, nil, log)
		client := auth.HTTPClient(ctx, cfg.ODataTimeout)
		return gateways.NewODataGateway(client, cfg.ODataBaseURL, cfg.ODataEntitySet, view.CreateFields, log), func() {}, nil
	}
}

func (s *session) Close() {
	s.cancel()
	s.closer()
	s.log.Sync()
}

// waitFor blocks until one of kinds arrives. A fault is returned as an
// error unless "fault" is among kinds.
func (s *session) waitFor(ctx context.Context, kinds ...string) (sessionEvent, error) {
	timeout := time.After(eventTimeout)
	for {
		select {
		case e := <-s.events:
			for _, k := range kinds {
				if e.kind == k {
					return e, nil
				}
			}
			if e.kind == "fault" {
				return e, e.fault
			}
		case <-timeout:
			return sessionEvent{}, fmt.Errorf("timed out waiting for %v", kinds)
		case <-ctx.Done():
			return sessionEvent{}, ctx.Err()
		}
	}
}

// load fetches the collection and returns it
func (s *session) load(ctx context.Context) (entity.Collection, error) {
	return s.loadWith(ctx, s.ctrl)
}

// loadRelated fetches the set reached from record through navigation
func (s *session) loadRelated(ctx context.Context, record entity.Record, navigation string) (entity.Collection, error) {
	source, ok := s.gateway.(repository.RelatedCollectionGateway)
	if !ok {
		return nil, fmt.Errorf("backend does not serve related sets")
	}

	related := entity.ViewDefinition{Name: navigation, Navigation: navigation}
	detail, err := usecase.NewDetailController(s.view, record, related, source, s.listener, s.log, nil)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go detail.Run(runCtx)

	return s.loadWith(ctx, detail)
}

func (s *session) loadWith(ctx context.Context, ctrl *usecase.ListDetailController) (entity.Collection, error) {
	if err := ctrl.Load(); err != nil {
		return nil, err
	}
	e, err := s.waitFor(ctx, "collection")
	if err != nil {
		return nil, err
	}
	// drain the filtered view emitted with every load
	if _, err := s.waitFor(ctx, "filtered"); err != nil {
		return nil, err
	}
	return e.collection, nil
}

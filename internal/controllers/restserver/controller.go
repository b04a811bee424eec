package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/heartseries/internal/export/fhir"
	"github.com/chrissnell/heartseries/internal/log"
	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxBodyBytes caps the size of an uploaded CSV
const maxBodyBytes = 32 << 20

// Controller represents the REST server controller
type Controller struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	restConfig  config.RESTServerData
	Server      http.Server
	pipeline    *series.Pipeline
	transformer *fhir.Transformer
	patient     fhir.Patient
	logger      *zap.SugaredLogger
	handlers    *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*Controller, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	opts, err := cfgData.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %v", err)
	}

	rc := config.RESTServerData{}
	if cfgData.Controllers.RESTServer != nil {
		rc = *cfgData.Controllers.RESTServer
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("controllers.rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Info("controllers.rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	patient := fhir.Patient{ID: "example-patient"}
	if cfgData.Export.FHIR != nil {
		p := cfgData.Export.FHIR.Patient
		patient = fhir.Patient{ID: p.ID, Family: p.Family, Given: p.Given, Gender: p.Gender, BirthDate: p.BirthDate}
		if patient.ID == "" {
			patient.ID = "example-patient"
		}
	}

	ctrl := &Controller{
		ctx:         ctx,
		wg:          wg,
		restConfig:  rc,
		pipeline:    series.NewPipeline(opts, logger.Named("pipeline")),
		transformer: fhir.NewTransformer(),
		patient:     patient,
		logger:      logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the routed handler, for serving without a listener
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger.Named("http")))

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analyze", c.handlers.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/clean", c.handlers.Clean).Methods(http.MethodPost)
	api.HandleFunc("/fhir", c.handlers.FHIR).Methods(http.MethodPost)
	api.HandleFunc("/chart", c.handlers.Chart).Methods(http.MethodPost)

	router.HandleFunc("/healthz", c.handlers.Health).Methods(http.MethodGet)

	return router
}

package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/heartseries/internal/controllers/restserver"
	"github.com/chrissnell/heartseries/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (ControllerManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	cm := &controllerManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		logger:         logger,
		controllers:    make([]Controller, 0),
	}

	// Create controllers based on configuration
	if cfgData.Controllers.RESTServer != nil {
		controller, err := cm.createController("rest")
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	controllers    []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	if len(c.controllers) == 0 {
		return fmt.Errorf("no controllers configured")
	}

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller of the given type
func (cm *controllerManager) createController(controllerType string) (Controller, error) {
	switch controllerType {
	case "restserver", "rest":
		return restserver.NewController(cm.ctx, cm.wg, cm.configProvider, cm.logger.Named("rest"))
	default:
		return nil, fmt.Errorf("unknown controller type: %s", controllerType)
	}
}

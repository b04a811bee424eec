package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/heartseries/internal/app"
	"github.com/chrissnell/heartseries/internal/log"
	"github.com/chrissnell/heartseries/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file")
	input := flag.String("input", "", "Path to a heart-rate CSV; overrides input.path and enables the cleaned CSV output")
	serve := flag.Bool("serve", false, "Run the REST server instead of processing the input once")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("heartseries %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	provider, err := loadConfig(*cfgFile, *input, *serve)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	application := app.New(provider, log.GetSugaredLogger())

	if *serve {
		if err := application.Serve(context.Background()); err != nil {
			log.Errorf("Application error: %v", err)
			os.Exit(1)
		}
		return
	}

	if _, err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile, input string, serve bool) (config.ConfigProvider, error) {
	var cfgData *config.ConfigData

	if cfgFile != "" {
		filename, _ := filepath.Abs(cfgFile)
		var err error
		cfgData, err = config.NewYAMLProvider(filename).LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
		}
	} else {
		cfgData = &config.ConfigData{}
	}

	if input != "" {
		cfgData.Input.Type = config.InputTypeCSV
		cfgData.Input.Path = input
		if cfgData.Storage.CSV == nil {
			cfgData.Storage.CSV = &config.CSVData{Enabled: true}
		}
	}
	if serve && cfgData.Controllers.RESTServer == nil {
		cfgData.Controllers.RESTServer = &config.RESTServerData{}
	}

	cfgData.ApplyDefaults()
	if err := cfgData.Validate(); err != nil {
		return nil, err
	}
	if !serve && cfgData.Input.Path == "" {
		return nil, fmt.Errorf("no input configured: pass -input or set input.path")
	}

	return config.NewStaticProvider(cfgData), nil
}

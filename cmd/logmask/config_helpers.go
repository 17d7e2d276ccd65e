package main

import (
	"os"
	"strings"

	"github.com/suryansh-23/logmask/internal/config"
)

const configEnv = "LOGMASK_CONFIG"

// configLocation records where the config path came from so doctor can
// explain which setting won.
type configLocation struct {
	path   string
	source string
}

const (
	sourceFlag    = "flag"
	sourceEnv     = "env"
	sourceDefault = "default"
)

// locateConfig applies the --config > LOGMASK_CONFIG > XDG default order.
func locateConfig(flagPath string) (configLocation, error) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return configLocation{path: p, source: sourceFlag}, nil
	}
	if p := strings.TrimSpace(os.Getenv(configEnv)); p != "" {
		return configLocation{path: p, source: sourceEnv}, nil
	}
	p, err := config.DefaultPath()
	if err != nil {
		return configLocation{}, err
	}
	return configLocation{path: p, source: sourceDefault}, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type DB struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Name string `yaml:"database"`
}

// MQ configures the optional notification bridge. An empty host disables it.
type MQ struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
}

type HTTP struct {
	Port int `yaml:"port"`
}

type Realtime struct {
	// SendBuffer is the per-connection outbound queue depth.
	SendBuffer int `yaml:"send_buffer"`
	// WriteTimeoutSec bounds a single websocket write so one frozen peer
	// cannot starve the fan-out of a busy order.
	WriteTimeoutSec int `yaml:"write_timeout_seconds"`
}

func (r Realtime) WriteTimeout() time.Duration {
	return time.Duration(r.WriteTimeoutSec) * time.Second
}

type App struct {
	Database DB       `yaml:"database"`
	Rabbit   MQ       `yaml:"rabbitmq"`
	HTTP     HTTP     `yaml:"http"`
	Realtime Realtime `yaml:"realtime"`
}

func Load(path string) (App, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, err
	}
	var a App
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if a.Database.Host == "" {
		return App{}, errors.New("invalid config: missing database host")
	}
	a.applyDefaults()
	return a, nil
}

func (a *App) applyDefaults() {
	if a.HTTP.Port == 0 {
		a.HTTP.Port = 3000
	}
	if a.Realtime.SendBuffer <= 0 {
		a.Realtime.SendBuffer = 32
	}
	if a.Realtime.WriteTimeoutSec <= 0 {
		a.Realtime.WriteTimeoutSec = 5
	}
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}

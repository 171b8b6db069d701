package notify

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pocketpoker/internal/config"
)

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

func ConfigFromServer(cfg config.ServerConfig) (Config, error) {
	out := Config{
		Enabled:             cfg.NotifyEnabled,
		ConfigPath:          strings.TrimSpace(cfg.NotifyConfigPath),
		Workers:             cfg.NotifyWorkers,
		RetryMax:            cfg.NotifyRetryMax,
		RetryBase:           time.Duration(cfg.NotifyRetryBaseMS) * time.Millisecond,
		FailureThreshold:    3,
		CircuitOpenDuration: 30 * time.Second,
		RequestTimeout:      5 * time.Second,
		DispatchBuffer:      256,
	}
	if !out.Enabled {
		return out, nil
	}
	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	if out.RetryBase <= 0 {
		out.RetryBase = 500 * time.Millisecond
	}
	if out.ConfigPath == "" {
		return out, nil
	}
	raw, err := os.ReadFile(out.ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("read notify config path %q: %w", out.ConfigPath, err)
	}
	targets, err := parseTargets(raw)
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

// parseTargets drops disabled entries and targets without an endpoint.
func parseTargets(raw []byte) ([]Target, error) {
	var file targetsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse notify targets: %w", err)
	}
	filtered := make([]Target, 0, len(file.Targets))
	for _, target := range file.Targets {
		target.Platform = strings.ToLower(strings.TrimSpace(target.Platform))
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" || !target.Enabled {
			continue
		}
		for i := range target.Events {
			target.Events[i] = strings.ToLower(strings.TrimSpace(target.Events[i]))
		}
		for i := range target.Seasons {
			target.Seasons[i] = strings.TrimSpace(target.Seasons[i])
		}
		filtered = append(filtered, target)
	}
	return filtered, nil
}

package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		ConfigPath:        "./autoprompt.yml",
		StatePath:         "./state/autoprompt.db",
		OutputDir:         "./output",
		TasksDir:          "./tasks",
		Port:              "8080",
		SchedulerInterval: 3600,
		APIAccessKey:      "test-key",
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.ConfigPath != "./autoprompt.yml" {
		t.Errorf("Expected config path './autoprompt.yml', got '%s'", cfg.ConfigPath)
	}
	if cfg.StatePath != "./state/autoprompt.db" {
		t.Errorf("Expected state path './state/autoprompt.db', got '%s'", cfg.StatePath)
	}
	if cfg.OutputDir != "./output" {
		t.Errorf("Expected output dir './output', got '%s'", cfg.OutputDir)
	}
	if cfg.TasksDir != "./tasks" {
		t.Errorf("Expected tasks dir './tasks', got '%s'", cfg.TasksDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SchedulerInterval != 3600 {
		t.Errorf("Expected scheduler interval 3600, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd
var osGetenv = os.Getenv

const (
	userConfigDir    = ".config/gitlab-mcp"
	projectConfigDir = ".gitlab-mcp"
	configFileName   = "config.yaml"

	// Environment variables. These override any file-provided value.
	EnvToken = "GITLAB_TOKEN"
	EnvURL   = "GITLAB_URL"
)

// LoadConfig loads the gitlab-mcp configuration by layering default, user,
// and project settings, then applying environment overrides on top.
func LoadConfig() (GitLabMCPConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. Determine user-specific configuration path
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// Log this error but don't fail; user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return GitLabMCPConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	// 3. Determine project-specific configuration path
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return GitLabMCPConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	// 4. Environment variables always win over file values.
	if url := osGetenv(EnvURL); url != "" {
		config.GitLab.URL = url
	}
	if token := osGetenv(EnvToken); token != "" {
		config.GitLab.Token = token
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a GitLabMCPConfig from a YAML file.
func loadConfigFromFile(filePath string) (GitLabMCPConfig, error) {
	var config GitLabMCPConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return GitLabMCPConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return GitLabMCPConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay GitLabMCPConfig) GitLabMCPConfig {
	mergedConfig := base

	if overlay.GitLab.URL != "" {
		mergedConfig.GitLab.URL = overlay.GitLab.URL
	}
	if overlay.GitLab.Token != "" {
		mergedConfig.GitLab.Token = overlay.GitLab.Token
	}
	if overlay.Server.Host != "" {
		mergedConfig.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		mergedConfig.Server.Port = overlay.Server.Port
	}
	if overlay.Server.LogLevel != "" {
		mergedConfig.Server.LogLevel = overlay.Server.LogLevel
	}

	return mergedConfig
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// UserConfig holds calculator preferences stored in ~/.factorio-calc/config.json
type UserConfig struct {
	// Fuel burner machines use unless a configuration names one
	DefaultFuel string `json:"default_fuel,omitempty"`

	// Recipes never chosen automatically
	ExcludedRecipes []string `json:"excluded_recipes,omitempty"`

	// Category -> serialized machine configuration
	Defaults map[string]string `json:"defaults,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for ~/.factorio-calc/config.json
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, userConfigDir, "config.json"))
}

// NewUserConfigHandlerAt creates a handler for an explicit file
func NewUserConfigHandlerAt(configPath string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: configPath}, nil
}

// Load reads the user config; a missing file is an empty config
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

func (h *UserConfigHandler) update(fn func(*UserConfig)) error {
	config, err := h.Load()
	if err != nil {
		return err
	}
	fn(config)
	return h.Save(config)
}

// SetDefaultFuel sets the preferred fuel
func (h *UserConfigHandler) SetDefaultFuel(fuel string) error {
	return h.update(func(c *UserConfig) { c.DefaultFuel = fuel })
}

// SetDefaultConfiguration stores a category's serialized configuration
func (h *UserConfigHandler) SetDefaultConfiguration(category, serialized string) error {
	return h.update(func(c *UserConfig) {
		if c.Defaults == nil {
			c.Defaults = make(map[string]string)
		}
		c.Defaults[category] = serialized
	})
}

// SetExcluded adds or removes a recipe from the excluded list
func (h *UserConfigHandler) SetExcluded(recipeID string, excluded bool) error {
	return h.update(func(c *UserConfig) {
		set := make(map[string]bool, len(c.ExcludedRecipes)+1)
		for _, id := range c.ExcludedRecipes {
			set[id] = true
		}
		if excluded {
			set[recipeID] = true
		} else {
			delete(set, recipeID)
		}

		c.ExcludedRecipes = c.ExcludedRecipes[:0]
		for id := range set {
			c.ExcludedRecipes = append(c.ExcludedRecipes, id)
		}
		sort.Strings(c.ExcludedRecipes)
	})
}

// Clear removes every preference
func (h *UserConfigHandler) Clear() error {
	return h.Save(&UserConfig{})
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}

package config

// CalculatorConfig selects the game data and the starting preferences
type CalculatorConfig struct {
	// YAML catalog or raw prototype dump; empty uses the built-in data set
	Dataset string `mapstructure:"dataset"`

	// yaml or raw; detected from the file extension when empty
	DatasetFormat string `mapstructure:"dataset_format" validate:"omitempty,oneof=yaml raw"`

	DefaultFuel string `mapstructure:"default_fuel" validate:"required"`

	// Recipe ids excluded at startup, one per line
	BlacklistFile string `mapstructure:"blacklist_file"`
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gpiomap/host/mem"
)

// Config describes where the GPIO block lives on this host
type Config struct {
	// Device path (e.g., "/dev/mem", or "/dev/gpiomem" with base_address 0)
	Device string `json:"device"`

	// Board name used to look up the GPIO base address (e.g., "pi4")
	Board string `json:"board"`

	// BaseAddress overrides the board lookup when set. 0 is a valid
	// override: /dev/gpiomem maps the GPIO block at offset 0.
	BaseAddress *int64 `json:"base_address,omitempty"`
}

// LoadConfig parses a JSON configuration and returns a Config
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// DefaultConfig returns the configuration for a Raspberry Pi 4
func DefaultConfig() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Device == "" {
		config.Device = mem.DefaultDevice
	}

	if config.Board == "" {
		config.Board = "pi4"
	}
}

// Validate checks that the base address can be mapped
func (c *Config) Validate() error {
	if c.BaseAddress == nil {
		return nil
	}

	base := *c.BaseAddress
	if base < 0 {
		return fmt.Errorf("base_address must not be negative (got %#x)", base)
	}

	pageSize := int64(os.Getpagesize())
	if base%pageSize != 0 {
		return fmt.Errorf("base_address %#x is not aligned to the %d byte page size", base, pageSize)
	}

	return nil
}

// Resolver returns the BaseResolver this configuration selects
func (c *Config) Resolver() mem.BaseResolver {
	if c.BaseAddress != nil {
		return mem.FixedBase(*c.BaseAddress)
	}
	return mem.BoardBase(c.Board)
}

// SetBaseAddress overrides the board lookup with a fixed address
func (c *Config) SetBaseAddress(base int64) {
	c.BaseAddress = &base
}

// Options returns the mem.Open options for this configuration
func (c *Config) Options() []mem.Option {
	return []mem.Option{
		mem.WithDevice(c.Device),
		mem.WithResolver(c.Resolver()),
	}
}

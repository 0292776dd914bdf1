// Package cmn provides common constants, types, and utilities for aisgate
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"os"

	"github.com/NVIDIA/aisgate/cmn/cos"
	jsoniter "github.com/json-iterator/go"
)

const (
	// free-form env override for the config location
	ConfigEnvVar = "AISGATE_CONF"

	// matches the storage backend's default maximum object size (5 GiB)
	DfltMaxObjectSize = int64(5 * 1024 * 1024 * 1024)

	DfltListen = ":8080"
)

type (
	Config struct {
		Listen           string        `json:"listen"`
		BackendURL       string        `json:"backend_url"`
		MaxObjectSize    int64         `json:"max_object_size"`
		ObjectPostAsCopy *bool         `json:"object_post_as_copy"` // default true (see PostAsCopy)
		Verbosity        int           `json:"verbosity"`
		Migration        MigrationConf `json:"migration"`
	}

	// MigrationConf is the driver-registry configuration: a comma-separated
	// provider list plus a per-provider required-key list and static
	// parameters handed to the driver constructor.
	MigrationConf struct {
		SupportedDrivers string                `json:"supported_drivers"`
		Drivers          map[string]DriverConf `json:"drivers"`
	}

	DriverConf struct {
		Keys   string     `json:"keys"` // comma-separated required container-metadata keys
		Params cos.StrKVs `json:"params"`
	}
)

// PostAsCopy reports whether object POSTs are handled as copy-onto-self.
// Enabled unless explicitly turned off.
func (c *Config) PostAsCopy() bool {
	return c.ObjectPostAsCopy == nil || *c.ObjectPostAsCopy
}

func LoadConfig(path string) (*Config, error) {
	if env := os.Getenv(ConfigEnvVar); env != "" {
		path = env
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := jsoniter.Unmarshal(data, config); err != nil {
		return nil, err
	}
	config.SetDefaults()
	return config, nil
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = DfltListen
	}
	if c.MaxObjectSize <= 0 {
		c.MaxObjectSize = DfltMaxObjectSize
	}
}

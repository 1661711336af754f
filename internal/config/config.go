package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ContainerDir    string        `yaml:"container_dir"`
	JobScript       string        `yaml:"jobscript"` // empty: use the embedded script
	LogDir          string        `yaml:"log_dir"`   // empty: home directory
	PollInterval    time.Duration `yaml:"poll_interval"`
	OutputTimeout   time.Duration `yaml:"output_timeout"` // 0 waits forever
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`  // 0 waits forever
	StateCheckEvery int           `yaml:"state_check_every"`
	CancelOnFailure bool          `yaml:"cancel_on_failure"`
	Defaults        Defaults      `yaml:"defaults"`
}

// Defaults seeds the flags of the start command.
type Defaults struct {
	Name      string `yaml:"name"`
	Password  string `yaml:"password"`
	Release   string `yaml:"release"`
	Partition string `yaml:"partition"`
	Threads   int    `yaml:"threads"`
	Memory    string `yaml:"memory"`
}

func Default() *Config {
	return &Config{
		ContainerDir:    "/opt/containers/rstudio",
		PollInterval:    time.Second,
		OutputTimeout:   15 * time.Minute,
		ProbeTimeout:    5 * time.Minute,
		StateCheckEvery: 5,
		CancelOnFailure: true,
		Defaults: Defaults{
			Name:      "rstudio_server",
			Password:  "rstudioserver",
			Release:   "3.13",
			Partition: "compute",
			Threads:   1,
			Memory:    "8G",
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RSTUDIO_CONTAINER_DIR"); v != "" {
		c.ContainerDir = v
	}
	if v := os.Getenv("RSTUDIO_PARTITION"); v != "" {
		c.Defaults.Partition = v
	}
	if v := os.Getenv("RSTUDIO_CANCEL_ON_FAILURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RSTUDIO_CANCEL_ON_FAILURE: %w", err)
		}
		c.CancelOnFailure = b
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ContainerDir == "" {
		return fmt.Errorf("container_dir must be set")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.OutputTimeout < 0 || c.ProbeTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.StateCheckEvery < 0 {
		return fmt.Errorf("state_check_every must not be negative, got %d", c.StateCheckEvery)
	}
	return nil
}

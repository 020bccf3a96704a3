package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ContainerRef maps a monitored container to the dashboard user whose
// positions it trades.
type ContainerRef struct {
	Name string `yaml:"name"`
	User string `yaml:"user"`
}

type Config struct {
	Mode        string `yaml:"mode"` // DEMO or LIVE
	HTTPAddr    string `yaml:"http_addr"`
	PollSeconds int    `yaml:"poll_seconds"`
	TailLines   int    `yaml:"tail_lines"`
	LogDir      string `yaml:"log_dir"`

	Database struct {
		DSNEnv       string `yaml:"dsn_env"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Containers      []ContainerRef `yaml:"containers"`
	StatusContainer string         `yaml:"status_container"`

	Schedule struct {
		Daily   string `yaml:"daily"`
		Weekly  string `yaml:"weekly"`
		Monthly string `yaml:"monthly"`
		Stats   string `yaml:"stats"`
	} `yaml:"schedule"`
}

// Users returns the distinct users declared by the container mapping.
func (c *Config) Users() []string {
	seen := map[string]bool{}
	users := make([]string, 0, len(c.Containers))
	for _, ref := range c.Containers {
		if ref.User != "" && !seen[ref.User] {
			seen[ref.User] = true
			users = append(users, ref.User)
		}
	}
	return users
}

func (c *Config) Validate() error {
	if c.Mode != "DEMO" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DEMO' or 'LIVE'", c.Mode)
	}
	if len(c.Containers) == 0 {
		return errors.New("containers cannot be empty")
	}
	for _, ref := range c.Containers {
		if ref.Name == "" || ref.User == "" {
			return fmt.Errorf("container entry needs both name and user, got name='%s' user='%s'", ref.Name, ref.User)
		}
	}
	if c.Mode == "LIVE" && c.Database.DSNEnv == "" {
		return errors.New("database.dsn_env is required in LIVE mode")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DEMO"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 60
	}
	if c.TailLines == 0 {
		c.TailLines = 100
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.StatusContainer == "" {
		c.StatusContainer = "log-reader"
	}
	if c.Schedule.Daily == "" {
		c.Schedule.Daily = "5 0 * * *"
	}
	if c.Schedule.Weekly == "" {
		c.Schedule.Weekly = "15 0 * * 1"
	}
	if c.Schedule.Monthly == "" {
		c.Schedule.Monthly = "30 0 1 * *"
	}
	if c.Schedule.Stats == "" {
		c.Schedule.Stats = "@every 5m"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

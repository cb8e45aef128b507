package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogFile   = "hexpipe.log"
	DefaultHost      = "localhost"
	DefaultTransport = "tcp"
)

var ErrNoPort = errors.New("no port or portfile configured")

// Config is the resolved startup configuration the CLI hands to the core:
// where the server is, which framing mode, where the log goes.
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	PortFile   string `yaml:"portfile"`
	Log        string `yaml:"log"`
	LogLevel   string `yaml:"log_level"`
	Raw        bool   `yaml:"raw"`
	Transport  string `yaml:"transport"`
	Transcript string `yaml:"transcript"`
}

func Default() *Config {
	return &Config{
		Host:      DefaultHost,
		Log:       DefaultLogFile,
		LogLevel:  "info",
		Transport: DefaultTransport,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Transport {
	case "tcp", "quic":
	default:
		return fmt.Errorf("unknown transport %q (want tcp or quic)", c.Transport)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// ResolvePort returns the server port: an explicit port wins, else the first
// line of the port file.
func (c *Config) ResolvePort() (int, error) {
	if c.Port > 0 {
		return c.Port, nil
	}
	if c.PortFile != "" {
		return ReadPortFile(c.PortFile)
	}
	return 0, ErrNoPort
}

// ReadPortFile parses the first line of path as a TCP port number.
func ReadPortFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read port file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	port, err := strconv.Atoi(line)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q in %s", line, path)
	}
	return port, nil
}

// Addr returns the dial address for the resolved port.
func (c *Config) Addr(port int) string {
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AddrEnv    = "STEXT_ADDR"
	MaxBodyEnv = "STEXT_MAX_BODY"

	DefaultAddr          = ":8090"
	DefaultMaxBody int64 = 64 << 20
)

// WorkDir returns the stext cache directory.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".stext"), nil
}

// DepsDir returns the directory holding installed dependency prefixes,
// laid out as <name>/<version>. It is created if missing.
func DepsDir() (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "deps")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads .env files into the process environment without overriding
// variables that are already set. With no arguments it reads .env in the
// working directory, which may be absent.
func Load(files ...string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(files...)
}

// Config is the service configuration.
type Config struct {
	Addr    string
	MaxBody int64
}

// FromEnv builds a Config from the environment, falling back to defaults
// for unset variables.
func FromEnv() (*Config, error) {
	c := &Config{Addr: DefaultAddr, MaxBody: DefaultMaxBody}
	if v := os.Getenv(AddrEnv); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(MaxBodyEnv); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s %q", MaxBodyEnv, v)
		}
		c.MaxBody = n
	}
	return c, nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/heimdex/heimdex-turnover/internal/config"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/logging"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

type commandContext struct {
	fpsFlag   *float64
	jsonFlag  *bool
	projectID *string

	cfg    config.Config
	logger *slog.Logger
}

func newCommandContext(fps *float64, jsonOut *bool, projectID *string) *commandContext {
	return &commandContext{fpsFlag: fps, jsonFlag: jsonOut, projectID: projectID}
}

// ensureConfig loads configuration once and builds the CLI logger, which
// writes to logOut so stdout only carries command output.
func (c *commandContext) ensureConfig(logOut io.Writer) (config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.logger = logging.WithComponent(logging.NewLoggerTo(logOut, cfg.LogLevel()), "cli")
	return cfg, nil
}

// fps is the --fps flag, or the configured default.
func (c *commandContext) fps() float64 {
	if c.fpsFlag != nil && *c.fpsFlag > 0 {
		return *c.fpsFlag
	}
	if c.cfg != nil {
		return c.cfg.DefaultFPS()
	}
	return config.DefaultFPS
}

func (c *commandContext) project() string {
	if c.projectID != nil && *c.projectID != "" {
		return *c.projectID
	}
	if c.cfg != nil {
		return c.cfg.DefaultProjectID()
	}
	return config.DefaultProjectID
}

func (c *commandContext) wantJSON() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) parseFile(path string, format interchange.Format) (*interchange.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	result := interchange.Parse(name, data, interchange.Options{
		FPS:            c.fps(),
		ProjectID:      c.project(),
		SourceFilename: name,
		Format:         format,
	})
	if c.logger != nil {
		c.logger.Debug("parsed interchange file",
			"path", logging.SanitizePath(path),
			"format", string(result.Format),
			"records", result.RecordCount(),
			"warnings", len(result.Warnings),
		)
	}
	return result, nil
}

// loadShots parses timeline files and concatenates their shots.
func (c *commandContext) loadShots(paths []string) ([]shot.Shot, error) {
	var shots []shot.Shot
	for _, path := range paths {
		result, err := c.parseFile(path, "")
		if err != nil {
			return nil, err
		}
		s := result.Shots()
		if s == nil {
			return nil, fmt.Errorf("%s is %s, not a timeline", path, result.Format)
		}
		shots = append(shots, s...)
	}
	return shots, nil
}

// loadSourceMedia parses ALE files into one deduplicated clip list.
func (c *commandContext) loadSourceMedia(paths []string) ([]sourcemedia.Record, error) {
	var records []sourcemedia.Record
	for _, path := range paths {
		result, err := c.parseFile(path, interchange.FormatALE)
		if err != nil {
			return nil, err
		}
		records = append(records, result.SourceMedia...)
	}
	return sourcemedia.Dedup(records), nil
}

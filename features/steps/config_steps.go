//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"yt-mp3-service/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	configPath  string
	cfg         *config.Config
	loadErr     error
	validateErr error
}

// SharedConfigContext is reset before each scenario via After hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	// Reset context after each scenario
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		*testCtx = configContext{}
		return c, nil
	})

	ctx.Step(`^a configuration file exists at "([^"]*)"$`, testCtx.aConfigurationFileExistsAt)
	ctx.Step(`^no configuration file exists at "([^"]*)"$`, testCtx.noConfigurationFileExistsAt)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, testCtx.iAttemptToLoadTheConfiguration)
	ctx.Step(`^I validate the configuration$`, testCtx.iValidateTheConfiguration)
	ctx.Step(`^the storage backend should be "([^"]*)"$`, testCtx.theStorageBackendShouldBe)
	ctx.Step(`^the scratch directory should be "([^"]*)"$`, testCtx.theScratchDirectoryShouldBe)
	ctx.Step(`^the conversion route should be "([^"]*)"$`, testCtx.theConversionRouteShouldBe)
	ctx.Step(`^the configuration should be valid$`, testCtx.theConfigurationShouldBeValid)
	ctx.Step(`^I should receive an error about missing configuration$`, testCtx.iShouldReceiveAnErrorAboutMissingConfiguration)
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

func (c *configContext) aConfigurationFileExistsAt(path string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	c.configPath = filepath.Join(root, path)

	// Verify file actually exists
	if _, err := os.Stat(c.configPath); err != nil {
		return fmt.Errorf("expected config file at %s but it does not exist: %w", c.configPath, err)
	}
	return nil
}

func (c *configContext) noConfigurationFileExistsAt(path string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	c.configPath = filepath.Join(root, path)
	return nil
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	c.cfg = cfg
	c.loadErr = err
	return nil
}

func (c *configContext) iValidateTheConfiguration() error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	c.validateErr = c.cfg.Validate()
	return nil
}

func (c *configContext) theStorageBackendShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Storage.Backend != expected {
		return fmt.Errorf("expected storage backend %q, got %q", expected, c.cfg.Storage.Backend)
	}
	return nil
}

func (c *configContext) theScratchDirectoryShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Paths.ScratchDirectory != expected {
		return fmt.Errorf("expected scratch directory %q, got %q", expected, c.cfg.Paths.ScratchDirectory)
	}
	return nil
}

func (c *configContext) theConversionRouteShouldBe(expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Server.Route != expected {
		return fmt.Errorf("expected route %q, got %q", expected, c.cfg.Server.Route)
	}
	return nil
}

func (c *configContext) theConfigurationShouldBeValid() error {
	if c.validateErr != nil {
		return fmt.Errorf("expected valid configuration, got: %w", c.validateErr)
	}
	return nil
}

func (c *configContext) iShouldReceiveAnErrorAboutMissingConfiguration() error {
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	return nil
}

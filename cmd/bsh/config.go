package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-colorable"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/scijava/scripting-beanshell/beanshell"
	"github.com/scijava/scripting-beanshell/bsh"
	"github.com/scijava/scripting-beanshell/scripting"
)

const configFile = "bsh/config.yaml"

// settings come from $XDG_CONFIG_HOME/bsh/config.yaml, overridden by flags.
type settings struct {
	StepQuota            int    `yaml:"step_quota"`
	RecursionLimit       int    `yaml:"recursion_limit"`
	LogLevel             string `yaml:"log_level"`
	SurfaceBindingErrors bool   `yaml:"surface_binding_errors"`
}

func defaultSettings() settings {
	return settings{LogLevel: "warn"}
}

// loadSettings reads path, or the config file in the XDG config dirs when
// path is empty. A missing default file is not an error.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	if path == "" {
		found, err := xdg.SearchConfigFile(configFile)
		if err != nil {
			return s, nil
		}
		path = found
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(payload))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

// commonFlags are accepted by every command that runs scripts.
type commonFlags struct {
	configPath     string
	stepQuota      int
	recursionLimit int
	logLevel       string
	surfaceErrors  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/"+configFile+")")
	fs.IntVar(&c.stepQuota, "step-quota", 0, "maximum evaluation steps per script")
	fs.IntVar(&c.recursionLimit, "recursion-limit", 0, "maximum method call depth")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.BoolVar(&c.surfaceErrors, "surface-binding-errors", false, "log binding errors that are normally absorbed")
}

// resolve loads the config file and applies the flags that were set.
func (c *commonFlags) resolve(fs *flag.FlagSet) (settings, error) {
	s, err := loadSettings(c.configPath)
	if err != nil {
		return s, err
	}
	if fs.Changed("step-quota") {
		s.StepQuota = c.stepQuota
	}
	if fs.Changed("recursion-limit") {
		s.RecursionLimit = c.recursionLimit
	}
	if fs.Changed("log-level") {
		s.LogLevel = c.logLevel
	}
	if fs.Changed("surface-binding-errors") {
		s.SurfaceBindingErrors = c.surfaceErrors
	}
	return s, nil
}

func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zapcfg := zap.NewDevelopmentEncoderConfig()
	zapcfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
	zapcfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}

	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapcfg),
		zapcore.AddSync(w),
		lvl,
	)), nil
}

// newRegistry registers BeanShell configured by s.
func newRegistry(s settings, logger *zap.Logger) *scripting.Registry {
	opts := []beanshell.LanguageOption{
		beanshell.WithInterpreterConfig(bsh.Config{
			StepQuota:      s.StepQuota,
			RecursionLimit: s.RecursionLimit,
			Logger:         logger.Named("bsh"),
		}),
	}
	if s.SurfaceBindingErrors {
		opts = append(opts, beanshell.WithBindingsOptions(beanshell.WithErrorHandler(func(op, name string, err error) {
			logger.Warn("binding error", zap.String("op", op), zap.String("name", name), zap.Error(err))
		})))
	}

	registry := scripting.NewRegistry()
	registry.Register(beanshell.Name, func() scripting.ScriptLanguage {
		return beanshell.NewLanguage(opts...)
	})
	return registry
}

// setup resolves settings and builds the logger and service a command runs
// with.
func setup(c *commonFlags, fs *flag.FlagSet, stdout io.Writer) (*scripting.Service, *zap.Logger, error) {
	s, err := c.resolve(fs)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(colorable.NewColorableStderr(), s.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	svc := scripting.NewService(
		scripting.WithRegistry(newRegistry(s, logger)),
		scripting.WithOutput(stdout, os.Stderr),
	)
	return svc, logger, nil
}

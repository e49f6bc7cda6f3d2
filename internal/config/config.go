package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/history"
	"github.com/san-kum/renewsim/internal/scenario"
)

const (
	EnvPrefix = "RENEWSIM_"

	DefaultEndYear       = 2040
	DefaultTolerance     = 1e-8
	DefaultSubsteps      = 16
	DefaultWorkers       = 4
	DefaultMaxHorizon    = 27
	DefaultDataDir       = "./data"
	DefaultTargetShare   = 23.0
	DefaultMilestoneYear = 2025
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	EndYear    int     `yaml:"end_year"`
	Integrator string  `yaml:"integrator"`
	Tolerance  float64 `yaml:"tolerance"`
	Substeps   int     `yaml:"substeps"`
	Workers    int     `yaml:"workers"`
	// MaxHorizon caps how many years past the start year a run may reach.
	MaxHorizon int    `yaml:"max_horizon"`
	DataDir    string `yaml:"data_dir"`

	Initial   InitialConfig               `yaml:"initial"`
	Target    TargetConfig                `yaml:"target"`
	Scenarios map[string]ScenarioOverride `yaml:"scenarios,omitempty"`
	// History replaces the built-in proxy series when set.
	History []history.Record `yaml:"history,omitempty"`
	Log     LogConfig        `yaml:"log"`
}

type InitialConfig struct {
	Investment           float64 `yaml:"investment"`
	Infrastructure       float64 `yaml:"infrastructure"`
	DefaultTotalCapacity float64 `yaml:"default_total_capacity"`
}

type TargetConfig struct {
	Share         float64 `yaml:"share"`
	MilestoneYear int     `yaml:"milestone_year"`
}

// ScenarioOverride replaces the coefficients that are set and leaves the
// rest at their registry values.
type ScenarioOverride struct {
	Name                *string  `yaml:"name,omitempty"`
	InvestmentGrowth    *float64 `yaml:"investment_growth,omitempty"`
	TechImprovement     *float64 `yaml:"tech_improvement,omitempty"`
	InfrastructureCoeff *float64 `yaml:"infrastructure_coeff,omitempty"`
	Depreciation        *float64 `yaml:"depreciation,omitempty"`
	PolicyEffectiveness *float64 `yaml:"policy_effectiveness,omitempty"`
	MaxCapacity         *float64 `yaml:"max_capacity,omitempty"`
	Color               *string  `yaml:"color,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		EndYear:    DefaultEndYear,
		Integrator: experiment.DefaultIntegrator,
		Tolerance:  DefaultTolerance,
		Substeps:   DefaultSubsteps,
		Workers:    DefaultWorkers,
		MaxHorizon: DefaultMaxHorizon,
		DataDir:    DefaultDataDir,
		Initial: InitialConfig{
			Investment:           experiment.DefaultInvestment,
			Infrastructure:       experiment.DefaultInfrastructure,
			DefaultTotalCapacity: history.DefaultTotalCapacity,
		},
		Target: TargetConfig{
			Share:         DefaultTargetShare,
			MilestoneYear: DefaultMilestoneYear,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// RENEWSIM_ environment overrides. Nested keys use a double underscore:
// RENEWSIM_TARGET__SHARE sets target.share. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func Save(path string, cfg *Config) error {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if _, _, err := experiment.NewIntegrator(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %g", c.Tolerance))
	}
	if c.Substeps < 1 {
		errs = append(errs, fmt.Errorf("substeps must be at least 1, got %d", c.Substeps))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxHorizon < 1 {
		errs = append(errs, fmt.Errorf("max_horizon must be at least 1, got %d", c.MaxHorizon))
	}
	if c.Initial.DefaultTotalCapacity <= 0 {
		errs = append(errs, fmt.Errorf("initial.default_total_capacity must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// CheckHorizon enforces end ∈ [start+1, start+MaxHorizon].
func (c *Config) CheckHorizon(startYear, endYear int) error {
	if endYear <= startYear || endYear > startYear+c.MaxHorizon {
		return fmt.Errorf("%w: end year %d outside [%d, %d]",
			experiment.ErrInvalidHorizon, endYear, startYear+1, startYear+c.MaxHorizon)
	}
	return nil
}

func (c *Config) SolverConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Tolerance = c.Tolerance
	cfg.Substeps = c.Substeps
	return cfg
}

// Registry applies the scenario overrides to base. Overriding an unknown
// scenario is an error.
func (c *Config) Registry(base *scenario.Registry) (*scenario.Registry, error) {
	reg := base
	for _, id := range base.IDs() {
		ov, ok := c.Scenarios[id]
		if !ok {
			continue
		}
		var err error
		if reg, err = reg.Override(id, ov.apply); err != nil {
			return nil, err
		}
	}
	for id := range c.Scenarios {
		if _, err := base.Get(id); err != nil {
			return nil, fmt.Errorf("scenarios.%s: %w", id, err)
		}
	}
	return reg, nil
}

func (o ScenarioOverride) apply(s *scenario.Scenario) {
	setString(&s.Name, o.Name)
	setFloat(&s.InvestmentGrowth, o.InvestmentGrowth)
	setFloat(&s.TechImprovement, o.TechImprovement)
	setFloat(&s.InfrastructureCoeff, o.InfrastructureCoeff)
	setFloat(&s.Depreciation, o.Depreciation)
	setFloat(&s.PolicyEffectiveness, o.PolicyEffectiveness)
	setFloat(&s.MaxCapacity, o.MaxCapacity)
	setString(&s.Color, o.Color)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Dataset returns the configured history, or the proxy series.
func (c *Config) Dataset() (*history.Dataset, error) {
	if len(c.History) == 0 {
		return history.Proxy(), nil
	}
	return history.New(c.History)
}

// InitialConditions derives the starting point from the last historical
// record and the configured investment and infrastructure levels.
func (c *Config) InitialConditions(d *history.Dataset) experiment.InitialConditions {
	ic := experiment.FromHistory(d, c.Initial.Investment, c.Initial.Infrastructure)
	if d.Last().TotalCapacity <= 0 {
		ic.TotalCapacity = c.Initial.DefaultTotalCapacity
	}
	return ic
}

// Package config はシミュレーションの設定を YAML と環境変数から組み立てる。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/utils"
)

var ErrInvalid = errors.New("config: invalid")

const (
	ModeParallel = "parallel"
	ModeSingle   = "single"

	RendererText   = "text"
	RendererScreen = "screen"
)

// Rule は種別ごとの属性の上書き。
type Rule struct {
	Step       float64 `yaml:"step"`
	KillRadius int     `yaml:"kill_radius"`
}

type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Agents int `yaml:"agents"`
	// Seed が 0 なら起動時刻から決める。
	Seed uint64 `yaml:"seed"`

	Duration      time.Duration `yaml:"duration"`
	Tick          time.Duration `yaml:"tick"`
	PrintInterval time.Duration `yaml:"print_interval"`
	Resolvers     int           `yaml:"resolvers"`

	Mode     string `yaml:"mode"`
	Renderer string `yaml:"renderer"`

	LogFile    string `yaml:"log_file"`
	JournalDir string `yaml:"journal_dir"`
	IndexDB    string `yaml:"index_db"`
	ListenAddr string `yaml:"listen_addr"`
	RosterIn   string `yaml:"roster_in"`
	RosterOut  string `yaml:"roster_out"`

	// Rules のキーは Predator / Target / Guardian。
	Rules map[string]Rule `yaml:"rules"`
}

func Default() Config {
	return Config{
		Width:         40,
		Height:        20,
		Agents:        50,
		Duration:      30 * time.Second,
		Tick:          200 * time.Millisecond,
		PrintInterval: time.Second,
		Resolvers:     1,
		Mode:          ModeParallel,
		Renderer:      RendererText,
		LogFile:       "log.txt",
	}
}

// Load は既定値に path の YAML を重ね、環境変数で上書きして検証する。
// path が空ならファイルは読まない。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv は SKIRMISH_ 接頭辞の環境変数で上書きする。
func (c *Config) ApplyEnv() error {
	var errs []error
	intVar := func(key string, dst *int) {
		v, err := utils.GetEnvInt(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	durVar := func(key string, dst *time.Duration) {
		v, err := utils.GetEnvDuration(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	strVar := func(key string, dst *string) {
		*dst = utils.GetEnvDefault(key, *dst)
	}

	intVar("SKIRMISH_WIDTH", &c.Width)
	intVar("SKIRMISH_HEIGHT", &c.Height)
	intVar("SKIRMISH_AGENTS", &c.Agents)
	intVar("SKIRMISH_RESOLVERS", &c.Resolvers)
	seed, err := utils.GetEnvUint64("SKIRMISH_SEED", c.Seed)
	errs = append(errs, err)
	c.Seed = seed
	durVar("SKIRMISH_DURATION", &c.Duration)
	durVar("SKIRMISH_TICK", &c.Tick)
	durVar("SKIRMISH_PRINT_INTERVAL", &c.PrintInterval)
	strVar("SKIRMISH_MODE", &c.Mode)
	strVar("SKIRMISH_RENDERER", &c.Renderer)
	strVar("SKIRMISH_LOG_FILE", &c.LogFile)
	strVar("SKIRMISH_JOURNAL_DIR", &c.JournalDir)
	strVar("SKIRMISH_INDEX_DB", &c.IndexDB)
	strVar("SKIRMISH_LISTEN_ADDR", &c.ListenAddr)
	strVar("SKIRMISH_ROSTER_IN", &c.RosterIn)
	strVar("SKIRMISH_ROSTER_OUT", &c.RosterOut)
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var problems []string
	if c.Width <= 0 || c.Height <= 0 {
		problems = append(problems, fmt.Sprintf("map %dx%d", c.Width, c.Height))
	}
	if c.Agents < 0 {
		problems = append(problems, fmt.Sprintf("agents %d", c.Agents))
	}
	if c.Duration <= 0 || c.Tick <= 0 || c.PrintInterval <= 0 {
		problems = append(problems, "duration, tick and print_interval must be positive")
	}
	if c.Resolvers < 1 {
		problems = append(problems, fmt.Sprintf("resolvers %d", c.Resolvers))
	}
	if c.Mode != ModeParallel && c.Mode != ModeSingle {
		problems = append(problems, fmt.Sprintf("mode %q", c.Mode))
	}
	if c.Renderer != RendererText && c.Renderer != RendererScreen {
		problems = append(problems, fmt.Sprintf("renderer %q", c.Renderer))
	}
	for name, r := range c.Rules {
		if _, ok := kindByName(name); !ok {
			problems = append(problems, fmt.Sprintf("rules: unknown kind %q", name))
		}
		if !utils.Finite(r.Step) || r.Step < 0 || r.KillRadius < 0 {
			problems = append(problems, fmt.Sprintf("rules: %s has negative or non finite values", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Ruleset は既定の表に Rules の上書きを適用する。
func (c Config) Ruleset() domain.Ruleset {
	rules := domain.DefaultRuleset()
	for name, r := range c.Rules {
		if k, ok := kindByName(name); ok {
			rules = rules.WithAttributes(k, domain.Attributes{Step: r.Step, KillRadius: r.KillRadius})
		}
	}
	return rules
}

// TicksPerPrint は lockstep モードで何 tick ごとに描画するか。
func (c Config) TicksPerPrint() int {
	n := int(c.PrintInterval / c.Tick)
	if n < 1 {
		return 1
	}
	return n
}

// TotalTicks は lockstep モードで実行する tick 数。
func (c Config) TotalTicks() int {
	return int(c.Duration / c.Tick)
}

func kindByName(name string) (domain.Kind, bool) {
	for _, k := range domain.Kinds {
		if strings.EqualFold(k.String(), name) {
			return k, true
		}
	}
	return domain.KindUnknown, false
}

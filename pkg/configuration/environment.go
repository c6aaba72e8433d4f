package configuration

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// LoadEnv loads whichever of the given .env files exist. Returns how many
// were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// PlannerOptions are the planning run policy knobs
type PlannerOptions struct {
	Workers                   int           `env:"PLANNER_WORKERS" envDefault:"4"`
	ExpediteToleranceDays     int           `env:"PLANNER_EXPEDITE_TOLERANCE_DAYS" envDefault:"0"`
	ContinueOnMasterDataError bool          `env:"PLANNER_CONTINUE_ON_MASTER_DATA_ERROR" envDefault:"false"`
	RunTimeout                time.Duration `env:"PLANNER_RUN_TIMEOUT" envDefault:"10m"`
}

func (p *PlannerOptions) Validate() error {
	if p.Workers < 1 {
		return fmt.Errorf("planner Workers must be at least 1, got %d", p.Workers)
	}
	if p.ExpediteToleranceDays < 0 {
		return fmt.Errorf("planner ExpediteToleranceDays must be non-negative, got %d", p.ExpediteToleranceDays)
	}
	if p.RunTimeout < 0 {
		return fmt.Errorf("planner RunTimeout must be non-negative, got %s", p.RunTimeout)
	}
	return nil
}

type Configuration struct {
	Planner PlannerOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`

	logger *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner configuration error: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(c.LogrusLogLevel())
	if c.GoAppEnvironment == Production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	c.logger = logger
	return nil
}

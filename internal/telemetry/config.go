package telemetry

import "github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/esdkd/telemetry.db"
)

type Config struct {
	Enabled      bool
	DBPath       string
	BatchSize    int
	BatchTimeout int // seconds
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		BatchSize:    16,
		BatchTimeout: 30,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	return nil
}

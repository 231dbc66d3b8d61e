package config

import (
	"os"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "/boot/aq"
	defaultConfigName = "aq"

	DefaultInterval = 10

	// NO2 front-end defaults. Sensitivity comes from the barcode on the
	// sensing element and varies per device; the TIA gain is fixed by the
	// element type (Spec Sensors datasheet).
	DefaultNO2Sensitivity = -20.86
	DefaultNO2TIAGain     = 499
	DefaultNO2Window      = 15
	DefaultNO2Samples     = 9
)

type Config struct {
	Interval int  `mapstructure:"interval"`
	Debug    bool `mapstructure:"debug"`
	Verbose  bool `mapstructure:"verbose"`

	ESDK      ESDKConfig      `mapstructure:"esdk"`
	NO2       NO2Config       `mapstructure:"no2"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
}

// ESDKConfig carries board-level settings from the [esdk] table.
type ESDKConfig struct {
	FriendlyName string            `mapstructure:"friendlyname"`
	GPS          bool              `mapstructure:"gps"`
	Latitude     float64           `mapstructure:"latitude"`
	Longitude    float64           `mapstructure:"longitude"`
	PluginDir    string            `mapstructure:"plugindir"`
	BuzzerPin    string            `mapstructure:"buzzerpin"`
	PowerPins    map[string]string `mapstructure:"powerpins"`
}

// NO2Config tunes the gas-sensor sampling pipeline. The delays are
// injectable so tests can run the pipeline without real conversion waits.
type NO2Config struct {
	Sensitivity float64       `mapstructure:"sensitivity"`
	TIAGain     float64       `mapstructure:"tia_gain"`
	VOffset     float64       `mapstructure:"voffset"`
	Window      int           `mapstructure:"window"`
	Samples     int           `mapstructure:"samples"`
	SampleDelay time.Duration `mapstructure:"sample_delay"`
	IdleDelay   time.Duration `mapstructure:"idle_delay"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"dbpath"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

type MQTTConfig struct {
	Broker    string `mapstructure:"broker"`
	BaseTopic string `mapstructure:"basetopic"`
	ClientID  string `mapstructure:"clientid"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("esdkd", pflag.ContinueOnError)
	configFile := flags.String("config", "", "Path to config file")
	debug := flags.Bool("debug", false, "Enable debugging mode")
	verbose := flags.Bool("verbose", false, "Enable verbose logging")
	interval := flags.Int("interval", 0, "Seconds between aggregate reads")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetConfigType("toml")

	setDefaults(v)

	switch {
	case *configFile != "":
		v.SetConfigFile(*configFile)
	case os.Getenv("ESDK_CONFIG") != "":
		v.SetConfigFile(os.Getenv("ESDK_CONFIG"))
	default:
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(defaultConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the defaults stand.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	flags.Visit(func(f *pflag.Flag) {
		if f.Name != "config" {
			v.Set(f.Name, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	config.Debug = config.Debug || *debug
	config.Verbose = config.Verbose || *verbose
	if *interval > 0 {
		config.Interval = *interval
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("esdk.friendlyname", "esdk")
	v.SetDefault("esdk.gps", false)
	v.SetDefault("no2.sensitivity", DefaultNO2Sensitivity)
	v.SetDefault("no2.tia_gain", DefaultNO2TIAGain)
	v.SetDefault("no2.window", DefaultNO2Window)
	v.SetDefault("no2.samples", DefaultNO2Samples)
	v.SetDefault("no2.sample_delay", "50ms")
	v.SetDefault("no2.idle_delay", "2s")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dbpath", "/var/lib/esdkd/telemetry.db")
	v.SetDefault("telemetry.batch_size", 16)
	v.SetDefault("telemetry.batch_timeout", 30)
	v.SetDefault("mqtt.basetopic", "airquality")
	v.SetDefault("mqtt.clientid", "esdkd")
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.NO2.Window <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "no2 window must be positive")
	}
	if c.NO2.Samples <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "no2 sample count must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.DBPath == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	return nil
}

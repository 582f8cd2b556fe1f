package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/studentaid/disbursement/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Temporal   TemporalConfig   `validate:"required"`
	SFTP       SFTPConfig       `validate:"required"`
	S3         S3Config
	ECert      ECertConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

type TemporalConfig struct {
	Address   string
	Namespace string
	TaskQueue string
	// Cron expressions for the scheduled workflows, empty disables the schedule
	GenerateSchedule string `mapstructure:"generate_schedule"`
	FeedbackSchedule string `mapstructure:"feedback_schedule"`
}

type SFTPConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string `mapstructure:"private_key_path"`
	UploadDir      string `mapstructure:"upload_dir"`
	ResponseDir    string `mapstructure:"response_dir"`
	ArchiveDir     string `mapstructure:"archive_dir"`
	DialTimeout    time.Duration
	DialRetries    uint64 `mapstructure:"dial_retries"`
}

type S3Config struct {
	Enabled   bool
	Region    string
	Bucket    string
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ECertConfig struct {
	// ProgramCode and OriginatorName identify the sender in every file header
	ProgramCode    string `mapstructure:"program_code" validate:"required,max=4"`
	OriginatorName string `mapstructure:"originator_name" validate:"required"`
	Environment    string `validate:"required,max=1"`
	// File name prefixes used for uploads and to recognise response files
	FullTimeFilePrefix         string `mapstructure:"full_time_file_prefix" validate:"required"`
	PartTimeFilePrefix         string `mapstructure:"part_time_file_prefix" validate:"required"`
	FullTimeFeedbackFilePrefix string `mapstructure:"full_time_feedback_file_prefix" validate:"required"`
	PartTimeFeedbackFilePrefix string `mapstructure:"part_time_feedback_file_prefix" validate:"required"`
	// DaysAhead includes disbursements scheduled up to this many days from today
	DaysAhead int `mapstructure:"days_ahead"`
	// PartTimeLifetimeMaximums caps the cumulative amount per award code
	PartTimeLifetimeMaximums map[string]string `mapstructure:"part_time_lifetime_maximums"`
}

// NewConfig loads the configuration from config.yaml, .env and environment variables
func NewConfig() (*Configuration, error) {
	// .env is optional, real environments inject variables directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/disbursement")

	v.SetEnvPrefix("DISBURSEMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("deployment.mode", defaults.Deployment.Mode)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("postgres.port", defaults.Postgres.Port)
	v.SetDefault("postgres.sslmode", defaults.Postgres.SSLMode)
	v.SetDefault("postgres.maxopenconns", defaults.Postgres.MaxOpenConns)
	v.SetDefault("postgres.maxidleconns", defaults.Postgres.MaxIdleConns)
	v.SetDefault("postgres.connmaxlifetimeminutes", defaults.Postgres.ConnMaxLifetimeMinutes)
	v.SetDefault("temporal.address", defaults.Temporal.Address)
	v.SetDefault("temporal.namespace", defaults.Temporal.Namespace)
	v.SetDefault("temporal.taskqueue", defaults.Temporal.TaskQueue)
	v.SetDefault("sftp.port", defaults.SFTP.Port)
	v.SetDefault("sftp.upload_dir", defaults.SFTP.UploadDir)
	v.SetDefault("sftp.response_dir", defaults.SFTP.ResponseDir)
	v.SetDefault("sftp.archive_dir", defaults.SFTP.ArchiveDir)
	v.SetDefault("sftp.dialtimeout", defaults.SFTP.DialTimeout)
	v.SetDefault("sftp.dial_retries", defaults.SFTP.DialRetries)
	v.SetDefault("ecert.days_ahead", defaults.ECert.DaysAhead)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.ECert.LifetimeMaximums(); err != nil {
		return err
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:                   "localhost",
			Port:                   5432,
			SSLMode:                "disable",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 30,
		},
		Temporal: TemporalConfig{
			Address:   "localhost:7233",
			Namespace: "default",
			TaskQueue: "disbursement-integration",
		},
		SFTP: SFTPConfig{
			Port:        22,
			UploadDir:   "/outbound",
			ResponseDir: "/inbound",
			ArchiveDir:  "/inbound/archive",
			DialTimeout: 30 * time.Second,
			DialRetries: 3,
		},
		ECert: ECertConfig{
			ProgramCode:                "BCSL",
			OriginatorName:             "BC STUDENT AID",
			Environment:                "T",
			FullTimeFilePrefix:         "PBC.EDU.FTECERTS",
			PartTimeFilePrefix:         "PBC.EDU.PTCERTS",
			FullTimeFeedbackFilePrefix: "EDU.PBC.FTECERTSFB",
			PartTimeFeedbackFilePrefix: "EDU.PBC.PTECERTSFB",
			DaysAhead:                  5,
			PartTimeLifetimeMaximums: map[string]string{
				types.AwardCodeCSLP: "10000",
			},
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetURL returns the postgres URL form used by the migration tool
func (c PostgresConfig) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func (c SFTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LifetimeMaximums parses the configured part-time lifetime maximums
func (c ECertConfig) LifetimeMaximums() (map[string]decimal.Decimal, error) {
	maximums := make(map[string]decimal.Decimal, len(c.PartTimeLifetimeMaximums))
	for code, raw := range c.PartTimeLifetimeMaximums {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid lifetime maximum for %s: %w", code, err)
		}
		// viper lower-cases map keys
		maximums[strings.ToUpper(code)] = amount
	}
	return maximums, nil
}

// FilePrefix returns the outbound file name prefix for the stream
func (c ECertConfig) FilePrefix(intensity types.OfferingIntensity) string {
	if intensity == types.OfferingIntensityPartTime {
		return c.PartTimeFilePrefix
	}
	return c.FullTimeFilePrefix
}

// FeedbackFilePrefix returns the response file name prefix for the stream
func (c ECertConfig) FeedbackFilePrefix(intensity types.OfferingIntensity) string {
	if intensity == types.OfferingIntensityPartTime {
		return c.PartTimeFeedbackFilePrefix
	}
	return c.FullTimeFeedbackFilePrefix
}

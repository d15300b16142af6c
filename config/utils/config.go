// Package config provides utilities to load environment variables & set config structs, it includes app, logger, db, redis cache, message queue, prometheus, http server and simulation settings.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// AppConfig contains every configuration section of the simulator binaries
type (
	AppConfig struct {
		App        *App        `mapstructure:"app"`
		Redis      *Redis      `mapstructure:"redis"`
		Logger     *Logger     `mapstructure:"logger"`
		DB         *DB         `mapstructure:"db"`
		MQ         *MQ         `mapstructure:"mq"`
		Prometheus *Prometheus `mapstructure:"prometheus"`
		HTTP       *HTTP       `mapstructure:"http"`
		Simulation *Simulation `mapstructure:"simulation"`
	}

	// App contains all the environment variables for the application
	App struct {
		Name  string `mapstructure:"name"`
		Env   string `mapstructure:"env"`
		Owner string `mapstructure:"owner"`
	}

	// Redis contains all the environment variables for the result cache
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		TTL      int    `mapstructure:"ttl"` // seconds, 0 keeps entries forever
	}

	// DB contains all the environment variables for the run database
	DB struct {
		Enabled    bool   `mapstructure:"enabled"`
		Connection string `mapstructure:"connection"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
	}

	// MQ contains the RabbitMQ connection used to publish run results
	MQ struct {
		Enabled  bool   `mapstructure:"enabled"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		VHost    string `mapstructure:"vhost"`
	}

	// Prometheus points at the API used to discover measured link speeds
	Prometheus struct {
		Enabled bool   `mapstructure:"enabled"`
		URL     string `mapstructure:"url"`
	}

	// HTTP contains the read API listener settings
	HTTP struct {
		Port string `mapstructure:"port"`
	}

	// Logger contains all the environment variables for the logger
	Logger struct {
		Level             string                `mapstructure:"level"`
		Development       bool                  `mapstructure:"development"`
		DisableStacktrace bool                  `mapstructure:"disableStacktrace"`
		Encoding          string                `mapstructure:"encoding"`
		EncoderConfig     zapcore.EncoderConfig `mapstructure:"encoderConfig"`
	}
)

// Simulation holds the topology, workload and policy knobs of a scenario run
type (
	Simulation struct {
		Seed          int64    `mapstructure:"seed"`
		NumTasks      int      `mapstructure:"numTasks"`
		CurrentTime   float64  `mapstructure:"currentTime"`
		Strategies    []string `mapstructure:"strategies"`
		StrictRouting bool     `mapstructure:"strictRouting"`
		Device        Device   `mapstructure:"device"`
		Servers       []Server `mapstructure:"servers"`
		Energy        Energy   `mapstructure:"energy"`
		Network       Network  `mapstructure:"network"`
		Static        Static   `mapstructure:"static"`
		// Scenarios replaces the six reference scenarios when not empty
		Scenarios []Scenario `mapstructure:"scenarios"`
	}

	// Scenario is one configured battery, wireless and workload combination
	Scenario struct {
		ID       int    `mapstructure:"id"`
		Name     string `mapstructure:"name"`
		Battery  string `mapstructure:"battery"`
		Wireless string `mapstructure:"wireless"`
		Workload string `mapstructure:"workload"`
	}

	// Device describes the local, battery-powered resource
	Device struct {
		Name            string  `mapstructure:"name"`
		ComputeRate     float64 `mapstructure:"computeRate"`
		BatteryCapacity float64 `mapstructure:"batteryCapacity"`
		LowBattery      float64 `mapstructure:"lowBattery"`
	}

	// Server describes an edge or cloud resource
	Server struct {
		Name        string  `mapstructure:"name"`
		Class       string  `mapstructure:"class"`
		ComputeRate float64 `mapstructure:"computeRate"`
		AccessDelay float64 `mapstructure:"accessDelay"`
	}

	// Energy is the local execution cost model
	Energy struct {
		BaseCost    float64 `mapstructure:"baseCost"`
		PerUnitCost float64 `mapstructure:"perUnitCost"`
	}

	// Network holds link speeds in MB per time unit
	Network struct {
		FastWireless  float64 `mapstructure:"fastWireless"`
		SlowWireless  float64 `mapstructure:"slowWireless"`
		WiredBackhaul float64 `mapstructure:"wiredBackhaul"`
	}

	// Static holds the thresholds of the rule based policy
	Static struct {
		SizeThreshold float64 `mapstructure:"sizeThreshold"`
		DataThreshold float64 `mapstructure:"dataThreshold"`
	}
)

// addZapEncoderConfig fills encoder config with zapcore types
func addZapEncoderConfig(cfg *zapcore.EncoderConfig) {
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.EncodeName = func(s string, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString("[" + s + "]")
	}
}

// setDefaults mirrors the reference topology so an empty config file still runs
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "offload-simulator")
	v.SetDefault("app.env", "development")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.encoderConfig.messageKey", "msg")
	v.SetDefault("logger.encoderConfig.levelKey", "level")
	v.SetDefault("logger.encoderConfig.timeKey", "ts")
	v.SetDefault("logger.encoderConfig.nameKey", "logger")
	v.SetDefault("logger.encoderConfig.callerKey", "caller")

	v.SetDefault("db.connection", "postgres")
	v.SetDefault("mq.port", "5672")
	v.SetDefault("mq.vhost", "/")
	v.SetDefault("prometheus.url", "http://localhost:9090")
	v.SetDefault("http.port", "8080")

	v.SetDefault("simulation.seed", 42)
	v.SetDefault("simulation.numTasks", 20)
	v.SetDefault("simulation.strategies", []string{"static", "intelligent"})
	v.SetDefault("simulation.device.name", "LocalDevice")
	v.SetDefault("simulation.device.computeRate", 1.0)
	v.SetDefault("simulation.device.batteryCapacity", 1000.0)
	v.SetDefault("simulation.device.lowBattery", 100.0)
	v.SetDefault("simulation.servers", []map[string]any{
		{"name": "EdgeServer1", "class": "edge", "computeRate": 3.0, "accessDelay": 1.0},
		{"name": "EdgeServer2", "class": "edge", "computeRate": 4.0, "accessDelay": 1.0},
		{"name": "CloudServer", "class": "cloud", "computeRate": 10.0, "accessDelay": 5.0},
	})
	v.SetDefault("simulation.energy.baseCost", 1.0)
	v.SetDefault("simulation.energy.perUnitCost", 0.5)
	v.SetDefault("simulation.network.fastWireless", 100.0)
	v.SetDefault("simulation.network.slowWireless", 10.0)
	v.SetDefault("simulation.network.wiredBackhaul", 1000.0)
	v.SetDefault("simulation.static.sizeThreshold", 50.0)
	v.SetDefault("simulation.static.dataThreshold", 100.0)
}

// bindEnv maps deployment secrets onto config keys
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"app.name":       "APP_NAME",
		"db.host":        "PG_HOST",
		"db.port":        "PG_PORT",
		"db.user":        "PG_USER",
		"db.password":    "PG_PASS",
		"db.name":        "PG_DB",
		"redis.addr":     "REDIS_ADDR",
		"redis.password": "REDIS_PASSWORD",
		"mq.user":        "MQ_USER",
		"mq.password":    "MQ_PASS",
		"mq.host":        "MQ_HOST",
		"mq.port":        "MQ_PORT",
		"prometheus.url": "PROMETHEUS_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

// Load decodes an AppConfig from an already pointed viper instance.
// A missing config file is not an error; defaults and environment apply.
func Load(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var config *AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	addZapEncoderConfig(&config.Logger.EncoderConfig)

	if err := config.Simulation.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// New creates a new AppConfig instance from the global viper and exits on failure
func New() *AppConfig {
	// a local .env is optional; real environment variables win
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/secrets/")

	config, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return config
}

// Validate rejects topologies the cost model cannot evaluate
func (s *Simulation) Validate() error {
	if s.NumTasks < 0 {
		return fmt.Errorf("simulation.numTasks must not be negative, got %d", s.NumTasks)
	}
	if s.Device.ComputeRate <= 0 {
		return fmt.Errorf("simulation.device.computeRate must be positive, got %v", s.Device.ComputeRate)
	}
	if s.Device.BatteryCapacity < 0 || s.Device.LowBattery < 0 {
		return errors.New("simulation.device battery values must not be negative")
	}
	for _, srv := range s.Servers {
		if srv.Name == "" {
			return errors.New("simulation.servers entries need a name")
		}
		if srv.ComputeRate <= 0 {
			return fmt.Errorf("simulation.servers[%s].computeRate must be positive, got %v", srv.Name, srv.ComputeRate)
		}
		if srv.AccessDelay < 0 {
			return fmt.Errorf("simulation.servers[%s].accessDelay must not be negative", srv.Name)
		}
	}
	if s.Energy.BaseCost < 0 || s.Energy.PerUnitCost < 0 {
		return errors.New("simulation.energy costs must not be negative")
	}
	if s.Network.FastWireless <= 0 || s.Network.SlowWireless <= 0 || s.Network.WiredBackhaul <= 0 {
		return errors.New("simulation.network speeds must be positive")
	}
	return nil
}

// WirelessProfiles are the wireless profile names scenarios may use
var WirelessProfiles = []string{"fast", "slow"}

// WirelessSpeed returns the configured speed of a named wireless profile
func (n Network) WirelessSpeed(profile string) (float64, bool) {
	switch strings.ToLower(profile) {
	case "fast":
		return n.FastWireless, true
	case "slow":
		return n.SlowWireless, true
	}
	return 0, false
}

// AMQPURL builds the broker url from the MQ section
func (m *MQ) AMQPURL() string {
	vhost := strings.TrimPrefix(m.VHost, "/")
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s", m.User, m.Password, m.Host, m.Port, vhost)
}

// URL builds the postgres connection url from the DB section
func (d *DB) URL() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=disable",
		d.Connection,
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "airportscript.cfg.json"

// CatalogConfig selects and prices the airport type table.
type CatalogConfig struct {
	Path              string `json:"path" mapstructure:"path"`
	BasePrice         int64  `json:"basePrice" mapstructure:"basePrice"`
	NeverExpire       bool   `json:"neverExpire" mapstructure:"neverExpire"`
	ModifiedCatchment bool   `json:"modifiedCatchment" mapstructure:"modifiedCatchment"`
	Disabled          []int  `json:"disabled" mapstructure:"disabled"`
}

// GameConfig holds the game rules the queries depend on.
type GameConfig struct {
	Year                 int    `json:"year" mapstructure:"year"`
	NoiseLevel           bool   `json:"noiseLevel" mapstructure:"noiseLevel"`
	TownCouncilTolerance int    `json:"townCouncilTolerance" mapstructure:"townCouncilTolerance"`
	StationSpread        uint32 `json:"stationSpread" mapstructure:"stationSpread"`
	DistantJoinStations  bool   `json:"distantJoinStations" mapstructure:"distantJoinStations"`
	ClearCostPerTile     int64  `json:"clearCostPerTile" mapstructure:"clearCostPerTile"`
}

// ExecutorConfig selects how submitted commands are applied.
type ExecutorConfig struct {
	Mode       string `json:"mode" mapstructure:"mode"` // deferred or async
	BufferSize int    `json:"bufferSize" mapstructure:"bufferSize"`
}

// MemoryConfig holds in-memory/JSON journal settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the SQLite journal settings.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects the command journal backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// WebsocketConfig holds the journal streaming endpoint.
type WebsocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// InfluxConfig holds InfluxDB connection settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// OTelConfig holds OpenTelemetry log export settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// APIConfig holds the journal server the exported journal is uploaded to.
type APIConfig struct {
	ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string `json:"apiKey" mapstructure:"apiKey"`
	Upload    bool   `json:"upload" mapstructure:"upload"`
}

// MonitorConfig holds the status file settings.
type MonitorConfig struct {
	Enabled  bool          `json:"enabled" mapstructure:"enabled"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// Config is the typed view of the whole configuration.
type Config struct {
	LogLevel  string          `json:"logLevel" mapstructure:"logLevel"`
	LogsDir   string          `json:"logsDir" mapstructure:"logsDir"`
	Catalog   CatalogConfig   `json:"catalog" mapstructure:"catalog"`
	Game      GameConfig      `json:"game" mapstructure:"game"`
	Executor  ExecutorConfig  `json:"executor" mapstructure:"executor"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	DB        DBConfig        `json:"db" mapstructure:"db"`
	Websocket WebsocketConfig `json:"websocket" mapstructure:"websocket"`
	Influx    InfluxConfig    `json:"influx" mapstructure:"influx"`
	OTel      OTelConfig      `json:"otel" mapstructure:"otel"`
	API       APIConfig       `json:"api" mapstructure:"api"`
	Monitor   MonitorConfig   `json:"monitor" mapstructure:"monitor"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./airportlogs")

	viper.SetDefault("catalog.path", "")
	viper.SetDefault("catalog.basePrice", 5000)
	viper.SetDefault("catalog.neverExpire", false)
	viper.SetDefault("catalog.modifiedCatchment", true)
	viper.SetDefault("catalog.disabled", []int{})

	viper.SetDefault("game.year", 1950)
	viper.SetDefault("game.noiseLevel", true)
	viper.SetDefault("game.townCouncilTolerance", 0)
	viper.SetDefault("game.stationSpread", 12)
	viper.SetDefault("game.distantJoinStations", true)
	viper.SetDefault("game.clearCostPerTile", 250)

	viper.SetDefault("executor.mode", "deferred")
	viper.SetDefault("executor.bufferSize", 1000)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./journals")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./airportscript.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "30s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "airportscript")

	viper.SetDefault("websocket.url", "ws://localhost:5000/api/v1/journal")
	viper.SetDefault("websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "airportscript")
	viper.SetDefault("influx.bucket", "commands")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "airportscript")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.upload", false)

	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.interval", "1s")
}

// Load reads configuration from the JSON file in configDir and sets
// default values.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// IsNotFound reports whether err means Load found no config file. Callers
// may continue with the defaults.
func IsNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// Settings returns the typed configuration.
func Settings() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// GetStorageConfig returns the journal backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the sector authoring host.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP host (health, metrics, sessions).
// - CRS: The working coordinate reference system code of the project.
// - CRSProj4: PROJ.4 definition for a CRS other than EPSG:4326/EPSG:3857.
// - SettingsPath: Path to the YAML file with tool settings.
// - LocatorType: The address locator used to place sites (google, nominatim).
// - LocatorKey: The API key for the locator (required for Google).
// - Database: Configuration settings for the PostgreSQL feature store.
type Config struct {
	Env          string         `yaml:"env"`           // Env is the current environment: local, development, production.
	Port         int            `yaml:"port"`          // Port is the HTTP host port.
	CRS          string         `yaml:"crs"`           // CRS is the project CRS code.
	CRSProj4     string         `yaml:"crs_proj4"`     // CRSProj4 defines custom projected systems.
	SettingsPath string         `yaml:"settings_path"` // SettingsPath points at the tool settings file.
	LocatorType  string         `yaml:"locator.type"`  // LocatorType selects the address locator.
	LocatorKey   string         `yaml:"locator.key"`   // LocatorKey is the locator API key.
	Database     PostgresConfig `yaml:"postgres"`      // Database holds the postgres database configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// Enabled reports whether a database host was configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad loads the configuration from the environment (and an optional .env file).
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("SHOOTER_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for host server from configuration")
	}

	return &Config{
		Env:          setDefaultEnv("SHOOTER_ENV", "production"),
		Port:         port,
		CRS:          setDefaultEnv("SHOOTER_CRS", "EPSG:4326"),
		CRSProj4:     os.Getenv("SHOOTER_CRS_PROJ4"),
		SettingsPath: os.Getenv("SHOOTER_SETTINGS"),
		LocatorType:  setDefaultEnv("SHOOTER_LOCATOR_TYPE", "nominatim"),
		LocatorKey:   os.Getenv("SHOOTER_LOCATOR_KEY"),
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

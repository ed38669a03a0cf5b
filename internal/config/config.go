package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Backend selectors.
const (
	StorageDriverMinIO = "minio"
	StorageDriverGCS   = "gcs"

	RecordsDriverPostgres  = "postgres"
	RecordsDriverFirestore = "firestore"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	Table              string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	ConnectTimeoutSec  int
	AutoMigrate        bool
}

// FirestoreConfig holds settings for the Firestore record store.
type FirestoreConfig struct {
	ProjectID  string
	Collection string
}

// MinIOConfig holds settings for any S3-compatible object store.
type MinIOConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Region       string
	Bucket       string
	UseSSL       bool
	CreateBucket bool
}

// GCSConfig holds settings for the Google Cloud Storage object store.
type GCSConfig struct {
	Bucket string
}

// FetchConfig controls the outbound HTTP client used to download source files.
type FetchConfig struct {
	TimeoutSec int
	UserAgent  string
	MaxBytes   int64
}

// PubSubConfig enables the pull trigger of the standalone server.
type PubSubConfig struct {
	ProjectID      string
	SubscriptionID string
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port          string
	StorageDriver string
	RecordsDriver string
	Logging       LoggingConfig
	Database      DatabaseConfig
	Firestore     FirestoreConfig
	MinIO         MinIOConfig
	GCS           GCSConfig
	Fetch         FetchConfig
	PubSub        PubSubConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	v := newViper()
	return &AppConfig{
		Port:          v.GetString("port"),
		StorageDriver: strings.ToLower(v.GetString("storage.driver")),
		RecordsDriver: strings.ToLower(v.GetString("records.driver")),
		Logging: LoggingConfig{
			Development: v.GetBool("logging.development"),
		},
		Database: DatabaseConfig{
			Host:               v.GetString("db.host"),
			Port:               v.GetString("db.port"),
			User:               v.GetString("db.user"),
			Password:           v.GetString("db.password"),
			Name:               v.GetString("db.name"),
			SSLMode:            v.GetString("db.sslmode"),
			Table:              v.GetString("db.table"),
			MaxOpenConns:       v.GetInt("db.max_open_conns"),
			MaxIdleConns:       v.GetInt("db.max_idle_conns"),
			ConnMaxLifetimeSec: v.GetInt("db.conn_max_lifetime_sec"),
			ConnectTimeoutSec:  v.GetInt("db.connect_timeout_sec"),
			AutoMigrate:        v.GetBool("db.auto_migrate"),
		},
		Firestore: FirestoreConfig{
			ProjectID:  v.GetString("firestore.project_id"),
			Collection: v.GetString("firestore.collection"),
		},
		MinIO: MinIOConfig{
			Endpoint:     v.GetString("minio.endpoint"),
			AccessKey:    v.GetString("minio.access_key"),
			SecretKey:    v.GetString("minio.secret_key"),
			Region:       v.GetString("minio.region"),
			Bucket:       v.GetString("minio.bucket"),
			UseSSL:       v.GetBool("minio.use_ssl"),
			CreateBucket: v.GetBool("minio.create_bucket"),
		},
		GCS: GCSConfig{
			Bucket: v.GetString("gcs.bucket"),
		},
		Fetch: FetchConfig{
			TimeoutSec: v.GetInt("fetch.timeout_sec"),
			UserAgent:  v.GetString("fetch.user_agent"),
			MaxBytes:   v.GetInt64("fetch.max_bytes"),
		},
		PubSub: PubSubConfig{
			ProjectID:      v.GetString("pubsub.project_id"),
			SubscriptionID: v.GetString("pubsub.subscription"),
		},
	}
}

// newViper binds every key to its environment variable(s). When several names are
// bound to one key the first one that is set wins, which keeps the original
// AWS_*/BUCKET_NAME/YDB_TABLE_NAME deployments working.
func newViper() *viper.Viper {
	v := viper.New()

	bind := func(key string, def any, envs ...string) {
		v.SetDefault(key, def)
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	bind("port", "8080", "PORT")
	bind("storage.driver", StorageDriverMinIO, "STORAGE_DRIVER")
	bind("records.driver", RecordsDriverPostgres, "RECORDS_DRIVER")
	bind("logging.development", false, "LOG_DEVELOPMENT")

	bind("db.host", "", "DB_HOST")
	bind("db.port", "5432", "DB_PORT")
	bind("db.user", "", "DB_USER")
	bind("db.password", "", "DB_PASSWORD")
	bind("db.name", "", "DB_NAME")
	bind("db.sslmode", "disable", "DB_SSLMODE")
	bind("db.table", "cw2/documents", "DB_TABLE", "YDB_TABLE_NAME")
	bind("db.max_open_conns", 10, "DB_MAX_OPEN_CONNS")
	bind("db.max_idle_conns", 5, "DB_MAX_IDLE_CONNS")
	bind("db.conn_max_lifetime_sec", 300, "DB_CONN_MAX_LIFETIME_SEC")
	bind("db.connect_timeout_sec", 10, "DB_CONNECT_TIMEOUT_SEC")
	bind("db.auto_migrate", true, "DB_AUTO_MIGRATE")

	bind("firestore.project_id", "", "FIRESTORE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	bind("firestore.collection", "documents", "FIRESTORE_COLLECTION")

	bind("minio.endpoint", "storage.yandexcloud.net", "MINIO_ENDPOINT", "S3_ENDPOINT")
	bind("minio.access_key", "", "MINIO_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	bind("minio.secret_key", "", "MINIO_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	bind("minio.region", "ru-central1", "MINIO_REGION", "AWS_REGION")
	bind("minio.bucket", "", "MINIO_BUCKET", "BUCKET_NAME")
	bind("minio.use_ssl", true, "MINIO_USE_SSL")
	bind("minio.create_bucket", false, "MINIO_CREATE_BUCKET")

	bind("gcs.bucket", "", "GCS_BUCKET", "BUCKET_NAME")

	bind("fetch.timeout_sec", 60, "FETCH_TIMEOUT_SEC")
	bind("fetch.user_agent", "docbridge/1.0", "FETCH_USER_AGENT")
	bind("fetch.max_bytes", int64(0), "FETCH_MAX_BYTES")

	bind("pubsub.project_id", "", "PUBSUB_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	bind("pubsub.subscription", "", "PUBSUB_SUBSCRIPTION")

	return v
}

// Validate enforces the settings the selected backends cannot run without.
func (c *AppConfig) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMinIO:
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("minio bucket is required")
		}
	case StorageDriverGCS:
		if c.GCS.Bucket == "" {
			return fmt.Errorf("gcs bucket is required")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	switch c.RecordsDriver {
	case RecordsDriverPostgres:
		if c.Database.Table == "" {
			return fmt.Errorf("documents table name is required")
		}
	case RecordsDriverFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore project id is required")
		}
	default:
		return fmt.Errorf("unsupported records driver %q", c.RecordsDriver)
	}

	if c.Fetch.TimeoutSec < 0 {
		return fmt.Errorf("fetch timeout must be >= 0")
	}
	return nil
}

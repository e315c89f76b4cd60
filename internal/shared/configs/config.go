package configs

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Log         LogConfig         `mapstructure:"log" validate:"required"`
	FileStorage FileStorageConfig `mapstructure:"file_storage" validate:"required"`
	Geo         GeoConfig         `mapstructure:"geo" validate:"required"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline" validate:"required"`
	TailSource  TailSourceConfig  `mapstructure:"tail_source"`
	S3Archive   S3ArchiveConfig   `mapstructure:"s3_archive"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string         `mapstructure:"level" validate:"required"`
	File  *LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables rotating file output in addition to stdout.
type LogFileConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"required,min=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// FileStorageConfig holds file storage configuration.
type FileStorageConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
}

// GeoConfig holds geo database configuration. The database path must point
// at an existing MMDB file; startup fails otherwise.
type GeoConfig struct {
	DatabasePath string `mapstructure:"database_path" validate:"required"`
}

// PipelineConfig holds batch pipeline configuration.
type PipelineConfig struct {
	AggregationWorkers int `mapstructure:"aggregation_workers" validate:"required,min=1"`
	MergePartitions    int `mapstructure:"merge_partitions" validate:"required,min=1"`
}

// TailSourceConfig enables following a local access log as an intake source.
type TailSourceConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Path                 string `mapstructure:"path" validate:"required_if=Enabled true"`
	FlushIntervalSeconds int    `mapstructure:"flush_interval_seconds" validate:"required_if=Enabled true,omitempty,min=1"`
}

// S3ArchiveConfig enables off-site archival of accepted raw batches.
type S3ArchiveConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Region         string `mapstructure:"region" validate:"required_if=Enabled true"`
	Bucket         string `mapstructure:"bucket" validate:"required_if=Enabled true"`
	Prefix         string `mapstructure:"prefix"`
	Retries        int    `mapstructure:"retries" validate:"required_if=Enabled true,omitempty,min=1"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required_if=Enabled true,omitempty,min=1"`
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Minio    MinioConfig    `mapstructure:"minio"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Encoding EncodingConfig `mapstructure:"encoding"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Public   PublicConfig   `mapstructure:"public"`
}

// ServerConfig HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig MySQL configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis configuration, backing the video representation cache.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// KafkaConfig transport for encode requests between the API and worker processes.
type KafkaConfig struct {
	BootstrapServers     []string          `mapstructure:"bootstrap_servers"`
	ClientID             string            `mapstructure:"client_id"`
	GroupID              string            `mapstructure:"group_id"`
	Enabled              bool              `mapstructure:"enabled"`
	Topics               KafkaTopicsConfig `mapstructure:"topics"`
	CommitOnDecodeError  bool              `mapstructure:"commit_on_decode_error"`
	CommitOnProcessError bool              `mapstructure:"commit_on_process_error"`
}

type KafkaTopicsConfig struct {
	EncodeRequests string `mapstructure:"encode_requests"`
}

// MinioConfig object storage configuration, used when storage.backend is "minio".
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// StorageConfig selects and parameterizes the asset storage backend.
type StorageConfig struct {
	// Backend is "local" or "minio".
	Backend string `mapstructure:"backend"`
	// Root is the base directory for all assets of the local backend.
	Root string `mapstructure:"root"`
	// TempDir holds scratch files for encode runs against remote backends.
	TempDir string `mapstructure:"temp_dir"`
}

// PresetConfig is one named target encode configuration. A preset produces
// exactly one rendition file named <preset>.mp4.
type PresetConfig struct {
	Size         string `mapstructure:"size"`
	VideoBitrate string `mapstructure:"video_bitrate"`
	AudioBitrate string `mapstructure:"audio_bitrate"`
	Framerate    string `mapstructure:"framerate"`
	AudioRate    string `mapstructure:"audio_rate"`
}

// EncodingConfig drives the external encoder invocations.
type EncodingConfig struct {
	FFmpegBinary  string                  `mapstructure:"ffmpeg_binary"`
	FFprobeBinary string                  `mapstructure:"ffprobe_binary"`
	Presets       map[string]PresetConfig `mapstructure:"presets"`
	// ThumbnailPreset names the rendition the static thumbnail is extracted from.
	ThumbnailPreset string        `mapstructure:"thumbnail_preset"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// WorkerConfig encode worker pool configuration.
type WorkerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	WorkerID            string        `mapstructure:"worker_id"`
	MaxConcurrentTasks  int           `mapstructure:"max_concurrent_tasks"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// PublicConfig controls how asset URLs are built for external consumers.
type PublicConfig struct {
	// AssetsRootURL is prepended to asset routes when assets are hosted on a
	// separate origin, e.g. "http://static.example.com".
	AssetsRootURL string `mapstructure:"assets_root_url"`
	// AllowedOrigin is the Access-Control-Allow-Origin value attached to
	// subtitle, thumbnail and poster-frame responses.
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// LogConfig logging configuration.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// Load reads and validates the configuration file.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("kafka.enabled", true)
	viper.SetDefault("kafka.client_id", "video-pipeline-service")
	viper.SetDefault("kafka.group_id", "video-pipeline-group")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	viper.SetDefault("kafka.topics.encode_requests", "pipeline.encode")
	viper.SetDefault("kafka.commit_on_decode_error", true)
	viper.SetDefault("kafka.commit_on_process_error", false)

	viper.SetEnvPrefix("VIDEOPIPELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// normalize fills in default values.
func (c *Config) normalize() {
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "/tmp/video-pipeline"
	}

	if c.Encoding.FFmpegBinary == "" {
		c.Encoding.FFmpegBinary = "ffmpeg"
	}
	if c.Encoding.FFprobeBinary == "" {
		c.Encoding.FFprobeBinary = "ffprobe"
	}
	if c.Encoding.Timeout == 0 {
		c.Encoding.Timeout = time.Hour
	}
	for name, preset := range c.Encoding.Presets {
		if preset.Framerate == "" {
			preset.Framerate = "30"
		}
		if preset.AudioRate == "" {
			preset.AudioRate = "48000"
		}
		c.Encoding.Presets[name] = preset
	}

	if c.Worker.MaxConcurrentTasks <= 0 {
		c.Worker.MaxConcurrentTasks = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentTasks * 10
	}
	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = 2 * time.Second
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}

	if c.Public.AllowedOrigin == "" {
		c.Public.AllowedOrigin = "*"
	}

	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = time.Hour
	}

	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "video-pipeline-service"
	}
	if c.Kafka.Topics.EncodeRequests == "" {
		c.Kafka.Topics.EncodeRequests = "pipeline.encode"
	}
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	if len(c.Encoding.Presets) == 0 {
		return fmt.Errorf("encoding.presets must define at least one preset")
	}
	for name, preset := range c.Encoding.Presets {
		if preset.Size == "" || preset.VideoBitrate == "" || preset.AudioBitrate == "" {
			return fmt.Errorf("preset %q must define size, video_bitrate and audio_bitrate", name)
		}
	}
	if c.Encoding.ThumbnailPreset != "" {
		if _, ok := c.Encoding.Presets[c.Encoding.ThumbnailPreset]; !ok {
			return fmt.Errorf("encoding.thumbnail_preset %q is not a configured preset", c.Encoding.ThumbnailPreset)
		}
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Root == "" {
			return fmt.Errorf("storage.root is required for the local backend")
		}
	case "minio":
		if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			return fmt.Errorf("minio.endpoint and minio.bucket_name are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// GetDSN builds the MySQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetRedisAddr returns the host:port Redis address.
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type FeedConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type CategoryConfig struct {
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`
	Database struct {
		Driver       string `mapstructure:"driver"` // sqlite or postgres
		Path         string `mapstructure:"path"`
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		Name         string `mapstructure:"name"`
		Sslmode      string `mapstructure:"sslmode"`
		Timezone     string `mapstructure:"timezone"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Stream   string `mapstructure:"stream"`
		Group    string `mapstructure:"group"`
	} `mapstructure:"redis"`
	Worker struct {
		Mode        string        `mapstructure:"mode"` // async or sync
		Concurrency int           `mapstructure:"concurrency"`
		Block       time.Duration `mapstructure:"block"`
	} `mapstructure:"worker"`
	Ingest struct {
		Interval time.Duration `mapstructure:"interval"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ingest"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	CORS struct {
		Origins []string `mapstructure:"origins"`
	} `mapstructure:"cors"`
	Feeds      []FeedConfig     `mapstructure:"feeds"`
	Categories []CategoryConfig `mapstructure:"categories"`
}

// DefaultFeeds is used when the configuration lists no feeds.
var DefaultFeeds = []FeedConfig{
	{Name: "CNN Top Stories", URL: "http://rss.cnn.com/rss/cnn_topstories.rss"},
	{Name: "Quartz", URL: "http://qz.com/feed"},
	{Name: "Fox News Politics", URL: "http://feeds.foxnews.com/foxnews/politics"},
	{Name: "Reuters Business", URL: "http://feeds.reuters.com/reuters/businessNews"},
	{Name: "PBS NewsHour World", URL: "http://feeds.feedburner.com/NewshourWorld"},
	{Name: "BBC India", URL: "https://feeds.bbci.co.uk/news/world/asia/india/rss.xml"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "rsscat")
	v.SetDefault("app.port", ":5000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "news.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "rsscat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 20)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "rsscat:classify")
	v.SetDefault("redis.group", "classifiers")

	v.SetDefault("worker.mode", "async")
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.block", 5*time.Second)

	v.SetDefault("ingest.interval", time.Duration(0))
	v.SetDefault("ingest.timeout", 20*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.origins", []string{"*"})
}

// InitConfig reads config.yaml from configPath, which may be a directory or a file.
// A missing file is not an error: defaults and RSSCAT_* environment variables apply.
func InitConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if ext := filepath.Ext(configPath); ext == ".yaml" || ext == ".yml" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix("RSSCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = append([]FeedConfig(nil), DefaultFeeds...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Worker.Mode {
	case "async", "sync":
	default:
		return fmt.Errorf("unsupported worker mode %q", c.Worker.Mode)
	}
	if c.Worker.Concurrency < 1 {
		return errors.New("worker.concurrency must be at least 1")
	}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("feeds[%d]: url is required", i)
		}
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
	}
	return nil
}

// FeedURLs returns the configured feed URLs in declared order.
func (c *Config) FeedURLs() []string {
	urls := make([]string, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		urls = append(urls, f.URL)
	}
	return urls
}

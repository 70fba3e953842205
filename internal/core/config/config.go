package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

type DatasetCfg struct {
	Source      string
	Path        string
	RedisAddr   string
	RedisKey    string
	RedisDB     int
	LoadTimeout time.Duration
	CacheSize   int
}

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	LogSampleN     int
	Dataset        DatasetCfg
	RandomSeed     uint64
	H3Res          int
	MetricsEnabled bool
}

// LoadDotEnv reads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func FromEnv() Config {
	res := getint("H3_RES", 8)
	if res < 0 || res > 15 {
		res = 8
	}

	source := strings.ToLower(getenv("DATASET_SOURCE", SourceFile))
	if source != SourceRedis {
		source = SourceFile
	}

	return Config{
		Addr:       getenv("ADDR", ":8090"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),
		LogSampleN: getint("LOG_SAMPLE_N", 0),
		Dataset: DatasetCfg{
			Source:      source,
			Path:        getenv("DATASET_PATH", ""),
			RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
			RedisKey:    getenv("DATASET_REDIS_KEY", "coverage:dataset"),
			RedisDB:     getint("REDIS_DB", 0),
			LoadTimeout: getduration("DATASET_LOAD_TIMEOUT", 5*time.Second),
			CacheSize:   getint("DATASET_CACHE_SIZE", 8),
		},
		RandomSeed:     getuint64("RANDOM_SEED", 0),
		H3Res:          res,
		MetricsEnabled: getbool("METRICS_ENABLED", false),
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getuint64(k string, def uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

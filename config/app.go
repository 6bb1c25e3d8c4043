package config

import (
	"os"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName     string
	Port        string
	Env         string
	Debug       bool
	MediaDir    string
	CopyTimeout time.Duration
	// Add more fields as needed
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		copyTimeout := 10 * time.Second
		if v := os.Getenv("DUPLICATE_COPY_TIMEOUT"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				copyTimeout = d
			}
		}
		AppConfig = &Config{
			AppName:     os.Getenv("APP_NAME"),
			Port:        os.Getenv("PORT"),
			Env:         os.Getenv("APP_ENV"),
			Debug:       os.Getenv("DEBUG") == "true",
			MediaDir:    GetEnv("MEDIA_DIR", "media/equipment"),
			CopyTimeout: copyTimeout,
		}
	})
}

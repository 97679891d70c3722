// Package config reads server settings from the environment.
package config

import (
	"os"
	"strings"

	"apivengers/internal/backup"
	"apivengers/internal/scaffold"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

var defaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

type Config struct {
	DataDir     string
	Port        string
	Store       string
	MongoURI    string
	MongoDB     string
	CORSOrigins []string
	JWTSecret   string
	ProbeHosts  []string

	BackupTarget   string
	BackupSchedule string
	WebDAVURL      string
	WebDAVUser     string
	WebDAVPassword string
	S3             backup.S3Config
}

// Load reads the environment, filling defaults for anything unset.
func Load() Config {
	return Config{
		DataDir:     getenv("APIVENGERS_DATA_DIR", "data"),
		Port:        getenv("PORT", "5000"),
		Store:       strings.ToLower(getenv("APIVENGERS_STORE", StoreSQLite)),
		MongoURI:    getenv("APIVENGERS_MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("APIVENGERS_MONGO_DB", "schema"),
		CORSOrigins: splitList(os.Getenv("APIVENGERS_CORS_ORIGINS"), defaultCORSOrigins),
		JWTSecret:   getenv("APIVENGERS_JWT_SECRET", scaffold.DefaultJWTSecret),
		ProbeHosts:  splitList(os.Getenv("APIVENGERS_PROBE_HOSTS"), scaffold.DefaultProbeHosts),

		BackupTarget:   strings.ToLower(os.Getenv("APIVENGERS_BACKUP_TARGET")),
		BackupSchedule: os.Getenv("APIVENGERS_BACKUP_SCHEDULE"),
		WebDAVURL:      os.Getenv("WEBDAV_URL"),
		WebDAVUser:     os.Getenv("WEBDAV_USER"),
		WebDAVPassword: os.Getenv("WEBDAV_PASSWORD"),
		S3: backup.S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    os.Getenv("S3_REGION"),
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

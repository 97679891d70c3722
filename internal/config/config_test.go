package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"APIVENGERS_DATA_DIR", "PORT", "APIVENGERS_STORE", "APIVENGERS_MONGO_URI",
		"APIVENGERS_MONGO_DB", "APIVENGERS_CORS_ORIGINS", "APIVENGERS_JWT_SECRET",
		"APIVENGERS_BACKUP_TARGET", "APIVENGERS_BACKUP_SCHEDULE", "APIVENGERS_PROBE_HOSTS",
	} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, ":5000", c.Addr())
	assert.Equal(t, StoreSQLite, c.Store)
	assert.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	assert.Equal(t, "schema", c.MongoDB)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, c.CORSOrigins)
	assert.Equal(t, "your-secret-key", c.JWTSecret)
	assert.Empty(t, c.BackupTarget)
	assert.Equal(t, []string{"localhost", "127.0.0.1", "::1"}, c.ProbeHosts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("APIVENGERS_STORE", "Mongo")
	t.Setenv("APIVENGERS_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("APIVENGERS_BACKUP_TARGET", "S3")
	t.Setenv("S3_BUCKET", "backups")
	t.Setenv("APIVENGERS_PROBE_HOSTS", "api.internal")

	c := Load()
	assert.Equal(t, "127.0.0.1:9000", c.Addr())
	assert.Equal(t, StoreMongo, c.Store)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, "s3", c.BackupTarget)
	assert.Equal(t, "backups", c.S3.Bucket)
	assert.Equal(t, []string{"api.internal"}, c.ProbeHosts)
}

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alijeyrad/studio_backend/config"
)

func TestDSN(t *testing.T) {
	cfg := FromCentralConfig(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "leads",
		Password: "p@ss word'1",
		DBName:   "leads",
	})

	assert.Equal(t,
		`host=db.internal port=5432 user=leads password='p@ss word\'1' dbname=leads sslmode=disable`,
		cfg.DSN(),
	)
}

func TestConnMaxLifetime(t *testing.T) {
	assert.Equal(t, 5*time.Minute, Config{}.ConnMaxLifetime())
	assert.Equal(t, 30*time.Minute, Config{ConnMaxLifetimeMin: 30}.ConnMaxLifetime())
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

// GetDB returns the snapshot lineage database, or nil when no lineage DB is
// configured. Callers must treat nil as "directory scan only".
func GetDB() *gorm.DB {
	return db
}

func init() {
	// Load env from .env. Connection happens explicitly from main: a batch
	// run without a lineage DB must still start.
	godotenv.Load()
}

// ConnectLineageDatabase connects the optional snapshot lineage index and
// sets the global DB. No-op when LINEAGE_DB_HOST is unset: the version
// resolver then works purely off the versioned folder.
func ConnectLineageDatabase() error {
	dbHost := strings.TrimSpace(os.Getenv("LINEAGE_DB_HOST"))
	if dbHost == "" {
		return nil
	}

	dbUser := os.Getenv("LINEAGE_DB_USER")
	dbPassword := os.Getenv("LINEAGE_DB_PASSWORD")
	dbPort := os.Getenv("LINEAGE_DB_PORT")
	dbName := os.Getenv("LINEAGE_DB_NAME")

	network := "tcp"
	address := fmt.Sprintf("%s:%s", dbHost, dbPort)

	// When LINEAGE_DB_HOST is "/cloudsql/<CONNECTION_NAME>", connect through
	// the Cloud SQL Auth Proxy's Unix socket.
	if strings.HasPrefix(dbHost, "/cloudsql/") {
		network = "unix"
		address = dbHost
	}

	databaseConfig := fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true",
		dbUser,
		dbPassword,
		network,
		address,
		dbName,
	)

	var err error
	db, err = gorm.Open(mysql.Open(databaseConfig), initConfig())
	if err != nil {
		db = nil
		return fmt.Errorf("connect lineage database: %w", err)
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	return nil
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}

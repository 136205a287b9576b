package db

import (
	"log"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/playlink/llm-server/internal/chat"
	"github.com/playlink/llm-server/internal/integration"
)

// Open connects to the embedded sqlite database and migrates the schema.
// The default DSN keeps all state in memory for the process lifetime.
func Open(dsn string) *gorm.DB {
	gdb, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("sqlite open: %v", err)
	}
	if err := gdb.AutoMigrate(&chat.Session{}, &chat.Message{}, &chat.Job{}, &integration.Integration{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}
	return gdb
}

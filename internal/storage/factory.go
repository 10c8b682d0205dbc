package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/storage/badger"
	"github.com/ternarybob/bursa/internal/storage/mongo"
)

// NewStorageManager creates a new storage manager based on config.
// "badger" (default) runs embedded; "mongo" targets an external store
// with a lazily-established connection.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "badger", "":
		return badger.NewManager(logger, &config.Storage.Badger)
	case "mongo":
		return mongo.NewManager(logger, &config.Storage.Mongo)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (want 'badger' or 'mongo')", config.Storage.Type)
	}
}

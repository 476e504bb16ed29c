package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/swarmflow/internal/database"
)

// saveRetries bounds WithTransactionRetry for upserts.
const saveRetries = 3

// stateRow is the table layout used by SQLStateStore.
type stateRow struct {
	ID        string `gorm:"primaryKey;size:255"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (stateRow) TableName() string { return "swarm_manager_states" }

// SQLStateStore persists state documents through gorm.
type SQLStateStore struct {
	pool *database.PoolManager
}

// NewSQLStateStore opens the configured database and migrates the state table
func NewSQLStateStore(config StoreConfig) (*SQLStateStore, error) {
	poolConfig := config.SQL.Pool
	if poolConfig == (database.PoolConfig{}) {
		poolConfig = database.DefaultPoolConfig()
	}
	var dialector gorm.Dialector
	switch config.SQL.Driver {
	case "postgres":
		dialector = postgres.Open(config.SQL.DSN)
	case "mysql":
		dialector = mysql.Open(config.SQL.DSN)
	case "sqlite", "":
		if dir := filepath.Dir(config.SQL.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(config.SQL.DSN)
		// SQLite serializes writers
		poolConfig.MaxOpenConns, poolConfig.MaxIdleConns = 1, 1
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", config.SQL.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.SQL.Driver, err)
	}
	pool, err := database.NewPoolManager(db, poolConfig, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return newSQLStateStore(pool)
}

// NewSQLStateStoreFromDB wraps an existing gorm handle with the default pool
// settings and migrates the state table.
func NewSQLStateStoreFromDB(db *gorm.DB, logger *zap.Logger) (*SQLStateStore, error) {
	pool, err := database.NewPoolManager(db, database.DefaultPoolConfig(), logger)
	if err != nil {
		return nil, err
	}
	return newSQLStateStore(pool)
}

func newSQLStateStore(pool *database.PoolManager) (*SQLStateStore, error) {
	db, err := pool.DB(context.Background())
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&stateRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state table: %w", err)
	}
	return &SQLStateStore{pool: pool}, nil
}

func (s *SQLStateStore) db(ctx context.Context) (*gorm.DB, error) {
	db, err := s.pool.DB(ctx)
	if errors.Is(err, database.ErrPoolClosed) {
		return nil, ErrStoreClosed
	}
	return db, err
}

// Close closes the underlying connection pool
func (s *SQLStateStore) Close() error {
	return s.pool.Close()
}

// Ping checks if the store is healthy
func (s *SQLStateStore) Ping(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if errors.Is(err, database.ErrPoolClosed) {
		return ErrStoreClosed
	}
	return err
}

// SaveState upserts the document
func (s *SQLStateStore) SaveState(ctx context.Context, conversationID string, data []byte) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrInvalidInput
	}
	if _, err := s.db(ctx); err != nil {
		return err
	}

	row := stateRow{ID: conversationID, Data: data, UpdatedAt: time.Now().UTC()}
	return s.pool.WithTransactionRetry(ctx, saveRetries, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
}

// LoadState retrieves the saved document
func (s *SQLStateStore) LoadState(ctx context.Context, conversationID string) ([]byte, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var row stateRow
	err = db.First(&row, "id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

// DeleteState removes the saved document
func (s *SQLStateStore) DeleteState(ctx context.Context, conversationID string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	result := db.Delete(&stateRow{}, "id = ?", conversationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStates returns saved IDs
func (s *SQLStateStore) ListStates(ctx context.Context) ([]string, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	if err := db.Model(&stateRow{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

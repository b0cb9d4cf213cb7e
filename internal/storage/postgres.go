package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/xaenox/sticker-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresCatalog struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresCatalog(config DatabaseConfig, logger *zap.Logger) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	catalog := newPostgresCatalogFromDB(db, logger)
	if err := catalog.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))
	return catalog, nil
}

func newPostgresCatalogFromDB(db *sql.DB, logger *zap.Logger) *PostgresCatalog {
	return &PostgresCatalog{db: db, logger: logger}
}

func (s *PostgresCatalog) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresCatalog) SaveSet(ctx context.Context, summary models.SetSummary) error {
	if summary.DownloadedAt.IsZero() {
		summary.DownloadedAt = time.Now()
	}

	query := `
		INSERT INTO sticker_sets (user_id, set_name, enumerated, saved, downloaded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, set_name) DO UPDATE
		SET enumerated = EXCLUDED.enumerated,
		    saved = EXCLUDED.saved,
		    downloaded_at = EXCLUDED.downloaded_at`

	_, err := s.db.ExecContext(ctx, query,
		summary.UserID,
		summary.SetName,
		summary.Enumerated,
		summary.Saved,
		summary.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving sticker set %q: %w", summary.SetName, err)
	}
	return nil
}

func (s *PostgresCatalog) ListSets(ctx context.Context, userID int64) ([]models.SetSummary, error) {
	query := `
		SELECT user_id, set_name, enumerated, saved, downloaded_at
		FROM sticker_sets
		WHERE user_id = $1
		ORDER BY set_name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying sticker sets: %w", err)
	}
	defer rows.Close()

	var sets []models.SetSummary
	for rows.Next() {
		var summary models.SetSummary
		if err := rows.Scan(
			&summary.UserID,
			&summary.SetName,
			&summary.Enumerated,
			&summary.Saved,
			&summary.DownloadedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning sticker set: %w", err)
		}
		sets = append(sets, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sticker sets: %w", err)
	}
	return sets, nil
}

func (s *PostgresCatalog) Close() error {
	return s.db.Close()
}

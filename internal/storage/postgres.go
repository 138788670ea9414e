package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"courierbot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) SaveConversation(log *models.ConversationLog) error {
	query := `
		INSERT INTO conversations (id, user_id, utterance, action, response)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := s.db.QueryRow(
		query,
		log.ID,
		log.UserID,
		log.Utterance,
		log.Action,
		log.Response,
	).Scan(&log.CreatedAt)

	if err != nil {
		return fmt.Errorf("error saving conversation: %v", err)
	}

	return nil
}

func (s *PostgresStorage) RecentConversations(userID int64, limit int) ([]*models.ConversationLog, error) {
	query := `
		SELECT id, user_id, utterance, action, response, created_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %v", err)
	}
	defer rows.Close()

	var logs []*models.ConversationLog
	for rows.Next() {
		entry := &models.ConversationLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Utterance,
			&entry.Action,
			&entry.Response,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %v", err)
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}

func (s *PostgresStorage) SaveReminder(rec *models.ReminderRecord) error {
	query := `
		INSERT INTO reminders (id, kind, recipient, subject, message, run_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := s.db.QueryRow(
		query,
		rec.ID,
		rec.Kind,
		rec.Recipient,
		rec.Subject,
		rec.Message,
		rec.RunAt,
		rec.Status,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("error saving reminder: %v", err)
	}

	return nil
}

func (s *PostgresStorage) UpdateReminderStatus(id, status, lastError string) error {
	query := `
		UPDATE reminders
		SET status = $1, last_error = $2
		WHERE id = $3`

	result, err := s.db.Exec(query, status, lastError, id)
	if err != nil {
		return fmt.Errorf("error updating reminder status: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reminder not found")
	}

	return nil
}

func (s *PostgresStorage) PendingReminders(before time.Time) ([]*models.ReminderRecord, error) {
	query := `
		SELECT id, kind, recipient, subject, message, run_at, status, last_error, created_at
		FROM reminders
		WHERE status = 'scheduled' AND run_at <= $1
		ORDER BY run_at`

	rows, err := s.db.Query(query, before)
	if err != nil {
		return nil, fmt.Errorf("error querying reminders: %v", err)
	}
	defer rows.Close()

	var recs []*models.ReminderRecord
	for rows.Next() {
		rec := &models.ReminderRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.Kind,
			&rec.Recipient,
			&rec.Subject,
			&rec.Message,
			&rec.RunAt,
			&rec.Status,
			&rec.LastError,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reminder: %v", err)
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// api/store/postgres_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"logsight/api/database"
	"logsight/api/models"
)

type PostgresStore struct {
	DB *sql.DB
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS access_logs (
		id            TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL,
		user_id       TEXT,
		path          TEXT NOT NULL,
		method        TEXT NOT NULL,
		status_code   INTEGER NOT NULL,
		response_time BIGINT,
		referer       TEXT,
		ip_address    TEXT,
		user_agent    TEXT,
		device        TEXT,
		browser       TEXT,
		os            TEXT,
		country       TEXT,
		city          TEXT,
		metadata      JSONB,
		created_at    TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_access_logs_session_id ON access_logs (session_id);
	CREATE INDEX IF NOT EXISTS idx_access_logs_created_at ON access_logs (created_at);
`

func NewPostgresStore(dbClient *database.DBClient) (*PostgresStore, error) {
	s := &PostgresStore{DB: dbClient.DB}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.DB.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure access_logs table: %w", err)
	}
	return s, nil
}

// buildPostgresWhere mirrors buildClickHouseWhere with $n placeholders.
func buildPostgresWhere(filter models.LogFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.SessionID != "" {
		add("session_id = $%d", filter.SessionID)
	}
	if filter.Path != "" {
		add("path LIKE $%d", "%"+filter.Path+"%")
	}
	if filter.StatusCode != 0 {
		add("status_code = $%d", filter.StatusCode)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresStore) InsertLog(ctx context.Context, rec *models.AccessLog) error {
	var metadata interface{}
	if len(rec.Metadata) > 0 {
		metadata = []byte(rec.Metadata)
	}

	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO access_logs (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, logColumns),
		rec.ID, rec.SessionID, rec.UserID, rec.Path, rec.Method, rec.StatusCode,
		rec.ResponseTime, rec.Referer, rec.IPAddress, rec.UserAgent, rec.Device,
		rec.Browser, rec.OS, rec.Country, rec.City, metadata, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert access log (ID: %s): %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) InsertLogs(ctx context.Context, recs []models.AccessLog) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO access_logs (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, logColumns))
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		var metadata interface{}
		if len(rec.Metadata) > 0 {
			metadata = []byte(rec.Metadata)
		}
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.SessionID, rec.UserID, rec.Path, rec.Method, rec.StatusCode,
			rec.ResponseTime, rec.Referer, rec.IPAddress, rec.UserAgent, rec.Device,
			rec.Browser, rec.OS, rec.Country, rec.City, metadata, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert access log in batch (ID: %s): %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanLogs(rows *sql.Rows) ([]models.AccessLog, error) {
	defer rows.Close()

	var logs []models.AccessLog
	for rows.Next() {
		var rec models.AccessLog
		var metadata []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.UserID,
			&rec.Path,
			&rec.Method,
			&rec.StatusCode,
			&rec.ResponseTime,
			&rec.Referer,
			&rec.IPAddress,
			&rec.UserAgent,
			&rec.Device,
			&rec.Browser,
			&rec.OS,
			&rec.Country,
			&rec.City,
			&metadata,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access log row: %w", err)
		}
		if len(metadata) > 0 {
			rec.Metadata = metadata
		}
		logs = append(logs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during access log query: %w", err)
	}
	return logs, nil
}

func (s *PostgresStore) FindBySessionID(ctx context.Context, sessionID string) ([]models.AccessLog, error) {
	rows, err := s.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM access_logs WHERE session_id = $1`, logColumns), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session logs: %w", err)
	}
	return s.scanLogs(rows)
}

func (s *PostgresStore) FindMany(ctx context.Context, filter models.LogFilter, skip, limit int) ([]models.AccessLog, error) {
	where, args := buildPostgresWhere(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM access_logs
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, logColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access logs: %w", err)
	}
	return s.scanLogs(rows)
}

func (s *PostgresStore) Count(ctx context.Context, filter models.LogFilter) (uint64, error) {
	where, args := buildPostgresWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM access_logs %s`, where)

	var count uint64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count access logs: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) GroupCount(ctx context.Context, dim Dimension, filter models.LogFilter) ([]models.StatBucket, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("invalid dimension: %s", dim)
	}

	where, args := buildPostgresWhere(filter)

	valueExpr := string(dim)
	if dim == DimStatusCode {
		valueExpr = "status_code::text"
	}
	if dim.Nullable() {
		if where == "" {
			where = fmt.Sprintf("WHERE %s IS NOT NULL", dim)
		} else {
			where += fmt.Sprintf(" AND %s IS NOT NULL", dim)
		}
	}

	query := fmt.Sprintf(`
		SELECT %s AS value, COUNT(*) AS total
		FROM access_logs
		%s
		GROUP BY value
		ORDER BY total DESC, value ASC
	`, valueExpr, where)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped counts for %s: %w", dim, err)
	}
	defer rows.Close()

	var buckets []models.StatBucket
	for rows.Next() {
		var b models.StatBucket
		if err := rows.Scan(&b.Value, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan grouped count row for %s: %w", dim, err)
		}
		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during grouped count query for %s: %w", dim, err)
	}
	return buckets, nil
}

func (s *PostgresStore) DistinctSessionCount(ctx context.Context, filter models.LogFilter) (uint64, error) {
	where, args := buildPostgresWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT session_id) FROM access_logs %s`, where)

	var count uint64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct sessions: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) AverageResponseTime(ctx context.Context, filter models.LogFilter) (float64, error) {
	where, args := buildPostgresWhere(filter)
	if where == "" {
		where = "WHERE response_time IS NOT NULL"
	} else {
		where += " AND response_time IS NOT NULL"
	}

	query := fmt.Sprintf(`SELECT AVG(response_time) FROM access_logs %s`, where)

	var avg sql.NullFloat64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to query average response time: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (s *PostgresStore) Timestamps(ctx context.Context, filter models.LogFilter) ([]time.Time, error) {
	where, args := buildPostgresWhere(filter)
	query := fmt.Sprintf(`SELECT created_at FROM access_logs %s`, where)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timestamps: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan timestamp row: %w", err)
		}
		stamps = append(stamps, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during timestamp query: %w", err)
	}
	return stamps, nil
}

func (s *PostgresStore) SessionRows(ctx context.Context, skip, limit int) ([]models.SessionRow, error) {
	query := `
		SELECT
			session_id,
			MIN(created_at) AS start_time,
			MAX(created_at) AS end_time,
			COUNT(*) AS total_requests,
			COUNT(DISTINCT path) AS unique_pages,
			MAX(ip_address) AS ip_address,
			MAX(device) AS device,
			MAX(browser) AS browser,
			MAX(os) AS os,
			MAX(country) AS country,
			MAX(city) AS city
		FROM access_logs
		GROUP BY session_id
		ORDER BY MAX(created_at) DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.DB.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query session rows: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionRow
	for rows.Next() {
		var row models.SessionRow
		if err := rows.Scan(
			&row.SessionID,
			&row.StartTime,
			&row.EndTime,
			&row.TotalRequests,
			&row.UniquePages,
			&row.IPAddress,
			&row.Device,
			&row.Browser,
			&row.OS,
			&row.Country,
			&row.City,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		row.Duration = roundSeconds(row.EndTime.Sub(row.StartTime))
		sessions = append(sessions, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during session row query: %w", err)
	}
	return sessions, nil
}

func (s *PostgresStore) SessionCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(DISTINCT session_id) FROM access_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// api/store/clickhouse_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"logsight/api/database"
	"logsight/api/models"
)

type ClickHouseStore struct {
	DB *database.ClickHouseClient
}

const clickhouseSchema = `
	CREATE TABLE IF NOT EXISTS access_logs (
		id            String,
		session_id    String,
		user_id       Nullable(String),
		path          String,
		method        String,
		status_code   Int32,
		response_time Nullable(Int64),
		referer       Nullable(String),
		ip_address    Nullable(String),
		user_agent    Nullable(String),
		device        Nullable(String),
		browser       Nullable(String),
		os            Nullable(String),
		country       Nullable(String),
		city          Nullable(String),
		metadata      Nullable(String),
		created_at    DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	ORDER BY (created_at, id)
`

const logColumns = `id, session_id, user_id, path, method, status_code, response_time,
		referer, ip_address, user_agent, device, browser, os, country, city, metadata, created_at`

func NewClickHouseStore(chClient *database.ClickHouseClient) (*ClickHouseStore, error) {
	s := &ClickHouseStore{DB: chClient}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.DB.Conn.Exec(ctx, clickhouseSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure access_logs table: %w", err)
	}
	return s, nil
}

// buildClickHouseWhere turns a LogFilter into a WHERE clause with '?'
// placeholders. An unrestricted filter yields an empty clause.
func buildClickHouseWhere(filter models.LogFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.SessionID != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Path != "" {
		conds = append(conds, "path LIKE ?")
		args = append(args, "%"+filter.Path+"%")
	}
	if filter.StatusCode != 0 {
		conds = append(conds, "status_code = ?")
		args = append(args, filter.StatusCode)
	}
	if filter.StartDate != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *ClickHouseStore) InsertLog(ctx context.Context, rec *models.AccessLog) error {
	return s.InsertLogs(ctx, []models.AccessLog{*rec})
}

func (s *ClickHouseStore) InsertLogs(ctx context.Context, recs []models.AccessLog) error {
	if len(recs) == 0 {
		return nil
	}

	// Column order must exactly match the access_logs schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO access_logs (%s)
	`, logColumns))
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, rec := range recs {
		var metadata *string
		if len(rec.Metadata) > 0 {
			m := string(rec.Metadata)
			metadata = &m
		}
		err := batch.Append(
			rec.ID,
			rec.SessionID,
			rec.UserID,
			rec.Path,
			rec.Method,
			rec.StatusCode,
			rec.ResponseTime,
			rec.Referer,
			rec.IPAddress,
			rec.UserAgent,
			rec.Device,
			rec.Browser,
			rec.OS,
			rec.Country,
			rec.City,
			metadata,
			rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append log to batch (ID: %s): %w", rec.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) scanLogs(ctx context.Context, query string, args ...interface{}) ([]models.AccessLog, error) {
	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AccessLog
	for rows.Next() {
		var rec models.AccessLog
		var metadata *string
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
		if metadata != nil {
			rec.Metadata = json.RawMessage(*metadata)
		}
		logs = append(logs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during access log query: %w", err)
	}
	return logs, nil
}

func (s *ClickHouseStore) FindBySessionID(ctx context.Context, sessionID string) ([]models.AccessLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM access_logs WHERE session_id = ?`, logColumns)
	return s.scanLogs(ctx, query, sessionID)
}

func (s *ClickHouseStore) FindMany(ctx context.Context, filter models.LogFilter, skip, limit int) ([]models.AccessLog, error) {
	where, args := buildClickHouseWhere(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM access_logs
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, logColumns, where)
	args = append(args, limit, skip)
	return s.scanLogs(ctx, query, args...)
}

func (s *ClickHouseStore) Count(ctx context.Context, filter models.LogFilter) (uint64, error) {
	where, args := buildClickHouseWhere(filter)
	query := fmt.Sprintf(`SELECT count() FROM access_logs %s`, where)

	var count uint64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count access logs: %w", err)
	}
	return count, nil
}

func (s *ClickHouseStore) GroupCount(ctx context.Context, dim Dimension, filter models.LogFilter) ([]models.StatBucket, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("invalid dimension: %s", dim)
	}

	where, args := buildClickHouseWhere(filter)

	// Numeric dimensions are normalized to text so every bucket scans
	// the same way; handlers convert back where needed.
	valueExpr := string(dim)
	if dim == DimStatusCode {
		valueExpr = "toString(status_code)"
	}
	if dim.Nullable() {
		if where == "" {
			where = fmt.Sprintf("WHERE %s IS NOT NULL", dim)
		} else {
			where += fmt.Sprintf(" AND %s IS NOT NULL", dim)
		}
	}

	query := fmt.Sprintf(`
		SELECT %s AS value, count() AS total
		FROM access_logs
		%s
		GROUP BY value
		ORDER BY total DESC, value ASC
	`, valueExpr, where)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
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

func (s *ClickHouseStore) DistinctSessionCount(ctx context.Context, filter models.LogFilter) (uint64, error) {
	where, args := buildClickHouseWhere(filter)
	query := fmt.Sprintf(`SELECT uniqExact(session_id) FROM access_logs %s`, where)

	var count uint64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct sessions: %w", err)
	}
	return count, nil
}

func (s *ClickHouseStore) AverageResponseTime(ctx context.Context, filter models.LogFilter) (float64, error) {
	where, args := buildClickHouseWhere(filter)
	if where == "" {
		where = "WHERE response_time IS NOT NULL"
	} else {
		where += " AND response_time IS NOT NULL"
	}

	query := fmt.Sprintf(`SELECT avg(response_time) FROM access_logs %s`, where)

	var avg *float64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to query average response time: %w", err)
	}

	// avg() over zero rows comes back NULL or NaN depending on the
	// server version; both mean "no measured samples".
	if avg == nil || math.IsNaN(*avg) {
		return 0, nil
	}
	return *avg, nil
}

func (s *ClickHouseStore) Timestamps(ctx context.Context, filter models.LogFilter) ([]time.Time, error) {
	where, args := buildClickHouseWhere(filter)
	query := fmt.Sprintf(`SELECT created_at FROM access_logs %s`, where)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
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

func (s *ClickHouseStore) SessionRows(ctx context.Context, skip, limit int) ([]models.SessionRow, error) {
	query := `
		SELECT
			session_id,
			min(created_at) AS start_time,
			max(created_at) AS end_time,
			count() AS total_requests,
			uniqExact(path) AS unique_pages,
			max(ip_address) AS ip_address,
			max(device) AS device,
			max(browser) AS browser,
			max(os) AS os,
			max(country) AS country,
			max(city) AS city
		FROM access_logs
		GROUP BY session_id
		ORDER BY end_time DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.DB.Conn.Query(ctx, query, limit, skip)
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

func (s *ClickHouseStore) SessionCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.DB.Conn.QueryRow(ctx, `SELECT uniqExact(session_id) FROM access_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

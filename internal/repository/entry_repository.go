package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/washdate"
)

// EntryRepository provides data access methods for the entries table.
// It owns the consistency of the status/completed/completed_date fields:
// every write path sets all three together, so a reader can never observe
// a completed entry without its completion date.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository with the provided database connection.
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, account, tickers, held_in, broker, sell_date, target_date,
	comments, status, completed, completed_date, created_at, updated_at`

// Insert stores a new entry and fills in its assigned ID. The entry is
// persisted with whatever status fields the caller set; the service layer
// always creates entries as pending.
func (r *EntryRepository) Insert(e *model.Entry) error {
	query := `
		INSERT INTO entries (account, tickers, held_in, broker, sell_date, target_date,
			comments, status, completed, completed_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.Exec(query,
		e.Account,
		e.Tickers,
		e.HeldIn,
		e.Broker,
		e.SellDate.Format(washdate.DateFormat),
		e.TargetDate.Format(washdate.DateFormat),
		e.Comments,
		string(e.Status),
		boolToInt(e.Completed),
		formatNullableDate(e.CompletedDate),
		now.Format(timestampFormat),
		now.Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into entries table: %w", mapStoreErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted entry ID: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// Update rewrites the editable fields of an entry. The status fields are
// deliberately left untouched; use SetStatus or CycleStatus for those.
func (r *EntryRepository) Update(e *model.Entry) error {
	query := `
		UPDATE entries
		SET account = ?, tickers = ?, held_in = ?, broker = ?, sell_date = ?,
			target_date = ?, comments = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := r.db.Exec(query,
		e.Account,
		e.Tickers,
		e.HeldIn,
		e.Broker,
		e.SellDate.Format(washdate.DateFormat),
		e.TargetDate.Format(washdate.DateFormat),
		e.Comments,
		now.Format(timestampFormat),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entries table: %w", mapStoreErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrEntryNotFound
	}

	e.UpdatedAt = now
	return nil
}

// GetByID retrieves a single entry.
func (r *EntryRepository) GetByID(id int64) (model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ?`

	e, err := scanEntry(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return model.Entry{}, apperrors.ErrEntryNotFound
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("failed to query entries table: %w", mapStoreErr(err))
	}

	return e, nil
}

// Delete removes an entry and its attachments in a single transaction.
// Attachment rows are removed explicitly before the entry row; the schema
// does not cascade, so the dependency order here is load-bearing.
func (r *EntryRepository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", mapStoreErr(err))
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM attachments WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete from attachments table: %w", mapStoreErr(err))
	}

	result, err := tx.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from entries table: %w", mapStoreErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrEntryNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", mapStoreErr(err))
	}

	return nil
}

// SetStatus writes the workflow stage and its completed/completed_date
// mirror in one statement, keeping the three fields consistent under
// concurrent readers.
func (r *EntryRepository) SetStatus(id int64, status model.Status, completedDate *time.Time) error {
	query := `
		UPDATE entries
		SET status = ?, completed = ?, completed_date = ?, updated_at = ?
		WHERE id = ?
	`

	completed := status == model.StatusCompleted
	result, err := r.db.Exec(query,
		string(status),
		boolToInt(completed),
		formatNullableDate(completedDate),
		time.Now().UTC().Format(timestampFormat),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update entries table: %w", mapStoreErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrEntryNotFound
	}

	return nil
}

// CycleStatus advances an entry one stage (pending -> in_progress ->
// completed -> pending) inside a single transaction, so two users cycling
// the same entry serialize instead of both reading the same stage. Entering
// completed stamps the completion date with today; leaving it clears the
// date. Returns the new stage.
func (r *EntryRepository) CycleStatus(id int64, today time.Time) (model.Status, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin cycle transaction: %w", mapStoreErr(err))
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var current string
	err = tx.QueryRow(`SELECT status FROM entries WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrEntryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query entries table: %w", mapStoreErr(err))
	}

	next := model.Status(current).Next()

	var completedDate any
	if next == model.StatusCompleted {
		completedDate = today.Format(washdate.DateFormat)
	}

	_, err = tx.Exec(`
		UPDATE entries
		SET status = ?, completed = ?, completed_date = ?, updated_at = ?
		WHERE id = ?`,
		string(next),
		boolToInt(next == model.StatusCompleted),
		completedDate,
		time.Now().UTC().Format(timestampFormat),
		id,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update entries table: %w", mapStoreErr(err))
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit cycle transaction: %w", mapStoreErr(err))
	}

	return next, nil
}

// List retrieves entries matching the given filter, evaluated against today.
// Ordering is target_date ascending with a case-insensitive account
// tiebreak, except the completed filter which returns the most recently
// finished entries first.
func (r *EntryRepository) List(filter model.EntryFilter, today time.Time) ([]model.Entry, error) {
	todayStr := today.Format(washdate.DateFormat)

	var query string
	var args []any

	switch filter {
	case model.FilterWaiting:
		query = `SELECT ` + entryColumns + ` FROM entries
			WHERE completed = 0 AND target_date > ?
			ORDER BY target_date ASC, account COLLATE NOCASE ASC`
		args = append(args, todayStr)
	case model.FilterReady:
		query = `SELECT ` + entryColumns + ` FROM entries
			WHERE completed = 0 AND target_date <= ?
			ORDER BY target_date ASC, account COLLATE NOCASE ASC`
		args = append(args, todayStr)
	case model.FilterCompleted:
		query = `SELECT ` + entryColumns + ` FROM entries
			WHERE completed = 1
			ORDER BY completed_date DESC`
	case model.FilterPending, model.FilterInProgress:
		query = `SELECT ` + entryColumns + ` FROM entries
			WHERE status = ?
			ORDER BY target_date ASC, account COLLATE NOCASE ASC`
		args = append(args, string(filter))
	case model.FilterAll:
		query = `SELECT ` + entryColumns + ` FROM entries
			ORDER BY target_date ASC, account COLLATE NOCASE ASC`
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidFilter, filter)
	}

	return r.queryEntries(query, args...)
}

// Search retrieves entries whose account or tickers contain the query,
// case-insensitively, ordered by target date ascending.
func (r *EntryRepository) Search(query string) ([]model.Entry, error) {
	like := "%" + escapeLike(query) + "%"

	sqlQuery := `SELECT ` + entryColumns + ` FROM entries
		WHERE UPPER(account) LIKE UPPER(?) ESCAPE '\' OR UPPER(tickers) LIKE UPPER(?) ESCAPE '\'
		ORDER BY target_date ASC, account COLLATE NOCASE ASC`

	return r.queryEntries(sqlQuery, like, like)
}

// AccountCounts returns the number of entries per account, keyed by the
// uppercased account so differently-cased duplicates group together.
func (r *EntryRepository) AccountCounts() (map[string]int, error) {
	query := `
		SELECT UPPER(account) AS account, COUNT(*) AS count
		FROM entries
		GROUP BY UPPER(account)
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries table: %w", mapStoreErr(err))
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var account string
		var count int
		if err := rows.Scan(&account, &count); err != nil {
			return nil, fmt.Errorf("failed to scan account counts: %w", err)
		}
		counts[account] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries table: %w", err)
	}

	return counts, nil
}

// Stats computes the aggregate dashboard counts relative to today. The six
// count queries run concurrently; list and stat queries are re-fetched after
// every mutation, so they have to stay cheap.
func (r *EntryRepository) Stats(ctx context.Context, today time.Time) (model.Stats, error) {
	todayStr := today.Format(washdate.DateFormat)
	weekEndStr := today.AddDate(0, 0, 7).Format(washdate.DateFormat)

	var stats model.Stats

	g, ctx := errgroup.WithContext(ctx)
	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.Waiting, `SELECT COUNT(*) FROM entries WHERE completed = 0 AND target_date > ?`, []any{todayStr}},
		{&stats.Ready, `SELECT COUNT(*) FROM entries WHERE completed = 0 AND target_date <= ?`, []any{todayStr}},
		{&stats.DueToday, `SELECT COUNT(*) FROM entries WHERE completed = 0 AND target_date = ?`, []any{todayStr}},
		{&stats.DueThisWeek, `SELECT COUNT(*) FROM entries WHERE completed = 0 AND target_date BETWEEN ? AND ?`, []any{todayStr, weekEndStr}},
		{&stats.Completed, `SELECT COUNT(*) FROM entries WHERE completed = 1`, nil},
		{&stats.Total, `SELECT COUNT(*) FROM entries`, nil},
	}

	for _, c := range counts {
		c := c
		g.Go(func() error {
			if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
				return fmt.Errorf("failed to count entries: %w", mapStoreErr(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.Stats{}, err
	}

	return stats, nil
}

func (r *EntryRepository) queryEntries(query string, args ...any) ([]model.Entry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries table: %w", mapStoreErr(err))
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entries table results: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries table: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var e model.Entry
	var status string
	var completed int
	var sellDateStr, targetDateStr, createdAtStr, updatedAtStr string
	var completedDateStr sql.NullString

	err := row.Scan(
		&e.ID,
		&e.Account,
		&e.Tickers,
		&e.HeldIn,
		&e.Broker,
		&sellDateStr,
		&targetDateStr,
		&e.Comments,
		&status,
		&completed,
		&completedDateStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return model.Entry{}, err
	}

	e.Status = model.Status(status)
	e.Completed = completed != 0

	if e.SellDate, err = ParseTime(sellDateStr); err != nil {
		return model.Entry{}, err
	}
	if e.TargetDate, err = ParseTime(targetDateStr); err != nil {
		return model.Entry{}, err
	}
	if completedDateStr.Valid {
		completedDate, err := ParseTime(completedDateStr.String)
		if err != nil {
			return model.Entry{}, err
		}
		e.CompletedDate = &completedDate
	}
	if e.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Entry{}, err
	}
	if e.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.Entry{}, err
	}

	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatNullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(washdate.DateFormat)
}

// escapeLike escapes LIKE wildcards in user-supplied search input.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

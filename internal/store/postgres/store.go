package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Viveksharma8542/healthalert-app/internal/api"
	"github.com/Viveksharma8542/healthalert-app/internal/domain"
	"github.com/Viveksharma8542/healthalert-app/internal/history"
	"github.com/Viveksharma8542/healthalert-app/internal/poller"
)

// Store implements the persistence layer using PostgreSQL: medicine
// schedules, vitals, contacts, dose history and the alert snapshot
// used to survive restarts.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL store with the given database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateMedicine inserts a new medicine schedule.
func (s *Store) CreateMedicine(ctx context.Context, m domain.Medicine) error {
	_, err := s.db.ExecContext(ctx, queryInsertMedicine,
		m.ID,
		m.Name,
		m.Dosage,
		m.Notes,
		string(m.Frequency),
		joinTimes(m.Times),
		nullableTime(m.StartDate),
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

// ListMedicines returns every medicine schedule, oldest first.
func (s *Store) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	rows, err := s.db.QueryContext(ctx, queryListMedicines)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Medicines supplies the poller's per-tick schedule snapshot.
func (s *Store) Medicines(ctx context.Context) ([]domain.Medicine, error) {
	return s.ListMedicines(ctx)
}

// GetMedicine returns one medicine by id.
// Returns sql.ErrNoRows if it does not exist.
func (s *Store) GetMedicine(ctx context.Context, id uuid.UUID) (domain.Medicine, error) {
	row := s.db.QueryRowContext(ctx, queryGetMedicine, id)
	return scanMedicine(row)
}

// UpdateMedicine replaces the mutable fields of an existing medicine.
// Returns sql.ErrNoRows if it does not exist.
func (s *Store) UpdateMedicine(ctx context.Context, m domain.Medicine) error {
	result, err := s.db.ExecContext(ctx, queryUpdateMedicine,
		m.ID,
		m.Name,
		m.Dosage,
		m.Notes,
		string(m.Frequency),
		joinTimes(m.Times),
		nullableTime(m.StartDate),
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// DeleteMedicine removes a medicine by id.
// Returns sql.ErrNoRows if it does not exist.
func (s *Store) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, queryDeleteMedicine, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// InsertVitalReading inserts a new vital signs reading.
func (s *Store) InsertVitalReading(ctx context.Context, v domain.VitalReading) error {
	_, err := s.db.ExecContext(ctx, queryInsertVitalReading,
		v.ID,
		v.BloodPressure,
		v.HeartRate,
		v.Temperature,
		v.Weight,
		v.BloodSugar,
		v.Notes,
		v.RecordedAt,
	)
	return err
}

// ListVitalReadings returns readings newest first, paginated by limit and offset.
func (s *Store) ListVitalReadings(ctx context.Context, limit, offset int) ([]domain.VitalReading, error) {
	rows, err := s.db.QueryContext(ctx, queryListVitalReadings, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VitalReading
	for rows.Next() {
		var v domain.VitalReading
		err := rows.Scan(
			&v.ID,
			&v.BloodPressure,
			&v.HeartRate,
			&v.Temperature,
			&v.Weight,
			&v.BloodSugar,
			&v.Notes,
			&v.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateContact inserts a new emergency contact.
func (s *Store) CreateContact(ctx context.Context, c domain.Contact) error {
	_, err := s.db.ExecContext(ctx, queryInsertContact,
		c.ID,
		c.Name,
		c.Phone,
		c.Relationship,
		c.Email,
	)
	return err
}

// ListContacts returns every emergency contact, ordered by name.
func (s *Store) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx, queryListContacts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Relationship, &c.Email); err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteContact removes a contact by id.
// Returns sql.ErrNoRows if it does not exist.
func (s *Store) DeleteContact(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, queryDeleteContact, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// InsertHistoryEntry appends one finalized alert record.
// A duplicate id is ignored so retried appends stay idempotent.
func (s *Store) InsertHistoryEntry(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, queryInsertHistoryEntry,
		entry.ID,
		string(entry.OccurrenceKey),
		entry.Message,
		entry.FiredAt,
		string(entry.Resolution),
		entry.ResolvedAt,
	)
	if isDuplicateKeyError(err) {
		return nil
	}
	return err
}

// ListHistoryEntries returns up to limit persisted records, newest first.
func (s *Store) ListHistoryEntries(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryListHistoryEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var key, resolution string
		err := rows.Scan(
			&entry.ID,
			&key,
			&entry.Message,
			&entry.FiredAt,
			&resolution,
			&entry.ResolvedAt,
		)
		if err != nil {
			return nil, err
		}
		entry.OccurrenceKey = domain.OccurrenceKey(key)
		entry.Resolution = domain.Resolution(resolution)
		result = append(result, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteHistoryBefore removes records resolved before cutoff and
// returns how many were deleted.
func (s *Store) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, queryDeleteHistoryBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SaveAlertSnapshot replaces the persisted alert state in a transaction.
// Called on shutdown so a restart does not re-fire resolved occurrences.
func (s *Store) SaveAlertSnapshot(ctx context.Context, alerts []domain.Alert, resolved []domain.OccurrenceKey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, queryDeleteAlertSnapshot); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, queryDeleteResolvedKeys); err != nil {
		return err
	}

	for _, a := range alerts {
		_, err := tx.ExecContext(ctx, queryInsertSnapshotAlert,
			string(a.ID),
			a.MedicineID,
			a.Message,
			a.ScheduledAt,
			a.FiredAt,
			string(a.State),
			nullableTime(a.SnoozeUntil),
		)
		if err != nil {
			return err
		}
	}

	for _, k := range resolved {
		if _, err := tx.ExecContext(ctx, queryInsertResolvedKey, string(k)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAlertSnapshot returns the persisted alert state saved by the
// previous run. Both slices are empty on a fresh database.
func (s *Store) LoadAlertSnapshot(ctx context.Context) ([]domain.Alert, []domain.OccurrenceKey, error) {
	rows, err := s.db.QueryContext(ctx, queryListSnapshotAlerts)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var key, state string
		var snoozeUntil sql.NullTime

		err := rows.Scan(
			&key,
			&a.MedicineID,
			&a.Message,
			&a.ScheduledAt,
			&a.FiredAt,
			&state,
			&snoozeUntil,
		)
		if err != nil {
			return nil, nil, err
		}
		a.ID = domain.OccurrenceKey(key)
		a.State = domain.AlertState(state)
		if snoozeUntil.Valid {
			a.SnoozeUntil = snoozeUntil.Time
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	keyRows, err := s.db.QueryContext(ctx, queryListResolvedKeys)
	if err != nil {
		return nil, nil, err
	}
	defer keyRows.Close()

	var resolved []domain.OccurrenceKey
	for keyRows.Next() {
		var key string
		if err := keyRows.Scan(&key); err != nil {
			return nil, nil, err
		}
		resolved = append(resolved, domain.OccurrenceKey(key))
	}
	if err := keyRows.Err(); err != nil {
		return nil, nil, err
	}

	return alerts, resolved, nil
}

// PingContext reports database reachability for the health endpoint.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key")
}

// joinTimes serializes a schedule's times as comma-joined "HH:MM".
func joinTimes(times []domain.TimeOfDay) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

func parseTimes(raw string) ([]domain.TimeOfDay, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	times := make([]domain.TimeOfDay, 0, len(parts))
	for _, p := range parts {
		t, err := domain.ParseTimeOfDay(p)
		if err != nil {
			return nil, fmt.Errorf("stored times %q: %w", raw, err)
		}
		times = append(times, t)
	}
	return times, nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(row rowScanner) (domain.Medicine, error) {
	var m domain.Medicine
	var frequency, times string
	var startDate sql.NullTime

	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Dosage,
		&m.Notes,
		&frequency,
		&times,
		&startDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Medicine{}, err
	}

	m.Frequency = domain.Frequency(frequency)
	m.Times, err = parseTimes(times)
	if err != nil {
		return domain.Medicine{}, err
	}
	if startDate.Valid {
		m.StartDate = startDate.Time
	}
	return m, nil
}

// Compile-time interface assertions
var (
	_ api.Store             = (*Store)(nil)
	_ api.HealthChecker     = (*Store)(nil)
	_ poller.ScheduleSource = (*Store)(nil)
	_ history.Store         = (*Store)(nil)
	_ history.PruneStore    = (*Store)(nil)
)

package postgres

const queryInsertMedicine = `
INSERT INTO medicines (id, name, dosage, notes, frequency, times, start_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const queryListMedicines = `
SELECT id, name, dosage, notes, frequency, times, start_date, created_at, updated_at
FROM medicines
ORDER BY created_at, id
`

const queryGetMedicine = `
SELECT id, name, dosage, notes, frequency, times, start_date, created_at, updated_at
FROM medicines
WHERE id = $1
`

const queryUpdateMedicine = `
UPDATE medicines
SET name = $2, dosage = $3, notes = $4, frequency = $5, times = $6, start_date = $7, updated_at = $8
WHERE id = $1
`

const queryDeleteMedicine = `
DELETE FROM medicines WHERE id = $1
`

const queryInsertVitalReading = `
INSERT INTO vital_readings (id, blood_pressure, heart_rate, temperature, weight, blood_sugar, notes, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const queryListVitalReadings = `
SELECT id, blood_pressure, heart_rate, temperature, weight, blood_sugar, notes, recorded_at
FROM vital_readings
ORDER BY recorded_at DESC, id
LIMIT $1 OFFSET $2
`

const queryInsertContact = `
INSERT INTO contacts (id, name, phone, relationship, email)
VALUES ($1, $2, $3, $4, $5)
`

const queryListContacts = `
SELECT id, name, phone, relationship, email
FROM contacts
ORDER BY name, id
`

const queryDeleteContact = `
DELETE FROM contacts WHERE id = $1
`

const queryInsertHistoryEntry = `
INSERT INTO history_entries (id, occurrence_key, message, fired_at, resolution, resolved_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

const queryListHistoryEntries = `
SELECT id, occurrence_key, message, fired_at, resolution, resolved_at
FROM history_entries
ORDER BY resolved_at DESC, id
LIMIT $1
`

const queryDeleteHistoryBefore = `
DELETE FROM history_entries WHERE resolved_at < $1
`

const queryDeleteAlertSnapshot = `
DELETE FROM alert_snapshot
`

const queryInsertSnapshotAlert = `
INSERT INTO alert_snapshot (occurrence_key, medicine_id, message, scheduled_at, fired_at, state, snooze_until)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const queryListSnapshotAlerts = `
SELECT occurrence_key, medicine_id, message, scheduled_at, fired_at, state, snooze_until
FROM alert_snapshot
ORDER BY occurrence_key
`

const queryDeleteResolvedKeys = `
DELETE FROM resolved_keys
`

const queryInsertResolvedKey = `
INSERT INTO resolved_keys (occurrence_key) VALUES ($1)
`

const queryListResolvedKeys = `
SELECT occurrence_key FROM resolved_keys ORDER BY occurrence_key
`

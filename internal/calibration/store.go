package calibration

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/faultline-dev/faultline/internal/severity"
)

const schema = `
CREATE TABLE IF NOT EXISTS labeled_records (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	finding_id      TEXT NOT NULL,
	hypothesis_id   TEXT NOT NULL,
	hazard_class    INTEGER NOT NULL,
	feature_vector  TEXT NOT NULL,
	label           INTEGER NOT NULL,
	label_quality   REAL NOT NULL,
	effect_size     REAL NOT NULL,
	p_value         REAL NOT NULL,
	sku_family      TEXT NOT NULL,
	kernel_version  TEXT NOT NULL,
	schema_version  TEXT NOT NULL,
	ingested_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS false_positive_registry (
	hazard_class     INTEGER PRIMARY KEY,
	refutation_count INTEGER NOT NULL
);
`

// Store is a CalibrationFeedbackStore backed by an embedded SQLite
// database. Its records and false-positive registry persist across
// invocations; callers must serialize writes themselves.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures its schema
// exists, creating the parent directory if necessary.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "calibration: create store dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "calibration: open sqlite")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "calibration: ping sqlite")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "calibration: create schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ingest runs the full schema-validation, label-assignment, and
// quality-gating pipeline and appends the resulting LabeledRecord. It
// returns the appended record so callers can inspect the label the
// gates actually assigned.
func (s *Store) Ingest(r ExperimentResult, features []float64, hazardClass severity.HazardClass) (LabeledRecord, error) {
	if err := validate(r); err != nil {
		return LabeledRecord{}, err
	}

	rec := buildRecord(r, features, hazardClass, time.Now().Unix())

	featureJSON, err := json.Marshal(rec.FeatureVector)
	if err != nil {
		return LabeledRecord{}, eris.Wrap(err, "calibration: marshal feature vector")
	}

	_, err = s.db.Exec(
		`INSERT INTO labeled_records(
			finding_id, hypothesis_id, hazard_class, feature_vector, label,
			label_quality, effect_size, p_value, sku_family, kernel_version,
			schema_version, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FindingID, rec.HypothesisID, int(rec.HazardClass), string(featureJSON), int(rec.Label),
		rec.LabelQuality, rec.EffectSize, rec.PValue, rec.SKUFamily, rec.KernelVersion,
		rec.SchemaVersion, rec.IngestedAtUnix,
	)
	if err != nil {
		return LabeledRecord{}, eris.Wrap(err, "calibration: insert labeled record")
	}

	if rec.Label == Negative {
		if err := s.registerRefutation(hazardClass); err != nil {
			return LabeledRecord{}, err
		}
	}

	return rec, nil
}

// registerRefutation increments the matching hazard class's entry in
// the false-positive registry, or creates one.
func (s *Store) registerRefutation(hazardClass severity.HazardClass) error {
	_, err := s.db.Exec(
		`INSERT INTO false_positive_registry(hazard_class, refutation_count)
		 VALUES (?, 1)
		 ON CONFLICT(hazard_class) DO UPDATE SET refutation_count = refutation_count + 1`,
		int(hazardClass),
	)
	if err != nil {
		return eris.Wrap(err, "calibration: register refutation")
	}
	return nil
}

// IsKnownFalsePositive reports whether hazardClass has accumulated at
// least three independent refutations. features is currently unused —
// it is accepted so the query signature can later incorporate
// feature-similarity matching without an API break.
func (s *Store) IsKnownFalsePositive(features []float64, hazardClass severity.HazardClass) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT refutation_count FROM false_positive_registry WHERE hazard_class = ?",
		int(hazardClass),
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "calibration: query false positive registry")
	}
	return count >= knownFalsePositiveThreshold, nil
}

// ByHazardClass returns every labeled record for one hazard class.
func (s *Store) ByHazardClass(hazardClass severity.HazardClass) ([]LabeledRecord, error) {
	rows, err := s.db.Query(
		`SELECT finding_id, hypothesis_id, hazard_class, feature_vector, label,
		        label_quality, effect_size, p_value, sku_family, kernel_version,
		        schema_version, ingested_at
		 FROM labeled_records WHERE hazard_class = ? ORDER BY id`,
		int(hazardClass),
	)
	if err != nil {
		return nil, eris.Wrap(err, "calibration: query by hazard class")
	}
	defer rows.Close()
	return scanRecords(rows)
}

// BySKUFamily returns every labeled record for one SKU family.
func (s *Store) BySKUFamily(skuFamily string) ([]LabeledRecord, error) {
	rows, err := s.db.Query(
		`SELECT finding_id, hypothesis_id, hazard_class, feature_vector, label,
		        label_quality, effect_size, p_value, sku_family, kernel_version,
		        schema_version, ingested_at
		 FROM labeled_records WHERE sku_family = ? ORDER BY id`,
		skuFamily,
	)
	if err != nil {
		return nil, eris.Wrap(err, "calibration: query by SKU family")
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]LabeledRecord, error) {
	var out []LabeledRecord
	for rows.Next() {
		var rec LabeledRecord
		var hazardClass, label int
		var featureJSON string
		if err := rows.Scan(
			&rec.FindingID, &rec.HypothesisID, &hazardClass, &featureJSON, &label,
			&rec.LabelQuality, &rec.EffectSize, &rec.PValue, &rec.SKUFamily, &rec.KernelVersion,
			&rec.SchemaVersion, &rec.IngestedAtUnix,
		); err != nil {
			return nil, eris.Wrap(err, "calibration: scan labeled record")
		}
		rec.HazardClass = severity.HazardClass(hazardClass)
		rec.Label = Label(label)
		if err := json.Unmarshal([]byte(featureJSON), &rec.FeatureVector); err != nil {
			return nil, eris.Wrap(err, "calibration: unmarshal feature vector")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "calibration: iterate labeled records")
	}
	return out, nil
}

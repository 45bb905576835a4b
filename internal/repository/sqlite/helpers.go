package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"enigma/internal/domain"
)

// ============================================================================
// Null / Time Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// toMillis stores timestamps as Unix milliseconds
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis restores a timestamp stored by toMillis
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalJSON encodes v for a TEXT column
func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalJSON decodes a TEXT column into target; empty input is a no-op
func unmarshalJSON(s string, target interface{}) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), target)
}

// ============================================================================
// Row Scanners
// ============================================================================
//
// Column order must match between the *Columns constant, scanArgs() and
// every SELECT using the constant.

const settingsColumns = `name, fingerprint, settings, created_at, updated_at`

type settingsRow struct {
	Name         string
	Fingerprint  string
	SettingsJSON string
	CreatedAt    int64
	UpdatedAt    int64
}

func (r *settingsRow) scanArgs() []interface{} {
	return []interface{}{&r.Name, &r.Fingerprint, &r.SettingsJSON, &r.CreatedAt, &r.UpdatedAt}
}

func (r *settingsRow) toDomain() (*domain.NamedSettings, error) {
	ns := &domain.NamedSettings{
		Name:        r.Name,
		Fingerprint: r.Fingerprint,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
	if err := unmarshalJSON(r.SettingsJSON, &ns.Settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return ns, nil
}

const sessionColumns = `id, settings_name, settings, positions, created_at, updated_at`

type sessionRow struct {
	ID            string
	SettingsName  sql.NullString
	SettingsJSON  string
	PositionsJSON string
	CreatedAt     int64
	UpdatedAt     int64
}

func (r *sessionRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.SettingsName, &r.SettingsJSON, &r.PositionsJSON, &r.CreatedAt, &r.UpdatedAt}
}

func (r *sessionRow) toDomain() (*domain.Session, error) {
	s := &domain.Session{
		ID:           r.ID,
		SettingsName: nullToString(r.SettingsName),
		CreatedAt:    fromMillis(r.CreatedAt),
		UpdatedAt:    fromMillis(r.UpdatedAt),
	}
	if err := unmarshalJSON(r.SettingsJSON, &s.Settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := unmarshalJSON(r.PositionsJSON, &s.Positions); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	return s, nil
}

const messageColumns = `id, session_id, input, output, start_positions, end_positions, created_at`

type messageRow struct {
	ID        int64
	SessionID string
	Input     string
	Output    string
	StartJSON string
	EndJSON   string
	CreatedAt int64
}

func (r *messageRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.SessionID, &r.Input, &r.Output, &r.StartJSON, &r.EndJSON, &r.CreatedAt}
}

func (r *messageRow) toDomain() (*domain.Message, error) {
	m := &domain.Message{
		ID:        r.ID,
		SessionID: r.SessionID,
		Input:     r.Input,
		Output:    r.Output,
		CreatedAt: fromMillis(r.CreatedAt),
	}
	if err := unmarshalJSON(r.StartJSON, &m.StartPositions); err != nil {
		return nil, fmt.Errorf("unmarshal start positions: %w", err)
	}
	if err := unmarshalJSON(r.EndJSON, &m.EndPositions); err != nil {
		return nil, fmt.Errorf("unmarshal end positions: %w", err)
	}
	return m, nil
}

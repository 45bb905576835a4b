package domain

import "time"

// NamedSettings is a stored machine configuration.
type NamedSettings struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Settings    Settings  `json:"settings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session is a machine kept across requests. Settings is a snapshot taken
// when the session was opened; Positions is the current rotor state.
type Session struct {
	ID           string    `json:"id"`
	SettingsName string    `json:"settings_name,omitempty"`
	Settings     Settings  `json:"settings"`
	Positions    []int     `json:"positions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Machine rebuilds the session machine at its current positions.
func (s *Session) Machine() (*Machine, error) {
	settings, err := s.Settings.WithPositions(s.Positions)
	if err != nil {
		return nil, err
	}
	return NewMachine(settings)
}

// Message is one journaled run of keystrokes through a session.
type Message struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"session_id"`
	Input          string    `json:"input"`
	Output         string    `json:"output"`
	StartPositions []int     `json:"start_positions"`
	EndPositions   []int     `json:"end_positions"`
	CreatedAt      time.Time `json:"created_at"`
}

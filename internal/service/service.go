package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"enigma/internal/codec"
	"enigma/internal/config"
	"enigma/internal/domain"
	"enigma/internal/metrics"
	"enigma/internal/repository"
)

// ErrInvalid marks a request the caller must fix before retrying
var ErrInvalid = errors.New("invalid request")

// CipherService provides business logic for machines, stored settings and
// sessions
type CipherService struct {
	repo     repository.Repository
	eventBus *EventBus
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	defaults domain.Settings

	// typing serializes Type and ResetSession so two requests cannot fork a
	// session's rotor state
	typing sync.Mutex
}

// NewCipherService creates a new cipher service. defaults is the machine used
// when a request names no settings.
func NewCipherService(repo repository.Repository, eventBus *EventBus, m *metrics.Metrics, defaults domain.Settings) (*CipherService, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default machine: %w", err)
	}
	return &CipherService{
		repo:     repo,
		eventBus: eventBus,
		metrics:  m,
		defaults: defaults,
	}, nil
}

// Defaults returns the current default settings
func (s *CipherService) Defaults() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// EncipherRequest selects a machine and the text to run through it. Settings
// wins over SettingsName; with neither the default machine is used.
// Positions, if set, override the starting positions.
type EncipherRequest struct {
	Settings     *domain.Settings `json:"settings,omitempty"`
	SettingsName string           `json:"settings_name,omitempty"`
	Positions    []int            `json:"positions,omitempty"`
	Text         string           `json:"text"`
}

// EncipherResult is the output of a stateless run
type EncipherResult struct {
	Output         string `json:"output"`
	StartPositions []int  `json:"start_positions"`
	EndPositions   []int  `json:"end_positions"`
}

// Encipher runs text through a fresh machine. Nothing is persisted.
func (s *CipherService) Encipher(ctx context.Context, req EncipherRequest) (*EncipherResult, error) {
	settings, _, err := s.resolve(ctx, req.Settings, req.SettingsName)
	if err != nil {
		return nil, err
	}
	if req.Positions != nil {
		if settings, err = settings.WithPositions(req.Positions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	m, err := domain.NewMachine(settings)
	if err != nil {
		return nil, err
	}
	if err := checkText(m, req.Text); err != nil {
		s.metrics.Keys(0, 1)
		return nil, err
	}

	start := m.Positions()
	out, err := m.Encipher(req.Text)
	if err != nil {
		return nil, err
	}

	s.metrics.Keys(len([]rune(req.Text)), 0)
	s.metrics.Message("stateless")

	return &EncipherResult{
		Output:         out,
		StartPositions: start,
		EndPositions:   m.Positions(),
	}, nil
}

// resolve picks the settings a request refers to
func (s *CipherService) resolve(ctx context.Context, settings *domain.Settings, name string) (domain.Settings, string, error) {
	if settings != nil {
		return *settings, "", nil
	}
	if name == "" {
		return s.Defaults(), "", nil
	}
	ns, err := s.GetSettings(ctx, name)
	if err != nil {
		return domain.Settings{}, "", err
	}
	return ns.Settings, ns.Name, nil
}

// checkText rejects text containing a symbol outside the machine alphabet
// before any rotor moves
func checkText(m *domain.Machine, text string) error {
	for i, c := range []rune(text) {
		if _, err := m.Alphabet().Index(c); err != nil {
			return fmt.Errorf("position %d: %w", i, err)
		}
	}
	return nil
}

// ============================================================================
// Settings
// ============================================================================

// SaveSettings validates and stores settings under name
func (s *CipherService) SaveSettings(ctx context.Context, name string, settings domain.Settings) (*domain.NamedSettings, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: settings name required", ErrInvalid)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	ns := &domain.NamedSettings{Name: name, Settings: settings}
	if err := s.repo.SaveSettings(ctx, ns); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventSettingsSaved,
		Payload: map[string]string{"name": ns.Name, "fingerprint": ns.Fingerprint},
	})

	return ns, nil
}

// GetSettings retrieves stored settings by name
func (s *CipherService) GetSettings(ctx context.Context, name string) (*domain.NamedSettings, error) {
	ns, err := s.repo.GetSettings(ctx, name)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return nil, fmt.Errorf("settings %s: %w", name, repository.ErrNotFound)
	}
	return ns, nil
}

// ListSettings returns all stored settings
func (s *CipherService) ListSettings(ctx context.Context) ([]domain.NamedSettings, error) {
	return s.repo.ListSettings(ctx)
}

// DeleteSettings removes stored settings. Open sessions keep their snapshot.
func (s *CipherService) DeleteSettings(ctx context.Context, name string) error {
	if err := s.repo.DeleteSettings(ctx, name); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventSettingsDeleted,
		Payload: map[string]string{"name": name},
	})

	return nil
}

// ============================================================================
// Key sheets
// ============================================================================

// ImportResult reports what an import stored
type ImportResult struct {
	Sheet  string   `json:"sheet"`
	Format string   `json:"format"`
	Names  []string `json:"names"`
}

// sheetEntryName is the stored name of a key sheet entry
func sheetEntryName(sheet, label string) string {
	if sheet == "" {
		return label
	}
	return sheet + "/" + label
}

// ImportSheet parses a key sheet and stores every entry as named settings,
// "<sheet>/<label>". The import is all or nothing.
func (s *CipherService) ImportSheet(ctx context.Context, format string, r io.Reader) (*ImportResult, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	sheet, err := c.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	batch := make([]domain.NamedSettings, 0, len(sheet.Entries))
	result := &ImportResult{Sheet: sheet.Name, Format: c.Format(), Names: []string{}}
	for _, e := range sheet.Entries {
		name := sheetEntryName(sheet.Name, e.Label)
		batch = append(batch, domain.NamedSettings{Name: name, Settings: e.Settings})
		result.Names = append(result.Names, name)
	}

	if err := s.repo.ImportSettings(ctx, batch); err != nil {
		return nil, err
	}

	s.metrics.SheetImported(len(batch))
	s.eventBus.Publish(Event{
		Type:    EventSheetImported,
		Payload: result,
	})

	return result, nil
}

// ExportSheet writes stored settings as a key sheet. With a sheet name only
// entries imported under that sheet are written, labelled without the
// prefix; otherwise every stored setting is written under its own name.
func (s *CipherService) ExportSheet(ctx context.Context, format, sheetName string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	all, err := s.repo.ListSettings(ctx)
	if err != nil {
		return err
	}

	sheet := &domain.KeySheet{Name: sheetName, Entries: []domain.KeySheetEntry{}}
	prefix := sheetEntryName(sheetName, "")
	for _, ns := range all {
		label := ns.Name
		if sheetName != "" {
			if !strings.HasPrefix(ns.Name, prefix) {
				continue
			}
			label = strings.TrimPrefix(ns.Name, prefix)
		}
		sheet.Entries = append(sheet.Entries, domain.KeySheetEntry{Label: label, Settings: ns.Settings})
	}
	if sheetName != "" && len(sheet.Entries) == 0 {
		return fmt.Errorf("sheet %s: %w", sheetName, repository.ErrNotFound)
	}

	return c.Export(sheet, w)
}

// ============================================================================
// Sessions
// ============================================================================

// OpenSessionRequest selects the machine a session starts from, as in
// EncipherRequest
type OpenSessionRequest struct {
	Settings     *domain.Settings `json:"settings,omitempty"`
	SettingsName string           `json:"settings_name,omitempty"`
	Positions    []int            `json:"positions,omitempty"`
}

// OpenSession snapshots the selected settings into a new session
func (s *CipherService) OpenSession(ctx context.Context, req OpenSessionRequest) (*domain.Session, error) {
	settings, name, err := s.resolve(ctx, req.Settings, req.SettingsName)
	if err != nil {
		return nil, err
	}
	if req.Positions != nil {
		if settings, err = settings.WithPositions(req.Positions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:           uuid.New().String(),
		SettingsName: name,
		Settings:     settings,
		Positions:    settings.InitialPositions(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.SessionOpened()
	s.eventBus.Publish(Event{
		Type:    EventSessionOpened,
		Payload: map[string]string{"session_id": session.ID, "settings_name": name},
	})

	return session, nil
}

// GetSession retrieves a session by ID
func (s *CipherService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", id, repository.ErrNotFound)
	}
	return session, nil
}

// Type advances a session by text and journals the message. Text with a
// symbol outside the alphabet is rejected whole and the session does not
// move.
func (s *CipherService) Type(ctx context.Context, id, text string) (*domain.Message, error) {
	s.typing.Lock()
	defer s.typing.Unlock()

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := session.Machine()
	if err != nil {
		return nil, err
	}
	if err := checkText(m, text); err != nil {
		s.metrics.Keys(0, 1)
		return nil, err
	}

	start := m.Positions()
	out, err := m.Encipher(text)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		SessionID:      id,
		Input:          text,
		Output:         out,
		StartPositions: start,
		EndPositions:   m.Positions(),
	}
	if err := s.repo.RecordMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.metrics.Keys(len([]rune(text)), 0)
	s.metrics.Message("session")
	s.eventBus.Publish(Event{
		Type: EventSessionTyped,
		Payload: map[string]interface{}{
			"session_id": id,
			"message_id": msg.ID,
			"positions":  msg.EndPositions,
		},
	})

	return msg, nil
}

// ResetSession returns a session to the positions it was opened with
func (s *CipherService) ResetSession(ctx context.Context, id string) (*domain.Session, error) {
	s.typing.Lock()
	defer s.typing.Unlock()

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	positions := session.Settings.InitialPositions()
	if err := s.repo.UpdateSessionPositions(ctx, id, positions); err != nil {
		return nil, err
	}
	session.Positions = positions

	s.eventBus.Publish(Event{
		Type:    EventSessionReset,
		Payload: map[string]interface{}{"session_id": id, "positions": positions},
	})

	return session, nil
}

// DeleteSession removes a session and its journal
func (s *CipherService) DeleteSession(ctx context.Context, id string) error {
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventSessionDeleted,
		Payload: map[string]string{"session_id": id},
	})

	return nil
}

// Messages returns a session's journal, oldest first
func (s *CipherService) Messages(ctx context.Context, id string) ([]domain.Message, error) {
	if _, err := s.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, id)
}

// ============================================================================
// Configuration
// ============================================================================

// ReloadDefault re-reads the config file and replaces the default machine.
// An invalid file leaves the current default in place.
func (s *CipherService) ReloadDefault(path string) error {
	settings, err := loadMachine(path)
	s.metrics.ConfigReload(err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.defaults = settings
	s.mu.Unlock()

	s.eventBus.Publish(Event{
		Type:    EventConfigReloaded,
		Payload: map[string]string{"path": path},
	})

	return nil
}

func loadMachine(path string) (domain.Settings, error) {
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		return domain.Settings{}, err
	}
	return cfg.Machine.Settings()
}

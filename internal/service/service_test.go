package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"enigma/internal/catalog"
	"enigma/internal/codec"
	"enigma/internal/domain"
	"enigma/internal/repository"
	"enigma/internal/repository/sqlite"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestService wires a service to an in-memory repository and returns a
// channel that receives every published event
func newTestService(t *testing.T) (*CipherService, <-chan Event) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	bus := NewEventBus()
	events := make(chan Event, 64)
	bus.Subscribe(events)

	svc, err := NewCipherService(repo, bus, nil, catalog.Standard())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, events
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// drain returns the types of every event published so far
func drain(events <-chan Event) []EventType {
	var types []EventType
	for {
		select {
		case e := <-events:
			types = append(types, e.Type)
		default:
			return types
		}
	}
}

const sheetYAML = `name: may
entries:
  - label: "01"
    machine:
      reflector: B
      rotors:
        - type: I
        - type: II
        - type: III
  - label: "02"
    machine:
      reflector: B
      rotors:
        - type: III
          position: D
        - type: II
          position: H
        - type: I
          position: L
      plugboard: AB CD EF
`

// ============================================================================
// Construction
// ============================================================================

func TestNewCipherServiceRejectsInvalidDefaults(t *testing.T) {
	bad := catalog.Standard()
	bad.Reflector = catalog.Standard().Rotors[0].Wiring

	_, err := NewCipherService(nil, NewEventBus(), nil, bad)
	if !domain.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

// ============================================================================
// Stateless encipher
// ============================================================================

func TestEncipherDefaultMachine(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Encipher(context.Background(), EncipherRequest{Text: "AAAAA"})
	assertNoError(t, err)
	assertEqual(t, "ETVRQ", res.Output)
	assertEqual(t, []int{0, 0, 0}, res.StartPositions)
	assertEqual(t, []int{21, 0, 0}, res.EndPositions)
}

func TestEncipherIsReciprocal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	plain := "THEQUICKBROWNFOXJUMPSOVERTHELAZYDOG"

	enc, err := svc.Encipher(ctx, EncipherRequest{Text: plain})
	assertNoError(t, err)
	assertEqual(t, "GMLPHDDSMASCKJKYMBZTJHZQCMIMULYDAWX", enc.Output)

	dec, err := svc.Encipher(ctx, EncipherRequest{Text: enc.Output})
	assertNoError(t, err)
	assertEqual(t, plain, dec.Output)
}

func TestEncipherWithSettingsAndPositions(t *testing.T) {
	svc, _ := newTestService(t)
	settings := catalog.Standard()
	settings.Rotors[0], settings.Rotors[2] = settings.Rotors[2], settings.Rotors[0]
	settings.Plugboard = []string{"AB", "CD", "EF"}

	res, err := svc.Encipher(context.Background(), EncipherRequest{
		Settings:  &settings,
		Positions: []int{3, 7, 11},
		Text:      "HELLOWORLD",
	})
	assertNoError(t, err)
	assertEqual(t, "RRQZCPFFZR", res.Output)
	assertEqual(t, []int{3, 7, 11}, res.StartPositions)
}

func TestEncipherNamedSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveSettings(ctx, "reference", catalog.Reference())
	assertNoError(t, err)

	res, err := svc.Encipher(ctx, EncipherRequest{SettingsName: "reference", Text: "AAAAA"})
	assertNoError(t, err)
	assertEqual(t, "PETFG", res.Output)
}

func TestEncipherErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := svc.Encipher(ctx, EncipherRequest{Text: "AB1"})
		if !errors.Is(err, domain.ErrUnknownSymbol) {
			t.Errorf("expected ErrUnknownSymbol, got %v", err)
		}
	})

	t.Run("unknown settings name", func(t *testing.T) {
		_, err := svc.Encipher(ctx, EncipherRequest{SettingsName: "nope", Text: "A"})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("wrong position count", func(t *testing.T) {
		_, err := svc.Encipher(ctx, EncipherRequest{Positions: []int{1}, Text: "A"})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})

	t.Run("position out of range", func(t *testing.T) {
		_, err := svc.Encipher(ctx, EncipherRequest{Positions: []int{0, 0, 26}, Text: "A"})
		if !errors.Is(err, domain.ErrPositionRange) {
			t.Errorf("expected ErrPositionRange, got %v", err)
		}
	})
}

// ============================================================================
// Settings
// ============================================================================

func TestSettingsLifecycle(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	ns, err := svc.SaveSettings(ctx, "daily", catalog.Standard())
	assertNoError(t, err)
	if ns.Fingerprint == "" {
		t.Error("expected fingerprint")
	}

	got, err := svc.GetSettings(ctx, "daily")
	assertNoError(t, err)
	assertEqual(t, catalog.Standard(), got.Settings)

	all, err := svc.ListSettings(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(all))

	assertNoError(t, svc.DeleteSettings(ctx, "daily"))
	if _, err := svc.GetSettings(ctx, "daily"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	assertEqual(t, []EventType{EventSettingsSaved, EventSettingsDeleted}, drain(events))
}

func TestSaveSettingsValidation(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveSettings(ctx, " ", catalog.Standard()); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for blank name, got %v", err)
	}

	bad := catalog.Standard()
	bad.Plugboard = []string{"AA"}
	if _, err := svc.SaveSettings(ctx, "bad", bad); !domain.IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}

	if got := drain(events); len(got) != 0 {
		t.Errorf("expected no events, got %v", got)
	}
}

// ============================================================================
// Key sheets
// ============================================================================

func TestImportSheet(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	res, err := svc.ImportSheet(ctx, "yaml", strings.NewReader(sheetYAML))
	assertNoError(t, err)
	assertEqual(t, "may", res.Sheet)
	assertEqual(t, []string{"may/01", "may/02"}, res.Names)

	enc, err := svc.Encipher(ctx, EncipherRequest{SettingsName: "may/02", Text: "HELLOWORLD"})
	assertNoError(t, err)
	assertEqual(t, "RRQZCPFFZR", enc.Output)

	assertEqual(t, []EventType{EventSheetImported}, drain(events))
}

func TestImportSheetRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ImportSheet(ctx, "xml", strings.NewReader("")); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for format, got %v", err)
	}
	if _, err := svc.ImportSheet(ctx, "yaml", strings.NewReader("name: [")); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for body, got %v", err)
	}

	all, err := svc.ListSettings(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(all))
}

func TestExportSheet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ImportSheet(ctx, "yaml", strings.NewReader(sheetYAML))
	assertNoError(t, err)
	_, err = svc.SaveSettings(ctx, "loose", catalog.Reference())
	assertNoError(t, err)

	var buf bytes.Buffer
	assertNoError(t, svc.ExportSheet(ctx, "json", "may", &buf))

	sheet, err := codec.NewJSONCodec().Parse(&buf)
	assertNoError(t, err)
	assertEqual(t, "may", sheet.Name)
	assertEqual(t, 2, len(sheet.Entries))
	assertEqual(t, "01", sheet.Entries[0].Label)

	stored, err := svc.GetSettings(ctx, "may/02")
	assertNoError(t, err)
	second, _ := sheet.Lookup("02")
	assertEqual(t, stored.Settings, second)

	buf.Reset()
	assertNoError(t, svc.ExportSheet(ctx, "yaml", "", &buf))
	everything, err := codec.NewYAMLCodec().Parse(&buf)
	assertNoError(t, err)
	assertEqual(t, 3, len(everything.Entries))

	if err := svc.ExportSheet(ctx, "yaml", "june", &buf); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown sheet, got %v", err)
	}
}

// ============================================================================
// Sessions
// ============================================================================

func TestSessionTypeAcrossMessages(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	session, err := svc.OpenSession(ctx, OpenSessionRequest{})
	assertNoError(t, err)
	if session.ID == "" {
		t.Fatal("expected session id")
	}

	first, err := svc.Type(ctx, session.ID, "AAA")
	assertNoError(t, err)
	second, err := svc.Type(ctx, session.ID, "AA")
	assertNoError(t, err)

	// Splitting a message across requests matches one continuous run.
	assertEqual(t, "ETVRQ", first.Output+second.Output)
	assertEqual(t, first.EndPositions, second.StartPositions)

	got, err := svc.GetSession(ctx, session.ID)
	assertNoError(t, err)
	assertEqual(t, []int{21, 0, 0}, got.Positions)

	msgs, err := svc.Messages(ctx, session.ID)
	assertNoError(t, err)
	assertEqual(t, 2, len(msgs))

	assertEqual(t, []EventType{EventSessionOpened, EventSessionTyped, EventSessionTyped}, drain(events))
}

func TestSessionRejectsBadTextWithoutMoving(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.OpenSession(ctx, OpenSessionRequest{Positions: []int{5, 4, 3}})
	assertNoError(t, err)

	if _, err := svc.Type(ctx, session.ID, "AB-C"); !errors.Is(err, domain.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	assertNoError(t, err)
	assertEqual(t, []int{5, 4, 3}, got.Positions)

	msgs, err := svc.Messages(ctx, session.ID)
	assertNoError(t, err)
	assertEqual(t, 0, len(msgs))
}

func TestResetSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.OpenSession(ctx, OpenSessionRequest{})
	assertNoError(t, err)

	first, err := svc.Type(ctx, session.ID, "HELLO")
	assertNoError(t, err)

	reset, err := svc.ResetSession(ctx, session.ID)
	assertNoError(t, err)
	assertEqual(t, []int{0, 0, 0}, reset.Positions)

	again, err := svc.Type(ctx, session.ID, "HELLO")
	assertNoError(t, err)
	assertEqual(t, first.Output, again.Output)
}

func TestSessionKeepsSnapshotAfterSettingsChange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveSettings(ctx, "daily", catalog.Standard())
	assertNoError(t, err)
	session, err := svc.OpenSession(ctx, OpenSessionRequest{SettingsName: "daily"})
	assertNoError(t, err)
	assertEqual(t, "daily", session.SettingsName)

	_, err = svc.SaveSettings(ctx, "daily", catalog.Reference())
	assertNoError(t, err)

	msg, err := svc.Type(ctx, session.ID, "AAAAA")
	assertNoError(t, err)
	assertEqual(t, "ETVRQ", msg.Output)
}

func TestSessionNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["get"] = svc.GetSession(ctx, "missing")
	_, checks["type"] = svc.Type(ctx, "missing", "A")
	_, checks["reset"] = svc.ResetSession(ctx, "missing")
	_, checks["messages"] = svc.Messages(ctx, "missing")
	checks["delete"] = svc.DeleteSession(ctx, "missing")

	for op, err := range checks {
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", op, err)
		}
	}
}

func TestDeleteSession(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	session, err := svc.OpenSession(ctx, OpenSessionRequest{})
	assertNoError(t, err)
	assertNoError(t, svc.DeleteSession(ctx, session.ID))

	if _, err := svc.GetSession(ctx, session.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	assertEqual(t, []EventType{EventSessionOpened, EventSessionDeleted}, drain(events))
}

// ============================================================================
// Configuration reload
// ============================================================================

const referenceConfig = `machine:
  entry_wheel: ALPHA
  reflector: B
  rotors:
    - type: I
      notches: Z
    - type: I
      notches: Z
    - type: I
      notches: Z
`

func TestReloadDefault(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "enigma.yaml")

	assertNoError(t, os.WriteFile(path, []byte(referenceConfig), 0644))
	assertNoError(t, svc.ReloadDefault(path))

	res, err := svc.Encipher(ctx, EncipherRequest{Text: "AAAAA"})
	assertNoError(t, err)
	assertEqual(t, "PETFG", res.Output)
	assertEqual(t, []EventType{EventConfigReloaded}, drain(events))

	assertNoError(t, os.WriteFile(path, []byte("machine:\n  reflector: nope\n"), 0644))
	if err := svc.ReloadDefault(path); err == nil {
		t.Fatal("expected error for invalid config")
	}

	res, err = svc.Encipher(ctx, EncipherRequest{Text: "AAAAA"})
	assertNoError(t, err)
	assertEqual(t, "PETFG", res.Output)
}

// ============================================================================
// EventBus
// ============================================================================

func TestEventBusSkipsSlowSubscribers(t *testing.T) {
	bus := NewEventBus()
	slow := make(chan Event)
	fast := make(chan Event, 1)
	bus.Subscribe(slow)
	bus.Subscribe(fast)

	bus.Publish(Event{Type: EventSessionOpened})

	select {
	case e := <-fast:
		assertEqual(t, EventSessionOpened, e.Type)
	default:
		t.Fatal("fast subscriber missed the event")
	}
}

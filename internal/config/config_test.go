package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"enigma/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if len(cfg.Machine.Rotors) != 3 {
		t.Errorf("expected 3 rotors, got %d", len(cfg.Machine.Rotors))
	}
	if cfg.Machine.Reflector != "B" {
		t.Errorf("Reflector = %s, want B", cfg.Machine.Reflector)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout.Duration() != 10*time.Second {
		t.Errorf("ReadTimeout = %s, want 10s", cfg.Server.ReadTimeout.Duration())
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %s, want /metrics", cfg.Metrics.Path)
	}
}

func TestDefaultMachineSettings(t *testing.T) {
	s, err := DefaultConfig().Machine.Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}

	m, err := domain.NewMachine(s)
	if err != nil {
		t.Fatalf("NewMachine() error: %v", err)
	}
	got, err := m.Encipher("AAAAA")
	if err != nil {
		t.Fatalf("Encipher() error: %v", err)
	}
	if got != "ETVRQ" {
		t.Errorf("Encipher(AAAAA) = %s, want ETVRQ", got)
	}
}

func TestMachineSettingsResolution(t *testing.T) {
	notches := "Z"
	mc := MachineConfig{
		EntryWheel: "qwertz",
		Reflector:  "C",
		Rotors: []RotorConfig{
			{Type: "IV", Position: "C", Ring: "B"},
			{Type: "I", Notches: &notches},
			{Wiring: "BDFHJLCPRTXVZNYEIWGAKMUSQO", Notches: &notches, Position: "Z"},
		},
		Plugboard: "AB CD, EF",
	}

	s, err := mc.Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}

	if s.EntryWheel != "QWERTYUIOPASDFGHJKLZXCVBNM" {
		t.Errorf("EntryWheel = %s", s.EntryWheel)
	}
	if s.Reflector != "FVPJIAOYEDRZXWGCTKUQSBNMHL" {
		t.Errorf("Reflector = %s", s.Reflector)
	}
	if got := s.InitialPositions(); !reflect.DeepEqual(got, []int{2, 0, 25}) {
		t.Errorf("positions = %v, want [2 0 25]", got)
	}
	if s.Rotors[0].RingSetting != 1 {
		t.Errorf("ring setting = %d, want 1", s.Rotors[0].RingSetting)
	}
	if s.Rotors[0].Notches != "J" {
		t.Errorf("rotor IV notches = %s, want J", s.Rotors[0].Notches)
	}
	if s.Rotors[1].Notches != "Z" {
		t.Errorf("notch override = %s, want Z", s.Rotors[1].Notches)
	}
	if s.Rotors[2].Name != "custom" {
		t.Errorf("custom rotor name = %s", s.Rotors[2].Name)
	}
	if !reflect.DeepEqual(s.Plugboard, []string{"AB", "CD", "EF"}) {
		t.Errorf("plugboard = %v", s.Plugboard)
	}
}

func TestMachineSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		mc   MachineConfig
		want string
	}{
		{"unknown rotor", MachineConfig{Reflector: "B", Rotors: []RotorConfig{{Type: "IX"}}}, "unknown rotor"},
		{"unknown reflector", MachineConfig{Reflector: "Q", Rotors: []RotorConfig{{Type: "I"}}}, "unknown reflector"},
		{"empty rotor", MachineConfig{Reflector: "B", Rotors: []RotorConfig{{}}}, "type or a wiring"},
		{"bad position", MachineConfig{Reflector: "B", Rotors: []RotorConfig{{Type: "I", Position: "AB"}}}, "single symbol"},
		{"lowercase position", MachineConfig{Reflector: "B", Rotors: []RotorConfig{{Type: "I", Position: "a"}}}, "not in alphabet"},
		{"bad plugboard", MachineConfig{Reflector: "B", Rotors: []RotorConfig{{Type: "I"}}, Plugboard: "AA"}, "plugboard"},
		{"reflector not involution", MachineConfig{Reflector: "EKMFLGDQVZNTOWYHXUSPAIBRCJ", Rotors: []RotorConfig{{Type: "I"}}}, "involution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mc.Settings()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestFromSettingsRoundTrip(t *testing.T) {
	orig, err := DefaultMachine().Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	orig.Rotors[1].Position = 4
	orig.Plugboard = []string{"XY"}

	back, err := FromSettings(orig).Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	if back.Rotors[1].Position != 4 {
		t.Errorf("position = %d, want 4", back.Rotors[1].Position)
	}
	for i := range orig.Rotors {
		if back.Rotors[i].Wiring != orig.Rotors[i].Wiring || back.Rotors[i].Notches != orig.Rotors[i].Notches {
			t.Errorf("rotor %d changed: %+v", i, back.Rotors[i])
		}
	}
	if !reflect.DeepEqual(back.Plugboard, orig.Plugboard) {
		t.Errorf("plugboard = %v", back.Plugboard)
	}
}

func TestParsePlugboard(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"AB", []string{"AB"}},
		{"AB CD", []string{"AB", "CD"}},
		{" AB,CD\tEF ", []string{"AB", "CD", "EF"}},
	}

	for _, tt := range tests {
		if got := ParsePlugboard(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePlugboard(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Machine.Plugboard = "AZ BY"
	cfg.Machine.Rotors[0].Position = "Q"
	cfg.Input.Group = 5
	cfg.Metrics.Enabled = true

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Machine.Plugboard != "AZ BY" {
		t.Errorf("Plugboard = %s, want AZ BY", loaded.Machine.Plugboard)
	}
	if loaded.Machine.Rotors[0].Position != "Q" {
		t.Errorf("Position = %s, want Q", loaded.Machine.Rotors[0].Position)
	}
	if loaded.Input.Group != 5 {
		t.Errorf("Group = %d, want 5", loaded.Input.Group)
	}
	if !loaded.Metrics.Enabled {
		t.Error("Metrics should be enabled")
	}
	if loaded.Server.WriteTimeout.Duration() != 30*time.Second {
		t.Errorf("WriteTimeout = %s, want 30s", loaded.Server.WriteTimeout.Duration())
	}
}

func TestLoadFromPathAppliesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := "machine:\n  reflector: C\n  rotors:\n    - type: V\n      position: E\n"
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Machine.EntryWheel != "ALPHA" {
		t.Errorf("EntryWheel = %s, want ALPHA", cfg.Machine.EntryWheel)
	}
	if len(cfg.Machine.Rotors) != 1 || cfg.Machine.Rotors[0].Type != "V" {
		t.Errorf("Rotors = %+v", cfg.Machine.Rotors)
	}
}

func TestLoadFromPathCustomAlphabet(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := `machine:
  alphabet: ABCD
  reflector: BADC
  rotors:
    - wiring: CADB
      notches: D
      position: C
`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Machine.EntryWheel != "" {
		t.Errorf("EntryWheel = %s, want unset", cfg.Machine.EntryWheel)
	}

	s, err := cfg.Machine.Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	if s.EntryWheel != "ABCD" {
		t.Errorf("EntryWheel = %s, want ABCD", s.EntryWheel)
	}
	if len(s.Rotors) != 1 || s.Rotors[0].Position != 2 {
		t.Errorf("Rotors = %+v", s.Rotors)
	}
}

func TestLoadFromPathRejectsInvalidMachine(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := "machine:\n  reflector: B\n  rotors:\n    - type: I\n  plugboard: AB BC\n"
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Fatal("expected error for reused plugboard symbol")
	}
	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	found := FindConfigPath()
	if found == "" {
		t.Fatal("FindConfigPath() should find config in working directory")
	}
	if !filepath.IsAbs(found) {
		t.Errorf("FindConfigPath() = %s, want absolute path", found)
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if FindConfigPath() == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if got := FindConfigPath(); got != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", got, explicit)
	}
}

func TestCandidatesOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/explicit.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/op")

	want := []string{
		"/tmp/explicit.yaml",
		ConfigFileName,
		"/xdg/enigma/config.yaml",
		"/home/op/.config/enigma/config.yaml",
		"/etc/enigma/config.yaml",
	}
	if got := Candidates(); !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestSummary(t *testing.T) {
	summary := DefaultConfig().Summary()

	for _, want := range []string{"I@A II@A III@A", "Reflector: B", "Plugboard: (none)"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

func TestFromSettingsUsesCatalogNames(t *testing.T) {
	s, err := DefaultMachine().Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	s.Rotors[2].Notches = "Z"

	mc := FromSettings(s)
	if mc.Reflector != "B" || mc.EntryWheel != "ALPHA" {
		t.Errorf("wheels = %s/%s, want B/ALPHA", mc.Reflector, mc.EntryWheel)
	}
	if mc.Rotors[0].Type != "I" || mc.Rotors[0].Wiring != "" || mc.Rotors[0].Notches != nil {
		t.Errorf("rotor 0 = %+v", mc.Rotors[0])
	}
	if mc.Rotors[2].Notches == nil || *mc.Rotors[2].Notches != "Z" {
		t.Errorf("rotor 2 notch override lost: %+v", mc.Rotors[2])
	}
}

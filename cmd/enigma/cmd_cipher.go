package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"enigma/internal/codec"
	"enigma/internal/config"
	"enigma/internal/domain"
	"enigma/internal/keyboard"
	"enigma/internal/service"
)

// machineFlags override the configured machine
type machineFlags struct {
	rotors    string
	positions string
	rings     string
	reflector string
	entry     string
	plugboard string
	sheet     string
	label     string
}

func (f *machineFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.rotors, "rotors", "", "comma separated rotor names, fast rotor first (e.g. III,II,I)")
	flags.StringVar(&f.positions, "positions", "", "start position letters, fast rotor first (e.g. DHL)")
	flags.StringVar(&f.rings, "rings", "", "ring setting letters, fast rotor first (recorded only)")
	flags.StringVar(&f.reflector, "reflector", "", "reflector name or wiring")
	flags.StringVar(&f.entry, "entry", "", "entry wheel name or wiring")
	flags.StringVar(&f.plugboard, "plugboard", "", `plugboard pairs (e.g. "AB CD EF")`)
	flags.StringVar(&f.sheet, "sheet", "", "key sheet file (yaml or json) to take the machine from")
	flags.StringVar(&f.label, "label", "", "key sheet entry to use with --sheet")
}

// apply resolves the machine: config or key sheet first, then overrides
func (f *machineFlags) apply(base config.MachineConfig) (domain.Settings, error) {
	mc := base
	mc.Rotors = append([]config.RotorConfig(nil), base.Rotors...)
	if f.sheet != "" {
		settings, err := f.fromSheet()
		if err != nil {
			return domain.Settings{}, err
		}
		mc = config.FromSettings(settings)
	}

	if f.rotors != "" {
		names := strings.Split(f.rotors, ",")
		mc.Rotors = make([]config.RotorConfig, len(names))
		for i, name := range names {
			mc.Rotors[i] = config.RotorConfig{Type: strings.TrimSpace(name)}
		}
	}
	if f.positions != "" {
		if err := setLetters(mc.Rotors, f.positions, func(rc *config.RotorConfig, s string) { rc.Position = s }); err != nil {
			return domain.Settings{}, fmt.Errorf("--positions: %w", err)
		}
	}
	if f.rings != "" {
		if err := setLetters(mc.Rotors, f.rings, func(rc *config.RotorConfig, s string) { rc.Ring = s }); err != nil {
			return domain.Settings{}, fmt.Errorf("--rings: %w", err)
		}
	}
	if f.reflector != "" {
		mc.Reflector = f.reflector
	}
	if f.entry != "" {
		mc.EntryWheel = f.entry
	}
	if f.plugboard != "" {
		mc.Plugboard = f.plugboard
	}

	return mc.Settings()
}

func setLetters(rotors []config.RotorConfig, letters string, set func(*config.RotorConfig, string)) error {
	symbols := []rune(letters)
	if len(symbols) != len(rotors) {
		return fmt.Errorf("got %d letters for %d rotors", len(symbols), len(rotors))
	}
	for i, s := range symbols {
		set(&rotors[i], string(s))
	}
	return nil
}

func (f *machineFlags) fromSheet() (domain.Settings, error) {
	if f.label == "" {
		return domain.Settings{}, fmt.Errorf("--sheet needs --label")
	}
	sheet, err := readSheet(f.sheet, "")
	if err != nil {
		return domain.Settings{}, err
	}
	settings, ok := sheet.Lookup(f.label)
	if !ok {
		return domain.Settings{}, fmt.Errorf("key sheet %s has no entry %q", f.sheet, f.label)
	}
	return settings, nil
}

// readSheet parses a key sheet file; format defaults to the file extension
func readSheet(path, format string) (*domain.KeySheet, error) {
	if format == "" {
		format = formatFromPath(path)
	}
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key sheet: %w", err)
	}
	defer file.Close()
	return c.Parse(file)
}

func formatFromPath(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func newCipherCmd(opts *globalOptions) *cobra.Command {
	var (
		machine      machineFlags
		group        int
		preserveCase bool
	)

	cmd := &cobra.Command{
		Use:   "cipher [TEXT...]",
		Short: "Encipher or decipher text",
		Long: `Run text through the machine and print the result.

Text is taken from the arguments, or from stdin when there are none.
Whitespace is skipped and letters are upper-cased unless --preserve-case is
set. Characters outside the alphabet are reported on stderr and skipped
without moving the rotors.

Examples:
  enigma cipher HELLO WORLD
  echo ETVRQ | enigma cipher
  enigma cipher --sheet may.yaml --label 01 --group 5 < message.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			settings, err := machine.apply(cfg.Machine)
			if err != nil {
				return err
			}
			m, err := domain.NewMachine(settings)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("group") {
				group = cfg.Input.Group
			}
			if !cmd.Flags().Changed("preserve-case") {
				preserveCase = cfg.Input.PreserveCase
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) > 0 {
				in = strings.NewReader(strings.Join(args, " "))
			}

			out := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()
			kb := keyboard.New(in, keyboard.WithPreserveCase(preserveCase))
			lamps := keyboard.NewLampboard(out, group)

			stats, err := service.Process(m, kb, lamps, func(key rune, offset int) {
				fmt.Fprintf(stderr, "skipping %q at key %d: not in alphabet\n", key, offset)
			})
			if err != nil {
				return err
			}
			if stats.Accepted > 0 {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	machine.register(cmd)
	cmd.Flags().IntVar(&group, "group", 0, "split output into blocks of N letters (0: no grouping)")
	cmd.Flags().BoolVar(&preserveCase, "preserve-case", false, "do not upper-case input")
	return cmd
}

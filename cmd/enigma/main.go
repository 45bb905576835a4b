// Command enigma runs the rotor cipher machine from the command line and
// serves it over HTTP.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"enigma/internal/config"
)

// globalOptions holds flags shared by every subcommand
type globalOptions struct {
	configPath string
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "enigma",
		Short: "Rotor cipher machine",
		Long: `A configurable rotor cipher machine.

Every key press steps the rotor stack and sends the signal through the
plugboard, entry wheel, rotors and reflector and back. Enciphering and
deciphering are the same operation: run the ciphertext through a machine
set up the same way to get the plaintext back.

Configuration is read from $ENIGMA_CONFIG, ./enigma.yaml,
$XDG_CONFIG_HOME/enigma/config.yaml, ~/.config/enigma/config.yaml or
/etc/enigma/config.yaml, in that order.

Examples:
  echo HELLO WORLD | enigma cipher
  enigma cipher --rotors III,II,I --positions DHL --plugboard "AB CD EF" HELLOWORLD
  enigma serve --addr :8080
  enigma sheet import may.yaml`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search standard locations)")

	rootCmd.AddCommand(
		newCipherCmd(opts),
		newServeCmd(opts),
		newSheetCmd(opts),
		newCatalogCmd(),
		newConfigCmd(opts),
	)
	return rootCmd
}

// load reads the config named by --config, or searches the standard
// locations. The returned path is empty when defaults are in use.
func (o *globalOptions) load() (*config.Config, string, error) {
	if o.configPath != "" {
		cfg, path, err := config.LoadFromPath(o.configPath)
		if err != nil {
			return nil, path, fmt.Errorf("load config %s: %w", o.configPath, err)
		}
		return cfg, path, nil
	}
	cfg, path, err := config.Load()
	if err != nil {
		return nil, path, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, path, nil
}

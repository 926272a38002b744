package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configOnly = map[string]string{annotationConfigOnly: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Shows the effective configuration: the config file merged with
environment overrides (.env.local, .env, process environment) and defaults.
Secrets are masked.`,
	RunE: runConfigShow,

	Annotations: configOnly,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE:  runConfigShow,

	Annotations: configOnly,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Sets a key in the config file, e.g.

  twinsync config set vector.provider chromem
  twinsync config set migration.batch_size 50

When the value is omitted it is read from stdin without echo, which suits
secrets such as vector.token.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,

	Annotations: configOnly,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runConfigPath,

	Annotations: configOnly,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("config", func(s *Services) bool { return len(s.Settings) > 0 })
	if err != nil {
		return err
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Current Settings"))
	if svc.Config != nil {
		cmd.Println(st.Muted.Render(svc.Config.Path()))
	}
	cmd.Println()
	for _, kv := range svc.Settings {
		value := kv[1]
		if value == "" {
			value = st.Muted.Render("(not set)")
		}
		cmd.Printf("  %s %s\n", st.Label.Render(kv[0]), value)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices("config", func(s *Services) bool { return s.Config != nil })
	if err != nil {
		return err
	}

	key := args[0]
	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		cmd.Printf("Value for %s: ", key)
		raw = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	if raw == "" {
		return errors.New("empty value")
	}

	if err := svc.Config.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if err := svc.Config.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("%s updated in %s\n", key, svc.Config.Path())
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("config", func(s *Services) bool { return s.Config != nil })
	if err != nil {
		return err
	}
	cmd.Println(svc.Config.Path())
	return nil
}

// parseValue stores integers and booleans with their TOML types.
func parseValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

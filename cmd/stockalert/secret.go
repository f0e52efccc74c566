package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stockalert/internal/audit"
	"stockalert/internal/config"
	"stockalert/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage stored credentials",
	Long:  "Store, retrieve and remove credentials in the configured secret backend (secret_storage in config.yaml, default: platform-native).",
}

var secretLabel string

// openStore resolves the configured backend and wraps it with audit
// logging. The returned closer flushes the audit log file.
func openStore(actor string) (secrets.Store, func(), error) {
	dir, err := stockalertHome()
	if err != nil {
		return nil, nil, err
	}
	cfgPath, err := configPath()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := secrets.Select(cfg.SecretStorage, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting secret backend: %w", err)
	}

	logPath, err := auditLogPath()
	if err != nil {
		return nil, nil, err
	}
	auditLog, err := audit.NewLogger(logPath)
	if err != nil {
		return nil, nil, err
	}
	return secrets.NewAuditedStore(store, auditLog, actor), func() { auditLog.Close() }, nil
}

var secretSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a secret",
	Long:  "Store a secret. If value is omitted, reads from stdin (useful for piping).",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore("cli")
		if err != nil {
			return err
		}
		defer closeStore()
		key := args[0]

		var value string
		if len(args) == 2 {
			value = args[1]
		} else {
			// Read from stdin
			if term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Print("Enter secret value: ")
				b, err := term.ReadPassword(int(os.Stdin.Fd()))
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				fmt.Println()
				value = string(b)
			} else {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				value = strings.TrimRight(string(b), "\r\n")
			}
		}

		if !store.Set(key, value, secretLabel) {
			return fmt.Errorf("storing secret %q failed", key)
		}
		fmt.Printf("Secret %q stored (%s)\n", key, store.MethodID())
		return nil
	},
}

var secretGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Retrieve a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore("cli")
		if err != nil {
			return err
		}
		defer closeStore()

		val, err := store.Get(args[0])
		if err != nil {
			if errors.Is(err, secrets.ErrNotFound) {
				return fmt.Errorf("no secret stored under %q", args[0])
			}
			return err
		}
		fmt.Println(val)
		return nil
	},
}

var secretListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored secret keys",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore("cli")
		if err != nil {
			return err
		}
		defer closeStore()

		keys, err := store.List()
		if err != nil {
			return err
		}

		if len(keys) == 0 {
			fmt.Println("No secrets stored")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY")
		for _, k := range keys {
			fmt.Fprintln(w, k)
		}
		w.Flush()
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:     "delete <key>",
	Short:   "Remove a secret",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore("cli")
		if err != nil {
			return err
		}
		defer closeStore()

		if !store.Delete(args[0]) {
			return fmt.Errorf("deleting secret %q failed", args[0])
		}
		fmt.Printf("Secret %q deleted\n", args[0])
		return nil
	},
}

var secretBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show the active secret backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore("cli")
		if err != nil {
			return err
		}
		defer closeStore()

		fmt.Printf("%s\t%s\n", store.MethodID(), store.MethodDescription())
		return nil
	},
}

func init() {
	secretSetCmd.Flags().StringVar(&secretLabel, "label", "", "Display label for OS secret managers")
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretGetCmd)
	secretCmd.AddCommand(secretListCmd)
	secretCmd.AddCommand(secretDeleteCmd)
	secretCmd.AddCommand(secretBackendCmd)
	rootCmd.AddCommand(secretCmd)
}

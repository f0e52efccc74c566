package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockalert/internal/config"
	"stockalert/internal/machineid"
	"stockalert/internal/secrets"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Diagnose the local setup",
	Long:  "Verify that the config parses, the machine identity resolves and the selected secret backend can round-trip a value.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkProbeKey is the throwaway key used for the backend round-trip.
const checkProbeKey = "stockalert-check-probe"

func runCheck(cmd *cobra.Command, args []string) error {
	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Printf("FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Printf("ok    %s\n", name)
	}

	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	report("config parses", err)
	if err != nil {
		cfg = &config.Config{SecretStorage: secrets.PolicyAuto}
	}
	report("config valid", cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	report("machine identity resolves", func() error {
		if machineid.ID(ctx) == "" {
			return errors.New("empty identity")
		}
		return nil
	}())

	dir, err := stockalertHome()
	if err != nil {
		return err
	}
	store, err := secrets.Select(cfg.SecretStorage, dir)
	report(fmt.Sprintf("backend selects (%s)", cfg.SecretStorage), err)
	if err != nil {
		fmt.Println("\nsome checks failed")
		os.Exit(1)
	}

	report("backend round-trip", probeStore(store))

	if failed {
		fmt.Println("\nsome checks failed")
		os.Exit(1)
	}
	fmt.Printf("\nall checks passed (backend: %s)\n", store.MethodDescription())
	return nil
}

// probeStore writes, reads and removes a throwaway secret.
func probeStore(store secrets.Store) error {
	if !store.Set(checkProbeKey, "probe-value", "stockalert self-check") {
		return errors.New("probe write failed")
	}
	defer store.Delete(checkProbeKey)

	val, err := store.Get(checkProbeKey)
	if err != nil {
		return fmt.Errorf("probe read failed: %w", err)
	}
	if val != "probe-value" {
		return fmt.Errorf("probe read returned %q", val)
	}
	if !store.Delete(checkProbeKey) {
		return errors.New("probe delete failed")
	}
	return nil
}

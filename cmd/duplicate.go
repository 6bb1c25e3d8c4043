package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"propshop.GO/config"
	replicationService "propshop.GO/service/replication"
)

var (
	duplicateIDs     string
	duplicateCount   int
	duplicatePattern string
)

var duplicateCmd = &cobra.Command{
	Use:   "equipment:duplicate",
	Short: "Create N identifier-distinct copies of equipment items",
	Run: func(cmd *cobra.Command, args []string) {
		ids, err := parseIDList(duplicateIDs)
		if err != nil {
			fmt.Printf("Invalid --ids: %v\n", err)
			return
		}

		config.LoadAppConfig()
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		engine, err := replicationService.NewEngine(db, config.AppConfig.MediaDir, config.AppConfig.CopyTimeout)
		if err != nil {
			fmt.Printf("Engine init failed: %v\n", err)
			return
		}

		// Ctrl+C stops further copies; created ones stay.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := engine.Replicate(ctx, ids, duplicateCount, duplicatePattern)
		if err != nil && res == nil {
			fmt.Printf("Duplication failed: %v\n", err)
			return
		}
		if err != nil {
			fmt.Printf("Duplication interrupted: %v\n", err)
		}

		for _, f := range res.Failures {
			fmt.Printf("  [fail] source=%d copy=%d serial=%s: %s\n", f.SourceID, f.CopyIndex, f.SerialNumber, f.Error)
		}
		for _, f := range res.ImageCopyFailures {
			fmt.Printf("  [warn] image copy for %s failed: %s\n", f.SerialNumber, f.Error)
		}

		fmt.Printf(`
=== Duplication Report ===
Job:            %s
Sources:        %d
Copies/source:  %d
Created:        %d
Failed:         %d
Image failures: %d
Progress:       %d%%
==========================
`, res.JobID, len(ids), duplicateCount, len(res.Created), len(res.Failures), len(res.ImageCopyFailures), res.Progress)
	},
}

func parseIDList(raw string) ([]uint, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not an id", p)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one id is required")
	}
	return ids, nil
}

func init() {
	duplicateCmd.Flags().StringVar(&duplicateIDs, "ids", "", "Comma-separated source equipment ids")
	duplicateCmd.Flags().IntVar(&duplicateCount, "count", 1, "Copies per source item (1-50)")
	duplicateCmd.Flags().StringVar(&duplicatePattern, "pattern", "", "Identifier pattern with one {n} placeholder, e.g. SN-{n}")
	duplicateCmd.MarkFlagRequired("ids")
	duplicateCmd.MarkFlagRequired("pattern")
	rootCmd.AddCommand(duplicateCmd)
}

package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"propshop.GO/config"
	"propshop.GO/cron"
)

var jobName string

func knownJobNames() []string {
	names := make([]string, 0)
	for n := range config.CronJobs {
		names = append(names, n)
	}
	for n := range cron.Jobs() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	Run: func(cmd *cobra.Command, args []string) {
		if jobName != "" {
			name := strings.ToLower(jobName)
			if cronJob, ok := config.CronJobs[name]; ok {
				fmt.Printf("Running cron job: %s\n", name)
				cronJob.Job(args...)
				return
			}
			if j, ok := cron.Jobs()[name]; ok {
				fmt.Printf("Running cron job: %s\n", name)
				j.Run(args...)
				return
			}
			fmt.Printf("Unknown job: %s (known: %s)\n", jobName, strings.Join(knownJobNames(), ", "))
			os.Exit(1)
		}
		fmt.Println("Starting cron scheduler...")
		c := cron.StartCron()
		defer c.Stop()
		fmt.Println("Cron scheduler started. Press Ctrl+C to exit.")
		select {} // Block forever
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit (e.g. ledgeraudit)")
	rootCmd.AddCommand(cronStartCmd)
}

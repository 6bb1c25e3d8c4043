package config

import (
	"propshop.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"ledgeraudit": {Schedule: "0 3 * * *", Job: jobs.LedgerAudit},
	"cachereport": {Schedule: "@every 1h", Job: jobs.CacheReport},
	// Add more jobs here
}

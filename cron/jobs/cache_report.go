package jobs

import (
	"log"
	"os"
	"path/filepath"

	"propshop.GO/core/cache"
)

// CacheReport dumps the live cache to a JSON file for inspection and logs
// the entry count (availability views plus replication job progress).
func CacheReport(args ...string) {
	c := cache.GetInstance()
	file := filepath.Join(os.TempDir(), "propshop_cache_report.json")
	if len(args) > 0 && args[0] != "" {
		file = args[0]
	}
	if err := c.DumpToFile(file); err != nil {
		log.Printf("cache report: dump failed: %v", err)
		return
	}
	log.Printf("cache report: %d entries written to %s", c.Len(), file)
}

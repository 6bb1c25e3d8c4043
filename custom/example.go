// Package custom is the extension point for host-application code. Anything
// registered here from init() is picked up by the server and the CLI without
// touching the core packages.
package custom

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"propshop.GO/api"
	"propshop.GO/cmd"
	"propshop.GO/core/cache"
	"propshop.GO/cron"
	gqlregistry "propshop.GO/graphql/registry"
)

func init() {
	// GraphQL extension: live cache statistics via extension(name: "cachestats")
	gqlregistry.Register("cachestats", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]int{"entries": cache.GetInstance().Len()}, nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "cache:stats",
		Short: "Print live cache entry count",
		Run: func(c *cobra.Command, args []string) {
			fmt.Printf("cache entries: %d\n", cache.GetInstance().Len())
		},
	})

	// Cron job
	cron.Register("cacheping", "@every 15m", func(args ...string) {
		log.Printf("cache ping: %d entries live", cache.GetInstance().Len())
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"pong": "ok"})
	})
}

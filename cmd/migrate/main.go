// migrate manages the database schema from the embedded SQL files.
//
//	go run ./cmd/migrate -direction up|down|version
package main

import (
	"flag"
	"fmt"
	"os"

	"conferenceqa/config"
	"conferenceqa/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", migrate.Up, "up, down, or version to print the applied version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("config", err)
	}
	if cfg.DBUrl == "" {
		fail("config", fmt.Errorf("DATABASE_URL is not set; create a .env or set DATABASE_URL"))
	}

	if *direction == "version" {
		version, dirty, err := migrate.Version(cfg.DBUrl)
		if err != nil {
			fail("version", err)
		}
		fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
		return
	}
	if err := migrate.Run(cfg.DBUrl, *direction); err != nil {
		fail("migrate", err)
	}
	fmt.Printf("migrations %s: done\n", *direction)
}

func fail(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
	os.Exit(1)
}

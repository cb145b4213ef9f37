// Command envcheck verifies that the environment carries a usable
// Pangram configuration without starting the server.
package main

import (
	"fmt"
	"os"

	"github.com/mrexodia/pangram-webui/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "envcheck: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Using PANGRAM_API_KEY: %s\n", mask(cfg.Pangram.APIKey))
	fmt.Printf("Detection endpoint:    %s\n", cfg.Pangram.BaseURL)
	fmt.Printf("History database:      %s\n", cfg.Database.Path)
}

// mask keeps a short prefix so the operator can tell keys apart.
func mask(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:8] + "..."
}

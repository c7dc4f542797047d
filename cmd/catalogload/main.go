package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/greenscape-backend/internal/app"
)

func main() {
	var file string
	var dryRun bool
	flag.StringVar(&file, "file", "", "path to the YAML plant catalog")
	flag.BoolVar(&dryRun, "dry-run", false, "validate the catalog without writing it")
	flag.Parse()

	file = strings.TrimSpace(file)
	if file == "" {
		fmt.Println("-file is required")
		os.Exit(2)
	}

	cfg, err := app.LoadConfig("catalogload")
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(file)
	if err != nil {
		fmt.Printf("open %s: %v\n", file, err)
		os.Exit(1)
	}
	defer f.Close()

	summary, err := app.LoadCatalog(context.Background(), cfg, f, dryRun)
	if err != nil {
		fmt.Printf("load catalog: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
	if dryRun {
		fmt.Printf("dry run: %d received, %d would be rejected\n", summary.Received, len(summary.Rejected))
		return
	}
	fmt.Printf("imported %d of %d plants (%d rejected)\n", summary.Upserted, summary.Received, len(summary.Rejected))
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/mentorship/internal/config"
)

// Restore copies a backup over the configured database file. Stop the server
// first: the copy is not coordinated with open connections.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	src := flag.String("from", "", "Backup file to restore")
	force := flag.Bool("force", false, "Overwrite an existing database file")
	flag.Parse()

	if *src == "" {
		fmt.Fprintln(os.Stderr, "Restore error: -from is required")
		os.Exit(2)
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dst := cfg.DatabasePath

	if _, err := os.Stat(dst); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Restore error: %s exists; pass -force to overwrite\n", dst)
		os.Exit(1)
	}

	srcFile, err := os.Open(*src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restored from %s to %s.\n", *src, dst)
}

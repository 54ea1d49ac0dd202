// Command ops backs up and restores the save data directory.
//
//	ops backup  -saves data/saves -out backups/saves.tar.gz
//	ops restore -archive backups/saves.tar.gz -dest data/saves
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirsapient/slang-bang-react-sub000/internal/ops"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backup":
		fs := flag.NewFlagSet("backup", flag.ExitOnError)
		saves := fs.String("saves", "data/saves", "save directory to archive")
		out := fs.String("out", "", "archive path (default backups/saves-<timestamp>.tar.gz)")
		_ = fs.Parse(os.Args[2:])
		if *out == "" {
			*out = fmt.Sprintf("backups/saves-%s.tar.gz", time.Now().UTC().Format("20060102-150405"))
		}
		if err := ops.BackupSaves(*saves, *out); err != nil {
			log.Fatalf("backup: %v", err)
		}
		fmt.Printf("backed up %s to %s\n", *saves, *out)

	case "restore":
		fs := flag.NewFlagSet("restore", flag.ExitOnError)
		archive := fs.String("archive", "", "archive to restore from")
		dest := fs.String("dest", "data/saves", "destination directory (must be empty)")
		_ = fs.Parse(os.Args[2:])
		if *archive == "" {
			log.Fatal("restore: -archive is required")
		}
		if err := ops.RestoreSaves(*archive, *dest); err != nil {
			log.Fatalf("restore: %v", err)
		}
		fmt.Printf("restored %s into %s\n", *archive, *dest)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ops <backup|restore> [flags]")
}

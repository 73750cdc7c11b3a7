package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/catalog"
	"video-ingest/internal/database"
	"video-ingest/internal/ingest"
	"video-ingest/internal/logging"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default directories, matching the server
	defaultUploadDir   = "uploads"
	defaultDatabaseDir = "data"
)

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func main() {
	// Create a context that cancels on interrupt signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env bundles the opened stores for one command.
type env struct {
	catalog *catalog.Catalog
	db      *database.Database
	svc     *ingest.Service
}

func openEnv(ctx context.Context) (*env, error) {
	uploadDir := getEnv("UPLOAD_DIR", defaultUploadDir)
	databaseDir := getEnv("DATABASE_DIR", defaultDatabaseDir)
	log := logging.New(os.Stderr, logging.LevelWarn, true)

	cat, err := catalog.New(uploadDir, log)
	if err != nil {
		return nil, fmt.Errorf("open upload directory %s: %w", uploadDir, err)
	}
	db, err := database.New(ctx, filepath.Join(databaseDir, database.FileName), log)
	if err != nil {
		return nil, fmt.Errorf("open database in %s: %w", databaseDir, err)
	}
	return &env{
		catalog: cat,
		db:      db,
		svc:     ingest.New(ingest.Config{Catalog: cat, Index: db, Log: log}),
	}, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stdout)
		return 1
	}

	command := args[0]
	switch command {
	case "list", "delete", "prune":
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(stderr)
		return 1
	}

	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := e.db.Close(); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	switch command {
	case "list":
		err = listAssets(ctx, e, stdout)
	case "delete":
		err = deleteAsset(ctx, e, args[1:], stdin, stdout)
	case "prune":
		err = prune(ctx, e, args[1:], stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// sanitizeCommand returns a safe representation of a command string for display.
// Any character outside [a-zA-Z0-9_-] is replaced with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Video Ingest Asset Management")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: assetctl <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list              - List assets with state and rendition outcomes")
	fmt.Fprintln(w, "  delete <id> [-y]  - Delete an asset and all of its files")
	fmt.Fprintln(w, "  prune [-older-than DURATION]")
	fmt.Fprintf(w, "                    - Remove abandoned uploads and stale index rows (default: %s)\n", catalog.DefaultPruneGrace)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  UPLOAD_DIR   - Asset directory (default: %s)\n", defaultUploadDir)
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func listAssets(ctx context.Context, e *env, stdout io.Writer) error {
	list, err := e.svc.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No assets.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tTIERS\tRESOLUTION\tUPLOADED")
	for i := range list {
		a := &list[i]
		resolution := "-"
		if a.Metadata != nil {
			resolution = fmt.Sprintf("%dx%d", a.Metadata.Width, a.Metadata.Height)
		}
		uploaded := "-"
		if !a.CreatedAt.IsZero() {
			uploaded = a.CreatedAt.Format(assets.UploadTimeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.State, tierSummary(a.Renditions), resolution, uploaded)
	}
	return tw.Flush()
}

// tierSummary renders renditions in tier order, e.g. "high:ok medium:failed low:ok".
func tierSummary(r assets.Renditions) string {
	parts := make([]string, 0, len(assets.Tiers))
	for _, t := range assets.Tiers {
		rd, ok := r[t.Name]
		if !ok {
			continue
		}
		state := string(rd.State)
		if rd.State == assets.RenditionSucceeded {
			state = "ok"
		}
		parts = append(parts, t.Name+":"+state)
	}
	return strings.Join(parts, " ")
}

func deleteAsset(ctx context.Context, e *env, args []string, stdin io.Reader, stdout io.Writer) error {
	var id string
	yes := false
	for _, arg := range args {
		switch arg {
		case "-y", "--yes":
			yes = true
		default:
			id = arg
		}
	}
	if id == "" {
		return fmt.Errorf("usage: assetctl delete <id> [-y]")
	}

	if !yes {
		if !stdinIsTerminal() {
			return fmt.Errorf("refusing to delete without confirmation; pass -y")
		}
		fmt.Fprintf(stdout, "Delete asset %s and all of its renditions? [y/N]: ", id)
		answer, _ := bufio.NewReader(stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	if err := e.svc.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %s.\n", id)
	return nil
}

// parseGrace reads "-older-than DURATION" or "-older-than=DURATION".
func parseGrace(args []string) (time.Duration, error) {
	grace := catalog.DefaultPruneGrace
	for i := 0; i < len(args); i++ {
		arg := strings.TrimPrefix(args[i], "-")
		var value string
		switch {
		case arg == "-older-than" || arg == "older-than":
			if i+1 >= len(args) {
				return 0, fmt.Errorf("-older-than needs a duration")
			}
			i++
			value = args[i]
		case strings.HasPrefix(arg, "older-than="), strings.HasPrefix(arg, "-older-than="):
			_, value, _ = strings.Cut(arg, "=")
		default:
			return 0, fmt.Errorf("usage: assetctl prune [-older-than DURATION]")
		}
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return 0, fmt.Errorf("invalid -older-than %q", value)
		}
		grace = d
	}
	return grace, nil
}

func prune(ctx context.Context, e *env, args []string, stdout io.Writer) error {
	grace, err := parseGrace(args)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-grace)

	removed, err := e.catalog.Prune(grace)
	if err != nil {
		return fmt.Errorf("prune storage: %w", err)
	}

	entries, err := e.catalog.List()
	if err != nil {
		return err
	}
	present := make([]string, 0, len(entries))
	for _, entry := range entries {
		present = append(present, entry.ID)
	}
	rows, err := e.db.PruneMissingBefore(ctx, present, cutoff)
	if err != nil {
		return fmt.Errorf("prune index: %w", err)
	}

	fmt.Fprintf(stdout, "Removed %d incomplete directories and %d stale index entries.\n", removed, rows)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

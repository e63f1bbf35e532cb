package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"fsindex/internal/database"
	"fsindex/internal/logging"
)

func newScanCmd() *cobra.Command {
	var (
		flags   scanFlags
		workers int
		locale  string
	)

	cmd := &cobra.Command{
		Use:   "scan [directories...]",
		Short: "Index directories and save the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(flags, args)
			if err != nil {
				return err
			}
			tag, err := language.Parse(locale)
			if err != nil {
				return fmt.Errorf("bad locale %q: %w", locale, err)
			}
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			db := database.New(cfg, database.WithSortWorkers(workers), database.WithLocale(tag))
			defer db.Unref()

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Scanning"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionClearOnFinish(),
			)

			start := time.Now()
			db.Lock()
			defer db.Unlock()

			err = db.Scan(ctx, func(path string) {
				bar.Describe(path)
				bar.Add(1)
			})
			bar.Finish()
			if errors.Is(err, database.ErrCancelled) {
				logging.Warnf("Scan cancelled after %d entries", db.NumEntries())
				return err
			}
			if err != nil {
				return err
			}

			if err := db.Save(dbDir); err != nil {
				return err
			}
			fmt.Printf("Indexed %d files and %d folders in %v\n",
				db.NumFiles(), db.NumFolders(), time.Since(start).Round(time.Millisecond))
			fmt.Printf("Database: %s\n", filepath.Join(dbDir, database.DefaultFileName))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "JSON scan configuration file")
	cmd.Flags().StringSliceVarP(&flags.excludeDirs, "exclude-dir", "x", []string{}, "Directories to skip (exact path, can be specified multiple times)")
	cmd.Flags().StringSliceVarP(&flags.excludeFiles, "exclude", "e", []string{}, "Name patterns to skip (can be specified multiple times)")
	cmd.Flags().BoolVarP(&flags.excludeHidden, "exclude-hidden", "H", false, "Skip hidden files and folders")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of sort workers (default: number of CPU cores)")
	cmd.Flags().StringVar(&locale, "locale", "und", "Collation locale for name ordering")
	return cmd
}

// loadDatabase opens the committed database in dbDir.
func loadDatabase() (*database.Database, string, error) {
	path := filepath.Join(dbDir, database.DefaultFileName)
	db := database.New(database.Config{})
	if err := db.Load(path, nil); err != nil {
		db.Unref()
		return nil, "", err
	}
	return db, path, nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, path, err := loadDatabase()
			if err != nil {
				return err
			}
			defer db.Unref()

			fi, err := os.Stat(path)
			if err != nil {
				return err
			}
			sum, err := database.Fingerprint(path)
			if err != nil {
				return err
			}

			fmt.Printf("Database:    %s (%s)\n", path, formatSize(uint64(fi.Size())))
			fmt.Printf("Saved:       %s\n", fi.ModTime().Format(time.DateTime))
			fmt.Printf("Fingerprint: %016x\n", sum)
			fmt.Printf("Folders:     %d\n", db.NumFolders())
			fmt.Printf("Files:       %d\n", db.NumFiles())
			fmt.Printf("Entries:     %d\n", db.NumEntries())

			for _, id := range db.Folders().Items() {
				if f := db.Folder(id); f.IsRoot() {
					fmt.Printf("Root:        %s (%s)\n", db.Tree().FolderFullPath(id), formatSize(f.Size()))
				}
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var (
		folders  bool
		limit    int
		sortBy   string
		showSize bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print indexed entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDatabase()
			if err != nil {
				return err
			}
			defer db.Unref()

			tree := db.Tree()
			show := func(path string, size uint64) {
				if showSize {
					fmt.Printf("%s (%s)\n", path, formatSize(size))
					return
				}
				fmt.Println(path)
			}

			if folders {
				arr := db.Folders()
				switch sortBy {
				// Folders all share one type.
				case "path", "type":
				case "name":
					arr.Sort(tree.CompareFoldersByName)
				case "size":
					arr.Sort(tree.CompareFoldersBySize)
				default:
					return fmt.Errorf("unknown sort order %q", sortBy)
				}
				for i, id := range arr.Items() {
					if limit > 0 && i >= limit {
						break
					}
					show(tree.FolderFullPath(id), db.Folder(id).Size())
				}
				return nil
			}

			arr := db.Files()
			switch sortBy {
			case "path":
			case "name":
				arr.Sort(tree.CompareFilesByName)
			case "size":
				arr.Sort(tree.CompareFilesBySize)
			case "type":
				arr.Sort(tree.CompareFilesByType)
			default:
				return fmt.Errorf("unknown sort order %q", sortBy)
			}
			for i, id := range arr.Items() {
				if limit > 0 && i >= limit {
					break
				}
				show(tree.FileFullPath(id), db.File(id).Size())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&folders, "folders", "f", false, "List folders instead of files")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&sortBy, "sort", "path", "Sort order: path, name, size or type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", true, "Show sizes")
	return cmd
}

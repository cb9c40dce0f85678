package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/aleister1102/odiffkit/internal/datastore"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var indexFlags struct {
	db   string
	uri  string
	name string
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the media index backing content:// references",
}

var indexAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Register a local image and print its content URI",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexAdd,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed images, newest first",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexRemoveCmd = &cobra.Command{
	Use:   "remove <uri>",
	Short: "Remove an entry from the media index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexRemove,
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexFlags.db, "db", "", "Media index database (overrides resolver_config.media_index_path)")
	indexAddCmd.Flags().StringVar(&indexFlags.uri, "uri", "", "URI to register (default: generated content:// URI)")
	indexAddCmd.Flags().StringVar(&indexFlags.name, "name", "", "Display name (default: file name)")

	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexRemoveCmd)
	rootCmd.AddCommand(indexCmd)
}

func openMediaIndex(cmd *cobra.Command) (*datastore.MediaIndex, error) {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return nil, err
	}
	path := cfg.ResolverConfig.MediaIndexPath
	if cmd.Flags().Changed("db") {
		path = indexFlags.db
	}
	if path == "" {
		return nil, fmt.Errorf("no media index configured: set resolver_config.media_index_path or --db")
	}
	return datastore.NewMediaIndex(path, log)
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	index, err := openMediaIndex(cmd)
	if err != nil {
		return err
	}
	defer index.Close()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	name := indexFlags.name
	if !cmd.Flags().Changed("name") {
		name = filepath.Base(path)
	}
	uri := ""
	if cmd.Flags().Changed("uri") {
		uri = indexFlags.uri
	}

	uri, err = index.Add(cmd.Context(), datastore.MediaEntry{URI: uri, Data: path, DisplayName: name})
	if err != nil {
		return fmt.Errorf("adding %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), uri)
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	index, err := openMediaIndex(cmd)
	if err != nil {
		return err
	}
	defer index.Close()

	entries, err := index.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing media index: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URI\tNAME\tPATH\tADDED")
	for _, e := range entries {
		path := e.Data
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.URI, e.DisplayName, path, humanize.Time(e.DateAdded))
	}
	return w.Flush()
}

func runIndexRemove(cmd *cobra.Command, args []string) error {
	index, err := openMediaIndex(cmd)
	if err != nil {
		return err
	}
	defer index.Close()

	if err := index.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removing %s: %w", args[0], err)
	}
	return nil
}

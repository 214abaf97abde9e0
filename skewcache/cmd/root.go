// Package cmd provides the command-line interface for skewcache.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/skewcache/mem/cache/tagging"
)

// Environment variables that override the default tag store geometry. They
// can be set in a .env file.
const (
	envNumSets       = "SKEWCACHE_NUM_SETS"
	envAssociativity = "SKEWCACHE_ASSOCIATIVITY"
	envBlockSize     = "SKEWCACHE_BLOCK_SIZE"
	envIndexing      = "SKEWCACHE_INDEXING"
	envReplacement   = "SKEWCACHE_REPLACEMENT"
)

// NewRootCmd creates the skewcache command with all its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skewcache",
		Short: "skewcache replays memory traces through a microtagged tag store.",
		Long: `skewcache replays memory traces through a microtagged, ` +
			`column-associative tag store and reports what happened. ` +
			`The geometry comes from the flags, then from SKEWCACHE_* ` +
			`environment variables (which can be set in a .env file), ` +
			`then from the defaults.`,
		SilenceUsage: true,
	}

	defaults := tagging.Defaults()
	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "File to load SKEWCACHE_* variables from")
	flags.Int("num-sets", defaults.NumSets, "Number of sets")
	flags.Int("assoc", defaults.Associativity, "Number of ways")
	flags.Int("block-size", defaults.BlockSize, "Number of bytes per block")
	flags.String("indexing", defaults.IndexingPolicy,
		"Indexing policy, set_associative or column_associative")
	flags.String("replacement", defaults.ReplacementPolicy,
		"Replacement policy, lru, fifo, random, or srrip")
	flags.Bool("security-aware", defaults.SecurityAware,
		"Separate the secure and the non-secure domain")

	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// Execute runs the skewcache command and exits.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// specFromFlags resolves the tag store Spec. A flag set on the command line
// wins over the environment, which wins over the defaults.
func specFromFlags(cmd *cobra.Command) (tagging.Spec, error) {
	if err := loadEnvFile(cmd); err != nil {
		return tagging.Spec{}, err
	}

	spec := tagging.Defaults()
	flags := cmd.Flags()

	intSettings := []struct {
		flag, env string
		dst       *int
	}{
		{"num-sets", envNumSets, &spec.NumSets},
		{"assoc", envAssociativity, &spec.Associativity},
		{"block-size", envBlockSize, &spec.BlockSize},
	}

	for _, s := range intSettings {
		if v, ok := os.LookupEnv(s.env); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return tagging.Spec{}, fmt.Errorf("%s: %w", s.env, err)
			}

			*s.dst = n
		}

		if flags.Changed(s.flag) {
			*s.dst, _ = flags.GetInt(s.flag)
		}
	}

	stringSettings := []struct {
		flag, env string
		dst       *string
	}{
		{"indexing", envIndexing, &spec.IndexingPolicy},
		{"replacement", envReplacement, &spec.ReplacementPolicy},
	}

	for _, s := range stringSettings {
		if v, ok := os.LookupEnv(s.env); ok {
			*s.dst = v
		}

		if flags.Changed(s.flag) {
			*s.dst, _ = flags.GetString(s.flag)
		}
	}

	spec.SecurityAware, _ = flags.GetBool("security-aware")

	if err := spec.Validate(); err != nil {
		return tagging.Spec{}, err
	}

	return spec, nil
}

// loadEnvFile loads the .env file. A missing file is only an error if the
// user asked for it.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}

	return err
}

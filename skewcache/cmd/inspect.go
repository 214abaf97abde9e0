package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/skewcache/mem/cache/tagging"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <addr>...",
		Short: "Print where addresses can be placed in the tag store.",
		Long: "Print the tag, the microtag, and the candidate blocks of each " +
			"address under the configured geometry.",
		Args: cobra.MinimumNArgs(1),
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	spec, err := specFromFlags(cmd)
	if err != nil {
		return err
	}

	tags := tagging.MakeBuilder().WithSpec(spec).Build("Tags")

	for _, arg := range args {
		addr, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return fmt.Errorf("address %q: %w", arg, err)
		}

		inspect(cmd.OutOrStdout(), tags, addr)
	}

	return nil
}

func inspect(w io.Writer, tags *tagging.MicrotaggedTags, addr uint64) {
	ip := tags.IndexingPolicy()

	fmt.Fprintf(w, "0x%x: tag=0x%x microtag=0x%02x\n",
		addr, tags.ExtractTag(addr), tagging.Microtag(addr))

	for way, blk := range ip.GetPossibleEntries(addr) {
		fmt.Fprintf(w, "  way %d: set %d, way %d\n", way, blk.SetID, blk.WayID)
	}
}

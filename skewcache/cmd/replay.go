package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/skewcache/datarecording"
	"github.com/sarchlab/skewcache/mem/cache/tagging"
	"github.com/sarchlab/skewcache/mem/trace"
	"github.com/sarchlab/skewcache/monitoring"
	"github.com/sarchlab/skewcache/sim/hooking"
)

// A Replayer applies the accesses of a trace to a tag store. Reads and writes
// allocate on a miss, evicting the victim if needed. Invalidations drop the
// block if present.
type Replayer struct {
	tags  *tagging.MicrotaggedTags
	guard func(func())

	// progress is called with the number of bytes consumed per line.
	progress func(n uint64)
}

// NewReplayer creates a Replayer that works on the given tag store.
func NewReplayer(tags *tagging.MicrotaggedTags) *Replayer {
	return &Replayer{
		tags:     tags,
		guard:    func(f func()) { f() },
		progress: func(uint64) {},
	}
}

// Attach registers hooks on the tag store and returns a function that
// removes them again.
func (r *Replayer) Attach(hooks ...hooking.Hook) (detach func()) {
	r.guard(func() {
		for _, h := range hooks {
			r.tags.AcceptHook(h)
		}
	})

	return func() {
		r.guard(func() {
			for _, h := range hooks {
				r.tags.RemoveHook(h)
			}
		})
	}
}

// Apply performs a single access.
func (r *Replayer) Apply(a Access) error {
	var err error

	r.guard(func() {
		switch a.Kind {
		case AccessInvalidate:
			if blk := r.tags.FindBlock(a.Address, a.Secure); blk != nil {
				r.tags.Invalidate(blk)
			}
		default:
			if r.tags.AccessBlock(a.Address, a.Secure) != nil {
				return
			}

			victim := r.tags.FindVictim(a.Address)
			if victim.IsValid {
				r.tags.Evict(victim)
			}

			err = r.tags.Insert(a.Address, a.Secure, victim)
		}
	})

	return err
}

// Replay reads a trace until the end or until ctx is done.
func (r *Replayer) Replay(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		lineNo++
		line := scanner.Text()

		access, ok, err := ParseAccess(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		if ok {
			if err := r.Apply(access); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		}

		r.progress(uint64(len(line) + 1))
	}

	return scanner.Err()
}

func printStats(w io.Writer, name string, s tagging.Stats) {
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  accesses:         %d\n", s.Accesses)
	fmt.Fprintf(w, "  hits:             %d\n", s.Hits)
	fmt.Fprintf(w, "  misses:           %d\n", s.Misses)
	fmt.Fprintf(w, "  microtag rejects: %d\n", s.MicrotagRejects)
	fmt.Fprintf(w, "  insertions:       %d\n", s.Insertions)
	fmt.Fprintf(w, "  evictions:        %d\n", s.Evictions)
	fmt.Fprintf(w, "  invalidations:    %d\n", s.Invalidations)
	fmt.Fprintf(w, "  tags in use:      %d\n", s.TagsInUse)
	fmt.Fprintf(w, "  hit rate:         %.4f\n", s.HitRate())
}

func newReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a trace through a tag store and print the statistics.",
		Long: "Replay a trace through a tag store and print the statistics. " +
			"Each line of the trace is `R|W|I <addr> [s]`. Use - to read " +
			"from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}

	flags := replayCmd.Flags()
	flags.Bool("trace-log", false, "Print every tag store event to stderr")
	flags.String("record", "",
		"Record every tag store event into <record>.sqlite3")
	flags.Bool("monitor", false, "Serve the tag store over HTTP")
	flags.Int("monitor-port", 0, "Port of the monitoring server")
	flags.Bool("open-browser", false, "Open the monitoring page")

	return replayCmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	spec, err := specFromFlags(cmd)
	if err != nil {
		return err
	}

	tags := tagging.MakeBuilder().WithSpec(spec).Build("Tags")
	replayer := NewReplayer(tags)
	flags := cmd.Flags()

	var tracers []hooking.Hook
	if on, _ := flags.GetBool("trace-log"); on {
		tracers = append(tracers,
			trace.NewTracer(log.New(cmd.ErrOrStderr(), "", 0)))
	}

	if path, _ := flags.GetString("record"); path != "" {
		recorder := datarecording.New(path)
		defer recorder.Close()

		tracers = append(tracers, trace.NewDBTracer(recorder))
	}

	in, total, err := openTrace(cmd, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	monitor := startMonitor(cmd, tags, replayer, total)

	// Tracers only follow the replay. The recorder is closed after they are
	// detached.
	detach := replayer.Attach(tracers...)
	err = replayer.Replay(ctx, in)
	detach()

	if err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), tags.Name(), tags.Stats())

	if monitor != nil {
		fmt.Fprintln(cmd.ErrOrStderr(),
			"Replay done. Press Ctrl+C to stop the monitoring server.")
		<-ctx.Done()
	}

	return nil
}

func openTrace(cmd *cobra.Command, path string) (io.ReadCloser, uint64, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, uint64(info.Size()), nil
}

func startMonitor(
	cmd *cobra.Command,
	tags *tagging.MicrotaggedTags,
	replayer *Replayer,
	total uint64,
) *monitoring.Monitor {
	flags := cmd.Flags()
	if on, _ := flags.GetBool("monitor"); !on {
		return nil
	}

	port, _ := flags.GetInt("monitor-port")
	openBrowser, _ := flags.GetBool("open-browser")

	monitor := monitoring.NewMonitor().
		WithPortNumber(port).
		WithOpenBrowser(openBrowser)
	monitor.RegisterTagStore(tags)
	monitor.StartServer()

	bar := monitor.CreateProgressBar("Replay", total)
	replayer.guard = monitor.Guard
	replayer.progress = bar.IncrementFinished

	return monitor
}

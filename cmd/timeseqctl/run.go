package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/not-things-modular/timeseq/engine"
	"github.com/not-things-modular/timeseq/internal/consolehost"
)

// loggingListener logs every engine notification; used when --verbose is set.
type loggingListener struct{}

func (loggingListener) ScriptReset()    { log.Println("script reset") }
func (loggingListener) SegmentStarted() { log.Println("segment started") }
func (loggingListener) LaneLooped()     { log.Println("lane looped") }
func (loggingListener) TriggerTriggered() {
	log.Println("trigger fired")
}
func (loggingListener) AssertFailed(name, message string, stop bool) {
	log.Printf("assert %q failed: %s (stop=%v)", name, message, stop)
}

func newRunCmd() *cobra.Command {
	var (
		samples int64
		seed    int64
		fire    []string
	)

	cmd := &cobra.Command{
		Use:   "run <script.json>",
		Short: "Load a script and process it for a fixed number of samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			sampleRate := uint32(viper.GetInt("sample-rate"))
			verbose := viper.GetBool("verbose")

			host := consolehost.New(sampleRate, verbose)
			var opts []engine.Option
			if verbose {
				opts = append(opts, engine.WithListener(loggingListener{}))
			}
			e := engine.New(host, host, opts...)

			if errs := e.LoadScript(data); len(errs) > 0 {
				printValidationErrors(cmd, errs)
				return fmt.Errorf("%d validation error(s)", len(errs))
			}

			e.Start(seed)
			for _, name := range fire {
				e.SetTrigger(name)
			}

			processed := int64(0)
			for i := int64(0); i < samples; i++ {
				e.Process(sampleRate)
				processed++
				if e.Status() == engine.StatePaused {
					fmt.Fprintf(cmd.OutOrStdout(), "paused at sample %d (assertion stop or runtime error)\n", i)
					break
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "processed %d sample(s), final state %s\n", processed, e.Status())
			return nil
		},
	}

	cmd.Flags().Int64Var(&samples, "samples", 48000, "number of samples to process")
	cmd.Flags().Int64Var(&seed, "seed", 1, "RNG seed used on start")
	cmd.Flags().StringArrayVar(&fire, "trigger", nil, "trigger name(s) to fire once, right after start")
	return cmd
}

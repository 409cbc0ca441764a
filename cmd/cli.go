// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tuner/internal/config"
	"tuner/pkg/build"
)

// Commands recognised by main.
const (
	CommandListen  = ""
	CommandList    = "list"
	CommandAnalyze = "analyze"
	CommandNote    = "note"
	CommandTone    = "tone"
)

// Options is the parsed command line: the command to run, its arguments
// and the flag values. Flags only override the configuration when they
// were given explicitly.
type Options struct {
	Command string
	Args    []string

	ConfigPath string
	DeviceID   int
	SampleRate int
	BlockSize  int
	Reference  float64
	Window     string
	Transform  string
	Gate       float64
	Record     bool
	Output     string
	Verbose    bool
	TUIMode    bool

	ran     bool
	changed map[string]bool
}

// ParseArgs parses os.Args.
func ParseArgs() (*Options, error) {
	return parse(os.Args[1:])
}

func parse(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{changed: make(map[string]bool)}

	// run records the command and which flags were set explicitly.
	run := func(command string) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			options.ran = true
			options.Command = command
			options.Args = args
			for _, name := range overrideFlags {
				options.changed[name] = c.Flags().Changed(name)
			}
			return nil
		}
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Long:          buildInfo.Description + "\n\nWithout a command, listens to the input device and shows the nearest note.",
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: run(CommandListen),
	}
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List available audio devices (--tui to pick one)",
			Args:  cobra.NoArgs,
			RunE:  run(CommandList),
		},
		&cobra.Command{
			Use:   "analyze FILE",
			Short: "Print the note of every block of a WAV file",
			Args:  cobra.ExactArgs(1),
			RunE:  run(CommandAnalyze),
		},
		&cobra.Command{
			Use:   "note HZ",
			Short: "Show the note and cents deviation of a frequency",
			Args:  cobra.ExactArgs(1),
			RunE:  run(CommandNote),
		},
		&cobra.Command{
			Use:   "tone NOTE|HZ",
			Short: "Play a reference tone, e.g. 'tone E2' or 'tone 329.63'",
			Args:  cobra.ExactArgs(1),
			RunE:  run(CommandTone),
		},
	)

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&options.ConfigPath, "config", "",
		"Path to the YAML configuration file (default "+config.DefaultPath+" if present)")

	// Audio Device Configuration
	flags.IntVarP(&options.DeviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.IntVarP(&options.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVarP(&options.BlockSize, "block-size", "b", config.DefaultBlockSize,
		"Samples per analysed block (frequency resolution is sample-rate/block-size)")

	// Analysis Configuration
	flags.Float64VarP(&options.Reference, "reference", "a", config.DefaultReferenceHz,
		"Frequency of A4 in Hz")
	flags.StringVar(&options.Window, "window", config.DefaultWindow,
		"Analysis window: hann, hamming, blackman, blackmannuttall, bartletthann, lanczos, nuttall")
	flags.StringVar(&options.Transform, "transform", config.DefaultTransform,
		"Transform implementation: radix2 or gonum")

	flags.Float64VarP(&options.Gate, "gate", "g", config.DefaultGateThreshold,
		"Noise gate threshold as a fraction of full scale (0 disables the gate)")

	// Recording Configuration
	flags.BoolVarP(&options.Record, "record", "r", false,
		"Record audio from the specified input device")
	flags.StringVarP(&options.Output, "output", "o", "",
		"Output file name. Default is <output_dir>/recording-DD-MM-YYYY-HHMMSS.wav")

	// Display Configuration
	flags.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")
	flags.BoolVarP(&options.TUIMode, "tui", "t", false,
		"Use the terminal interface")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// Help and version exit without running a command.
	if !options.ran {
		return nil, nil
	}
	return options, nil
}

// overrideFlags are the flags that override configuration values.
var overrideFlags = []string{"device", "sample-rate", "block-size", "reference", "window", "transform", "gate", "record", "output", "verbose"}

// Changed reports whether the named flag was given on the command line.
func (o *Options) Changed(name string) bool {
	return o.changed[name]
}

// LoadConfig loads the configuration file and applies explicit flags on
// top of it, then validates the result.
func (o *Options) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	if o.Changed("device") {
		cfg.Audio.InputDevice = o.DeviceID
	}
	if o.Changed("sample-rate") {
		cfg.Audio.SampleRate = o.SampleRate
	}
	if o.Changed("block-size") {
		cfg.Audio.BlockSize = o.BlockSize
	}
	if o.Changed("reference") {
		cfg.Tuning.ReferenceHz = o.Reference
	}
	if o.Changed("window") {
		cfg.Audio.Window = o.Window
	}
	if o.Changed("transform") {
		cfg.Tuning.Transform = o.Transform
	}
	if o.Changed("gate") {
		cfg.Gate.Enabled = o.Gate > 0
		cfg.Gate.Threshold = o.Gate
	}
	if o.Changed("record") || o.Changed("output") {
		cfg.Recording.Enabled = o.Record || o.Output != ""
	}
	if o.Verbose {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command line: %w", err)
	}
	return cfg, nil
}

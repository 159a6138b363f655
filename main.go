package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/pflag"
)

type CliCommand struct {
	fn       func(args []string) error
	flagset  *pflag.FlagSet
	argsdesc string // argument description
	desc     string
}

// Describes how to use a given command.
func PrintCmdUsage(name string, cmd CliCommand) {
	fmt.Printf("%s %s - %s\n", name, cmd.argsdesc, cmd.desc)
	if cmd.flagset.HasFlags() {
		fmt.Print(cmd.flagset.FlagUsages())
	}
}

func PrintUsage(commands map[string]CliCommand) {
	fmt.Println()
	fmt.Println("Usage: segbin <command> [arguments]")
	fmt.Println("Commands available:")

	names := []string{}
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("    %-10s %s\n", name, cmd.desc)
	}
}

// Build the conversion config from an optional config file plus flag
// overrides.
func buildConfig(fs *pflag.FlagSet, configPath, codec, sidecar string,
	padding uint8, compat bool) (*Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if fs.Changed("codec") {
		for i := range cfg.Slots {
			cfg.Slots[i].Codec = codec
		}
	}
	if fs.Changed("padding") {
		cfg.Padding = padding
	}
	if fs.Changed("sidecar") {
		cfg.Sidecar = sidecar
	}
	if fs.Changed("compat") {
		cfg.Compatibility = compat
	}
	return cfg, nil
}

// Convert reads the code file at inputPath and writes the flat image to
// outputPath. On any failure the output file is removed, so later build
// steps can detect the failure by its absence.
func Convert(inputPath, outputPath string, cfg *Config, verify, verbose bool) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("could not open input file %q for reading: %w", inputPath, err)
	}
	defer in.Close()

	session, err := NewSession(cfg, NewRecordReader(in))
	if err != nil {
		return err
	}
	session.verify = verify
	session.verbose = verbose

	if cfg.Sidecar != "" {
		sidecar, err := os.OpenFile(cfg.Sidecar, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("could not open sidecar file %q: %w", cfg.Sidecar, err)
		}
		defer sidecar.Close()
		session.sidecar = sidecar
	}

	if err := session.Convert(); err != nil {
		os.Remove(outputPath)
		return err
	}
	return os.WriteFile(outputPath, session.Image().Bytes(), 0644)
}

// Stats runs the conversion in memory only and prints the report, with
// optional histogram output.
func Stats(inputPath string, cfg *Config, graphPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("could not open input file %q for reading: %w", inputPath, err)
	}
	defer in.Close()

	session, err := NewSession(cfg, NewRecordReader(in))
	if err != nil {
		return err
	}
	session.report.keepData = true

	stats := NewPackStats()
	for _, slot := range session.slots {
		if ts, ok := slot.codec.(tokenStatser); ok {
			ts.trackStats(stats)
		}
	}

	if err := session.Convert(); err != nil {
		return err
	}
	session.Report().Print(os.Stdout, session.Image().MaxAddress())
	fmt.Printf("Matches: %d of %d tokens\n", stats.numMatches, stats.numTokens)

	if graphPath != "" {
		return renderHistogram(graphPath, "match lengths", stats.lenMap)
	}
	return nil
}

func main() {
	convertFlags := pflag.NewFlagSet("convert", pflag.ExitOnError)
	statsFlags := pflag.NewFlagSet("stats", pflag.ExitOnError)
	helpFlags := pflag.NewFlagSet("help", pflag.ExitOnError)

	convOptConfig := convertFlags.String("config", "", "YAML config file with slot descriptors")
	convOptCodec := convertFlags.String("codec", "kosinski", "codec for all reservation slots")
	convOptPadding := convertFlags.Uint8("padding", 0, "padding byte for gaps between segments")
	convOptSidecar := convertFlags.String("sidecar", "", "file to append measured compressed sizes to")
	convOptCompat := convertFlags.Bool("compat", false, "overwrite the reserved segment instead of appending")
	convOptVerify := convertFlags.Bool("verify", false, "decode each compressed run and compare")
	convOptVerbose := convertFlags.Bool("verbose", false, "verbose output")

	statsOptConfig := statsFlags.String("config", "", "YAML config file with slot descriptors")
	statsOptCodec := statsFlags.String("codec", "kosinski", "codec for all reservation slots")
	statsOptGraph := statsFlags.String("graph", "", "write a match-length histogram SVG here")

	var commands map[string]CliCommand

	cmdConvert := func(args []string) error {
		convertFlags.Parse(args)
		files := convertFlags.Args()
		if len(files) != 2 {
			fmt.Println("'convert' command: expected <input> <output> arguments")
			os.Exit(1)
		}
		cfg, err := buildConfig(convertFlags, *convOptConfig, *convOptCodec,
			*convOptSidecar, *convOptPadding, *convOptCompat)
		if err != nil {
			return err
		}
		return Convert(files[0], files[1], cfg, *convOptVerify, *convOptVerbose)
	}

	cmdStats := func(args []string) error {
		statsFlags.Parse(args)
		files := statsFlags.Args()
		if len(files) != 1 {
			fmt.Println("'stats' command: expected <input> argument")
			os.Exit(1)
		}
		cfg, err := buildConfig(statsFlags, *statsOptConfig, *statsOptCodec, "", 0, false)
		if err != nil {
			return err
		}
		return Stats(files[0], cfg, *statsOptGraph)
	}

	cmdHelp := func(args []string) error {
		helpFlags.Parse(args)
		names := helpFlags.Args()
		if len(names) > 0 {
			cmd, pres := commands[names[0]]
			if !pres {
				fmt.Println("error: unknown command for help")
				PrintUsage(commands)
				os.Exit(1)
			}
			PrintCmdUsage(names[0], cmd)
		} else {
			PrintUsage(commands)
		}
		return nil
	}

	commands = map[string]CliCommand{
		"convert": {cmdConvert, convertFlags, "<input> <output>", "convert a code file to a flat binary"},
		"stats":   {cmdStats, statsFlags, "<input>", "convert in memory and report compression stats"},
		"help":    {cmdHelp, helpFlags, "", "list commands or describe a single command"},
	}

	if len(os.Args) < 2 {
		fmt.Println("error: expected a command")
		PrintUsage(commands)
		os.Exit(1)
	}

	cmd, pres := commands[os.Args[1]]
	if !pres {
		fmt.Println("error: unknown command")
		PrintUsage(commands)
		os.Exit(1)
	}

	err := cmd.fn(os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}

// Command prototool manages the prototype cache from the command line —
// the framework's equivalent of artisan's cache housekeeping commands.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/shomsy/foundation/framework/config"
	"github.com/shomsy/foundation/framework/prototype"
)

// CLI is the root command configuration with subcommands.
type CLI struct {
	Dir      string     `kong:"short='d',help='Prototype cache directory. Defaults to PROTOTYPE_CACHE_DIR.'"`
	LogLevel string     `kong:"short='l',help='Log level',enum='debug,info,warn,error',default='info'"`
	List     ListCmd    `kong:"cmd,help='List cached classes'"`
	Inspect  InspectCmd `kong:"cmd,help='Print the cached blueprint of one class'"`
	Verify   VerifyCmd  `kong:"cmd,help='Validate every cached blueprint'"`
	Clear    ClearCmd   `kong:"cmd,help='Remove all cache entries'"`
	Stats    StatsCmd   `kong:"cmd,help='Show cache entry count'"`
}

func (c *CLI) cache() *prototype.FileCache {
	dir := c.Dir
	if dir == "" {
		dir = config.Load().Prototype.CacheDir
	}
	return prototype.NewFileCache(dir)
}

// ListCmd prints the class key of every cache entry.
type ListCmd struct{}

func (cmd *ListCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)
	for _, class := range cli.cache().Classes() {
		fmt.Println(class)
	}
	return nil
}

// InspectCmd prints one cached blueprint.
type InspectCmd struct {
	Class string `kong:"arg,help='Canonical class key to inspect'"`
}

func (cmd *InspectCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)
	cache := cli.cache()

	proto, err := cache.Get(cmd.Class)
	if err != nil {
		return fmt.Errorf("no cache entry for [%s]", cmd.Class)
	}

	fmt.Printf("class:        %s\n", proto.Class)
	fmt.Printf("instantiable: %v\n", proto.Instantiable)
	if proto.Constructor != nil {
		fmt.Printf("constructor:  %s\n", proto.Constructor.Name)
		for _, p := range proto.Constructor.Parameters {
			fmt.Printf("  %d. %s %s\n", p.Position, p.Name, describeParam(p))
		}
	}
	for _, prop := range proto.Properties {
		fmt.Printf("property:     %s type=%s required=%v\n", prop.Name, prop.Type, prop.Required)
	}
	for _, m := range proto.Methods {
		fmt.Printf("method:       %s (%d parameters)\n", m.Name, len(m.Parameters))
	}
	return nil
}

func describeParam(p prototype.ParameterPrototype) string {
	switch {
	case p.Variadic:
		return "..." + p.Type
	case p.Type != "":
		return p.Type
	case p.HasDefault:
		return fmt.Sprintf("default=%v", p.Default)
	default:
		return "untyped"
	}
}

// VerifyCmd validates every cached blueprint and reports per-class results.
type VerifyCmd struct{}

func (cmd *VerifyCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)
	cache := cli.cache()

	var protos []*prototype.ServicePrototype
	for _, class := range cache.Classes() {
		proto, err := cache.Get(class)
		if err != nil {
			slog.Warn("skipping unreadable cache entry", "class", class)
			continue
		}
		protos = append(protos, proto)
	}

	report := prototype.NewVerifier().ValidateBatch(protos)
	for class, reason := range report.Invalid {
		fmt.Printf("INVALID %s: %s\n", class, reason)
	}
	fmt.Println(report.Summary())

	if len(report.Invalid) > 0 {
		return fmt.Errorf("%d invalid prototype(s)", len(report.Invalid))
	}
	return nil
}

// ClearCmd removes every cache entry.
type ClearCmd struct{}

func (cmd *ClearCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)
	cache := cli.cache()

	n := cache.Count()
	if err := cache.Clear(); err != nil {
		return err
	}
	fmt.Printf("removed %d entries from %s\n", n, cache.Dir())
	return nil
}

// StatsCmd prints the entry count.
type StatsCmd struct{}

func (cmd *StatsCmd) Run(cli *CLI) error {
	setupLogger(cli.LogLevel)
	cache := cli.cache()
	fmt.Printf("%s: %d entries\n", cache.Dir(), cache.Count())
	return nil
}

func setupLogger(level string) {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})))
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("prototool"),
		kong.Description("Inspect and maintain the class prototype cache."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}

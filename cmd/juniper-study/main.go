// Command juniper-study loads a directory of study modules and answers
// scripture reference and word searches from the command line, or serves
// them over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/internal/archive"
	"github.com/FocuswithJustin/JuniperStudy/internal/config"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
	"github.com/FocuswithJustin/JuniperStudy/internal/server"
	"github.com/FocuswithJustin/JuniperStudy/internal/services"
	"github.com/FocuswithJustin/JuniperStudy/internal/sqlite"
	"github.com/FocuswithJustin/JuniperStudy/internal/validation"
)

const version = "0.1.0"

// stdout receives command output.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for juniper-study.
var CLI struct {
	// Global flags override the environment and the env file.
	Library   string `name:"library" short:"l" help:"Module directory" type:"path"`
	Bible     string `name:"bible" short:"b" help:"Default bible for citations"`
	EnvFile   string `name:"env-file" help:"Env file read before the environment" default:".env"`
	LogLevel  string `name:"log-level" help:"debug, info, warn or error"`
	LogFormat string `name:"log-format" help:"text or json"`
	Workers   int    `name:"workers" help:"Search workers (0 uses every CPU)"`

	Refs    RefsCmd    `cmd:"" help:"Parse citations into OSIS references"`
	Search  SearchCmd  `cmd:"" help:"Search the library"`
	Modules ModulesCmd `cmd:"" help:"List loaded modules"`
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP and websocket API"`
	Bundle  BundleCmd  `cmd:"" help:"Pack a directory of modules into a .tar.xz or .tar.gz bundle"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// loadConfig layers the global flags over config.Load.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		return nil, err
	}
	if CLI.Library != "" {
		cfg.LibraryPath = CLI.Library
	}
	if CLI.Bible != "" {
		cfg.DefaultBible = CLI.Bible
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		cfg.LogFormat = CLI.LogFormat
	}
	if CLI.Workers != 0 {
		cfg.Workers = CLI.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.InitLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func startLoading(ctx context.Context, cfg *config.Config) *library.Handle {
	handle := library.NewHandle()
	handle.StartLoading(ctx, library.DirLoader(cfg.LibraryPath, library.Options{NotebookDSN: cfg.NotebookDSN}))
	return handle
}

// openService loads the library and waits for it.
func openService(ctx context.Context) (*services.StudyService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	handle := startLoading(ctx, cfg)
	if _, err := handle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", cfg.LibraryPath, err)
	}
	return services.NewStudyService(handle, cfg), nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RefsCmd prints the references found in citation text.
type RefsCmd struct {
	Text []string `arg:"" help:"Citation text, e.g. \"John 3:16; Rom 8\""`
	JSON bool     `name:"json" help:"Print JSON"`
}

func (c *RefsCmd) Run() error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	text := strings.Join(c.Text, " ")
	refs, err := svc.References(text, "")
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(server.ReferencesResponse{Query: text, References: refs})
	}
	for _, r := range refs {
		fmt.Fprintln(stdout, r.OSIS)
	}
	return nil
}

// SearchCmd runs one search and prints a page of rendered hits.
type SearchCmd struct {
	Query     string   `arg:"" optional:"" help:"\"citations :: query\" or a bare query"`
	Citations string   `name:"citations" short:"c" help:"Restrict to these citations"`
	Modules   []string `name:"modules" short:"m" sep:"," help:"Modules to search (default: all)"`
	Mode      string   `name:"mode" help:"title, body or title_and_body"`
	Page      int      `name:"page" help:"Zero-based page index"`
	Size      int      `name:"size" help:"Hits per page"`
	All       bool     `name:"all" help:"Print every page from --page on"`
	Strongs   bool     `name:"strongs" help:"Show every Strong's number of tagged words"`
	JSON      bool     `name:"json" help:"Print JSON responses"`
}

func (c *SearchCmd) request() *services.SearchRequest {
	req := &services.SearchRequest{
		Query:       c.Query,
		Citations:   c.Citations,
		Mode:        c.Mode,
		Page:        c.Page,
		Size:        c.Size,
		Render:      true,
		ShowStrongs: c.Strongs,
	}
	for _, m := range c.Modules {
		if m = strings.TrimSpace(m); m != "" {
			req.Modules = append(req.Modules, bible.ModuleID(m))
		}
	}
	return req
}

func (c *SearchCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	req := c.request()
	if !c.All {
		resp, err := svc.Search(ctx, req)
		if err != nil {
			return err
		}
		return c.print(resp)
	}
	return svc.SearchPages(ctx, req, c.print)
}

func (c *SearchCmd) print(resp *services.SearchResponse) error {
	if c.JSON {
		return writeJSON(resp)
	}
	p := resp.Page
	if p.Total == 0 {
		fmt.Fprintln(stdout, "No results.")
		return nil
	}
	fmt.Fprintf(stdout, "Page %d of %d (%d results)\n", p.PageIndex+1, p.PageCount, p.Total)
	for _, r := range resp.Results {
		fmt.Fprintf(stdout, "\n%s\n  %s\n", r.Title, r.Text)
	}
	return nil
}

// ModulesCmd lists the loaded modules.
type ModulesCmd struct {
	JSON bool `name:"json" help:"Print JSON"`
}

func (c *ModulesCmd) Run() error {
	svc, err := openService(context.Background())
	if err != nil {
		return err
	}
	mods, err := svc.Modules()
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(server.ModulesResponse{Modules: mods})
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME\tHASH")
	for _, m := range mods {
		hash := m.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Kind, m.Name, hash)
	}
	return w.Flush()
}

// ServeCmd serves the API. The library loads in the background; requests
// made before it is ready get the loading status.
type ServeCmd struct {
	Listen string `name:"listen" help:"Listen address (default from JUNIPER_LISTEN_ADDR)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.ListenAddr = c.Listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := startLoading(ctx, cfg)
	svc := services.NewStudyService(handle, cfg)
	return server.New(cfg, svc).Run(ctx)
}

// BundleCmd packs the module files of a directory into one bundle that
// the loader reads like a directory.
type BundleCmd struct {
	Dir string `arg:"" help:"Directory of module files" type:"existingdir"`
	Out string `arg:"" help:"Output bundle (.tar.xz or .tar.gz)" type:"path"`
}

func (c *BundleCmd) Run() error {
	switch validation.FormatFromName(c.Out) {
	case validation.FormatTarXZ, validation.FormatTarGZ:
	default:
		return fmt.Errorf("bundle name %q must end in .tar.xz or .tar.gz", c.Out)
	}
	if err := validation.ValidateFilename(filepath.Base(c.Out)); err != nil {
		return fmt.Errorf("invalid output name: %w", err)
	}
	if err := archive.CreateBundleFromDir(c.Dir, c.Out); err != nil {
		return err
	}
	logging.Info("bundle written", "path", c.Out)
	fmt.Fprintf(stdout, "Wrote %s\n", c.Out)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "juniper-study version %s\n", version)
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "sqlite driver: %s (%s)\n", info.Package, info.DriverType)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("juniper-study"),
		kong.Description("Juniper Study - scripture reference and word search"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docfill/internal/access"
	"docfill/internal/config"
	"docfill/internal/converter"
	"docfill/internal/docx"
	"docfill/internal/httpapi"
	"docfill/internal/pipeline"
	"docfill/internal/resolver"
	"docfill/internal/scanner"
	"docfill/internal/scorer"
	"docfill/internal/storage"
	"docfill/internal/values"
	"docfill/internal/vessel"
)

var (
	rootCmd = &cobra.Command{
		Use:   "docfill",
		Short: "Fill placeholder tokens in shipping documents",
		Long: `docfill scans Word templates for placeholder tokens like {vessel_name}
or [Seller Company], resolves every token to a realistic value, substitutes
the values without breaking formatting, scores the result and renders it
to the requested formats.

Signature and seal placeholders are left for hand completion.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cfgPath string
	dbPath  string
	verbose bool
	logger  *zap.Logger

	fillFormats  string
	fillVessel   string
	fillOut      string
	batchFormats string
	batchOut     string
	watchFormats string
	watchOut     string
	addOwner     string
	addName      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite store (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	fillCmd.Flags().StringVar(&fillFormats, "formats", "docx,pdf", "Comma-separated output formats (docx, pdf, txt)")
	fillCmd.Flags().StringVar(&fillVessel, "vessel", "", "IMO number of a registry vessel to fill from")
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "", "Output directory (default: next to the template)")
	batchCmd.Flags().StringVar(&batchFormats, "formats", "docx,pdf", "Comma-separated output formats")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "filled", "Output directory")
	watchCmd.Flags().StringVar(&watchFormats, "formats", "docx,pdf", "Comma-separated output formats")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory (default: from config)")
	templatesAddCmd.Flags().StringVar(&addOwner, "owner", "local", "Owner recorded for the template")
	templatesAddCmd.Flags().StringVar(&addName, "name", "", "Display name (default: the file name)")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesListCmd)
}

// app bundles the wired components a command needs.
type app struct {
	cfg      *config.Config
	engine   *pipeline.Engine
	chain    *converter.Chain
	registry *vessel.Registry
	store    *storage.SQLiteStore
	ctrl     *access.PlanController
}

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		if _, err := os.Stat("docfill.yaml"); err == nil {
			path = "docfill.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg, nil
}

// initApp wires the fill engine. withStore opens the SQLite store and the
// plan controller on top of it; local one-shot commands skip both.
func initApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: cfg}

	// 1. Value generators: AI first when a key is configured, synthetic
	// fallback always.
	var primary values.Generator
	if cfg.AI.APIKey != "" {
		primary, err = values.NewGenerator(ctx, values.GeneratorOptions{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AI generator: %w", err)
		}
	}
	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	res := resolver.New(primary, values.NewSyntheticGenerator(), aiTimeout, logger)

	// 2. Conversion chain
	convTimeout := time.Duration(cfg.Convert.TimeoutSeconds) * time.Second
	a.chain = converter.NewChain(logger,
		converter.NewLibreOffice(cfg.Convert.Soffice, convTimeout, logger),
		converter.NewUnoconv(cfg.Convert.Unoconv, convTimeout, logger),
	)

	// 3. Vessel registry
	if cfg.Vessels.RegistryPath != "" {
		a.registry, err = vessel.LoadFile(cfg.Vessels.RegistryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load vessel registry: %w", err)
		}
	}

	// 4. Store and access control
	var engineStore storage.Store
	var engineCtrl access.Controller
	if withStore {
		a.store, err = storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		a.ctrl = access.NewPlanController(access.Options{
			Plans:       cfg.Access.Plans,
			DefaultPlan: cfg.Access.DefaultPlan,
			UserPlans:   cfg.Access.UserPlans,
		}, a.store)
		engineStore = a.store
		engineCtrl = a.ctrl
	}

	a.engine = pipeline.NewEngine(engineStore, engineCtrl, res, a.chain, a.registry, logger)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func parseFormats(s string) ([]converter.Format, error) {
	var formats []converter.Format
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		format, err := converter.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n🛑 Shutting down...")
		cancel()
	}()
	return ctx, cancel
}

var fillCmd = &cobra.Command{
	Use:   "fill [template.docx]",
	Short: "Fill a single template and render it locally",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		a, err := initApp(ctx, false)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		formats, err := parseFormats(fillFormats)
		if err != nil {
			log.Fatalf("Invalid formats: %v", err)
		}

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read template: %v", err)
		}

		// 1. Vessel data, when requested
		var known map[string]string
		if fillVessel != "" {
			if a.registry == nil {
				log.Fatalf("No vessel registry configured (set vessels.registry_path)")
			}
			profile, ok := a.registry.Lookup(fillVessel)
			if !ok {
				log.Fatalf("Vessel %s not found in the registry", fillVessel)
			}
			known = profile.Values()
			fmt.Printf("🚢 Using registry data for %s\n", profile.Name)
		}

		// 2. Fill
		fmt.Printf("📄 Filling %s...\n", path)
		res, quality, err := a.engine.FillDocument(ctx, uuid.NewString(), data, known)
		if err != nil {
			log.Fatalf("Fill failed: %v", err)
		}
		fmt.Printf("✅ Resolved %d value(s), quality %d/100 (%s)\n",
			len(res.ResolvedValues), quality.Score, quality.Tier)
		for _, issue := range res.Issues {
			fmt.Printf("  ⚠️  %s: %q\n", issue.Kind, issue.Excerpt)
		}

		// 3. Render each requested format
		outDir := fillOut
		if outDir == "" {
			outDir = filepath.Dir(path)
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, format := range formats {
			outcome, err := a.chain.Convert(ctx, res.DocumentBytes, format)
			if err != nil {
				log.Fatalf("Conversion failed: %v", err)
			}
			name := base + "_filled." + outcome.Format.Extension()
			if outcome.Degraded {
				name = base + "_fallback.txt"
			}
			target := filepath.Join(outDir, name)
			if err := os.WriteFile(target, outcome.Bytes, 0644); err != nil {
				log.Fatalf("Failed to write %s: %v", target, err)
			}
			if outcome.Degraded {
				fmt.Printf("⚠️  %s: no converter available, wrote plain text %s\n", format, target)
				for _, attempt := range outcome.Attempts {
					fmt.Printf("     %s: %s\n", attempt.Backend, attempt.Error)
				}
			} else {
				fmt.Printf("💾 %s -> %s (via %s)\n", format, target, outcome.ConverterUsed)
			}
		}
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Fill every template in a directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := initApp(ctx, false)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		formats, err := parseFormats(batchFormats)
		if err != nil {
			log.Fatalf("Invalid formats: %v", err)
		}

		fmt.Printf("📂 Processing templates in %s...\n", args[0])
		reports, err := a.engine.RunBatch(ctx, args[0], batchOut, formats)
		if err != nil {
			log.Fatalf("Batch failed: %v", err)
		}

		failed := 0
		scoreSum := 0
		for _, report := range reports {
			if report.Err != nil {
				failed++
				fmt.Printf("❌ %s: %v\n", report.Path, report.Err)
				continue
			}
			scoreSum += report.Score
			fmt.Printf("✅ %s: quality %d/100, %d output(s)\n", report.Path, report.Score, len(report.Outputs))
		}
		if ok := len(reports) - failed; ok > 0 {
			fmt.Printf("🎉 Done: %d processed (average quality %d/100), %d failed. Outputs in %s\n",
				ok, scoreSum/ok, failed, batchOut)
		} else {
			fmt.Printf("🎉 Done: 0 processed, %d failed.\n", failed)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch an inbox directory and fill documents as they arrive",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := initApp(ctx, false)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		formats, err := parseFormats(watchFormats)
		if err != nil {
			log.Fatalf("Invalid formats: %v", err)
		}

		inbox := a.cfg.Watch.Inbox
		if len(args) > 0 {
			inbox = args[0]
		}
		outDir := watchOut
		if outDir == "" {
			outDir = a.cfg.Watch.OutputDir
		}
		if err := os.MkdirAll(inbox, 0755); err != nil {
			log.Fatalf("Failed to create inbox: %v", err)
		}

		fmt.Printf("👀 Watching %s, outputs go to %s\n", inbox, outDir)
		w := pipeline.NewWatcher(a.engine, inbox, outDir, formats, logger)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Watcher failed: %v", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the template and fill API over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := initApp(ctx, true)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer a.close()

		fmt.Printf("🌐 Serving on %s (store: %s)\n", a.cfg.Server.Addr, a.cfg.Storage.Path)
		srv := httpapi.NewServer(a.engine, a.store, a.ctrl, a.ctrl, a.cfg.Server.Addr, logger)
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score [document.docx | dir]",
	Short: "Score how completely a document was filled",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := os.Stat(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}
		if info.IsDir() {
			scoreDirectory(args[0])
			return
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read document: %v", err)
		}
		report, err := scorer.ScoreDocument(data)
		if err != nil {
			log.Fatalf("Failed to score document: %v", err)
		}

		fmt.Printf("📊 Quality: %d/100 (%s)\n", report.Score, report.Tier)
		if report.UnresolvedCount > 0 {
			fmt.Printf("  -> %d unresolved placeholder(s)\n", report.UnresolvedCount)
			for category, count := range report.CategoryBreakdown {
				fmt.Printf("     %s: %d\n", category, count)
			}
		}
		if report.MalformedCount > 0 {
			fmt.Printf("  -> %d malformed fragment(s)\n", report.MalformedCount)
		}
		if report.Score == 100 {
			fmt.Println("✅ Document is clean.")
		}
	},
}

func scoreDirectory(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Failed to read directory: %v", err)
	}

	count := 0
	sum := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".docx") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", entry.Name(), err)
			continue
		}
		report, err := scorer.ScoreDocument(data)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", entry.Name(), err)
			continue
		}
		count++
		sum += report.Score
		fmt.Printf("%3d/100 (%s)  %s\n", report.Score, report.Tier, entry.Name())
	}

	if count == 0 {
		fmt.Println("No .docx documents found.")
		return
	}
	fmt.Printf("📊 %d document(s), average %d/100\n", count, sum/count)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage stored templates",
}

var templatesAddCmd = &cobra.Command{
	Use:   "add [template.docx]",
	Short: "Store a template in the local database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		a, err := initApp(ctx, true)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer a.close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read template: %v", err)
		}
		doc, err := docx.Open(data)
		if err != nil {
			log.Fatalf("Not a word document: %v", err)
		}

		named, cleanup, _ := scanner.Normalize(scanner.Scan(doc.Text()))
		seen := make(map[string]bool)
		var names []string
		for _, tok := range named {
			if !seen[tok.Name] {
				seen[tok.Name] = true
				names = append(names, tok.Name)
			}
		}

		name := addName
		if name == "" {
			name = filepath.Base(args[0])
		}
		id := uuid.NewString()
		if _, err := a.store.PutBlob(ctx, pipeline.TemplateKey(id), data); err != nil {
			log.Fatalf("Failed to store template: %v", err)
		}
		record := storage.Record{
			"name":            name,
			"owner":           addOwner,
			"uploaded_at":     time.Now().UTC().Format(time.RFC3339),
			"tokens":          names,
			"malformed_count": len(cleanup),
		}
		if err := a.store.PutMetadata(ctx, pipeline.TemplateKey(id), record); err != nil {
			log.Fatalf("Failed to store template metadata: %v", err)
		}

		fmt.Printf("✅ Stored %s as %s\n", name, id)
		fmt.Printf("   %d placeholder(s): %s\n", len(names), strings.Join(names, ", "))
		if len(cleanup) > 0 {
			fmt.Printf("   ⚠️  %d malformed fragment(s) will be removed on fill\n", len(cleanup))
		}
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		a, err := initApp(ctx, true)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer a.close()

		entries, err := a.store.ListMetadata(ctx, "templates/")
		if err != nil {
			log.Fatalf("Failed to list templates: %v", err)
		}
		if len(entries) == 0 {
			fmt.Println("No templates stored.")
			return
		}

		for _, e := range entries {
			id := strings.TrimPrefix(e.Key, "templates/")
			name, _ := e.Record["name"].(string)
			owner, _ := e.Record["owner"].(string)
			uploaded, _ := e.Record["uploaded_at"].(string)
			fmt.Printf("%s  %-30s  owner=%s  %s\n", id, name, owner, uploaded)
		}
	},
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/DreamCats/docqa/cmd/docqa/internal"
	"github.com/DreamCats/docqa/internal/config"
	"github.com/DreamCats/docqa/internal/embedding"
	"github.com/DreamCats/docqa/internal/generation"
	"github.com/DreamCats/docqa/internal/indexer"
	"github.com/DreamCats/docqa/internal/progress"
	"github.com/DreamCats/docqa/internal/session"
)

// main 解析参数、加载配置与文档，然后进入交互式问答循环。
func main() {
	fs := flag.NewFlagSet("docqa", flag.ExitOnError)

	var configPath string
	var topK int
	var showVersion, showHelp, initConfig bool

	fs.StringVar(&configPath, "config", "", "Path to config file")
	fs.IntVar(&topK, "k", 0, "Number of chunks retrieved per question")
	fs.BoolVar(&initConfig, "init-config", false, "Write a config template and exit")
	fs.BoolVar(&showVersion, "v", false, "Show version information")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showHelp, "h", false, "Show this help message")
	fs.BoolVar(&showHelp, "help", false, "Show this help message")
	fs.Usage = internal.PrintUsage

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if showHelp {
		internal.PrintUsage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("docqa version %s\n", internal.Version)
		os.Exit(0)
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one document, got %d\n\n", fs.NArg())
		internal.PrintUsage()
		os.Exit(1)
	}

	if initConfig {
		handleInitConfig(configPath)
		return
	}

	envLoaded, err := internal.LoadDotEnv(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		if config.IsConfigNotFound(err) {
			internal.PrintConfigExample()
		}
		os.Exit(1)
	}

	if fs.NArg() == 1 {
		cfg.Document.Path = fs.Arg(0)
	}
	if topK < 0 {
		fmt.Fprintf(os.Stderr, "Error: -k must not be negative, got %d\n", topK)
		os.Exit(1)
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}

	if logPath, err := internal.SetupLogging(cfg.Document.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize log file: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Log file: %s\n", logPath)
	}
	if envLoaded {
		log.Printf("Loaded environment from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Fatal: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run 组装嵌入服务、生成器与索引，并在标准输入输出上运行问答会话。
func run(ctx context.Context, cfg *config.Config) error {
	creds, err := internal.ResolveCredentials(cfg)
	if err != nil {
		return err
	}

	embedService, err := embedding.NewService(&cfg.Embedding, creds.Embedding)
	if err != nil {
		return err
	}

	generator, err := generation.New(&cfg.Generator, creds.Generator)
	if err != nil {
		return err
	}

	log.Printf("Starting docqa document=%s embedding=%s/%s generator=%s/%s index=%s",
		cfg.Document.Path, cfg.Embedding.Provider, cfg.Embedding.Model,
		cfg.Generator.Provider, cfg.Generator.Model, cfg.Index.Backend)

	idx := indexer.New(cfg, embedService, indexer.Options{Progress: progress.DefaultEnabled()})
	corpus, err := idx.Build(ctx, cfg.Document.Path)
	if err != nil && !errors.Is(err, indexer.ErrEmptyCorpus) {
		return err
	}
	if errors.Is(err, indexer.ErrEmptyCorpus) {
		log.Printf("Warning: %v: %s", err, cfg.Document.Path)
		fmt.Fprintf(os.Stderr, "Warning: %s contains no text; every question will go unanswered\n", cfg.Document.Path)
	}
	defer corpus.Close()

	fmt.Println("no of chunks:", len(corpus.Chunks))
	fmt.Println("Index ready")

	sess, err := session.New(corpus.Retriever, generator, session.Options{
		ExitKeyword:   cfg.Session.ExitKeyword,
		K:             cfg.Retrieval.TopK,
		PreviewLength: cfg.Retrieval.PreviewLength,
		Language:      cfg.Session.Language,
	})
	if err != nil {
		return err
	}
	log.Printf("Session %s ready", sess.ID())

	if err := sess.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// handleInitConfig 在配置路径写入模板文件，已存在时不覆盖。
func handleInitConfig(configPath string) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	created, err := config.WriteDefaultTemplate(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Fprintf(os.Stderr, "Created default config at %s\n", path)
		return
	}
	fmt.Fprintf(os.Stderr, "Config already exists at %s\n", path)
}

// Package main is the kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hyperdoc/kotae/internal/chat"
	"github.com/hyperdoc/kotae/internal/config"
	"github.com/hyperdoc/kotae/internal/embedding"
	"github.com/hyperdoc/kotae/internal/extract"
	"github.com/hyperdoc/kotae/internal/llm"
	"github.com/hyperdoc/kotae/internal/search"
	"github.com/hyperdoc/kotae/internal/server"
	"github.com/hyperdoc/kotae/internal/store"
	"github.com/hyperdoc/kotae/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. When neither file exists, built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				return config.Load(fallback)
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	// .env is optional; API keys may come from the real environment.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "upload":
		runUpload()
	case "ask":
		runAsk()
	case "suggest":
		runSuggest()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	embedder, err := embedding.NewFromConfig(&cfg.Embedding)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	defer embedder.Close()

	chatClient, err := llm.NewFromConfig(&cfg.Chat)
	if err != nil {
		logger.Fatal("Failed to create chat client", zap.Error(err))
	}
	if _, demo := chatClient.(*llm.DemoClient); demo {
		logger.Warn("no API key found, chat runs in demo mode",
			zap.String("api_key_env", cfg.Chat.APIKeyEnv))
	}

	documents := store.New(embedder, logger)
	defer documents.Clear()
	retriever := search.NewRetriever(documents, embedder)
	assembler := chat.NewAssembler(retriever, chatClient, chat.Options{
		TopK:          cfg.Chat.TopK,
		MaxTokens:     cfg.Chat.MaxTokens,
		PreviewLength: cfg.Chat.PreviewLength,
	}, logger)

	srv := server.NewServer(documents, extract.NewExtractor(), assembler, embedder, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae upload [flags] <file.pdf>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pdf", filepath.Base(path))
	if err != nil {
		fmt.Printf("Failed to build upload: %v\n", err)
		os.Exit(1)
	}
	if _, err := part.Write(content); err != nil {
		fmt.Printf("Failed to build upload: %v\n", err)
		os.Exit(1)
	}
	_ = writer.Close()

	resp, err := http.Post(apiURL(*configPath, "/api/pdf/upload"), writer.FormDataContentType(), &body)
	if err != nil {
		fmt.Printf("Upload failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 2 {
		fmt.Println("Usage: kotae ask [flags] <documentId> <question...>")
		os.Exit(1)
	}
	documentID := fs.Arg(0)
	query := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))

	payload, _ := json.Marshal(map[string]any{
		"documentId": documentID,
		"query":      query,
	})
	resp, err := http.Post(apiURL(*configPath, "/api/chat"), "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Ask failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae suggest [flags] <documentId>")
		os.Exit(1)
	}
	resp, err := http.Get(apiURL(*configPath, "/api/chat/suggestions/"+fs.Arg(0)))
	if err != nil {
		fmt.Printf("Suggest failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae delete [flags] <documentId>")
		os.Exit(1)
	}
	req, err := http.NewRequest(http.MethodDelete, apiURL(*configPath, "/api/pdf/"+fs.Arg(0)), nil)
	if err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		os.Exit(1)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	resp, err := http.Get(apiURL(*configPath, "/api/status"))
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

// apiURL resolves the server base URL from config and joins it with path.
func apiURL(configPath, path string) string {
	host, port := "localhost", 5000
	if cfg, err := loadConfig(configPath); err == nil {
		host, port = cfg.Server.Host, cfg.Server.Port
	}
	return fmt.Sprintf("http://%s:%d%s", host, port, path)
}

// printResponse pretty-prints a JSON API response to stdout.
func printResponse(resp *http.Response) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Failed to read response: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
	} else {
		fmt.Println(pretty.String())
	}
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kotae - ask questions about your PDFs

Usage:
  kotae server [-config path] [-debug]     start the API server
  kotae upload [-config path] <file.pdf>   upload and vectorize a PDF
  kotae ask [-config path] <id> <query>    ask a question about a document
  kotae suggest [-config path] <id>        show suggested questions
  kotae delete [-config path] <id>         delete a document
  kotae status [-config path]              show server status
  kotae version                            print version
  kotae help                               show this help`)
}

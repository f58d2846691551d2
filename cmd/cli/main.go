package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arborist-labs/hnswgraph/pkg/blobstore"
	"github.com/arborist-labs/hnswgraph/pkg/hnsw"
	"github.com/arborist-labs/hnswgraph/pkg/logging"
	"github.com/arborist-labs/hnswgraph/pkg/parallel"
	"github.com/arborist-labs/hnswgraph/pkg/smallworld"
	"github.com/arborist-labs/hnswgraph/pkg/validation"
)

// vector is the item type this demo indexes: plain float64 coordinates
// under squared Euclidean distance (euclidean takes no square root).
type vector []float64

func euclidean(a, b vector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Config holds the flags this CLI was started with, validated once at
// startup via pkg/validation's fluent ConfigValidator.
type Config struct {
	Dim         int
	M           int
	EfConstruct int
	Workers     int
	Bucket      string
	Region      string
	Endpoint    string
}

func (c Config) Validate() error {
	return validation.NewConfigValidator("cli.Config").
		Positive("Dim", c.Dim).
		MinInt("M", c.M, 2).
		Positive("EfConstruct", c.EfConstruct).
		Positive("Workers", c.Workers).
		Validate()
}

type CLI struct {
	cfg     Config
	world   *smallworld.SmallWorld[vector, float64]
	scanner *bufio.Scanner
	nextID  atomic.Int64
	logger  logging.Logger

	// items mirrors the vectors handed to AddItems, positionally, so a
	// pulled stream can be bound back to the same items on DeserializeGraph.
	items []vector
	store *blobstore.Store
}

func main() {
	cfg := Config{Dim: 8, M: 16, EfConstruct: 200, Workers: 4}
	cfg.Dim = intFlag("dim", cfg.Dim)
	cfg.M = intFlag("m", cfg.M)
	cfg.EfConstruct = intFlag("ef", cfg.EfConstruct)
	cfg.Workers = intFlag("workers", cfg.Workers)
	cfg.Bucket = stringFlag("bucket", "hnsw-graphs")
	cfg.Region = stringFlag("region", "us-east-1")
	cfg.Endpoint = stringFlag("endpoint", "")

	if err := validation.ValidateConfig(cfg); err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	printBanner()

	params := hnsw.DefaultParameters()
	params.M = cfg.M
	params.ConstructionPruning = cfg.EfConstruct

	fmt.Printf("📂 Building empty index (dim=%d, M=%d, ef_construction=%d)...\n", cfg.Dim, cfg.M, cfg.EfConstruct)
	logger := logging.NewDefaultLogger()
	world, err := smallworld.Build[vector, float64](euclidean, hnsw.NewSystemRNG(), params, true)
	if err != nil {
		fmt.Printf("❌ Failed to build index: %v\n", err)
		os.Exit(1)
	}
	world.WithReporter(hnsw.NewLoggingReporter(logger))
	fmt.Println("✅ Index ready")
	fmt.Println()

	cli := &CLI{cfg: cfg, world: world, scanner: bufio.NewScanner(os.Stdin), logger: logger}

	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()

	cli.run()
}

func intFlag(name string, def int) int {
	for i, arg := range os.Args[1:] {
		if arg == "-"+name || arg == "--"+name {
			if i+2 < len(os.Args) {
				if v, err := strconv.Atoi(os.Args[i+2]); err == nil {
					return v
				}
			}
		}
		if strings.HasPrefix(arg, "-"+name+"=") || strings.HasPrefix(arg, "--"+name+"=") {
			parts := strings.SplitN(arg, "=", 2)
			if v, err := strconv.Atoi(parts[1]); err == nil {
				return v
			}
		}
	}
	return def
}

func stringFlag(name string, def string) string {
	for i, arg := range os.Args[1:] {
		if arg == "-"+name || arg == "--"+name {
			if i+2 < len(os.Args) {
				return os.Args[i+2]
			}
		}
		if strings.HasPrefix(arg, "-"+name+"=") || strings.HasPrefix(arg, "--"+name+"=") {
			return strings.SplitN(arg, "=", 2)[1]
		}
	}
	return def
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║  ██╗  ██╗███╗   ██╗███████╗██╗    ██╗                    ║
║  ██║  ██║████╗  ██║██╔════╝██║    ██║                    ║
║  ███████║██╔██╗ ██║███████╗██║ █╗ ██║                    ║
║  ██╔══██║██║╚██╗██║╚════██║██║███╗██║                    ║
║  ██║  ██║██║ ╚████║███████║╚███╔███╔╝                    ║
║  ╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝ ╚══╝╚══╝                     ║
║                                                           ║
║        Hierarchical Navigable Small World CLI             ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}

func (cli *CLI) run() {
	for {
		fmt.Print("hnsw> ")

		if !cli.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(cli.scanner.Text())
		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			fmt.Println("👋 Goodbye!")
			break
		}

		cli.executeCommand(input)
		fmt.Println()
	}
}

func (cli *CLI) executeCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "help":
		cli.showHelp()

	case "stats", "status":
		cli.showStats()

	case "insert", "i":
		cli.insertRandom(1)

	case "insertn":
		if len(parts) < 2 {
			fmt.Println("Usage: insertn <count>")
			return
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			fmt.Println("❌ count must be a positive integer")
			return
		}
		cli.insertRandom(n)

	case "search", "s":
		if len(parts) < 2 {
			fmt.Println("Usage: search <k> [coord...]")
			return
		}
		cli.search(parts[1:])

	case "get":
		if len(parts) < 2 {
			fmt.Println("Usage: get <id>")
			return
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			fmt.Println("❌ id must be an integer")
			return
		}
		cli.getItem(id)

	case "remove", "rm":
		if len(parts) < 2 {
			fmt.Println("Usage: remove <id>")
			return
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			fmt.Println("❌ id must be an integer")
			return
		}
		cli.remove(id)

	case "save":
		if len(parts) < 2 {
			fmt.Println("Usage: save <path>")
			return
		}
		cli.save(parts[1])

	case "push":
		if len(parts) < 2 {
			fmt.Println("Usage: push <key>")
			return
		}
		cli.push(parts[1])

	case "pull":
		if len(parts) < 2 {
			fmt.Println("Usage: pull <key>")
			return
		}
		cli.pull(parts[1])

	case "recall":
		n, k := 200, 5
		if len(parts) >= 2 {
			n, _ = strconv.Atoi(parts[1])
		}
		if len(parts) >= 3 {
			k, _ = strconv.Atoi(parts[2])
		}
		cli.recallBenchmark(n, k)

	case "clear":
		fmt.Print("\033[H\033[2J")

	default:
		fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n", command)
	}
}

func (cli *CLI) showHelp() {
	help := `
📖 Available Commands:

🔍 Query & Inspection:
  stats                 Show index statistics
  get <id>              Fetch the vector bound to an id
  search <k> [coords]   Find k nearest neighbors (random query if coords omitted)
  s <k> [coords]        Shorthand for search

🛠️  Data Manipulation:
  insert                Insert one random vector
  i                     Shorthand for insert
  insertn <count>       Insert <count> random vectors
  remove <id>           Tombstone an id
  rm <id>               Shorthand for remove

💾 Persistence:
  save <path>           Serialize the graph to a file
  push <key>            Serialize the graph and upload it to the S3 blobstore
  pull <key>            Download a graph from the S3 blobstore and load it

📊 Benchmarking:
  recall <n> <k>        Run a concurrent recall/QPS benchmark over n queries

🎮 Other:
  clear                 Clear screen
  help                  Show this help
  exit/quit             Exit the CLI
`
	fmt.Println(help)
}

func (cli *CLI) showStats() {
	fmt.Println("📊 Index Statistics:")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Live items: %d\n", cli.world.Len())
	fmt.Printf("  Dimension:  %d\n", cli.cfg.Dim)
	fmt.Printf("  M:          %d\n", cli.cfg.M)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

func (cli *CLI) randomVector() vector {
	v := make(vector, cli.cfg.Dim)
	for i := range v {
		v[i] = rand.Float64() * 100
	}
	return v
}

func (cli *CLI) insertRandom(n int) {
	items := make([]vector, n)
	for i := range items {
		items[i] = cli.randomVector()
	}

	start := time.Now()
	ids, err := cli.world.AddItems(context.Background(), items, nil)
	if err != nil {
		fmt.Printf("❌ AddItems failed: %v\n", err)
		return
	}
	cli.items = append(cli.items, items...)
	fmt.Printf("✅ Inserted %d items in %v (ids %d..%d)\n", len(ids), time.Since(start), ids[0], ids[len(ids)-1])
}

func (cli *CLI) search(args []string) {
	k, err := strconv.Atoi(args[0])
	if err != nil || k <= 0 {
		fmt.Println("❌ k must be a positive integer")
		return
	}

	var query vector
	if len(args) > 1 {
		query = make(vector, len(args)-1)
		for i, a := range args[1:] {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				fmt.Printf("❌ invalid coordinate %q\n", a)
				return
			}
			query[i] = f
		}
	} else {
		query = cli.randomVector()
	}

	start := time.Now()
	results, err := cli.world.KnnSearch(context.Background(), query, k, nil)
	if err != nil {
		fmt.Printf("❌ KnnSearch failed: %v\n", err)
		return
	}

	fmt.Printf("🔍 %d results in %v:\n", len(results), time.Since(start))
	for _, r := range results {
		fmt.Printf("  id=%-6d dist=%.4f  %v\n", r.ID, r.Distance, r.Item)
	}
}

func (cli *CLI) getItem(id int) {
	item, err := cli.world.GetItem(id)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("id=%d  %v\n", id, item)
}

func (cli *CLI) remove(id int) {
	if err := cli.world.RemoveItem(id); err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("🗑️  Removed id %d\n", id)
}

func (cli *CLI) save(path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	defer f.Close()

	if err := cli.world.SerializeGraph(f); err != nil {
		fmt.Printf("❌ SerializeGraph failed: %v\n", err)
		return
	}
	fmt.Printf("💾 Graph serialized to %s\n", path)
}

// blobstoreClient lazily builds the S3-compatible Store the first time a
// push or pull command needs one, so a startup with no AWS credentials
// configured doesn't block index construction.
func (cli *CLI) blobstoreClient(ctx context.Context) (*blobstore.Store, error) {
	if cli.store != nil {
		return cli.store, nil
	}
	store, err := blobstore.New(ctx, &blobstore.Config{
		Bucket:   cli.cfg.Bucket,
		Region:   cli.cfg.Region,
		Endpoint: cli.cfg.Endpoint,
	}, cli.logger)
	if err != nil {
		return nil, err
	}
	cli.store = store
	return store, nil
}

// push serializes the current graph and uploads it to the configured
// bucket under key, for later retrieval with pull.
func (cli *CLI) push(key string) {
	ctx := context.Background()
	store, err := cli.blobstoreClient(ctx)
	if err != nil {
		fmt.Printf("❌ blobstore unavailable: %v\n", err)
		return
	}

	var buf bytes.Buffer
	if err := cli.world.SerializeGraph(&buf); err != nil {
		fmt.Printf("❌ SerializeGraph failed: %v\n", err)
		return
	}
	if err := store.Push(ctx, key, &buf); err != nil {
		fmt.Printf("❌ push failed: %v\n", err)
		return
	}
	fmt.Printf("☁️  Graph pushed to s3://%s/%s\n", cli.cfg.Bucket, key)
}

// pull downloads a previously-pushed graph and replaces the in-memory
// index with it, binding the stream's node ids to cli.items by position.
func (cli *CLI) pull(key string) {
	ctx := context.Background()
	store, err := cli.blobstoreClient(ctx)
	if err != nil {
		fmt.Printf("❌ blobstore unavailable: %v\n", err)
		return
	}

	r, err := store.Pull(ctx, key)
	if err != nil {
		fmt.Printf("❌ pull failed: %v\n", err)
		return
	}
	defer r.Close()

	params := hnsw.DefaultParameters()
	params.M = cli.cfg.M
	params.ConstructionPruning = cli.cfg.EfConstruct

	restored, err := smallworld.DeserializeGraph[vector, float64](cli.items, euclidean, hnsw.NewSystemRNG(), params, r, true)
	if err != nil {
		fmt.Printf("❌ DeserializeGraph failed: %v\n", err)
		return
	}
	restored.WithReporter(hnsw.NewLoggingReporter(cli.logger))
	cli.world = restored
	fmt.Printf("☁️  Graph pulled from s3://%s/%s (%d live items)\n", cli.cfg.Bucket, key, cli.world.Len())
}

// recallBenchmark drives n concurrent KnnSearch calls through a worker pool
// sized to cfg.Workers, reporting QPS and self-recall@k.
func (cli *CLI) recallBenchmark(n, k int) {
	if cli.world.Len() == 0 {
		fmt.Println("❌ index is empty, insert items first")
		return
	}

	pool, err := parallel.NewWorkerPool(cli.cfg.Workers)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	defer pool.Close()

	var hits, misses atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < n; i++ {
		id := i
		wg.Add(1)
		submitted := pool.Submit(func() {
			defer wg.Done()
			item, err := cli.world.GetItem(id % max(1, cli.world.Len()))
			if err != nil {
				return
			}
			results, err := cli.world.KnnSearch(context.Background(), item, k, nil)
			if err != nil {
				return
			}
			for _, r := range results {
				if r.Distance == 0 {
					hits.Add(1)
					return
				}
			}
			misses.Add(1)
		})
		if !submitted {
			wg.Done()
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := hits.Load() + misses.Load()
	recall := 0.0
	if total > 0 {
		recall = float64(hits.Load()) / float64(total)
	}
	fmt.Printf("📊 %d queries in %v (%.0f qps), recall@%d=%.2f%%\n", total, elapsed, float64(total)/elapsed.Seconds(), k, recall*100)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Command ferrodb runs the buffer pool's server, client REPL, or a
// standalone client+server pairing in a single process.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chzyer/readline"

	"github.com/ferrodb/ferrodb/internal/client"
	"github.com/ferrodb/ferrodb/internal/config"
	"github.com/ferrodb/ferrodb/internal/file"
	"github.com/ferrodb/ferrodb/internal/page"
	"github.com/ferrodb/ferrodb/internal/protocol"
	"github.com/ferrodb/ferrodb/internal/server"
	"github.com/ferrodb/ferrodb/internal/util"
)

func main() {
	var (
		mode        = flag.String("mode", "server", "server | client | standalone")
		cfgPath     = flag.String("config", "ferrodb.yaml", "path to ferrodb yaml config")
		addr        = flag.String("addr", "", "override server address (client mode)")
		transportFl = flag.String("transport", "json", "wire transport to announce: json | gob | snappy (client/standalone mode)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Storage.Workdir, 0o755); err != nil {
		log.Fatalf("create workdir: %v", err)
	}

	bm := installGlobalManager(cfg)

	switch *mode {
	case "server":
		if err := runServer(cfg, bm); err != nil {
			log.Fatalf("server error: %v", err)
		}
	case "client":
		transport, err := protocol.ParseTransport(*transportFl)
		if err != nil {
			log.Fatalf("client error: %v", err)
		}
		target := cfg.Addr()
		if *addr != "" {
			target = *addr
		}
		if err := runClient(target, transport); err != nil {
			log.Fatalf("client error: %v", err)
		}
	case "standalone":
		transport, err := protocol.ParseTransport(*transportFl)
		if err != nil {
			log.Fatalf("standalone error: %v", err)
		}
		if err := runStandalone(cfg, transport); err != nil {
			log.Fatalf("standalone error: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -mode %q (want server|client|standalone)\n", *mode)
		os.Exit(1)
	}
}

// installGlobalManager installs the process-wide page.Manager and, for the
// buffered pool kind, returns it too so the stats server can report
// occupancy without poking at the hidden global.
func installGlobalManager(cfg *config.Config) *page.BufferedManager {
	strategy := newStrategy(cfg.Storage.Replacement, cfg.Storage.PoolCapacity)

	if cfg.Storage.PoolKind == "unlimited" {
		page.Install(page.NewUnlimited(cfg.Storage.PageSize))
		return nil
	}

	bm := page.NewBuffered(cfg.Storage.PageSize, cfg.Storage.PoolCapacity, strategy)
	page.Install(bm)
	return bm
}

func newStrategy(name string, limit int) page.ReplacementStrategy {
	switch name {
	case "fifo":
		return page.NewFIFOStrategy(limit)
	case "random":
		return page.NewRandomStrategy(limit)
	case "clock":
		return page.NewClockStrategy(limit)
	case "noop":
		return page.NewNoOpStrategy(limit)
	default:
		return page.NewLRUStrategy(limit)
	}
}

// runServer listens for connections; each one announces its own transport
// in its preamble, so the server has nothing to configure here.
func runServer(cfg *config.Config, bm *page.BufferedManager) error {
	if bm != nil && cfg.Server.StatsPort != 0 {
		stats := server.NewStatsServer(fmt.Sprintf("127.0.0.1:%d", cfg.Server.StatsPort), bm)
		go func() {
			if err := stats.ListenAndServe(); err != nil {
				log.Printf("stats server: %v", err)
			}
		}()
	}

	return server.Loop(cfg.Addr())
}

func runClient(addr string, transport protocol.Transport) error {
	conn, err := client.Dial(addr, 5*time.Second, transport)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	fmt.Printf("connected to %s over %s transport\n", addr, conn.Transport)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ferrodb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("connection established; type \\q to quit")
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		switch line {
		case "\\q", "quit", "exit":
			return nil
		default:
			fmt.Println("no SQL session in this build")
		}
	}
}

func runStandalone(cfg *config.Config, transport protocol.Transport) error {
	serverSide, clientSide := util.DuplexPipe()

	done := make(chan error, 1)
	go func() { done <- server.Standalone(serverSide) }()

	conn, err := client.Handshake(clientSide, transport)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := <-done; err != nil {
		return err
	}

	fm := file.NewManager(cfg.Storage.Workdir, cfg.Storage.PageSize)
	id, err := fm.FileID("standalone.dat")
	if err != nil {
		return err
	}

	ref, err := fm.Clean(id, 0)
	if err != nil {
		return err
	}
	defer ref.Release()

	fmt.Println("standalone handshake ok, first page loaded")
	return nil
}

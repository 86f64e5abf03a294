package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/client"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/config"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/netmon"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/sync"
	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive storymap client: local store, transport,
// connectivity monitor and sync coordinator behind a REPL.
type App struct {
	config      *config.Config
	repos       *client.Repositories
	api         client.Client
	monitor     *netmon.Monitor
	coordinator *sync.Coordinator
	logger      logging.Logger

	email  string
	reader *bufio.Reader
}

// NewApp opens the local database and wires the client components. The
// monitor starts pessimistic; the first successful probe flips it online and
// triggers the coordinator's auto-sync.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.APIBaseURL)
	monitor := netmon.NewMonitor(false, logger)
	coordinator := sync.New(repos, api, monitor, logger)

	return &App{
		config:      c,
		repos:       repos,
		api:         api,
		monitor:     monitor,
		coordinator: coordinator,
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

// getStatus renders the prompt suffix: logged-in user plus connectivity.
func (a *App) getStatus() string {
	s := ""
	if a.email != "" {
		s = a.email + " "
	}
	if a.monitor.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run starts the connectivity watcher and the REPL, blocking until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.repos.Close(); err != nil {
			a.logger.Error(ctx, "error closing database", "error", err)
		}
	}()

	go a.monitor.Watch(ctx, a.api, a.config.OnlineCheckInterval, a.config.ProbeTimeout)

	fmt.Println("Welcome to Story Map CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/services"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/desertthunder/playtime/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	history    services.HistoryService
	metadata   services.MetadataService
	clock      tasks.Clock
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// History and Metadata are built from the config when nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	History    services.HistoryService
	Metadata   services.MetadataService
	Clock      tasks.Clock
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = tasks.SystemClock()
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		history:    opts.History,
		metadata:   opts.Metadata,
		clock:      opts.Clock,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		reportCommand, tuiCommand, cacheCommand, rulesCommand, runsCommand, serveCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. while a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// prepare applies the shared --config and --verbose flags.
//
// An explicitly passed config file must exist; the default path is optional.
func (r *Runner) prepare(cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return err
			}
			r.config = config
			r.configPath = path
			r.logger.Debug("loaded config", "path", path)
		} else if cmd.IsSet("config") {
			return fmt.Errorf("%w: config file %s not found", shared.ErrConfig, path)
		}
	}

	r.config.ApplyEnv()
	return nil
}

func (r *Runner) historyService() services.HistoryService {
	if r.history != nil {
		return r.history
	}
	lb := r.config.ListenBrainz
	return services.NewListenBrainzService(services.ListenBrainzOpts{
		BaseURL:           lb.BaseURL,
		User:              lb.User,
		Range:             lb.Range,
		UserAgent:         r.config.MusicBrainz.UserAgent,
		RequestsPerSecond: lb.RequestsPerSecond,
		HTTPClient:        r.httpClient,
	})
}

func (r *Runner) metadataService() services.MetadataService {
	if r.metadata != nil {
		return r.metadata
	}
	mb := r.config.MusicBrainz
	return services.NewMusicBrainzService(mb.BaseURL, mb.UserAgent, r.httpClient)
}

// openDatabase opens the configured SQLite database and applies pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openCache returns the configured cache backend. The returned database is nil for
// the files backend; callers close it when it is not.
func (r *Runner) openCache() (repositories.CacheStore, *sql.DB, error) {
	switch r.config.Cache.Backend {
	case shared.CacheBackendFiles:
		return repositories.NewFileCache(r.config.Cache.Dir), nil, nil
	default:
		db, err := r.openDatabase()
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewRecordingCacheRepository(db), db, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

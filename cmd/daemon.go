package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/aurion/internal/config"
	"github.com/theirongolddev/aurion/internal/daemon"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr    string
	flagDaemonDetach  bool
	flagDaemonRunFile string
	flagDaemonLogFile string
	flagDaemonOrigins []string
	flagDaemonChild   bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve the ledger over HTTP with live SSE/WebSocket streams",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonRunFile, "run-file", filepath.Join(config.CacheDir(), "auriond.json"),
		"File recording the running daemon's pid and address")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.CacheDir(), "auriond.log"),
		"Log file for detached mode")
	daemonCmd.Flags().StringSliceVar(&flagDaemonOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// runtimeFile records the pid and address of a running daemon so status and
// stop can find it.
type runtimeFile struct {
	path string
}

type daemonRuntime struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Database  string    `json:"database"`
}

func (f runtimeFile) read() (daemonRuntime, error) {
	var rt daemonRuntime
	//nolint:gosec // run file path is configured by the local user
	data, err := os.ReadFile(f.path)
	if err != nil {
		return rt, err
	}
	if err := json.Unmarshal(data, &rt); err != nil || rt.PID <= 0 {
		return rt, fmt.Errorf("malformed run file %s", f.path)
	}
	return rt, nil
}

func (f runtimeFile) write(rt daemonRuntime) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, append(data, '\n'), 0o600)
}

func (f runtimeFile) remove() { _ = os.Remove(f.path) }

// live returns the recorded daemon if its process still exists. A file left
// behind by a dead process is removed.
func (f runtimeFile) live() (daemonRuntime, bool) {
	rt, err := f.read()
	if err != nil {
		return rt, false
	}
	if !processAlive(rt.PID) {
		f.remove()
		return rt, false
	}
	return rt, true
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return appCfg.Daemon.Addr
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	rf := runtimeFile{path: flagDaemonRunFile}
	if rt, ok := rf.live(); ok {
		return fmt.Errorf("daemon already running (pid %d, %s)", rt.PID, rt.Addr)
	}

	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("--detach and --child are mutually exclusive")
	case flagDaemonDetach:
		return startDetached(cmd.OutOrStdout())
	}
	return serveDaemon(cmd.OutOrStdout(), rf)
}

// startDetached re-executes the current command line as a background child
// whose output goes to the daemon log file.
func startDetached(out io.Writer) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}
	args := slices.DeleteFunc(slices.Clone(os.Args[1:]), func(a string) bool {
		return a == "--detach" || strings.HasPrefix(a, "--detach=")
	})
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // re-executes the running binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting detached daemon: %w", err)
	}

	fmt.Fprintf(out, "  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Fprintf(out, "  API: http://%s/v1/status\n", daemonAddr())
	fmt.Fprintf(out, "  Log: %s\n", flagDaemonLogFile)
	return nil
}

func serveDaemon(out io.Writer, rf runtimeFile) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	addr := daemonAddr()
	if err := rf.write(daemonRuntime{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		Database:  databasePath(),
	}); err != nil {
		return err
	}
	defer rf.remove()

	gin.SetMode(gin.ReleaseMode)
	svc := daemon.New(st, daemon.Config{
		Addr:         addr,
		DatabasePath: databasePath(),
		Roster:       appCfg.PartnerRoster(),
		PollInterval: appCfg.PollInterval(),
		AllowOrigins: flagDaemonOrigins,
	})

	fmt.Fprintf(out, "  aurion daemon on http://%s (database %s)\n", addr, databasePath())
	fmt.Fprintln(out, "  Stop with: aurion daemon stop")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("daemon stopped")
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	rt, ok := runtimeFile{path: flagDaemonRunFile}.live()
	if !ok {
		fmt.Fprintln(out, "  Daemon: not running")
		return nil
	}
	fmt.Fprintf(out, "  Daemon PID: %d\n", rt.PID)
	fmt.Fprintf(out, "  Address:    http://%s\n", rt.Addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := fetchStatus(ctx, rt.Addr)
	if err != nil {
		fmt.Fprintf(out, "  API:        %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "  Started:    %s\n", status.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "  Database:   %s\n", status.DatabasePath)
	fmt.Fprintf(out, "  Watch:      every %s\n", time.Duration(status.PollIntervalMS)*time.Millisecond)
	fmt.Fprintf(out, "  Partners:   %d\n", status.Partners)
	fmt.Fprintf(out, "  Streams:    %d subscriptions, %d websocket clients\n", status.SubscriberCount, status.SocketCount)
	return nil
}

func fetchStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var status daemon.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return status, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return status, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("malformed response: %w", err)
	}
	return status, nil
}

func runDaemonStop(cmd *cobra.Command, _ []string) error {
	rf := runtimeFile{path: flagDaemonRunFile}
	rt, ok := rf.live()
	if !ok {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(rt.PID)
	if err != nil {
		return fmt.Errorf("finding daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signalling daemon: %w", err)
	}

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-ticker.C:
			if !processAlive(rt.PID) {
				rf.remove()
				fmt.Fprintf(cmd.OutOrStdout(), "  Stopped daemon (pid %d)\n", rt.PID)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("daemon (pid %d) did not exit in time", rt.PID)
		}
	}
}

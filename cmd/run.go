package cmd

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"quickmenu/internal/config"
	"quickmenu/internal/eventbus"
	"quickmenu/internal/logging"
	"quickmenu/internal/session"
	"quickmenu/internal/ui"
)

var (
	openOnStart  bool
	exitAfterRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive search overlay (default)",
	RunE:  runOverlay,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().BoolVar(&openOnStart, "open", true, "Open the overlay immediately")
	c.Flags().BoolVar(&exitAfterRun, "once", false, "Exit after a menu item ran")
}

func runOverlay(cmd *cobra.Command, args []string) error {
	// The overlay owns the terminal, so logs always go to a file
	if err := openLog(logging.DefaultLogFile()); err != nil {
		return err
	}

	bus := eventbus.New()
	defer bus.Close()

	svc, cfg, err := loadConfig(bus)
	if err != nil {
		return err
	}

	src, err := openSource()
	if err != nil {
		return err
	}

	ctrl, err := session.New(session.Deps{
		Source:      src,
		Resolver:    src,
		Permissions: src,
		Bus:         bus,
	}, *cfg)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctrl, bus, ui.Options{
		OpenOnStart:  openOnStart,
		ExitAfterRun: exitAfterRun,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	model.SetProgram(p)

	// Forward events the overlay reacts to
	forward := func(e eventbus.DomainEvent) { p.Send(ui.EventMsg{Event: e}) }
	defer bus.Subscribe(eventbus.EventConfigChanged, forward)()
	defer bus.Subscribe(eventbus.EventError, forward)()

	watcher, err := config.NewWatcher(svc, bus)
	if err != nil {
		logging.Log.WithError(err).Warn("Config hot reload unavailable")
	} else if err := watcher.Start(); err != nil {
		logging.Log.WithError(err).Warn("Config hot reload unavailable")
	} else {
		defer watcher.Stop()
	}

	// Handle termination signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			p.Quit()
		}
	}()

	logging.Log.WithField("menu", src.Path()).Info("Starting overlay")
	_, err = p.Run()
	return err
}

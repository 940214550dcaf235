package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/dapp"
	"github.com/Mohsinsiddi/w3dapp/internal/extension"
	"github.com/Mohsinsiddi/w3dapp/internal/history"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	serveListen     string
	serveWallet     string
	serveApproveAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transfer page with the wallet prompt in the terminal",
	Long: `Serve the transfer page on the listen address. Connect and signature
requests from the page show up in the terminal; press y to approve and n to
reject. Requests left unanswered for five minutes are rejected.

With --approve-all there is no prompt and every request is approved, which
suits scripted demos against a local chain.

Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := serveListen
		if listen == "" {
			listen = cfg.ListenAddr
		}

		flow, _, err := newFlow()
		if err != nil {
			return err
		}
		ext, err := newExtension(serveWallet)
		if err != nil {
			return err
		}
		defer ext.Close()

		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()

		app := dapp.New(flow, ext.Provider("http://"+listen),
			dapp.WithLogger(log),
			dapp.WithHistory(store),
			dapp.WithRegistry(newRegistry()),
			dapp.WithActionTimeout(config.TxConfirmTimeout),
		)
		defer app.Close()
		app.Start()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go expireRequests(ctx, ext, config.ApprovalTimeout)

		srv := dapp.NewServer(listen, app)
		errc := make(chan error, 1)
		go func() { errc <- srv.Run(ctx) }()

		if serveApproveAll {
			fmt.Println(ui.Success("Serving on http://" + listen + " (approving every request)"))
			go answerRequests(ctx, ext, true)
			return <-errc
		}

		fmt.Println(ui.Banner(Version))
		fmt.Println(ui.Meta("Serving on http://" + listen))
		prog := tea.NewProgram(ui.NewApprovalModel(ext.Requests(), ext), tea.WithContext(ctx))
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			stop()
			<-errc
			return err
		}
		stop()
		return <-errc
	},
}

// expireRequests rejects requests nobody answered within maxAge.
func expireRequests(ctx context.Context, ext *extension.Extension, maxAge time.Duration) {
	ticker := time.NewTicker(maxAge / 10)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ext.Expire(maxAge); n > 0 {
				log.Warn().Int("count", n).Dur("after", maxAge).Msg("Rejected unanswered wallet requests")
			}
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: config listen_addr)")
	serveCmd.Flags().StringVar(&serveWallet, "wallet", "", "account to select (default: the default account)")
	serveCmd.Flags().BoolVar(&serveApproveAll, "approve-all", false, "approve every request without asking")
}

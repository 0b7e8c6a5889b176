package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarchlab/enbstack/station"
	"github.com/sarchlab/enbstack/station/admin"
	"github.com/sarchlab/enbstack/tracing"
)

var log = tracing.NewLogger("enbstackd")

// errNoSignalingBackend is returned by noopSignaling.HandoverRequired so
// callers treat the absence of a real S1AP backend as a send failure rather
// than a silent accept.
var errNoSignalingBackend = errors.New("enbstackd: no signaling backend configured")

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the station control loop and admin HTTP surface.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&configPath, "config", "enbstackd.json", "path to the station JSON config")
}

// noopSignaling logs every core-network-signaling call and does nothing
// else. S1AP transport is out of scope (spec.md §1); a real deployment
// supplies its own mobility.SignalingLayer wired to an S1AP stack.
type noopSignaling struct{}

func (noopSignaling) InitialUE(rnti uint16, nasPDU []byte) error {
	log.Info("initial UE message with no signaling backend configured", "rnti", rnti)
	return nil
}

func (noopSignaling) WritePDU(rnti uint16, nasPDU []byte) error {
	log.Info("NAS PDU forwarded with no signaling backend configured", "rnti", rnti)
	return nil
}

func (noopSignaling) UserRelease(rnti uint16, cause string) error {
	log.Info("user release with no signaling backend configured", "rnti", rnti, "cause", cause)
	return nil
}

func (noopSignaling) HandoverRequired(rnti uint16, correlationID string, container []byte) error {
	log.Info("S1 handover requested with no signaling backend configured", "rnti", rnti, "correlation_id", correlationID)
	return errNoSignalingBackend
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Error(err, "failed to load config")
		os.Exit(1)
	}

	cells, layouts, err := cfg.BuildCellTable()
	if err != nil {
		log.Error(err, "failed to build cell table")
		os.Exit(1)
	}

	st, err := station.NewStation(cells, layouts, noopSignaling{})
	if err != nil {
		log.Error(err, "failed to build station")
		os.Exit(1)
	}
	st.StartDispatch()
	defer st.Close()

	a := admin.New(st, cfg.AdminPort)
	addr, err := a.StartServer()
	if err != nil {
		log.Error(err, "failed to start admin surface")
		os.Exit(1)
	}
	log.Info("station running", "admin_addr", addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")
}

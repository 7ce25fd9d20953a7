package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"maslow-go/pkg/report"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dispatcher reports and status pushes over a WebSocket",
	Long: `serve starts an HTTP server exposing /status as a WebSocket upgrade
endpoint (github.com/gorilla/websocket). Every report the dispatcher
makes is fanned out to every connected client — intended
for a browser-side jog/console UI that wants a live feed without
polling.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7467", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := buildCore(cmd)
	if err != nil {
		return err
	}
	log := newRootLogger("serve")

	hub := report.NewWSHub()
	c.dispatcher.SetReporter(hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/status", hub.HandleUpgrade)
	mux.HandleFunc("/command", func(w http.ResponseWriter, r *http.Request) {
		line := r.URL.Query().Get("line")
		if line == "" {
			http.Error(w, "missing line query parameter", http.StatusBadRequest)
			return
		}
		status := c.dispatcher.DispatchLine(line)
		fmt.Fprintln(w, status.String())
	})

	log.Info("listening on %s", serveAddr)
	return http.ListenAndServe(serveAddr, mux)
}

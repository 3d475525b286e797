package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"ftn/config"
	"ftn/jsonrpc"
	"ftn/logx"
	"ftn/monitoring"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the token ledger node",
	Run: func(cmd *cobra.Command, args []string) {
		runNode()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addLedgerFlags(runCmd)
}

func runNode() {
	monitoring.InitMetrics()

	tok, closeStore, err := openLedger()
	if err != nil {
		logx.Error("NODE", "Failed to open ledger:", err.Error())
		return
	}
	defer closeStore()

	if err := tok.VerifySupply(); err != nil {
		logx.Error("NODE", "Supply verification failed on startup:", err.Error())
		return
	}

	rpcCfg, err := config.LoadRPCConfig(runtimePath)
	if err != nil {
		logx.Warn("NODE", "No RPC config, using default listen address ", config.DefaultRPCListen)
		rpcCfg = &config.RPCConfig{Listen: config.DefaultRPCListen}
	}

	srv := jsonrpc.NewServer(rpcCfg.Listen, tok)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		srv.SetCORSConfig(corsCfg)
	}
	srv.Start()

	startMonitoring()

	// Block forever
	select {}
}

// startMonitoring exposes Prometheus metrics when enabled in the runtime
// config.
func startMonitoring() {
	monitoringCfg, err := config.LoadMonitoringConfig(runtimePath)
	if err != nil || !monitoringCfg.Enabled {
		logx.Info("NODE", "Monitoring endpoint disabled")
		return
	}

	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	logx.Info("NODE", "Serving metrics on ", monitoringCfg.Listen)
	go http.ListenAndServe(monitoringCfg.Listen, mux)
}

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	tftp "github.com/tftpc/client"
)

var (
	flagHost      string
	flagPort      uint16
	flagFamily    string
	flagTimeoutMs uint32
	flagMode      string
	flagConfig    string
	flagVerbose   bool
)

func main() {
	root := &cobra.Command{
		Use:   "tftpclient",
		Short: "a minimal RFC 1350 TFTP client",
	}
	root.PersistentFlags().StringVar(&flagHost, "host", "", "TFTP server hostname or IP (required)")
	root.PersistentFlags().Uint16Var(&flagPort, "port", 69, "TFTP server port")
	root.PersistentFlags().StringVar(&flagFamily, "family", "unspec", "address family: ipv4, ipv6 or unspec")
	root.PersistentFlags().Uint32Var(&flagTimeoutMs, "timeout-ms", 5000, "receive inactivity timeout")
	root.PersistentFlags().StringVar(&flagMode, "mode", "octet", "transfer mode: octet or netascii")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "optional INI config file overlaying the defaults")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGetCmd(), newPutCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get REMOTE LOCAL",
		Short: "read REMOTE from the server into LOCAL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, mode, err := setup()
			if err != nil {
				return err
			}
			return client.Get(nil, args[1], args[0], mode)
		},
	}
}

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put LOCAL REMOTE",
		Short: "write LOCAL to the server as REMOTE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, mode, err := setup()
			if err != nil {
				return err
			}
			return client.Put(nil, args[0], args[1], mode)
		},
	}
}

func setup() (*tftp.Client, tftp.TransferMode, error) {
	if flagVerbose {
		log.SetLevel(log.DebugLevel)
	}
	if flagHost == "" {
		return nil, 0, fmt.Errorf("--host is required")
	}

	family, err := tftp.ParseAddressFamily(flagFamily)
	if err != nil {
		return nil, 0, err
	}
	mode, err := tftp.ParseTransferMode(flagMode)
	if err != nil {
		return nil, 0, err
	}

	cfg := tftp.Config{
		ServerHostname:        flagHost,
		ServerPort:            flagPort,
		ServerAddrFamily:      family,
		RxInactivityTimeoutMs: flagTimeoutMs,
	}

	client, err := tftp.NewClient(cfg, flagConfig)
	if err != nil {
		return nil, 0, err
	}
	return client, mode, nil
}

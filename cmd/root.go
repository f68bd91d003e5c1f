package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/pDict/cmd/kv"
	"github.com/ValentinKolb/pDict/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "pdict",
		Short: "persistent ordered dictionary",
		Long: fmt.Sprintf(`pDict (v%s)

A persistent, ordered key-value dictionary library written in Go,
backed by a transactional storage engine with order-preserving
key encodings for efficient range queries.`, Version),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pDict",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pDict v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	for _, c := range kv.Commands() {
		RootCmd.AddCommand(c)
	}
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStoreFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package cmd wires the kotoheaders CLI: a set of cobra subcommands over
// the header chain store and transaction codec, configured through viper.
// There is no network listener here — every subcommand operates on a
// local headers directory and/or transaction hex passed on the command
// line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koto-project/kotochain/chainparams"
	"github.com/koto-project/kotochain/common/logging"
)

var cfgFile string

// Log is the shared root logger. It is nil until the root command's
// PersistentPreRun builds it once flags are parsed.
var Log *logrus.Entry

var rootCmd = &cobra.Command{
	Use:   "kotoheaders",
	Short: "kotoheaders inspects and verifies a Koto header chain store",
	Long: `kotoheaders is a command line tool over the header chain store and
transaction codec: verifying header files on disk, reporting chain tips
and accumulated work, and computing transaction signature digests.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Log = logging.New(viper.GetUint32("log-level"))
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./kotoheaders.yaml)")
	rootCmd.PersistentFlags().String("headers-dir", "./headers", "directory holding blockchain_headers and forks/")
	rootCmd.PersistentFlags().String("network", "main", "network parameters to use: main or test")
	rootCmd.PersistentFlags().Uint32("log-level", uint32(logrus.InfoLevel), "log level (logrus 0-6)")

	viper.BindPFlag("headers-dir", rootCmd.PersistentFlags().Lookup("headers-dir"))
	viper.SetDefault("headers-dir", "./headers")
	viper.BindPFlag("network", rootCmd.PersistentFlags().Lookup("network"))
	viper.SetDefault("network", "main")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetDefault("log-level", uint32(logrus.InfoLevel))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(tipCmd)
	rootCmd.AddCommand(sighashCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("kotoheaders")
	}

	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of a config file is not an error
}

// paramsFromFlag resolves the --network flag to a compiled-in parameter
// set.
func paramsFromFlag() (chainparams.Params, error) {
	switch viper.GetString("network") {
	case "main":
		return chainparams.Mainnet, nil
	case "test":
		return chainparams.Testnet, nil
	default:
		return chainparams.Params{}, fmt.Errorf("unknown network %q, want main or test", viper.GetString("network"))
	}
}

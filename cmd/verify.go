package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koto-project/kotochain/chainforest"
	"github.com/koto-project/kotochain/common/logging"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Read every chain under --headers-dir and report their heights and chainwork",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlag()
		if err != nil {
			return err
		}

		forest := chainforest.NewForest(viper.GetString("headers-dir"), params, Log)
		if err := logging.WrapOperation(Log, "read_chains", forest.ReadChains); err != nil {
			return err
		}

		chains := forest.Chains()
		Log.WithField("count", len(chains)).Info("chains loaded")
		for _, b := range chains {
			height := b.Height()
			work, err := b.GetChainwork(height)
			if err != nil {
				Log.WithFields(logrus.Fields{"chain": b.ID(), "error": err}).Warn("could not compute chainwork")
				continue
			}
			fmt.Printf("chain %s  forkpoint=%d  height=%d  chainwork=%s\n",
				b.ID(), b.Forkpoint(), height, work.String())
		}
		return nil
	},
}

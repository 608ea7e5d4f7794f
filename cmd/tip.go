package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koto-project/kotochain/chainforest"
)

var tipCmd = &cobra.Command{
	Use:   "tip",
	Short: "Print the best chain's tip height, hash, and accumulated work",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlag()
		if err != nil {
			return err
		}

		forest := chainforest.NewForest(viper.GetString("headers-dir"), params, Log)
		if err := forest.ReadChains(); err != nil {
			return err
		}

		best := forest.GetBestChain()
		if best == nil {
			return fmt.Errorf("no best chain found under %s", viper.GetString("headers-dir"))
		}

		height := best.Height()
		hash, err := best.GetHash(height)
		if err != nil {
			return err
		}
		work, err := best.GetChainwork(height)
		if err != nil {
			return err
		}

		fmt.Printf("height=%d  hash=%s  chainwork=%s\n", height, hash, work.String())
		return nil
	},
}

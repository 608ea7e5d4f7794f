package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koto-project/kotochain/transaction"
)

var (
	sighashTxHex         string
	sighashInputIndex    int
	sighashScriptCodeHex string
	sighashInputValue    int64
)

var sighashCmd = &cobra.Command{
	Use:   "sighash",
	Short: "Compute the signature digest for one input of a transaction",
	Long: `sighash parses a transaction from its hex wire encoding and computes
the signing digest for one transparent input, using that input's
substitute scriptCode and prevout value. It does not consult a UTXO set:
both must be supplied explicitly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := hex.DecodeString(sighashTxHex)
		if err != nil {
			return fmt.Errorf("decoding --tx: %w", err)
		}
		scriptCode, err := hex.DecodeString(sighashScriptCodeHex)
		if err != nil {
			return fmt.Errorf("decoding --script-code: %w", err)
		}

		tx, err := transaction.ParseFromSlice(raw)
		if err != nil {
			return err
		}
		if sighashInputIndex < 0 || sighashInputIndex >= len(tx.Inputs) {
			return fmt.Errorf("input index %d out of range [0,%d)", sighashInputIndex, len(tx.Inputs))
		}

		preimage := tx.SignaturePreimage(sighashInputIndex, scriptCode, sighashInputValue)
		digest := tx.SigningDigest(preimage)
		fmt.Println(hex.EncodeToString(digest[:]))
		return nil
	},
}

func init() {
	sighashCmd.Flags().StringVar(&sighashTxHex, "tx", "", "transaction, hex encoded (required)")
	sighashCmd.Flags().IntVar(&sighashInputIndex, "input", 0, "index of the input to sign")
	sighashCmd.Flags().StringVar(&sighashScriptCodeHex, "script-code", "", "scriptCode substituted for the signed input, hex encoded")
	sighashCmd.Flags().Int64Var(&sighashInputValue, "value", 0, "the signed input's prevout value, in base units")
	sighashCmd.MarkFlagRequired("tx")
}

package txscript

import (
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/pkg/errors"
)

func errMalformed() error {
	return errors.Wrap(kotoerr.ErrMalformedBitcoinScript, "txscript: push runs past end of script")
}

func errNotRecognized(reason string) error {
	return errors.Wrap(kotoerr.ErrNotRecognizedRedeemScript, "txscript: "+reason)
}

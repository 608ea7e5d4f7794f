package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

func TestParamsFromFlagKnownNetworks(t *testing.T) {
	defer viper.Set("network", viper.GetString("network"))

	viper.Set("network", "main")
	if _, err := paramsFromFlag(); err != nil {
		t.Fatalf("main: %v", err)
	}

	viper.Set("network", "test")
	if _, err := paramsFromFlag(); err != nil {
		t.Fatalf("test: %v", err)
	}
}

func TestParamsFromFlagUnknownNetwork(t *testing.T) {
	defer viper.Set("network", viper.GetString("network"))

	viper.Set("network", "regtest-but-misspelled")
	if _, err := paramsFromFlag(); err == nil {
		t.Fatal("expected an error for an unrecognized network name")
	}
}

package config

import (
	"github.com/tanupoo/lorawan-parser/lorawan"
)

// Version defines the lorawan-parser version.
var Version string

// Config defines the configuration structure. The parsed key fields are
// filled from their string counterparts after the configuration has been
// loaded (see cmd).
type Config struct {
	General struct {
		LogLevel   int  `mapstructure:"log_level"`
		JSONOutput bool `mapstructure:"json_output"`
	} `mapstructure:"general"`

	Parser struct {
		LoRaWANVersion string `mapstructure:"lorawan_version"`
		StringType     string `mapstructure:"string_type"`
		UpperFCnt      uint32 `mapstructure:"upper_fcnt"`

		Keys struct {
			AppKey      *lorawan.AES128Key `mapstructure:"-"`
			NwkSKey     *lorawan.AES128Key `mapstructure:"-"`
			AppSKey     *lorawan.AES128Key `mapstructure:"-"`
			SNwkSIntKey *lorawan.AES128Key `mapstructure:"-"`
			NwkSEncKey  *lorawan.AES128Key `mapstructure:"-"`

			AppKeyString      string `mapstructure:"app_key"`
			NwkSKeyString     string `mapstructure:"nwk_s_key"`
			AppSKeyString     string `mapstructure:"app_s_key"`
			SNwkSIntKeyString string `mapstructure:"s_nwk_s_int_key"`
			NwkSEncKeyString  string `mapstructure:"nwk_s_enc_key"`
		} `mapstructure:"keys"`
	} `mapstructure:"parser"`
}

// C holds the global configuration.
var C Config

package cmd

import (
	"bytes"
	"io/ioutil"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tanupoo/lorawan-parser/internal/config"
	"github.com/tanupoo/lorawan-parser/internal/hexformat"
	"github.com/tanupoo/lorawan-parser/lorawan"
)

var (
	cfgFile string
	version string
)

var rootCmd = &cobra.Command{
	Use:   "lorawan-parser [flags] frame ...",
	Short: "LoRaWAN frame parser",
	Long: `lorawan-parser decodes LoRaWAN PHY payloads: frame structure, MIC
verification, payload decryption, session-key derivation and MAC commands.
	> source & copyright information: https://github.com/tanupoo/lorawan-parser`,
	RunE: run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.PersistentFlags().Int("log-level", 4, "debug=5, info=4, error=2, fatal=1, panic=0")
	rootCmd.PersistentFlags().String("lorawan-version", "1.0", "protocol version: 1.0, 1.0.3 or 1.1")
	rootCmd.PersistentFlags().String("string-type", "hexstr", "frame notation: hexstr or base64")
	rootCmd.PersistentFlags().Uint32("upper-fcnt", 0, "upper 16 bits of the frame counter")
	rootCmd.PersistentFlags().String("appkey", "", "AppKey, the NwkKey for 1.1 (hex)")
	rootCmd.PersistentFlags().String("nwkskey", "", "NwkSKey, the FNwkSIntKey for 1.1 (hex)")
	rootCmd.PersistentFlags().String("appskey", "", "AppSKey (hex)")
	rootCmd.PersistentFlags().String("snwksintkey", "", "SNwkSIntKey, 1.1 only (hex)")
	rootCmd.PersistentFlags().String("nwksenckey", "", "NwkSEncKey, 1.1 only (hex)")
	rootCmd.PersistentFlags().Bool("json", false, "render the results as JSON")

	rootCmd.Flags().String("join-request", "", "join-request frame to derive the session keys from")
	rootCmd.Flags().String("join-accept", "", "join-accept frame to derive the session keys from")
	rootCmd.Flags().StringP("from-file", "f", "", "read frames from a file, one per line (- for stdin)")

	viper.BindPFlag("general.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("general.json_output", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("parser.lorawan_version", rootCmd.PersistentFlags().Lookup("lorawan-version"))
	viper.BindPFlag("parser.string_type", rootCmd.PersistentFlags().Lookup("string-type"))
	viper.BindPFlag("parser.upper_fcnt", rootCmd.PersistentFlags().Lookup("upper-fcnt"))
	viper.BindPFlag("parser.keys.app_key", rootCmd.PersistentFlags().Lookup("appkey"))
	viper.BindPFlag("parser.keys.nwk_s_key", rootCmd.PersistentFlags().Lookup("nwkskey"))
	viper.BindPFlag("parser.keys.app_s_key", rootCmd.PersistentFlags().Lookup("appskey"))
	viper.BindPFlag("parser.keys.s_nwk_s_int_key", rootCmd.PersistentFlags().Lookup("snwksintkey"))
	viper.BindPFlag("parser.keys.nwk_s_enc_key", rootCmd.PersistentFlags().Lookup("nwksenckey"))

	rootCmd.AddCommand(versionCmd)
}

// Execute executes the root command.
func Execute(v string) {
	version = v

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initConfig() {
	config.Version = version

	if cfgFile != "" {
		b, err := ioutil.ReadFile(cfgFile)
		if err != nil {
			log.WithError(err).WithField("config", cfgFile).Fatal("error loading config file")
		}
		viper.SetConfigType("toml")
		if err := viper.ReadConfig(bytes.NewBuffer(b)); err != nil {
			log.WithError(err).WithField("config", cfgFile).Fatal("error loading config file")
		}
	} else {
		viper.SetConfigName("lorawan-parser")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/lorawan-parser")
		viper.AddConfigPath("/etc/lorawan-parser")
		if err := viper.ReadInConfig(); err != nil {
			switch err.(type) {
			case viper.ConfigFileNotFoundError:
				// the tool works fine without a configuration file
			default:
				log.WithError(err).Fatal("read configuration file error")
			}
		}
	}

	viperBindEnvs(config.C)

	viperHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := viper.Unmarshal(&config.C, viper.DecodeHook(viperHooks)); err != nil {
		log.WithError(err).Fatal("unmarshal config error")
	}

	// decode keys
	keys := &config.C.Parser.Keys
	keys.AppKey = decodeKey("appkey", keys.AppKeyString)
	keys.NwkSKey = decodeKey("nwkskey", keys.NwkSKeyString)
	keys.AppSKey = decodeKey("appskey", keys.AppSKeyString)
	keys.SNwkSIntKey = decodeKey("snwksintkey", keys.SNwkSIntKeyString)
	keys.NwkSEncKey = decodeKey("nwksenckey", keys.NwkSEncKeyString)
}

// decodeKey parses a key in any of the accepted hex spellings. An empty
// string means the key was not given.
func decodeKey(name, s string) *lorawan.AES128Key {
	if s == "" {
		return nil
	}
	b, err := hexformat.ParseHex(s)
	if err != nil {
		log.WithError(err).WithField("key", name).Fatal("decode key error")
	}
	var k lorawan.AES128Key
	if len(b) != len(k) {
		log.WithField("key", name).Fatalf("decode key error: %d bytes are expected", len(k))
	}
	copy(k[:], b)
	return &k
}

func viperBindEnvs(iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = strings.ToLower(t.Name)
		}
		if tv == "-" {
			continue
		}

		switch v.Kind() {
		case reflect.Struct:
			viperBindEnvs(v.Interface(), append(parts, tv)...)
		default:
			// Bash doesn't allow env variable names with a dot so
			// bind the double underscore version.
			keyDot := strings.Join(append(parts, tv), ".")
			keyUnderscore := strings.Join(append(parts, tv), "__")
			viper.BindEnv(keyDot, strings.ToUpper(keyUnderscore))
		}
	}
}

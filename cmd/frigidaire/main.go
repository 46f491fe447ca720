// Command frigidaire allows basic operations on Frigidaire appliances
// through the vendor's cloud API
package main

import (
	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/marekbrz/frigidaire"
	"github.com/marekbrz/frigidaire/common"
)

var (
	client *frigidaire.Client

	flagConfig   string
	flagUsername string
	flagPassword string
	flagSerial   string
	flagLogLevel string

	logger = logrus.New()
	app    = &cobra.Command{
		Use: `frigidaire`,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			setLogger()
		},
	}
)

func init() {
	frigidaire.SetLogger(logger)

	app.PersistentFlags().StringVarP(&flagConfig, `config`, `c`, ``, `path to TOML configuration file`)
	app.PersistentFlags().StringVarP(&flagUsername, `username`, `u`, ``, `cloud account username, overrides the config file`)
	app.PersistentFlags().StringVarP(&flagPassword, `password`, `p`, ``, `cloud account password, overrides the config file`)
	app.PersistentFlags().StringVarP(&flagSerial, `serial`, `s`, ``, `appliance serial number, defaults to the first appliance`)
	app.PersistentFlags().StringVarP(&flagLogLevel, `log-level`, `L`, `info`, `log level, one of: [debug,info,warn,error]`)

	app.AddCommand(cmdAppliances)
	app.AddCommand(cmdStatus)
	app.AddCommand(cmdSet)
	app.AddCommand(cmdWatch)
}

func main() {
	app.Execute()
}

func loadConfig() *common.Config {
	cfg := new(common.Config)
	if flagConfig != `` {
		if _, err := toml.DecodeFile(flagConfig, cfg); err != nil {
			logger.WithFields(logrus.Fields{
				`filename`: flagConfig,
				`error`:    err,
			}).Fatalln(`Could not load configuration file`)
		}
	}
	if flagUsername != `` {
		cfg.Username = flagUsername
	}
	if flagPassword != `` {
		cfg.Password = flagPassword
	}
	return cfg
}

func setupClient(c *cobra.Command, args []string) {
	var err error

	client, err = frigidaire.NewClient(loadConfig())
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed initializing client`)
	}
}

func closeClient(c *cobra.Command, args []string) {
	err := client.Close()
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed closing client`)
	}
}

func setLogger() {
	switch flagLogLevel {
	case `debug`:
		logger.Level = logrus.DebugLevel
	case `info`:
		logger.Level = logrus.InfoLevel
	case `warn`:
		logger.Level = logrus.WarnLevel
	case `error`:
		logger.Level = logrus.ErrorLevel
	default:
		logger.Level = logrus.InfoLevel
	}
}

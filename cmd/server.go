/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	devConfig "github.com/Daskott/helmetguard/dev/config"
	"github.com/Daskott/helmetguard/server"
	"github.com/Daskott/helmetguard/shared"
	"github.com/go-playground/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverConfigFile string

// loadConfig is swapped out in tests
var loadConfig = func() (shared.ServerConfig, error) {
	return decodeServerConfig(serverConfig())
}

func init() {
	rootCmd.AddCommand(createServerCmd())
}

func createServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start a helmetguard server",
		Long: `The helmetguard server exposes the emergency SMS & location sharing API
and listens to the helmet feed for crash events`,
		Run: func(cmd *cobra.Command, args []string) {
			config, err := loadConfig()
			cobra.CheckErr(err)

			server.Start(config, isDevEnv)
		},
	}

	cmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "config for server")

	return cmd
}

// serverConfig builds the viper config from the built-in dev config (--dev), the
// --sconfig file, or defaults only. Env vars override all of them.
func serverConfig() *viper.Viper {
	config := viper.New()
	setConfigDefaults(config)
	bindConfigEnv(config)

	switch {
	case isDevEnv:
		config.SetConfigType("yaml")
		cobra.CheckErr(config.ReadConfig(strings.NewReader(devConfig.SERVER_YML)))
	case serverConfigFile != "":
		config.SetConfigFile(serverConfigFile)
		if err := config.ReadInConfig(); err != nil {
			cobra.CheckErr(formattedError("error reading server config file: %v", err))
		}
		fmt.Fprintln(os.Stderr, "Using config file:", config.ConfigFileUsed())
	default:
		fmt.Fprintln(os.Stderr, warningLabel, "no server config provided, using defaults & env")
	}

	return config
}

func setConfigDefaults(config *viper.Viper) {
	config.SetDefault("helmetguard.listener.port", 8000)
	config.SetDefault("helmetguard.eventLogPath", "database/event_logs.json")
	config.SetDefault("helmetguard.timeZone", "Asia/Kolkata")
	config.SetDefault("helmetguard.defaultCountryCode", "+91")
	config.SetDefault("firebase.path", "helmet")
}

// bindConfigEnv maps the env vars rider deployments already use onto config keys.
func bindConfigEnv(config *viper.Viper) {
	config.BindEnv("helmetguard.listener.port", "PORT")
	config.BindEnv("twilio.accountSid", "TWILIO_SID")
	config.BindEnv("twilio.authToken", "TWILIO_AUTH")
	config.BindEnv("twilio.senderNumber", "TWILIO_PHONE")
	config.BindEnv("twilio.fallbackRecipient", "USER_PHONE")
	config.BindEnv("firebase.credentials", "FIREBASE_CRED")
	config.BindEnv("firebase.databaseURL", "DATABASE_URL")
	config.BindEnv("google.applicationCredentials", "GOOGLE_APPLICATION_CREDENTIALS")

	config.AutomaticEnv()
}

func decodeServerConfig(config *viper.Viper) (shared.ServerConfig, error) {
	serverConfig := shared.ServerConfig{}
	if err := config.Unmarshal(&serverConfig); err != nil {
		return serverConfig, fmt.Errorf("unable to decode server config: %v", err)
	}

	if err := validator.New().Struct(serverConfig); err != nil {
		return serverConfig, fmt.Errorf("invalid server config: %v", err)
	}

	return serverConfig, nil
}

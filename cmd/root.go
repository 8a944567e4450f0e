// Copyright 2021 AI Redefined Inc. <dev+cogment@ai-r.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cogment/cogment-bevy-env/cmd/configure"
	"github.com/cogment/cogment-bevy-env/helper"
)

var Verbose bool

var logger = helper.GetSugarLogger([]string{"cmd"})

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bevy-env",
	Short: "Drive a remote Bevy simulator as a reinforcement learning environment",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := helper.ConfigureLogger(Verbose, viper.GetString("log_file")); err != nil {
			return err
		}
		logger = helper.GetSugarLogger([]string{"cmd"})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		helper.SyncLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&helper.CfgFile, "config", "", "config file (default is $HOME/.bevy-env.yaml)")

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "verbose output")

	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file, rotated")
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.PersistentFlags().Bool("debug-http", false, "dump every request sent to the simulator")
	_ = viper.BindPFlag("debug_http", rootCmd.PersistentFlags().Lookup("debug-http"))

	rootCmd.PersistentFlags().String("env-config", "", "environment configuration file (default is the built-in bevy-ant configuration)")
	_ = viper.BindPFlag("env_config", rootCmd.PersistentFlags().Lookup("env-config"))

	rootCmd.PersistentFlags().String("url", "", "base URL of the simulator, overrides the profile")
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().String("preset", "", "deployment preset of the action space, overrides the profile")
	_ = viper.BindPFlag("preset", rootCmd.PersistentFlags().Lookup("preset"))

	rootCmd.PersistentFlags().String("profile", "", "simulator profile (default is \"default\")")
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))

	rootCmd.AddCommand(configure.NewConfigureCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configName := ".bevy-env"

	// A missing .env file is not an error
	_ = godotenv.Load()

	if helper.CfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(helper.CfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".bevy-env" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")

		helper.CfgFile = path.Join(home, configName+".yaml")
	}

	viper.SetEnvPrefix("bevy")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); Verbose && err != nil {
		logger.Info(err)
	}

	if Verbose {
		logger.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}

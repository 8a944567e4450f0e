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

package configure

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
)

// Remote is a simulator profile
type Remote struct {
	URL    string
	Preset string
}

const defaultSimulatorURL = "http://127.0.0.1:7878"

func NewRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote [name]",
		Short: "Add a simulator profile",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := helper.DefaultProfile
			if len(args) > 0 {
				name = args[0]
			}

			err := runConfigureRemoteCmd(name, os.Stdin, os.Stdout)
			helper.CheckError(err)

			fmt.Printf("%s profile has been added to %s\n", name, helper.CfgFile)
		},
	}
}

func createRemoteFromReader(stdin io.Reader, out io.Writer) (*Remote, error) {
	reader := bufio.NewReader(stdin)
	r := Remote{}

	fmt.Fprintf(out, "Simulator URL (%s): ", defaultSimulatorURL)
	rawURL, _ := reader.ReadString('\n')
	rawURL = strings.TrimSpace(rawURL)
	if len(rawURL) < 1 {
		rawURL = defaultSimulatorURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() {
		return nil, fmt.Errorf("invalid simulator URL %q", rawURL)
	}
	r.URL = rawURL

	fmt.Fprintf(out, "Preset (%s, empty for none): ", strings.Join(api.PresetNames(), ", "))
	preset, _ := reader.ReadString('\n')
	r.Preset = strings.TrimSpace(preset)
	if r.Preset != "" {
		// Presets are validated against a throwaway configuration
		if err := api.CreateDefaultEnvConfig().ApplyPreset(r.Preset); err != nil {
			return nil, err
		}
	}

	return &r, nil
}

func runConfigureRemoteCmd(name string, stdin io.Reader, out io.Writer) error {
	name = helper.Kebabify(name)
	if name == "" {
		return fmt.Errorf("a profile name is required")
	}

	r, err := createRemoteFromReader(stdin, out)
	if err != nil {
		return err
	}

	viper.Set(fmt.Sprintf("%s.url", name), r.URL)
	viper.Set(fmt.Sprintf("%s.preset", name), r.Preset)

	profile := viper.GetString("profile")
	if len(profile) < 1 {
		viper.Set("profile", name)
	}

	if err := viper.WriteConfigAs(helper.CfgFile); err != nil {
		return fmt.Errorf("unable to write config: %w", err)
	}

	return nil
}

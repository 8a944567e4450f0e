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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
)

// spacesCmd represents the spaces command
var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print the observation and action spaces of the configured simulator",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadEnvConfig()
		helper.CheckError(err)

		runSpacesCmd(config, os.Stdout)
	},
}

func boxRow(name string, box *api.Box) string {
	low, high := "", ""
	if box.Shape() > 0 {
		low = fmt.Sprintf("%g", box.Low[0])
		high = fmt.Sprintf("%g", box.High[0])
	}
	return strings.Join([]string{name, fmt.Sprintf("%d", box.Shape()), low, high}, "|")
}

func runSpacesCmd(config *api.EnvConfig, out io.Writer) {
	fmt.Fprintf(out, "%s at %s\n", config.Name, config.BaseURL)

	var output []string
	output = append(output, strings.Join([]string{"SPACE", "SHAPE", "LOW", "HIGH"}, "|"))
	output = append(output, boxRow("observation", config.ObservationSpace()))
	output = append(output, boxRow("action", config.ActionSpace()))
	fmt.Fprintln(out, columnize.SimpleFormat(output))
}

func init() {
	rootCmd.AddCommand(spacesCmd)
}

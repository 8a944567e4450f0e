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
	"bytes"
	"io/ioutil"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/cogment/cogment-bevy-env/helper"
)

func setupConfig(t *testing.T) {
	viper.Reset()
	viper.SetFs(afero.NewMemMapFs())
	viper.AddConfigPath("/tmp")
	viper.SetConfigName(".bevy-env")
	viper.SetConfigType("yaml")
	helper.CfgFile = "/tmp/.bevy-env.yaml"
	t.Cleanup(viper.Reset)
}

func TestConfigureRemoteCommand(t *testing.T) {
	setupConfig(t)

	var stdin bytes.Buffer
	//1st call for URL then preset
	stdin.Write([]byte("\n\n"))

	err := runConfigureRemoteCmd("default", &stdin, ioutil.Discard)
	assert.NoError(t, err)

	if err := viper.ReadInConfig(); err != nil {
		t.Fatal("Unable to read config file : ", err)
	}

	assert.Equal(t, defaultSimulatorURL, viper.GetString("default.url"))
	assert.Equal(t, "", viper.GetString("default.preset"))
	assert.Equal(t, "default", viper.GetString("profile"))
}

func TestConfigureRemoteCommandKeepsCurrentProfile(t *testing.T) {
	setupConfig(t)

	var stdin bytes.Buffer
	stdin.Write([]byte("http://10.0.0.2:7878\nant-16\n"))
	assert.NoError(t, runConfigureRemoteCmd("default", &stdin, ioutil.Discard))

	stdin.Reset()
	stdin.Write([]byte("http://lab.local:8000\n\n"))
	assert.NoError(t, runConfigureRemoteCmd("Lab Sim", &stdin, ioutil.Discard))

	if err := viper.ReadInConfig(); err != nil {
		t.Fatal("Unable to read config file : ", err)
	}

	assert.Equal(t, "default", viper.GetString("profile"))
	assert.Equal(t, "http://10.0.0.2:7878", helper.CurrentConfig("url"))
	assert.Equal(t, "ant-16", helper.CurrentConfig("preset"))
	assert.Equal(t, "http://lab.local:8000", viper.GetString("lab-sim.url"))
}

func TestConfigureRemoteCommandRejectsInvalidInput(t *testing.T) {
	var tests = []struct {
		name  string
		input string
	}{
		{"relative url", "127.0.0.1:7878\n\n"},
		{"unknown preset", "\nant-42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupConfig(t)

			err := runConfigureRemoteCmd("default", bytes.NewBufferString(tt.input), ioutil.Discard)
			assert.Error(t, err)
			assert.Equal(t, "", viper.GetString("default.url"))
		})
	}
}

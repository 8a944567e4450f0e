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

package helper

import (
	"fmt"

	"github.com/spf13/viper"
)

var CfgFile string

// DefaultProfile is the name of the profile used when none was configured
const DefaultProfile = "default"

// CurrentProfile is the simulator profile selected by the "profile" key or the --profile flag
func CurrentProfile() string {
	profile := viper.GetString("profile")
	if profile == "" {
		return DefaultProfile
	}
	return profile
}

// CurrentConfig returns a key of the current simulator profile
func CurrentConfig(key string) string {
	output := viper.GetString(fmt.Sprintf("%s.%s", CurrentProfile(), key))
	return output
}

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

package rollout

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderReturnsChart writes an HTML line chart of the return and length of episodes, in the order they finished
func RenderReturnsChart(w io.Writer, stats []EpisodeStats) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Episode returns",
			Subtitle: fmt.Sprintf("%d episodes", len(stats)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "return"}),
	)

	episodes := make([]string, 0, len(stats))
	returns := make([]opts.LineData, 0, len(stats))
	steps := make([]opts.LineData, 0, len(stats))
	for i, s := range stats {
		episodes = append(episodes, fmt.Sprintf("%d", i+1))
		returns = append(returns, opts.LineData{Name: s.EpisodeID, Value: s.Return})
		steps = append(steps, opts.LineData{Name: s.EpisodeID, Value: s.Steps})
	}

	line.SetXAxis(episodes).
		AddSeries("return", returns).
		AddSeries("steps", steps)

	return line.Render(w)
}

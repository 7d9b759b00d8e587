package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned by a chart whose input column has no usable values.
var ErrNoData = errors.New("no data to plot")

// Chart is one analysis view written to File inside the plots directory.
type Chart struct {
	Name  string
	File  string
	Build func(videos []record.NormalizedVideoRecord) (*plot.Plot, error)
}

// Charts lists the analysis views in render order.
var Charts = []Chart{
	{Name: "Top 9 Best Performing Videos", File: "top_9_best_performing_videos.png", Build: bestVideos},
	{Name: "Top 9 Worst Performing Videos", File: "top_9_worst_performing_videos.png", Build: worstVideos},
	{Name: "View Distribution per Video", File: "view_distribution_per_video.png", Build: viewDistribution},
	{Name: "Views vs. Likes and Comments", File: "views_vs_likes_and_comments.png", Build: viewsVsEngagement},
	{Name: "Video Duration Distribution", File: "video_duration_distribution.png", Build: durationDistribution},
	{Name: "Title Word Frequency", File: "title_word_frequency.png", Build: titleWords},
	{Name: "Upload Schedule by Day of the Week", File: "upload_schedule_by_day_of_week.png", Build: uploadSchedule},
}

const (
	topN      = 9
	topWords  = 30
	histBins  = 30
	barWidth  = vg.Length(20)
	boxWidth  = vg.Length(30)
	labelTurn = math.Pi / 2
)

// thousands labels major ticks as 12K.
var thousands = plot.TickerFunc(func(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0fK", ticks[i].Value/1000)
		}
	}
	return ticks
})

func bestVideos(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	return viewsBar("Top 9 Best Performing Videos", TopByViews(videos, topN, true))
}

func worstVideos(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	return viewsBar("Top 9 Worst Performing Videos", TopByViews(videos, topN, false))
}

func viewsBar(title string, videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	if len(videos) == 0 {
		return nil, ErrNoData
	}

	values := make(plotter.Values, len(videos))
	names := make([]string, len(videos))
	for i, v := range videos {
		values[i] = float64(*v.ViewCount)
		names[i] = PlotTitle(str(v.Title))
	}

	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Views"
	p.Y.Tick.Marker = thousands
	p.X.Tick.Label.Rotation = labelTurn
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

func viewDistribution(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	channels, groups := ViewsByChannel(videos)
	if len(channels) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = "View Distribution per Video"
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Views"
	p.Y.Tick.Marker = thousands

	for i, ch := range channels {
		box, err := plotter.NewBoxPlot(boxWidth, float64(i), plotter.Values(groups[ch]))
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch, err)
		}
		p.Add(box)
	}
	p.NominalX(channels...)
	return p, nil
}

func viewsVsEngagement(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	series := []struct {
		name string
		pick func(record.NormalizedVideoRecord) *int64
	}{
		{"Comments", func(v record.NormalizedVideoRecord) *int64 { return v.CommentCount }},
		{"Likes", func(v record.NormalizedVideoRecord) *int64 { return v.LikeCount }},
	}

	p := plot.New()
	p.Title.Text = "Views vs. Likes and Comments"
	p.X.Label.Text = "Count"
	p.Y.Label.Text = "Views"

	plotted := 0
	for i, s := range series {
		pairs := Pairs(videos, s.pick)
		if len(pairs) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pairs))
		for j, pt := range pairs {
			xys[j].X, xys[j].Y = pt[0], pt[1]
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(sc)
		p.Legend.Add(s.name, sc)
		plotted++
	}
	if plotted == 0 {
		return nil, ErrNoData
	}
	return p, nil
}

func durationDistribution(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	durations := Durations(videos)
	if len(durations) == 0 {
		return nil, ErrNoData
	}

	h, err := plotter.NewHist(plotter.Values(durations), histBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(2)

	p := plot.New()
	p.Title.Text = "Video Duration Distribution"
	p.X.Label.Text = "Duration (seconds)"
	p.Y.Label.Text = "Number of Videos"
	p.Add(h)
	return p, nil
}

func titleWords(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	words := WordFrequency(videos, topWords)
	if len(words) == 0 {
		return nil, ErrNoData
	}

	values := make(plotter.Values, len(words))
	names := make([]string, len(words))
	for i, w := range words {
		values[i] = float64(w.Count)
		names[i] = w.Word
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(3)

	p := plot.New()
	p.Title.Text = "Title Word Frequency"
	p.Y.Label.Text = "Occurrences"
	p.X.Tick.Label.Rotation = labelTurn
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

func uploadSchedule(videos []record.NormalizedVideoRecord) (*plot.Plot, error) {
	counts := DayCounts(videos)
	values := make(plotter.Values, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}

	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(4)

	p := plot.New()
	p.Title.Text = "Upload Schedule by Day of the Week"
	p.X.Label.Text = "Day of the Week"
	p.Y.Label.Text = "Number of Uploads"
	p.Add(bars)
	p.NominalX(Weekdays...)
	return p, nil
}

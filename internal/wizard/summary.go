package wizard

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediastudio/internal/apiclient"
)

// SceneGroup counts scenes of one type.
type SceneGroup struct {
	Label         string
	Count         int
	MaxImportance float64
}

var titleCaser = cases.Title(language.English)

// SceneLabel renders a backend scene type such as "talking_head" as
// "Talking Head".
func SceneLabel(sceneType string) string {
	cleaned := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(sceneType))
	if cleaned == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ToLower(cleaned))
}

// SummarizeScenes groups scenes by type, most frequent first.
func SummarizeScenes(scenes []apiclient.Scene) []SceneGroup {
	index := map[string]int{}
	var groups []SceneGroup
	for _, scene := range scenes {
		label := SceneLabel(scene.Type)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, SceneGroup{Label: label})
		}
		groups[i].Count++
		if scene.Importance > groups[i].MaxImportance {
			groups[i].MaxImportance = scene.Importance
		}
	}
	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].Count != groups[b].Count {
			return groups[a].Count > groups[b].Count
		}
		return groups[a].Label < groups[b].Label
	})
	return groups
}

// FormatTimestamp renders seconds as m:ss.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Percent renders a [0,1] score as a whole percentage.
func Percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

package wizard

import (
	"fmt"
	"strings"
)

// Step is a stage of the video workflow.
type Step string

const (
	StepUpload  Step = "upload"
	StepAnalyze Step = "analyze"
	StepEdit    Step = "edit"
	StepExport  Step = "export"
)

// Steps lists the workflow stages in order.
var Steps = []Step{StepUpload, StepAnalyze, StepEdit, StepExport}

// Label returns the display label for the step.
func (s Step) Label() string {
	switch s {
	case StepUpload:
		return "Upload Video"
	case StepAnalyze:
		return "Analyze"
	case StepEdit:
		return "Edit"
	case StepExport:
		return "Export"
	default:
		return string(s)
	}
}

func (s Step) index() int {
	for i, candidate := range Steps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseStep converts a step name into a Step.
func ParseStep(value string) (Step, error) {
	step := Step(strings.ToLower(strings.TrimSpace(value)))
	if step.index() < 0 {
		return "", fmt.Errorf("unknown step %q", value)
	}
	return step, nil
}

// Platforms lists the export targets the backend renders for.
var Platforms = []string{"instagram", "youtube", "tiktok", "linkedin"}

// PlatformLabel returns the display label for an export platform.
func PlatformLabel(platform string) string {
	switch platform {
	case "instagram":
		return "Instagram Reels"
	case "youtube":
		return "YouTube Shorts"
	case "tiktok":
		return "TikTok"
	case "linkedin":
		return "LinkedIn"
	default:
		return platform
	}
}

func isKnownPlatform(platform string) bool {
	for _, candidate := range Platforms {
		if candidate == platform {
			return true
		}
	}
	return false
}

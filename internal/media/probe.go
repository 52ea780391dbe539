package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Info holds the probed properties of a video's first video stream.
type Info struct {
	Width    int
	Height   int
	Frames   int     // 0 when the container does not report a frame count
	Duration float64 // seconds, 0 when unavailable
}

// Probe inspects path with ffprobe and returns the first video stream's
// properties.
func Probe(ctx context.Context, binary, path string) (Info, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("probe: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w: %s", path, err, commandStderr(err))
	}

	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			NBFrames  string `json:"nb_frames"`
			Duration  string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return Info{}, fmt.Errorf("probe parse: %w", err)
	}

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if stream.Width <= 0 || stream.Height <= 0 {
			return Info{}, fmt.Errorf("probe %s: video stream reports %dx%d", path, stream.Width, stream.Height)
		}
		info := Info{Width: stream.Width, Height: stream.Height}
		if frames, err := strconv.Atoi(strings.TrimSpace(stream.NBFrames)); err == nil && frames > 0 {
			info.Frames = frames
		}
		if duration, err := strconv.ParseFloat(strings.TrimSpace(stream.Duration), 64); err == nil && duration > 0 {
			info.Duration = duration
		}
		return info, nil
	}
	return Info{}, fmt.Errorf("probe %s: no video stream", path)
}

func commandStderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}

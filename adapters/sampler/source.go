package sampler

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"sync"
	"time"

	"focustrack/internal"
	"focustrack/models"
	"focustrack/ports"
)

// CommandSource samples the focused window by running an external command
// that prints a JSON object on stdout, e.g. a compositor query script:
//
//	{"app_name": "Safari", "app_id": "com.apple.Safari",
//	 "window_title": "GitHub", "url": "https://github.com"}
//
// Any failure degrades to the idle sample; the tracking loop never stops
// because the OS could not be asked.
type CommandSource struct {
	command string
	timeout time.Duration
	logger  *internal.Logger
}

// NewCommandSource creates a sampling source from a shell command line.
func NewCommandSource(command string, timeout time.Duration, logger *internal.Logger) *CommandSource {
	if timeout <= 0 {
		timeout = time.Second
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CommandSource{command: command, timeout: timeout, logger: logger}
}

type samplePayload struct {
	AppName     string `json:"app_name"`
	AppID       string `json:"app_id"`
	WindowTitle string `json:"window_title"`
	URL         string `json:"url"`
}

// Sample runs the configured command and parses its output.
func (s *CommandSource) Sample(ctx context.Context) (models.Sample, error) {
	if strings.TrimSpace(s.command) == "" {
		return models.IdleSample(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "sh", "-c", s.command).Output()
	if err != nil {
		s.logger.Warn("sampler command failed: %v", err)
		return models.IdleSample(), nil
	}

	var payload samplePayload
	if err := json.Unmarshal(out, &payload); err != nil {
		s.logger.Warn("sampler produced malformed JSON: %v", err)
		return models.IdleSample(), nil
	}
	if payload.AppName == "" {
		return models.IdleSample(), nil
	}

	return models.Sample{
		AppName:     payload.AppName,
		AppID:       payload.AppID,
		WindowTitle: payload.WindowTitle,
		URL:         payload.URL,
		TakenAt:     time.Now(),
	}, nil
}

// ScriptedSource replays a fixed sequence of samples, sticking on the last
// one. Used in tests and for dry runs without a real window system.
type ScriptedSource struct {
	mu      sync.Mutex
	samples []models.Sample
	next    int
}

// NewScriptedSource creates a source replaying the given samples in order.
func NewScriptedSource(samples ...models.Sample) *ScriptedSource {
	return &ScriptedSource{samples: samples}
}

func (s *ScriptedSource) Sample(ctx context.Context) (models.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.samples) == 0 {
		return models.IdleSample(), nil
	}
	sample := s.samples[s.next]
	if s.next < len(s.samples)-1 {
		s.next++
	}
	sample.TakenAt = time.Now()
	return sample, nil
}

var _ ports.SamplingSource = (*CommandSource)(nil)
var _ ports.SamplingSource = (*ScriptedSource)(nil)

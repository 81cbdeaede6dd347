// Package capture abstracts live image sources for verification. The
// verification handler normally receives an uploaded proof image; when a
// capture device is configured instead, Manager negotiates the best stream
// the device supports.
package capture

import (
	"context"
	"fmt"
	"log/slog"
)

// Constraints request a capture resolution. Zero values mean "any".
type Constraints struct {
	Width  int
	Height int
}

// Stream is one open capture session. Callers must Release it.
type Stream interface {
	// Frame returns one captured image, encoded.
	Frame(ctx context.Context) ([]byte, error)
	Release()
}

// Device is a capture source that may refuse unsupported constraints.
type Device interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// Manager negotiates a stream by walking a fixed constraint ladder from the
// preferred resolution down to a minimal one.
type Manager struct {
	device Device
	logger *slog.Logger
}

// NewManager wraps a device.
func NewManager(device Device, logger *slog.Logger) *Manager {
	return &Manager{device: device, logger: logger}
}

// ladder is ordered best-first. The unconstrained step sits before the
// minimal one so a device that can serve anything serves its default.
var ladder = []Constraints{
	{Width: 1280, Height: 720},
	{Width: 640, Height: 480},
	{},
	{Width: 320, Height: 240},
}

// AcquireBest tries each rung until one succeeds. The returned stream must
// be released by the caller; on failure no stream is left open.
func (m *Manager) AcquireBest(ctx context.Context) (Stream, error) {
	var lastErr error
	for _, c := range ladder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stream, err := m.device.Acquire(ctx, c)
		if err != nil {
			m.logger.DebugContext(ctx, "capture constraints refused",
				"width", c.Width,
				"height", c.Height,
				"error", err.Error(),
			)
			lastErr = err
			continue
		}
		return stream, nil
	}
	return nil, fmt.Errorf("no capture constraints accepted: %w", lastErr)
}

// CaptureFrame acquires the best stream, grabs a single frame and always
// releases the stream, whatever happens.
func (m *Manager) CaptureFrame(ctx context.Context) ([]byte, error) {
	stream, err := m.AcquireBest(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Release()

	frame, err := stream.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture frame: %w", err)
	}
	return frame, nil
}

package scraper

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/lpaudit/config"
)

// Viewport is a named browser window size.
type Viewport struct {
	Name   string
	Width  int
	Height int
	Scale  float64
}

func (v Viewport) metrics() *proto.EmulationSetDeviceMetricsOverride {
	return &proto.EmulationSetDeviceMetricsOverride{
		Width:             v.Width,
		Height:            v.Height,
		DeviceScaleFactor: v.Scale,
		Mobile:            false,
	}
}

// Screenshot presets, in the order they are listed and captured.
var (
	Desktop = Viewport{Name: "desktop", Width: 1920, Height: 1080, Scale: 1}
	Tablet  = Viewport{Name: "tablet", Width: 768, Height: 1024, Scale: 1}
	Mobile  = Viewport{Name: "mobile", Width: 375, Height: 812, Scale: 2}
)

var viewports = []Viewport{Desktop, Tablet, Mobile}

// The audit passes. The mobile pass keeps a scale factor of 1 so layout
// metrics match what a plain 375px window reports.
var (
	auditDesktop = Desktop
	auditMobile  = Viewport{Name: "mobile", Width: 375, Height: 812, Scale: 1}
)

// ViewportNames lists the screenshot presets in capture order.
func ViewportNames() []string {
	names := make([]string, len(viewports))
	for i, v := range viewports {
		names[i] = v.Name
	}
	return names
}

// LookupViewport returns the preset called name.
func LookupViewport(name string) (Viewport, error) {
	for _, v := range viewports {
		if v.Name == name {
			return v, nil
		}
	}
	return Viewport{}, &viewportError{name: name}
}

// viewportError reads as the user-facing message and matches
// config.ErrInvalidViewport under errors.Is.
type viewportError struct{ name string }

func (e *viewportError) Error() string {
	return fmt.Sprintf("Invalid viewport: %s. Choose from: [%s]",
		e.name, strings.Join(ViewportNames(), " "))
}

func (e *viewportError) Is(target error) bool { return target == config.ErrInvalidViewport }

// ScreenshotPath is where a capture of rawURL at viewport lands inside dir:
// the host with dots replaced by underscores, then the viewport name.
func ScreenshotPath(dir, rawURL, viewport string) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	name := fmt.Sprintf("%s_%s.png", strings.ReplaceAll(host, ".", "_"), viewport)
	return filepath.Join(dir, name)
}

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// ActiveMonitor returns the monitor under the mouse cursor, clipped to the
// EWMH work area of the current desktop when one is published.
func (c *Connection) ActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	active := findMonitorForPointer(c, monitors)
	if active == nil {
		active = &monitors[0]
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err == nil && len(workArea) > 0 {
		desktopIndex := 0
		if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
		wa := workArea[desktopIndex]
		clipToWorkArea(active, int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))
	}

	return active, nil
}

// clipToWorkArea shrinks the monitor to its intersection with the work
// area. Without an intersection the monitor is left untouched.
func clipToWorkArea(m *Monitor, x, y, width, height int) {
	x1 := max(m.X, x)
	y1 := max(m.Y, y)
	x2 := min(m.X+m.Width, x+width)
	y2 := min(m.Y+m.Height, y+height)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	m.X, m.Y = x1, y1
	m.Width, m.Height = x2-x1, y2-y1
}

// centerIn returns the top-left corner that centers a width x height
// window on the monitor. Windows larger than the monitor are pinned to its
// top-left corner.
func centerIn(m Monitor, width, height int) (int, int) {
	x := m.X + (m.Width-width)/2
	y := m.Y + (m.Height-height)/2
	return max(x, m.X), max(y, m.Y)
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}

	x := int(pointer.RootX)
	y := int(pointer.RootY)

	for i := range monitors {
		mon := &monitors[i]
		if x >= mon.X && x < mon.X+mon.Width && y >= mon.Y && y < mon.Y+mon.Height {
			return mon
		}
	}
	return nil
}

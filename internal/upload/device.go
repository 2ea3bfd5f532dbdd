package upload

import (
	"regexp"
	"runtime"
)

// MobileViewportWidth is the width below which a viewport counts as mobile.
const MobileViewportWidth = 768

var mobileUA = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)

// Device describes the client the wizard runs on.
type Device struct {
	UserAgent string
	// Width is the viewport width, zero when unknown.
	Width int
	GOOS  string
}

// CurrentDevice describes this process with an optional user agent override.
func CurrentDevice(userAgent string, width int) Device {
	return Device{UserAgent: userAgent, Width: width, GOOS: runtime.GOOS}
}

// Mobile reports whether the device is mobile-class.
func (d Device) Mobile() bool {
	if d.GOOS == "android" || d.GOOS == "ios" {
		return true
	}
	if d.UserAgent != "" && mobileUA.MatchString(d.UserAgent) {
		return true
	}
	return d.Width > 0 && d.Width < MobileViewportWidth
}

// Affordances are the ways a user can add photos. Both feed Agent.Upload.
type Affordances struct {
	FilePicker bool
	Camera     bool
}

// AffordancesFor returns the photo sources to offer. The camera is offered on
// mobile-class devices, or anywhere a capture command is configured.
func AffordancesFor(d Device, captureConfigured bool) Affordances {
	return Affordances{
		FilePicker: true,
		Camera:     captureConfigured || d.Mobile(),
	}
}

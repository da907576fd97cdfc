package app

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/ayusman/handtracker/internal/capture"
)

// PrintBanner writes the startup banner.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, "Initializing hand tracking system...")
	fmt.Fprintln(w, "Note: If this is the first run, you may need to grant camera permissions.")
}

// PrintInstructions writes the usage hints shown once the camera is up.
func PrintInstructions(w io.Writer) {
	fmt.Fprintln(w, "Hand tracking started successfully!")
	fmt.Fprintln(w, "Instructions:")
	fmt.Fprintln(w, "- Show your hands to the camera")
	fmt.Fprintln(w, "- Press 'q' or Esc to quit")
}

// PrintError writes a user-facing description of a loop error. Camera open
// failures get remediation hints for the current platform.
func PrintError(w io.Writer, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, capture.ErrDeviceUnavailable):
		fmt.Fprintln(w, "Error: Could not open camera.")
		fmt.Fprintln(w, "Please make sure:")
		fmt.Fprintf(w, "1. %s\n", permissionHint(runtime.GOOS))
		fmt.Fprintln(w, "2. No other application is using the camera")
		fmt.Fprintln(w, "3. Your camera is properly connected")
		fmt.Fprintf(w, "Details: %v\n", err)
	case errors.Is(err, capture.ErrFrameRead):
		fmt.Fprintln(w, "Error: Could not read frame.")
		fmt.Fprintf(w, "Details: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func permissionHint(goos string) string {
	switch goos {
	case "darwin":
		return "Camera permissions are granted in System Settings > Privacy & Security > Camera"
	case "windows":
		return "Camera access is allowed in Settings > Privacy > Camera"
	default:
		return "Your user can read the video device (for example /dev/video0)"
	}
}

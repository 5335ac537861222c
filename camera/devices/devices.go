package devices

import (
	"github.com/allape/gogger"
	"path/filepath"
)

var l = gogger.New("camera.devices")

const DefaultPattern = "/dev/video*"

// List returns the capture devices matching DefaultPattern.
func List() []string {
	return Glob(DefaultPattern)
}

// Glob returns the paths matching pattern in match order. It never fails,
// a bad pattern or no match gives an empty list.
func Glob(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		l.Warn().Println("glob", pattern, ":", err)
		return []string{}
	}
	if matches == nil {
		return []string{}
	}
	return matches
}

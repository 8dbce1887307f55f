package game

import (
	"fmt"
	"image"
	"sort"
)

// Detector finds a target inside a captured frame and returns its position
// in frame coordinates.
type Detector interface {
	Detect(frame *image.RGBA) (image.Point, bool)
}

type DetectorFunc func(frame *image.RGBA) (image.Point, bool)

func (f DetectorFunc) Detect(frame *image.RGBA) (image.Point, bool) {
	return f(frame)
}

var detectors = map[string]Detector{
	"none": DetectorFunc(func(*image.RGBA) (image.Point, bool) { return image.Point{}, false }),
}

// RegisterDetector makes a detector selectable through screen.detector.
// Call it from an init function before the loop starts.
func RegisterDetector(name string, d Detector) {
	detectors[name] = d
}

func detectorByName(name string) (Detector, error) {
	if d, ok := detectors[name]; ok {
		return d, nil
	}
	names := make([]string, 0, len(detectors))
	for n := range detectors {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown detector %q, available: %v", name, names)
}

package camera

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// ReadView applies a view file to a base pose. Each line holds a tag and its values:
// vp, vd, vu and pr take three numbers; focallength, aperture and eyeseparation take one.
// Unknown tags are ignored and absent tags leave the base value unchanged.
//
// Parameters:
//   - r: the view file contents
//   - base: the pose the file is applied to
//
// Returns:
//   - Pose: the resulting pose, orthonormalized
//   - error: a read error or a malformed value
func ReadView(r io.Reader, base Pose) (Pose, error) {
	p := base
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		tag, args := strings.ToLower(fields[0]), fields[1:]

		var dst *mgl64.Vec3
		var scalar *float64
		switch tag {
		case "vp":
			dst = &p.VP
		case "vd":
			dst = &p.VD
		case "vu":
			dst = &p.VU
		case "pr":
			dst = &p.PR
		case "focallength":
			scalar = &p.Focal
		case "aperture":
			scalar = &p.Aperture
		case "eyeseparation":
			scalar = &p.EyeSep
		default:
			continue
		}

		n := 1
		if dst != nil {
			n = 3
		}
		if len(args) < n {
			return base, fmt.Errorf("camera: view line %d: %s needs %d values", line, tag, n)
		}
		vals := make([]float64, n)
		for i := range n {
			f, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return base, fmt.Errorf("camera: view line %d: %w", line, err)
			}
			vals[i] = f
		}
		if dst != nil {
			*dst = mgl64.Vec3{vals[0], vals[1], vals[2]}
		} else {
			*scalar = vals[0]
		}
	}
	if err := sc.Err(); err != nil {
		return base, fmt.Errorf("camera: read view: %w", err)
	}
	return p.normalized(), nil
}

// WriteView writes a pose in the format ReadView accepts.
//
// Parameters:
//   - w: the destination
//   - p: the pose
//
// Returns:
//   - error: a write error
func WriteView(w io.Writer, p Pose) error {
	bw := bufio.NewWriter(w)
	for _, rec := range []struct {
		tag string
		v   mgl64.Vec3
	}{{"vp", p.VP}, {"vd", p.VD}, {"vu", p.VU}, {"pr", p.PR}} {
		fmt.Fprintf(bw, "%s %s\n", rec.tag, formatVec(rec.v))
	}
	fmt.Fprintf(bw, "focallength %s\n", strconv.FormatFloat(p.Focal, 'g', -1, 64))
	fmt.Fprintf(bw, "aperture %s\n", strconv.FormatFloat(p.Aperture, 'g', -1, 64))
	fmt.Fprintf(bw, "eyeseparation %s\n", strconv.FormatFloat(p.EyeSep, 'g', -1, 64))
	return bw.Flush()
}

// LoadViewFile applies the view file at path to the camera's pose and home pose.
//
// Parameters:
//   - c: the camera
//   - path: the view file
//
// Returns:
//   - error: an open, read or parse error; the camera is unchanged on error
func LoadViewFile(c Camera, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("camera: open view file: %w", err)
	}
	defer f.Close()

	p, err := ReadView(f, c.Pose())
	if err != nil {
		return err
	}
	c.SetPose(p)
	c.SetHome(p)
	common.Logger().Info("view loaded", "path", path)
	return nil
}

// SaveViewFile writes the camera's pose to path, replacing the file.
//
// Parameters:
//   - c: the camera
//   - path: the view file
//
// Returns:
//   - error: a create or write error
func SaveViewFile(c Camera, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("camera: create view file: %w", err)
	}
	if err := WriteView(f, c.Pose()); err != nil {
		f.Close()
		return fmt.Errorf("camera: write view file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("camera: close view file: %w", err)
	}
	common.Logger().Info("view saved", "path", path)
	return nil
}

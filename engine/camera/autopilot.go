package camera

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrAutopilotExhausted is returned when a path has no records even after rewinding.
	ErrAutopilotExhausted = errors.New("camera: autopilot path exhausted")

	// ErrMalformedRecord is returned for a path line that does not hold nine numbers.
	ErrMalformedRecord = errors.New("camera: malformed path record")
)

// PathRecord is one frame of a recorded camera path.
type PathRecord struct {
	VP mgl64.Vec3
	VU mgl64.Vec3
	VD mgl64.Vec3
}

// PathPlayer yields the records of a camera path in order, looping at the end.
type PathPlayer interface {
	// Next returns the next record. At the end of the path it rewinds once; if the rewound path
	// yields nothing, or a record is malformed, it returns an error and playback should stop.
	//
	// Returns:
	//   - PathRecord: the next record
	//   - error: ErrAutopilotExhausted, ErrMalformedRecord, or a read error
	Next() (PathRecord, error)
}

// PathRecorder appends camera poses to a path.
type PathRecorder interface {
	// Record appends one pose.
	//
	// Parameters:
	//   - p: the pose
	//
	// Returns:
	//   - error: a write error
	Record(p Pose) error
}

type pathPlayer struct {
	mu *sync.Mutex

	src     io.ReadSeeker
	scanner *bufio.Scanner
	line    int
}

// Ensure pathPlayer implements PathPlayer interface.
var _ PathPlayer = &pathPlayer{}

// NewPathPlayer replays a path: one record per line, nine whitespace-separated numbers
// giving vp, vu and vd. Blank lines are skipped.
//
// Parameters:
//   - src: the path source; it must support rewinding
//
// Returns:
//   - PathPlayer: the player
func NewPathPlayer(src io.ReadSeeker) PathPlayer {
	return &pathPlayer{
		mu:      &sync.Mutex{},
		src:     src,
		scanner: bufio.NewScanner(src),
	}
}

func (p *pathPlayer) Next() (PathRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.read()
	if !errors.Is(err, io.EOF) {
		return rec, err
	}
	if _, err := p.src.Seek(0, io.SeekStart); err != nil {
		return PathRecord{}, fmt.Errorf("camera: rewind path: %w", err)
	}
	p.scanner = bufio.NewScanner(p.src)
	p.line = 0
	rec, err = p.read()
	if errors.Is(err, io.EOF) {
		return PathRecord{}, ErrAutopilotExhausted
	}
	return rec, err
}

// read returns the next non-blank record or io.EOF.
func (p *pathPlayer) read() (PathRecord, error) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" {
			continue
		}
		return parseRecord(text, p.line)
	}
	if err := p.scanner.Err(); err != nil {
		return PathRecord{}, fmt.Errorf("camera: read path: %w", err)
	}
	return PathRecord{}, io.EOF
}

func parseRecord(text string, line int) (PathRecord, error) {
	fields := strings.Fields(text)
	if len(fields) < 9 {
		return PathRecord{}, fmt.Errorf("%w: line %d has %d values", ErrMalformedRecord, line, len(fields))
	}
	var v [9]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return PathRecord{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, line, err)
		}
		v[i] = f
	}
	return PathRecord{
		VP: mgl64.Vec3{v[0], v[1], v[2]},
		VU: mgl64.Vec3{v[3], v[4], v[5]},
		VD: mgl64.Vec3{v[6], v[7], v[8]},
	}, nil
}

type pathRecorder struct {
	mu *sync.Mutex
	w  *bufio.Writer
}

// Ensure pathRecorder implements PathRecorder interface.
var _ PathRecorder = &pathRecorder{}

// NewPathRecorder writes poses in the format NewPathPlayer reads. Each record is flushed
// as it is written.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - PathRecorder: the recorder
func NewPathRecorder(w io.Writer) PathRecorder {
	return &pathRecorder{mu: &sync.Mutex{}, w: bufio.NewWriter(w)}
}

func (r *pathRecorder) Record(p Pose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintf(r.w, "%s %s %s\n", formatVec(p.VP), formatVec(p.VU), formatVec(p.VD))
	if err != nil {
		return err
	}
	return r.w.Flush()
}

func formatVec(v mgl64.Vec3) string {
	return strconv.FormatFloat(v[0], 'g', -1, 64) + " " +
		strconv.FormatFloat(v[1], 'g', -1, 64) + " " +
		strconv.FormatFloat(v[2], 'g', -1, 64)
}

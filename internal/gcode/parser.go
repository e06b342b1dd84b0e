package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// MoveType represents the type of a parsed printer command.
type MoveType int

const (
	MoveTravel  MoveType = iota // G0, or G1 without extrusion
	MovePrint                   // G1 with XY motion and positive extrusion
	MoveRetract                 // filament pulled back without XY motion
	MovePrime                   // filament pushed forward without XY motion
	MoveSetK                    // pressure-advance change, no motion
)

func (t MoveType) String() string {
	switch t {
	case MovePrint:
		return "print"
	case MoveRetract:
		return "retract"
	case MovePrime:
		return "prime"
	case MoveSetK:
		return "set-k"
	default:
		return "travel"
	}
}

// Move is a single parsed command with the machine state around it.
type Move struct {
	Type     MoveType
	Line     int // 1-based source line
	From     mgl64.Vec3
	To       mgl64.Vec3
	E        float64 // filament fed during the move, negative for retractions
	FeedRate float64 // mm/min
	K        float64 // pressure advance in effect
}

var (
	axisRe = regexp.MustCompile(`([XYZEF])(-?\d+\.?\d*)`)
	kRes   = []*regexp.Regexp{
		regexp.MustCompile(`^M900\s+K(-?\d+\.?\d*)`),
		regexp.MustCompile(`^SET_PRESSURE_ADVANCE\b.*\bADVANCE=(-?\d+\.?\d*)`),
		regexp.MustCompile(`^M572\b.*\bS(-?\d+\.?\d*)`),
	}
)

// ParseGCode parses printer G-code into a slice of moves. It tracks the
// toolhead and extruder position through G90/G91, M82/M83 and G92, and
// records pressure-advance commands of every supported dialect as MoveSetK.
func ParseGCode(code string) []Move {
	var moves []Move

	var pos mgl64.Vec3
	curE, curFeed, curK := 0.0, 0.0, 0.0
	relative, relativeE := false, false

	for i, line := range strings.Split(code, "\n") {
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		if k, ok := parseK(line); ok {
			curK = k
			moves = append(moves, Move{Type: MoveSetK, Line: i + 1, From: pos, To: pos, FeedRate: curFeed, K: k})
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "G90":
			relative, relativeE = false, false
			continue
		case "G91":
			relative, relativeE = true, true
			continue
		case "M82":
			relativeE = false
			continue
		case "M83":
			relativeE = true
			continue
		case "G92":
			for _, m := range axisRe.FindAllStringSubmatch(line, -1) {
				v, err := strconv.ParseFloat(m[2], 64)
				if err != nil {
					continue
				}
				switch m[1] {
				case "X":
					pos[0] = v
				case "Y":
					pos[1] = v
				case "Z":
					pos[2] = v
				case "E":
					curE = v
				}
			}
			continue
		case "G0", "G00", "G1", "G01":
		default:
			continue
		}

		isRapid := fields[0] == "G0" || fields[0] == "G00"
		next, nextE, hasE := pos, curE, false
		for _, m := range axisRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X", "Y", "Z":
				axis := int(m[1][0] - 'X')
				if relative {
					next[axis] += v
				} else {
					next[axis] = v
				}
			case "E":
				hasE = true
				if relativeE {
					nextE += v
				} else {
					nextE = v
				}
			case "F":
				curFeed = v
			}
		}

		delta := nextE - curE
		moves = append(moves, Move{
			Type:     classifyMove(isRapid, hasE, pos, next, delta),
			Line:     i + 1,
			From:     pos,
			To:       next,
			E:        delta,
			FeedRate: curFeed,
			K:        curK,
		})
		pos, curE = next, nextE
	}

	return moves
}

func parseK(line string) (float64, bool) {
	for _, re := range kRes {
		if m := re.FindStringSubmatch(line); m != nil {
			if k, err := strconv.ParseFloat(m[1], 64); err == nil {
				return k, true
			}
		}
	}
	return 0, false
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid, hasE bool, from, to mgl64.Vec3, deltaE float64) MoveType {
	hasXY := from.X() != to.X() || from.Y() != to.Y()

	switch {
	case isRapid || !hasE:
		return MoveTravel
	case deltaE < 0 && !hasXY:
		return MoveRetract
	case !hasXY:
		return MovePrime
	case deltaE > 0:
		return MovePrint
	default:
		return MoveTravel
	}
}

// Summary holds aggregate statistics of a parsed program.
type Summary struct {
	PrintMoves     int
	Layers         int       // distinct heights with printing moves
	KValues        []float64 // pressure-advance values in program order
	FilamentMM     float64   // filament fed by printing moves
	PrintDistance  float64   // mm
	TravelDistance float64   // mm
	Min, Max       mgl64.Vec2
}

// Summarize aggregates a parsed program.
func Summarize(moves []Move) Summary {
	var s Summary
	heights := make(map[int64]bool)
	first := true

	for _, m := range moves {
		switch m.Type {
		case MoveSetK:
			s.KValues = append(s.KValues, m.K)
		case MoveTravel:
			s.TravelDistance += Distance(m.From, m.To)
		case MovePrint:
			s.PrintMoves++
			s.FilamentMM += m.E
			s.PrintDistance += Distance(m.From, m.To)
			heights[int64(math.Round(m.To.Z()*1e4))] = true

			xy := m.To.Vec2()
			if first {
				s.Min, s.Max = xy, xy
				first = false
			}
			s.Min = mgl64.Vec2{math.Min(s.Min.X(), xy.X()), math.Min(s.Min.Y(), xy.Y())}
			s.Max = mgl64.Vec2{math.Max(s.Max.X(), xy.X()), math.Max(s.Max.Y(), xy.Y())}
		}
	}
	s.Layers = len(heights)
	return s
}

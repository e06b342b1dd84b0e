package gcode

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/kcalibrator/internal/model"
)

func TestParseGCode_Empty(t *testing.T) {
	moves := ParseGCode("")
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParseGCode_CommentsOnly(t *testing.T) {
	code := `; This is a comment
;Generated with kcalibrator
(parenthetical comment)
`
	moves := ParseGCode(code)
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParseGCode_TravelMove(t *testing.T) {
	moves := ParseGCode("G0 X10.000 Y20.000 Z0.200 F9600\n")
	require.Len(t, moves, 1)

	m := moves[0]
	assert.Equal(t, MoveTravel, m.Type)
	assert.Equal(t, mgl64.Vec3{}, m.From)
	assert.Equal(t, mgl64.Vec3{10, 20, 0.2}, m.To)
	assert.Equal(t, 9600.0, m.FeedRate)
	assert.Equal(t, 1, m.Line)
}

func TestParseGCode_PrintMove(t *testing.T) {
	code := "G0 X0 Y0 Z0.2\nG1 X100 Y0 E4.15752 F1200\n"
	moves := ParseGCode(code)
	require.Len(t, moves, 2)

	m := moves[1]
	assert.Equal(t, MovePrint, m.Type)
	assert.InDelta(t, 4.15752, m.E, 1e-9)
	assert.Equal(t, mgl64.Vec3{100, 0, 0.2}, m.To)
	assert.Equal(t, 2, m.Line)
}

func TestParseGCode_RetractAndPrime(t *testing.T) {
	code := "G92 E0\nG1 E-4 F1800\nG0 X5 Y5\nG1 E0 F1800\n"
	moves := ParseGCode(code)
	require.Len(t, moves, 3)

	assert.Equal(t, MoveRetract, moves[0].Type)
	assert.InDelta(t, -4, moves[0].E, 1e-9)
	assert.Equal(t, MoveTravel, moves[1].Type)
	assert.Equal(t, MovePrime, moves[2].Type)
	assert.InDelta(t, 4, moves[2].E, 1e-9)
}

func TestParseGCode_InlineComment(t *testing.T) {
	moves := ParseGCode("G1 X10 Y10 E1 ; outer wall\n")
	require.Len(t, moves, 1)
	assert.Equal(t, MovePrint, moves[0].Type)
}

func TestParseGCode_NonMovementLines(t *testing.T) {
	code := "M190 S80\nM109 S250\nG28\nM106 S127\nM117 K=0.200\nM104 S0\n"
	moves := ParseGCode(code)
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for non-movement lines, got %d", len(moves))
	}
}

func TestParseGCode_ExtruderReset(t *testing.T) {
	code := "G1 X10 E5\nG92 E0\nG1 X20 E0.5\n"
	moves := ParseGCode(code)
	require.Len(t, moves, 2)
	assert.InDelta(t, 5, moves[0].E, 1e-9)
	assert.InDelta(t, 0.5, moves[1].E, 1e-9)
}

func TestParseGCode_ZReset(t *testing.T) {
	code := "G0 Z0.360 F300\nG92 Z0.200\nG0 X1 Y10\n"
	moves := ParseGCode(code)
	require.Len(t, moves, 2)
	assert.InDelta(t, 0.2, moves[1].From.Z(), 1e-9)
	assert.InDelta(t, 0.2, moves[1].To.Z(), 1e-9)
}

func TestParseGCode_RelativeModes(t *testing.T) {
	code := "G0 X10 Y10 Z1\nG91\nG0 Z5\nG90\nM83\nG1 X20 E1\nG1 X30 E1\n"
	moves := ParseGCode(code)
	require.Len(t, moves, 4)

	assert.InDelta(t, 6, moves[1].To.Z(), 1e-9)
	assert.InDelta(t, 1, moves[2].E, 1e-9)
	assert.InDelta(t, 1, moves[3].E, 1e-9)
	assert.Equal(t, MovePrint, moves[3].Type)
}

func TestParseGCode_PressureAdvance(t *testing.T) {
	tests := []struct {
		line string
		want float64
	}{
		{"M900 K0.240", 0.24},
		{"SET_PRESSURE_ADVANCE ADVANCE=0.035", 0.035},
		{"set_pressure_advance extruder=extruder advance=0.1", 0.1},
		{"M572 D0 S0.060", 0.06},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			moves := ParseGCode(tt.line + "\nG1 X10 E1\n")
			require.Len(t, moves, 2)
			assert.Equal(t, MoveSetK, moves[0].Type)
			assert.InDelta(t, tt.want, moves[0].K, 1e-9)
			assert.InDelta(t, tt.want, moves[1].K, 1e-9, "K carries over to later moves")
		})
	}
}

func TestParseGCode_FeedRateSticky(t *testing.T) {
	code := "G1 X10 E1 F1200\nG1 X20 E2\n"
	moves := ParseGCode(code)
	require.Len(t, moves, 2)
	assert.Equal(t, 1200.0, moves[1].FeedRate)
}

func TestParseGCode_NegativeCoordinates(t *testing.T) {
	moves := ParseGCode("G0 X-45.5 Y-30\n")
	require.Len(t, moves, 1)
	assert.Equal(t, mgl64.Vec3{-45.5, -30, 0}, moves[0].To)
}

func TestClassifyMove(t *testing.T) {
	origin := mgl64.Vec3{}
	away := mgl64.Vec3{10, 0, 0}

	tests := []struct {
		name    string
		isRapid bool
		hasE    bool
		to      mgl64.Vec3
		deltaE  float64
		want    MoveType
	}{
		{"rapid", true, true, away, 1, MoveTravel},
		{"no extrusion", false, false, away, 0, MoveTravel},
		{"print", false, true, away, 1, MovePrint},
		{"retract", false, true, origin, -1, MoveRetract},
		{"prime", false, true, origin, 1, MovePrime},
		{"wipe", false, true, away, -1, MoveTravel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyMove(tt.isRapid, tt.hasE, origin, tt.to, tt.deltaE))
		})
	}
}

func TestMoveTypeString(t *testing.T) {
	assert.Equal(t, "print", MovePrint.String())
	assert.Equal(t, "set-k", MoveSetK.String())
	assert.Equal(t, "travel", MoveTravel.String())
}

func TestGeneratedExtrusionMatchesDistance(t *testing.T) {
	cfg := model.DefaultConfig()
	ePerMM := NewExtruder(cfg).Extrude(1)

	for _, m := range ParseGCode(New(cfg).Generate().String()) {
		if m.Type != MovePrint {
			continue
		}
		want := Distance(m.From, m.To) * ePerMM
		if math.Abs(m.E-want) > 2e-4 {
			t.Fatalf("line %d: extruded %.5f for %.3f mm, want %.5f", m.Line, m.E, Distance(m.From, m.To), want)
		}
	}
}

func TestSummarizeGeneratedProgram(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.DoublePerimeter = false
	s := Summarize(ParseGCode(New(cfg).Generate().String()))

	assert.Equal(t, 106, s.Layers)
	require.Len(t, s.KValues, 22)
	assert.InDelta(t, 0, s.KValues[0], 1e-9)
	assert.InDelta(t, 0.2, s.KValues[1], 1e-9)
	assert.InDelta(t, 0.6, s.KValues[21], 1e-9)

	perK := 11
	brim := 10*(1+4*DefaultArcSegments) + 10*4
	assert.Equal(t, 2+brim+21*5*perK, s.PrintMoves)

	assert.InDelta(t, 1, s.Min.X(), 1e-9)
	assert.InDelta(t, 10, s.Min.Y(), 1e-9)
	assert.InDelta(t, 182, s.Max.X(), 1e-3)
	assert.InDelta(t, 170, s.Max.Y(), 1e-9)

	assert.Greater(t, s.FilamentMM, 0.0)
	assert.Greater(t, s.PrintDistance, s.TravelDistance)
}

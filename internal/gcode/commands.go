package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ResetExtruder tells the firmware the current filament position is zero.
const ResetExtruder = "G92 E0"

// Program is a generated instruction sequence, one command per element.
type Program []string

// String joins the program into G-code text, every line newline-terminated.
func (p Program) String() string {
	var b strings.Builder
	for _, line := range p {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo writes the program to w line by line.
func (p Program) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, line := range p {
		m, err := bw.WriteString(line)
		n += int64(m)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// TravelMove formats a non-printing move; speed is in mm/s.
func TravelMove(pos mgl64.Vec3, speed float64) string {
	return fmt.Sprintf("G0 X%.3f Y%.3f Z%.3f F%s", pos.X(), pos.Y(), pos.Z(), feed(speed))
}

// PrintMove formats a printing move to pos with the absolute extruder
// position e; speed is in mm/s.
func PrintMove(pos mgl64.Vec3, e, speed float64) string {
	return fmt.Sprintf("G1 X%.3f Y%.3f Z%.3f E%.5f F%s", pos.X(), pos.Y(), pos.Z(), e, feed(speed))
}

// RetractMove pulls back length mm of filament in absolute extrusion mode,
// right after a G92 E0.
func RetractMove(length, speed float64) string {
	return fmt.Sprintf("G1 E-%s F%s", num(length), feed(speed))
}

// PrimeMove returns the extruder to E0 after a retraction.
func PrimeMove(speed float64) string {
	return "G1 E0 F" + feed(speed)
}

// feed converts mm/s into a G-code feed rate in mm/min.
func feed(speed float64) string {
	return num(speed * 60)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

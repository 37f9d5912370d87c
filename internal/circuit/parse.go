package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	qregRe     = regexp.MustCompile(`^qreg\s+q\[(\d+)\];?$`)
	cregRe     = regexp.MustCompile(`^creg\s+c\[(\d+)\];?$`)
	oneQubitRe = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	twoQubitRe = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\]\s*,\s*q\[(\d+)\];?$`)
	measureRe  = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*c\[(\d+)\];?$`)
	barrierRe  = regexp.MustCompile(`^barrier\s+q(\[\d+\](\s*,\s*q\[\d+\])*)?;?$`)
)

// ParseQASM reads the OpenQASM 2.0 subset this tool emits: header and
// include lines, one q/c register pair, the h, x, z, cx and barrier
// gates, and measure statements. Anything else is an error naming the
// offending line.
func ParseQASM(src string) (*Circuit, error) {
	c := &Circuit{}
	sawQreg := false
	for num, raw := range strings.Split(src, "\n") {
		line := raw
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "OPENQASM"):
			if !strings.HasPrefix(line, "OPENQASM 2.0") {
				return nil, fmt.Errorf("line %d: unsupported QASM version %q", num+1, line)
			}
		case strings.HasPrefix(line, "include"):
			// qelib1.inc is assumed; other includes are ignored.
		case qregRe.MatchString(line):
			m := qregRe.FindStringSubmatch(line)
			n, _ := strconv.Atoi(m[1])
			c.NumQubits = n
			sawQreg = true
		case cregRe.MatchString(line):
			m := cregRe.FindStringSubmatch(line)
			n, _ := strconv.Atoi(m[1])
			c.NumClbits = n
		case measureRe.MatchString(line):
			m := measureRe.FindStringSubmatch(line)
			q, _ := strconv.Atoi(m[1])
			cl, _ := strconv.Atoi(m[2])
			c.Measure(q, cl)
		case barrierRe.MatchString(line):
			c.Barrier()
		case twoQubitRe.MatchString(line):
			m := twoQubitRe.FindStringSubmatch(line)
			if m[1] != "cx" {
				return nil, fmt.Errorf("line %d: unsupported two-qubit gate %q", num+1, m[1])
			}
			ctrl, _ := strconv.Atoi(m[2])
			tgt, _ := strconv.Atoi(m[3])
			c.CX(ctrl, tgt)
		case oneQubitRe.MatchString(line):
			m := oneQubitRe.FindStringSubmatch(line)
			q, _ := strconv.Atoi(m[2])
			switch m[1] {
			case "h":
				c.H(q)
			case "x":
				c.X(q)
			case "z":
				c.Z(q)
			default:
				return nil, fmt.Errorf("line %d: unsupported gate %q", num+1, m[1])
			}
		default:
			return nil, fmt.Errorf("line %d: cannot parse %q", num+1, line)
		}
	}
	if !sawQreg {
		return nil, fmt.Errorf("no qreg declaration found")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

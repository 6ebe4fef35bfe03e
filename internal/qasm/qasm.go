// Package qasm reads and writes the OpenQASM 2.0 subset the router
// operates on: a version header, includes, one quantum and at most one
// classical register, parameterized one-qubit gates, cx, cz, swap, and
// indexed measurements. Anything else fails with a descriptive error.
package qasm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/toqm-go/toqm-router/internal/circuit"
)

// ClassicalRegister is the register name Write uses for classical bits.
// Parse accepts any name; the circuit model keeps only bit indices.
const ClassicalRegister = "c"

// ErrUnsupported reports a construct outside the accepted subset.
var ErrUnsupported = errors.New("unsupported OpenQASM construct")

var (
	versionRe = regexp.MustCompile(`^OPENQASM\s+(\d+(?:\.\d+)?)$`)
	includeRe = regexp.MustCompile(`^include\s+"[^"]+"$`)
	regRe     = regexp.MustCompile(`^(qreg|creg)\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	measureRe = regexp.MustCompile(`^measure\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\[\s*(\d+)\s*\]\s*->\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	gateRe    = regexp.MustCompile(`^([a-z][a-zA-Z0-9_]*)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	qubitRe   = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
)

// Parse reads a circuit. Statements may share a line but must not span
// lines; // comments run to end of line.
func Parse(r io.Reader) (*circuit.Circuit, error) {
	p := &parser{}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		parts := strings.Split(text, ";")
		if rest := strings.TrimSpace(parts[len(parts)-1]); rest != "" {
			return nil, fmt.Errorf("line %d: statement %q is missing a terminating semicolon", line, rest)
		}
		for _, stmt := range parts[:len(parts)-1] {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt, line); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading circuit: %w", err)
	}
	return p.finish()
}

type opStmt struct {
	op   circuit.Op
	line int
}

type parser struct {
	sawVersion bool
	qreg       *circuit.Register
	cregName   string
	cregSize   int
	stmts      []opStmt
}

func (p *parser) statement(s string, line int) error {
	if !p.sawVersion {
		m := versionRe.FindStringSubmatch(s)
		if m == nil {
			return fmt.Errorf("line %d: expected OPENQASM header, got %q", line, s)
		}
		if m[1] != "2" && m[1] != "2.0" {
			return fmt.Errorf("line %d: OPENQASM version %s: %w", line, m[1], ErrUnsupported)
		}
		p.sawVersion = true
		return nil
	}

	if includeRe.MatchString(s) {
		return nil
	}
	if m := regRe.FindStringSubmatch(s); m != nil {
		return p.declare(m, line)
	}
	if m := measureRe.FindStringSubmatch(s); m != nil {
		return p.measure(m, line)
	}

	word := s
	if i := strings.IndexAny(s, " \t("); i >= 0 {
		word = s[:i]
	}
	switch word {
	case "barrier", "reset", "gate", "opaque", "if":
		return fmt.Errorf("line %d: %s statements: %w", line, word, ErrUnsupported)
	case "measure":
		return fmt.Errorf("line %d: measure must have the form \"measure %s[i] -> %s[j]\"",
			line, p.qregName(), ClassicalRegister)
	}

	if m := gateRe.FindStringSubmatch(s); m != nil {
		return p.gate(m, line)
	}
	return fmt.Errorf("line %d: cannot parse statement %q", line, s)
}

func (p *parser) qregName() string {
	if p.qreg != nil {
		return p.qreg.Name
	}
	return "q"
}

func (p *parser) declare(m []string, line int) error {
	kind, name := m[1], m[2]
	size, err := strconv.Atoi(m[3])
	if err != nil || size < 1 {
		return fmt.Errorf("line %d: %s %s has invalid size %q", line, kind, name, m[3])
	}

	if kind == "qreg" {
		if p.qreg != nil {
			return fmt.Errorf("line %d: second quantum register %s; circuits use a single register", line, name)
		}
		p.qreg = &circuit.Register{Name: name, Size: size}
		return nil
	}
	if p.cregName != "" {
		return fmt.Errorf("line %d: second classical register %s; circuits use at most one", line, name)
	}
	p.cregName = name
	p.cregSize = size
	return nil
}

func (p *parser) measure(m []string, line int) error {
	qi, err := p.qubit(m[1], m[2], line)
	if err != nil {
		return err
	}
	if p.cregName == "" || m[3] != p.cregName {
		return fmt.Errorf("line %d: measure targets undeclared classical register %s", line, m[3])
	}
	ci, err := strconv.Atoi(m[4])
	if err != nil || ci >= p.cregSize {
		return fmt.Errorf("line %d: classical bit %s[%s] outside register of size %d", line, m[3], m[4], p.cregSize)
	}

	p.stmts = append(p.stmts, opStmt{
		op:   circuit.Op{Name: "measure", Qargs: []int{qi}, Cargs: []int{ci}},
		line: line,
	})
	return nil
}

func (p *parser) gate(m []string, line int) error {
	name, rawParams, rawArgs := m[1], m[2], m[3]

	var params []float64
	if strings.TrimSpace(rawParams) != "" {
		for _, part := range strings.Split(rawParams, ",") {
			v, err := parseParam(part)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			params = append(params, v)
		}
	}

	var qargs []int
	for _, part := range strings.Split(rawArgs, ",") {
		part = strings.TrimSpace(part)
		qm := qubitRe.FindStringSubmatch(part)
		if qm == nil {
			return fmt.Errorf("line %d: %s operand %q must be an indexed qubit", line, name, part)
		}
		qi, err := p.qubit(qm[1], qm[2], line)
		if err != nil {
			return err
		}
		for _, prev := range qargs {
			if prev == qi {
				return fmt.Errorf("line %d: %s repeats qubit %s", line, name, part)
			}
		}
		qargs = append(qargs, qi)
	}

	switch len(qargs) {
	case 1:
	case 2:
		if name != "cx" && name != "cz" && name != "swap" {
			return fmt.Errorf("line %d: two-qubit gate %s: %w", line, name, ErrUnsupported)
		}
		if len(params) > 0 {
			return fmt.Errorf("line %d: parameters on two-qubit gate %s: %w", line, name, ErrUnsupported)
		}
	default:
		return fmt.Errorf("line %d: %s acts on %d qubits: %w", line, name, len(qargs), ErrUnsupported)
	}

	p.stmts = append(p.stmts, opStmt{
		op:   circuit.Op{Name: name, Qargs: qargs, Params: params},
		line: line,
	})
	return nil
}

func (p *parser) qubit(name, idx string, line int) (int, error) {
	if p.qreg == nil {
		return 0, fmt.Errorf("line %d: qubit %s[%s] used before any qreg declaration", line, name, idx)
	}
	if name != p.qreg.Name {
		return 0, fmt.Errorf("line %d: unknown quantum register %s", line, name)
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i >= p.qreg.Size {
		return 0, fmt.Errorf("line %d: qubit %s[%s] outside register of size %d", line, name, idx, p.qreg.Size)
	}
	return i, nil
}

func (p *parser) finish() (*circuit.Circuit, error) {
	if !p.sawVersion {
		return nil, errors.New("missing OPENQASM header")
	}
	if p.qreg == nil {
		return nil, errors.New("no quantum register declared")
	}
	c, err := circuit.New(*p.qreg, p.cregSize)
	if err != nil {
		return nil, err
	}
	for _, st := range p.stmts {
		if err := c.Append(st.op); err != nil {
			return nil, fmt.Errorf("line %d: %w", st.line, err)
		}
	}
	return c, nil
}

// parseParam evaluates a gate parameter: a float literal or one of the
// simple pi forms pi, pi/x, x*pi, each optionally negated.
func parseParam(s string) (float64, error) {
	orig := strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(orig, 64); err == nil {
		return v, nil
	}

	expr := orig
	neg := false
	if strings.HasPrefix(expr, "-") {
		neg = true
		expr = strings.TrimSpace(expr[1:])
	}

	var v float64
	switch {
	case expr == "pi":
		v = math.Pi
	case strings.HasPrefix(expr, "pi/"):
		d, err := strconv.ParseFloat(strings.TrimSpace(expr[3:]), 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("parameter %q: %w", orig, ErrUnsupported)
		}
		v = math.Pi / d
	case strings.HasSuffix(expr, "*pi"):
		f, err := strconv.ParseFloat(strings.TrimSpace(expr[:len(expr)-3]), 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", orig, ErrUnsupported)
		}
		v = f * math.Pi
	default:
		return 0, fmt.Errorf("parameter %q: %w", orig, ErrUnsupported)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Write renders c in the same subset Parse accepts. Parameters are
// written as shortest round-tripping decimals.
func Write(w io.Writer, c *circuit.Circuit) error {
	reg := c.Register()
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "OPENQASM 2.0;")
	fmt.Fprintln(bw, `include "qelib1.inc";`)
	fmt.Fprintf(bw, "qreg %s[%d];\n", reg.Name, reg.Size)
	if c.NumClbits() > 0 {
		fmt.Fprintf(bw, "creg %s[%d];\n", ClassicalRegister, c.NumClbits())
	}

	for i, op := range c.Ops() {
		if err := writeOp(bw, reg.Name, op); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func writeOp(bw *bufio.Writer, qreg string, op circuit.Op) error {
	if op.Name == "measure" {
		if len(op.Qargs) != 1 || len(op.Cargs) != 1 {
			return errors.New("measure needs exactly one qubit and one classical bit")
		}
		fmt.Fprintf(bw, "measure %s[%d] -> %s[%d];\n", qreg, op.Qargs[0], ClassicalRegister, op.Cargs[0])
		return nil
	}

	bw.WriteString(op.Name)
	if len(op.Params) > 0 {
		bw.WriteByte('(')
		for i, v := range op.Params {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte(')')
	}
	bw.WriteByte(' ')
	for i, q := range op.Qargs {
		if i > 0 {
			bw.WriteByte(',')
		}
		fmt.Fprintf(bw, "%s[%d]", qreg, q)
	}
	bw.WriteString(";\n")
	return nil
}

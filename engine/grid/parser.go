package grid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single scanned line. Global grids at fine resolution produce rows
// far longer than bufio's default token size.
const maxLineBytes = 16 * 1024 * 1024

// Parse reads a grid from its text form.
//
// Parameters:
//   - text: the full file contents
//
// Returns:
//   - *Grid: the parsed grid
//   - error: a *ParseError on the first non-numeric token
func Parse(text string) (*Grid, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader reads a grid line by line from r.
//
// A line with exactly two tokens is a header pair. A line with more tokens is a data row;
// a token equal to the sentinel declared so far becomes absent, as does a literal NaN.
// Lines with fewer than two tokens are skipped, and header pairs may appear anywhere.
//
// Parameters:
//   - r: the source to read from
//
// Returns:
//   - *Grid: the parsed grid
//   - error: a *ParseError on the first non-numeric token, or the read error
func ParseReader(r io.Reader) (*Grid, error) {
	g := New(NewHeader())

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 2:
			v, err := parseToken(fields[1], lineNum)
			if err != nil {
				return nil, err
			}
			g.Header.Set(fields[0], v)
		case len(fields) > 2:
			row, err := g.parseRow(fields, lineNum)
			if err != nil {
				return nil, err
			}
			g.Data = append(g.Data, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}
	return g, nil
}

func (g *Grid) parseRow(fields []string, lineNum int) ([]float64, error) {
	noData, hasNoData := g.Header.NoData()
	row := make([]float64, len(fields))
	for i, tok := range fields {
		v, err := parseToken(tok, lineNum)
		if err != nil {
			return nil, err
		}
		if IsAbsent(v) || (hasNoData && v == noData) {
			row[i] = Absent()
			continue
		}
		row[i] = v
		g.observe(v)
	}
	return row, nil
}

func parseToken(tok string, lineNum int) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{Line: lineNum, Token: tok, Err: err}
	}
	return v, nil
}

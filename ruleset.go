package qtm

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

/*
ParseRules reads a machine specification: one rule per CSV record with the
columns

	current state, read, write, next state, move, amplitude

Lines starting with ';' are comments. Symbols are 0, 1 and '#' (or 2) for
blank; moves are L, R, S or -1, 0, 1; amplitudes are complex literals such
as 1, -0.7071, 0.5i or 0.5+0.5i.
*/
func ParseRules(r io.Reader) ([]TransitionRule, error) {
	reader := csv.NewReader(r)
	reader.Comment = ';'
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	var rules []TransitionRule

	for position := 0; ; position++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransitionRule, err)
		}

		rule, reason := parseRecord(record)
		if reason != "" {
			return nil, &RuleError{Position: position, Rule: rule, Reason: reason}
		}
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: machine specification has no rules", ErrInvalidTransitionRule)
	}

	return rules, nil
}

// ParseRulesString is ParseRules over an in-memory specification.
func ParseRulesString(spec string) ([]TransitionRule, error) {
	return ParseRules(strings.NewReader(spec))
}

// LoadRules reads a machine specification file.
func LoadRules(path string) ([]TransitionRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func parseRecord(record []string) (TransitionRule, string) {
	var (
		rule TransitionRule
		err  error
	)

	if rule.CurrentState, err = strconv.Atoi(strings.TrimSpace(record[0])); err != nil {
		return rule, fmt.Sprintf("current state %q", record[0])
	}
	if rule.Read, err = ParseSymbol(record[1]); err != nil {
		return rule, err.Error()
	}
	if rule.Write, err = ParseSymbol(record[2]); err != nil {
		return rule, err.Error()
	}
	if rule.NextState, err = strconv.Atoi(strings.TrimSpace(record[3])); err != nil {
		return rule, fmt.Sprintf("next state %q", record[3])
	}
	if rule.Move, err = ParseMove(record[4]); err != nil {
		return rule, err.Error()
	}
	if rule.Amplitude, err = strconv.ParseComplex(strings.TrimSpace(record[5]), 128); err != nil {
		return rule, fmt.Sprintf("amplitude %q", record[5])
	}

	return rule, ""
}

// ParseSymbol decodes one tape symbol from the display alphabet {0,1,#}.
func ParseSymbol(s string) (int, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	case "2", "#":
		return Blank, nil
	}
	return 0, fmt.Errorf("unknown tape symbol %q", s)
}

/*
ParseTape decodes a tape written over {0,1,#} such as "01#" or "0,1,#".
Whitespace and commas are ignored.
*/
func ParseTape(s string) ([]int, error) {
	var tape []int

	for _, r := range s {
		switch r {
		case ',', ' ', '\t', '\r', '\n':
			continue
		}

		symbol, err := ParseSymbol(string(r))
		if err != nil {
			return nil, err
		}
		tape = append(tape, symbol)
	}

	if len(tape) == 0 {
		return nil, errors.New("empty tape")
	}

	return tape, nil
}

// ReadTape treats arg as a file when one exists at that path, else as a tape literal.
func ReadTape(arg string) ([]int, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		return ParseTape(string(data))
	}

	return ParseTape(arg)
}

package subtitle

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseASS reads the Dialogue lines of the [Events] section of an ASS/SSA
// script. Column positions come from the section's Format line; without one
// the standard ASS v4+ layout is assumed.
func ParseASS(content string) ([]Cue, error) {
	var cues []Cue
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	columns := []string{
		"Layer", "Start", "End", "Style", "Name",
		"MarginL", "MarginR", "MarginV", "Effect", "Text",
	}
	inEvents := false
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
			inEvents = strings.EqualFold(section, "events")
			continue
		}
		if !inEvents {
			continue
		}

		if strings.HasPrefix(trimmed, "Format:") {
			columns = strings.Split(strings.TrimPrefix(trimmed, "Format:"), ",")
			for i, col := range columns {
				columns[i] = strings.TrimSpace(col)
			}
			if columnIndex(columns, "Text") != len(columns)-1 {
				return nil, fmt.Errorf("ASS Format line at line %d must end with Text", lineNum)
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}

		// Text is last and may itself contain commas
		fields := strings.SplitN(
			strings.TrimPrefix(trimmed, "Dialogue:"),
			",",
			len(columns),
		)
		if len(fields) != len(columns) {
			return nil, fmt.Errorf("malformed Dialogue at line %d", lineNum)
		}

		cue := Cue{Index: len(cues) + 1, Text: fields[len(fields)-1]}
		if i := columnIndex(columns, "Start"); i >= 0 {
			cue.StartTime = parseASSTimestamp(fields[i])
		}
		if i := columnIndex(columns, "End"); i >= 0 {
			cue.EndTime = parseASSTimestamp(fields[i])
		}
		cues = append(cues, cue)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS content: %w", err)
	}

	return cues, nil
}

func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// h:mm:ss.cc, zero when unparseable
func parseASSTimestamp(ts string) time.Duration {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0
	}
	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0
	}

	var nums [4]int
	for i, s := range []string{parts[0], parts[1], secParts[0], secParts[1]} {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		nums[i] = n
	}

	return time.Duration(nums[0])*time.Hour +
		time.Duration(nums[1])*time.Minute +
		time.Duration(nums[2])*time.Second +
		time.Duration(nums[3])*10*time.Millisecond
}

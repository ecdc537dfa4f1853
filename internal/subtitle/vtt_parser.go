package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// ParseVTT reads the cues of a WebVTT document. NOTE and STYLE blocks are
// skipped; cue identifiers are ignored and cues are numbered from 1.
func ParseVTT(content string) ([]Cue, error) {
	var cues []Cue
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Cue
	var textLines []string
	skipBlock := false
	lineNum := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}
		if current == nil && (strings.HasPrefix(trimmed, "WEBVTT") ||
			strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE")) {
			skipBlock = true
			continue
		}

		start, end, ok, err := parseVTTTiming(line)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
		}
		if ok {
			flush()
			current = &Cue{Index: len(cues) + 1, StartTime: start, EndTime: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT content: %w", err)
	}

	return cues, nil
}

// accepts both hh:mm:ss.mmm and mm:ss.mmm timings
func parseVTTTiming(line string) (time.Duration, time.Duration, bool, error) {
	if m := vttTimestampRegex.FindStringSubmatch(line); len(m) == 9 {
		start, err := parseVTTTimestamp(m[1], m[2], m[3], m[4])
		if err != nil {
			return 0, 0, false, err
		}
		end, err := parseVTTTimestamp(m[5], m[6], m[7], m[8])
		if err != nil {
			return 0, 0, false, err
		}
		return start, end, true, nil
	}
	if m := vttShortTimestampRegex.FindStringSubmatch(line); len(m) == 7 {
		start, err := parseVTTTimestamp("00", m[1], m[2], m[3])
		if err != nil {
			return 0, 0, false, err
		}
		end, err := parseVTTTimestamp("00", m[4], m[5], m[6])
		if err != nil {
			return 0, 0, false, err
		}
		return start, end, true, nil
	}
	return 0, 0, false, nil
}

func parseVTTTimestamp(
	hours, minutes, seconds, millis string,
) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

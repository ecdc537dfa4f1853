package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

// ParseSRT reads the cues of an SRT document. Blocks without a numeric index
// or a timestamp line are skipped rather than rejected, so translated output
// with a stray line still parses.
func ParseSRT(content string) ([]Cue, error) {
	var cues []Cue
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Cue
	var timed bool
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && timed {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				current = &Cue{Index: index}
			}
			continue
		}

		if !timed {
			matches := timestampRegex.FindStringSubmatch(line)
			if len(matches) != 9 {
				// not a cue header after all
				current = nil
				continue
			}
			startTime, err := parseSRTTimestamp(
				matches[1], matches[2], matches[3], matches[4],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			endTime, err := parseSRTTimestamp(
				matches[5], matches[6], matches[7], matches[8],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			current.StartTime = startTime
			current.EndTime = endTime
			timed = true
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT content: %w", err)
	}

	return cues, nil
}

// CountCues returns the number of well-formed SRT cues, or -1 when the
// content cannot be scanned.
func CountCues(content string) int {
	return CountFormatCues(FormatSRT, content)
}

// CountFormatCues counts cues with the parser for format. Unknown formats and
// unparseable content give -1.
func CountFormatCues(format Format, content string) int {
	var cues []Cue
	var err error
	switch format {
	case FormatSRT:
		cues, err = ParseSRT(content)
	case FormatVTT:
		cues, err = ParseVTT(content)
	case FormatASS:
		cues, err = ParseASS(content)
	default:
		return -1
	}
	if err != nil {
		return -1
	}
	return len(cues)
}

func parseSRTTimestamp(
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

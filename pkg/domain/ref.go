package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	refRe     = regexp.MustCompile(`\btask-(\d+)\b`)
	subjectRe = regexp.MustCompile(`\[Task #(\d+)\]`)
)

// TaskRef returns the token embedded in outgoing message ids, e.g. "task-7"
func TaskRef(taskID int64) string {
	return fmt.Sprintf("task-%d", taskID)
}

// SubjectTag returns the subject prefix identifying the task, e.g. "[Task #7]"
func SubjectTag(taskID int64) string {
	return fmt.Sprintf("[Task #%d]", taskID)
}

// ParseTaskRef extracts a task id from a reply subject or message id.
// Both "[Task #7]" and "task-7" forms are recognized, the subject tag wins.
func ParseTaskRef(s string) (int64, bool) {
	for _, re := range []*regexp.Regexp{subjectRe, refRe} {
		m := re.FindStringSubmatch(s)
		if len(m) != 2 {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		return id, true
	}
	return 0, false
}

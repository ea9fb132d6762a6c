// Package gitblame parses `git blame --porcelain` output into attribution
// records for aggregation.
package gitblame

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/whoknows/whoknows/schema"
)

// commitIdentity holds the author identity printed the first time a commit
// appears in the porcelain stream. Later hunks of the same commit only carry
// the header line, so identities are memoized by commit ID.
type commitIdentity struct {
	name  string
	email string
	time  time.Time
}

// ParsePorcelain converts `git blame --porcelain` output into one
// AttributionRecord per hunk. A hunk begins at a header line whose fourth
// field is the number of lines in the group; the remaining lines of the group
// repeat the header without that field. Commit metadata (author, author-mail,
// author-time) is printed once per commit and applies to every hunk of that
// commit. Empty input yields an empty slice.
func ParsePorcelain(output []byte) ([]schema.AttributionRecord, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	identities := make(map[string]*commitIdentity)
	var records []schema.AttributionRecord

	// current is the identity block being filled for the commit of the most
	// recent header line.
	var current *commitIdentity

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Content lines are tab-prefixed and carry no attribution data.
		if strings.HasPrefix(line, "\t") {
			continue
		}

		if sha, ok := parseHeaderSHA(line); ok {
			rec, hasGroup, err := parseHeader(line, sha)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if id, seen := identities[sha]; seen {
				current = id
			} else {
				current = &commitIdentity{}
				identities[sha] = current
			}
			if hasGroup {
				records = append(records, rec)
			}
			continue
		}

		// Metadata line for the current commit. Unknown keys (committer,
		// summary, previous, boundary, filename) are skipped.
		if current == nil {
			return nil, fmt.Errorf("line %d: metadata %q before any header", lineNum, line)
		}
		if err := parseMetadata(line, current); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading blame output: %w", err)
	}

	// Fill identities into the records now that the whole stream is read.
	for i := range records {
		id := identities[records[i].CommitID]
		if id == nil || id.email == "" {
			return nil, fmt.Errorf("commit %s has no author metadata", records[i].CommitID)
		}
		records[i].AuthorName = id.name
		records[i].AuthorEmail = id.email
		records[i].CommitTime = id.time
	}
	return records, nil
}

// parseHeaderSHA reports whether the line starts with a 40-hex commit ID
// followed by a space, returning the ID when it does.
func parseHeaderSHA(line string) (string, bool) {
	if len(line) < 41 || line[40] != ' ' {
		return "", false
	}
	sha := line[:40]
	for _, c := range sha {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	return sha, true
}

// parseHeader parses "<sha> <orig-line> <final-line> [<num-lines>]". The
// returned record is only meaningful when hasGroup is true, meaning this
// header opens a new hunk.
func parseHeader(line, sha string) (rec schema.AttributionRecord, hasGroup bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 && len(fields) != 4 {
		return rec, false, fmt.Errorf("malformed blame header %q", line)
	}
	finalLine, err := strconv.Atoi(fields[2])
	if err != nil {
		return rec, false, fmt.Errorf("malformed final line number in %q", line)
	}
	if len(fields) == 3 {
		return rec, false, nil
	}
	count, err := strconv.Atoi(fields[3])
	if err != nil || count < 1 {
		return rec, false, fmt.Errorf("malformed group size in %q", line)
	}
	return schema.AttributionRecord{
		CommitID:  sha,
		StartLine: finalLine,
		LineCount: count,
	}, true, nil
}

// parseMetadata applies one porcelain key-value line to the identity block.
func parseMetadata(line string, id *commitIdentity) error {
	key, value, _ := strings.Cut(line, " ")
	switch key {
	case "author":
		id.name = value
	case "author-mail":
		id.email = strings.Trim(value, "<>")
	case "author-time":
		epoch, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("malformed author-time %q", value)
		}
		id.time = time.Unix(epoch, 0).UTC()
	}
	return nil
}

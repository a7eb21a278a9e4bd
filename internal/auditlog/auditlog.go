// Package auditlog appends tool-call provenance records and analysis
// results to daily JSONL files. The records are audit metadata only and
// never feed back into analysis.
package auditlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"invest-assistant/internal/types"
)

var mu sync.Mutex

// ResultEntry is one completed analysis.
type ResultEntry struct {
	Time    string         `json:"time"`
	Query   string         `json:"query"`
	Ticker  string         `json:"ticker"`
	Verdict string         `json:"verdict"`
	Extra   map[string]any `json:"extra,omitempty"`
}

func logDir() string {
	if v := os.Getenv("ASSISTANT_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func toolcallsFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "toolcalls", d+".txt")
}

func appendLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// AppendToolCall records one collaborator invocation.
func AppendToolCall(tc types.ToolCall) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	if tc.TimestampUTC == "" {
		tc.TimestampUTC = now.Format("2006-01-02T15:04:05Z")
	}
	return appendLine(toolcallsFilepath(now), tc)
}

// AppendResult records one completed analysis.
func AppendResult(e ResultEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

// CompressOlder gzips log files older than retentionDays and removes the
// originals. Zero or negative retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}

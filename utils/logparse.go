package utils

import (
	"bufio"
	"encoding/json"
	"os"
)

type LogEntry struct {
	Timestamp string `json:"time"`
	Level     string `json:"level"`
	Tool      string `json:"msg"`
	Program   string `json:"PROGRAM"`
	Sample    string `json:"SAMPLE"`
	Status    string `json:"STATUS"`
	Cmd       string `json:"CMD"`
	Error     string `json:"ERROR"`
}

// ParseLogFile reads the JSON records of a run log. Lines that are not
// pipeline records are skipped.
func ParseLogFile(logFilePath string) ([]LogEntry, error) {
	f, err := os.Open(logFilePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.Tool != LogMsg || e.Program == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func StageHasCompleted(entries []LogEntry, program, sample string) bool {
	for _, e := range entries {
		if e.Program == program && e.Sample == sample && (e.Status == StatusCompleted || e.Status == StatusSoftFailed) {
			return true
		}
	}
	return false
}

// ProgramStatus is the latest status logged for a program of one sample.
type ProgramStatus struct {
	Program string
	Status  string
	Time    string
}

// SampleProgress groups the latest status of each program by sample. Samples
// and programs keep the order in which they first appear in the log.
func SampleProgress(entries []LogEntry) ([]string, map[string][]ProgramStatus) {
	var samples []string
	progress := make(map[string][]ProgramStatus)
	for _, e := range entries {
		if e.Sample == "" || e.Status == "" {
			continue
		}
		statuses, seen := progress[e.Sample]
		if !seen {
			samples = append(samples, e.Sample)
		}
		found := false
		for i := range statuses {
			if statuses[i].Program == e.Program {
				statuses[i].Status = e.Status
				statuses[i].Time = e.Timestamp
				found = true
				break
			}
		}
		if !found {
			statuses = append(statuses, ProgramStatus{Program: e.Program, Status: e.Status, Time: e.Timestamp})
		}
		progress[e.Sample] = statuses
	}
	return samples, progress
}

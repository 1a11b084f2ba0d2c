// Package storage persists solve runs: one directory per run with a
// metadata.json and a states.csv holding the optimized trajectory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/trajopt/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Horizon    float64            `json:"horizon"`
	Scheme     string             `json:"scheme"`
	Integrator string             `json:"integrator"`
	Substeps   int                `json:"substeps"`
	Iterations int                `json:"iterations"`
	Cost       float64            `json:"cost"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run directory. The trajectory has one more state than
// control; the terminal control columns are zero padded.
func (s *Store) Save(meta RunMetadata, tr *dynamo.Trajectory) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "states.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if tr == nil || len(tr.States) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range tr.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}

	numControls := 0
	if len(tr.Controls) > 0 {
		numControls = len(tr.Controls[0])
		for i := 0; i < numControls; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}
	}

	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range tr.States {
		row := []string{strconv.FormatFloat(tr.Times[i], 'f', 6, 64)}

		for _, val := range tr.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}

		if i < len(tr.Controls) {
			for _, val := range tr.Controls[i] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		} else {
			for j := 0; j < numControls; j++ {
				row = append(row, "0")
			}
		}

		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates reads back the state columns and the time column of a run.
// Control columns are ignored here; callers that need them use LoadTrajectory.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	records, stateDim, _, err := s.readCSV(runID)
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	states := make([][]float64, 0, len(records))
	for _, record := range records {
		times = append(times, record[0])
		states = append(states, record[1:1+stateDim])
	}
	return states, times, nil
}

// LoadTrajectory reconstructs the full saved trajectory. The zero-padded
// terminal control row is dropped so the shape invariant holds again.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	records, stateDim, controlDim, err := s.readCSV(runID)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("storage: run %s has no trajectory rows", runID)
	}

	steps := len(records) - 1
	tr := &dynamo.Trajectory{
		States:   make([]dynamo.State, steps+1),
		Controls: make([]dynamo.Control, steps),
		Times:    make([]float64, steps+1),
	}
	for i, record := range records {
		tr.Times[i] = record[0]
		tr.States[i] = dynamo.State(record[1 : 1+stateDim])
		if i < steps {
			tr.Controls[i] = dynamo.Control(record[1+stateDim : 1+stateDim+controlDim])
		}
	}
	return tr, nil
}

func (s *Store) readCSV(runID string) (records [][]float64, stateDim, controlDim int, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, 0, 0, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	raw, err := r.ReadAll()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(raw) < 2 {
		return nil, 0, 0, nil
	}

	for _, col := range raw[0][1:] {
		if len(col) > 0 && col[0] == 'u' {
			controlDim++
		} else {
			stateDim++
		}
	}

	for _, rec := range raw[1:] {
		if len(rec) != 1+stateDim+controlDim {
			continue
		}
		row := make([]float64, len(rec))
		ok := true
		for j, field := range rec {
			v, perr := strconv.ParseFloat(field, 64)
			if perr != nil {
				ok = false
				break
			}
			row[j] = v
		}
		if ok {
			records = append(records, row)
		}
	}
	return records, stateDim, controlDim, nil
}

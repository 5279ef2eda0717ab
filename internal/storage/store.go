package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/san-kum/springs/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
	sensorsFile  = "sensors.csv"
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
	Creature   string             `json:"creature"`
	Preset     string             `json:"preset,omitempty"`
	Engine     string             `json:"engine"`
	Integrator string             `json:"integrator,omitempty"`
	Controller string             `json:"controller"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
}

// TraceRecord is one row of trace.csv.
type TraceRecord struct {
	Step int     `csv:"step"`
	T    float64 `csv:"t"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
}

// Save writes a run directory and returns its id. meta.ID, Timestamp, Steps
// and Metrics are filled in from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s_%s", meta.Creature, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeTrace(filepath.Join(runDir, traceFile), result); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	if err := writeSensors(filepath.Join(runDir, sensorsFile), result); err != nil {
		return "", fmt.Errorf("write sensors: %w", err)
	}
	return meta.ID, nil
}

func traceRecords(result *sim.Result) []*TraceRecord {
	records := make([]*TraceRecord, len(result.Samples))
	for i, smp := range result.Samples {
		records[i] = &TraceRecord{Step: smp.Step, T: smp.T, X: smp.X, Y: smp.Y}
	}
	return records
}

func writeTrace(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(traceRecords(result), f)
}

// writeSensors writes one row per sample with the sensor values followed by
// the control signal. Column counts depend on the body.
func writeSensors(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSignalsCSV(f, result)
}

func WriteSignalsCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	nSensors, nControls := 0, 0
	for _, smp := range result.Samples {
		nSensors = max(nSensors, len(smp.Sensors))
		nControls = max(nControls, len(smp.Control))
	}

	header := []string{"t"}
	for i := 0; i < nSensors; i++ {
		header = append(header, fmt.Sprintf("s%d", i))
	}
	for i := 0; i < nControls; i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range result.Samples {
		row := make([]string, 1, len(header))
		row[0] = formatFloat(smp.T)
		row = appendPadded(row, smp.Sensors, nSensors)
		row = appendPadded(row, smp.Control, nControls)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTraceCSV writes the trace columns of a result without a run directory.
func WriteTraceCSV(out io.Writer, result *sim.Result) error {
	return gocsv.Marshal(traceRecords(result), out)
}

func appendPadded(row []string, values []float64, n int) []string {
	for i := 0; i < n; i++ {
		if i < len(values) {
			row = append(row, formatFloat(values[i]))
		} else {
			row = append(row, "0")
		}
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]*TraceRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []*TraceRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadSignals returns the header and rows of sensors.csv.
func (s *Store) LoadSignals(runID string) ([]string, [][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, sensorsFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("sensors.csv line %d: %w", i+2, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return records[0], rows, nil
}

// ExportData is the JSON form of a run.
type ExportData struct {
	RunMetadata
	Samples []sim.Sample `json:"samples"`
}

func ExportJSON(out io.Writer, meta RunMetadata, result *sim.Result) error {
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: meta, Samples: result.Samples})
}

// LoadResult rebuilds the recorded samples of a run from its csv files.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	header, rows, err := s.LoadSignals(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) != len(trace) {
		return nil, nil, fmt.Errorf("run %s: %d trace rows, %d signal rows", runID, len(trace), len(rows))
	}

	result := &sim.Result{
		Samples:    make([]sim.Sample, len(trace)),
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	for i, rec := range trace {
		smp := sim.Sample{Step: rec.Step, T: rec.T, X: rec.X, Y: rec.Y}
		for j := 1; j < len(header); j++ {
			switch header[j][0] {
			case 's':
				smp.Sensors = append(smp.Sensors, rows[i][j])
			case 'u':
				smp.Control = append(smp.Control, rows[i][j])
			}
		}
		result.Samples[i] = smp
	}
	return meta, result, nil
}

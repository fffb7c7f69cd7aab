// Package loader builds a repository from a directory of dataset folders.
//
// Every sub-directory of the root is one dataset, ordered by name. A folder
// holds an XML report describing its regions of interest and, optionally,
// a data/<name>.txt file of "name value" lines.
package loader

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/config"
	"holobrowse/pkg/repository"
)

// ErrNoDatasets indicates a root directory without dataset folders
var ErrNoDatasets = errors.New("no dataset folders found")

// DatasetError reports a dataset folder that could not be read
type DatasetError struct {
	Folder string
	Err    error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset %q: %v", e.Folder, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// Options controls how report coordinates become panel coordinates
type Options struct {
	// Scale divides x/y coordinates and sizes
	Scale float64

	// DepthScale further divides depth after Scale
	DepthScale float64

	// ReportName is the report file name inside each folder
	ReportName string

	// PanelType labels every loaded panel
	PanelType string

	// CountFieldName names the metadata field holding the region count
	CountFieldName string

	// Logger receives progress and warnings; nil uses slog.Default()
	Logger *slog.Logger
}

// OptionsFromConfig returns loader options from the layout section of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Scale:          cfg.Layout.Scale,
		DepthScale:     cfg.Layout.DepthScale,
		ReportName:     cfg.Layout.ReportName,
		PanelType:      cfg.Layout.PanelType,
		CountFieldName: cfg.Layout.CountFieldName,
	}
}

// Loader reads dataset folders
type Loader struct {
	opts Options
	log  *slog.Logger
}

// New creates a loader
func New(opts Options) *Loader {
	l := &Loader{opts: opts, log: opts.Logger}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l
}

// report mirrors the XML report layout
type report struct {
	XMLName xml.Name `xml:"doc"`
	Data    struct {
		Count string `xml:"NBCONTOURS"`
		ROIs  []roi  `xml:"ROI"`
	} `xml:"DATA"`
}

type roi struct {
	X      float64 `xml:"X"`
	Y      float64 `xml:"Y"`
	Depth  float64 `xml:"DEPTH"`
	Width  float64 `xml:"WIDTH"`
	Height float64 `xml:"HEIGHT"`
	Image  string  `xml:"IMAGE"`
	ESD    float64 `xml:"ESD"`
	ESV    float64 `xml:"ESV"`
}

// Load reads every dataset folder under root into a repository.
// A folder whose report cannot be read still occupies its slot as an
// empty dataset so ids keep matching positions.
func (l *Loader) Load(root string) (*repository.Repository, error) {
	folders, err := ListDatasetDirs(root)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoDatasets)
	}

	datasets := make([]models.Dataset, len(folders))
	for i, folder := range folders {
		l.log.Info("load dataset", "index", i, "folder", folder)
		ds, err := l.LoadDataset(root, folder, i)
		if err != nil {
			l.log.Warn("dataset left empty", "folder", folder, "error", err)
		}
		datasets[i] = ds
	}

	return repository.New(datasets)
}

// LoadDataset reads one folder. On error the returned dataset still carries
// its id and label and has no panels.
func (l *Loader) LoadDataset(root, folder string, id int) (models.Dataset, error) {
	ds := models.Dataset{ID: id, Label: folder}
	dir := filepath.Join(root, folder)

	rep, err := readReport(filepath.Join(dir, l.opts.ReportName))
	if err != nil {
		return ds, &DatasetError{Folder: folder, Err: err}
	}

	ds.Metadata.Add(l.opts.CountFieldName, strings.TrimSpace(rep.Data.Count))

	valuesPath := filepath.Join(dir, "data", strings.TrimSuffix(folder, filepath.Ext(folder))+".txt")
	if f, err := os.Open(valuesPath); err == nil {
		skipped, err := ParseValues(f, &ds.Metadata)
		f.Close()
		if err != nil {
			l.log.Warn("value file truncated", "file", valuesPath, "fields", ds.Metadata.Len(), "error", err)
		}
		if skipped > 0 {
			l.log.Debug("skipped malformed value lines", "file", valuesPath, "count", skipped)
		}
	}

	ds.Panels = make([]models.Panel, 0, len(rep.Data.ROIs))
	for _, r := range rep.Data.ROIs {
		ds.Panels = append(ds.Panels, l.panel(r, dir, id))
	}

	return ds, nil
}

// panel converts a region of interest to a panel. Report y grows downwards,
// panel y grows upwards.
func (l *Loader) panel(r roi, dir string, id int) models.Panel {
	s := l.opts.Scale
	x0 := (r.X - r.Width/2) / s
	x1 := (r.X + r.Width/2) / s
	yBottom := -(r.Y + r.Height/2) / s
	yTop := -(r.Y - r.Height/2) / s
	z := r.Depth / s / l.opts.DepthScale

	return models.Panel{
		Corners: [4]r3.Vec{
			models.BottomLeft:  {X: x0, Y: yBottom, Z: z},
			models.BottomRight: {X: x1, Y: yBottom, Z: z},
			models.TopRight:    {X: x1, Y: yTop, Z: z},
			models.TopLeft:     {X: x0, Y: yTop, Z: z},
		},
		Texture:   models.TextureRef{Path: filepath.Join(dir, strings.TrimSpace(r.Image))},
		ESD:       r.ESD,
		ESV:       r.ESV,
		Type:      l.opts.PanelType,
		DatasetID: id,
	}
}

func readReport(path string) (*report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rep report
	if err := xml.NewDecoder(f).Decode(&rep); err != nil {
		return nil, fmt.Errorf("error parsing report %s: %w", filepath.Base(path), err)
	}
	return &rep, nil
}

// MaxValueLine is the longest line ParseValues accepts
const MaxValueLine = 1 << 20

// ParseValues appends "name value" lines to md and returns how many lines
// were skipped. Tokens are separated by single spaces; lines that do not
// split into exactly two tokens are ignored. CRLF line endings are accepted.
// A read error, or a line longer than MaxValueLine, stops parsing; fields
// read up to that point are kept.
func ParseValues(r io.Reader, md *models.Metadata) (int, error) {
	skipped := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxValueLine)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		tokens := strings.Split(line, " ")
		// a trailing separator does not open another token
		if n := len(tokens); n > 0 && tokens[n-1] == "" {
			tokens = tokens[:n-1]
		}
		if len(tokens) != 2 {
			if line != "" {
				skipped++
			}
			continue
		}
		md.Add(tokens[0], tokens[1])
	}
	if err := sc.Err(); err != nil {
		return skipped, fmt.Errorf("error reading values after %d fields: %w", md.Len(), err)
	}
	return skipped, nil
}

// ListDatasetDirs returns the names of the sub-directories of root, sorted
func ListDatasetDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset root: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

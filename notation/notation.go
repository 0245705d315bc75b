package notation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/score"
)

// Format identifies a supported score file format
type Format string

const (
	FormatSMF Format = "smf"
	FormatXML Format = "xml"
)

// formatByExtension maps file extensions to loader formats
var formatByExtension = map[string]Format{
	".mid":  FormatSMF,
	".midi": FormatSMF,
	".smf":  FormatSMF,
	".xml":  FormatXML,
	".gp":   FormatXML,
	".gpx":  FormatXML,
	".song": FormatXML,
}

// LoadError reports that a score could not be constructed from its
// input, with the underlying cause attached
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load score %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AllowedExtensions returns the recognized score file extensions,
// without the leading dot
func AllowedExtensions() []string {
	return []string{"mid", "midi", "smf", "xml", "gp", "gpx", "song"}
}

// DetectFormat resolves the loader format for a file path by extension
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := formatByExtension[ext]
	if !ok {
		return "", fmt.Errorf("unsupported score format %q", ext)
	}
	return format, nil
}

// Load reads and parses a score file. Any failure is wrapped in a
// LoadError carrying the path and cause.
func Load(path string) (*score.Score, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "notation",
		"path":      path,
	})

	format, err := DetectFormat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	s, err := loadReader(f, format)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	logger.Debug("score loaded", logging.Fields{
		"format":   string(format),
		"parts":    len(s.Parts),
		"duration": s.Duration,
	})
	return s, nil
}

// LoadReader parses a score from a reader in the given format. The
// name is used for error reporting only.
func LoadReader(r io.Reader, format Format, name string) (*score.Score, error) {
	s, err := loadReader(r, format)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	return s, nil
}

func loadReader(r io.Reader, format Format) (*score.Score, error) {
	switch format {
	case FormatSMF:
		return ParseSMF(r)
	case FormatXML:
		return ParseXML(r)
	default:
		return nil, fmt.Errorf("unsupported score format %q", format)
	}
}

package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
)

// SARIFFormatter renders a run's accumulated diagnostics as SARIF 2.1.0.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a formatter writing to stdout.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{writer: os.Stdout}
}

// NewSARIFFormatterWithWriter creates a formatter with a custom writer (for
// testing).
func NewSARIFFormatterWithWriter(w io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: w}
}

// Format writes diagnostics as a single SARIF run. The rule id is the
// diagnostic's Stage; the location is a logical "<function>#block_<id>"
// URI (just "<function>" when there is no block) since there are no
// source positions to report.
func (f *SARIFFormatter) Format(diagnostics []Diagnostic) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("birl", "https://github.com/birlc/birl")

	seen := make(map[Stage]bool)
	for _, d := range diagnostics {
		if seen[d.Stage] {
			continue
		}
		seen[d.Stage] = true
		run.AddRule(string(d.Stage)).
			WithDescription(fmt.Sprintf("diagnostics raised during the %s stage", d.Stage)).
			WithName(string(d.Stage)).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(f.levelString(d.Severity)))
	}

	for _, d := range diagnostics {
		f.buildResult(d, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) levelString(sev Severity) string {
	switch sev {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func (f *SARIFFormatter) buildResult(d Diagnostic, run *sarif.Run) {
	uri := d.Function
	if d.HasBlock {
		uri = fmt.Sprintf("%s#block_%d", d.Function, d.BlockID)
	}

	result := run.CreateResultForRule(string(d.Stage)).
		WithMessage(sarif.NewTextMessage(d.Message)).
		WithLevel(f.levelString(d.Severity))

	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)),
		)
	result.AddLocation(location)
}

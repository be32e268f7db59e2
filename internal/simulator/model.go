package simulator

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
)

// ModelFile is the rendered model written into every work directory
const ModelFile = "model.poosl"

// DefaultChannels connects the application to the platform resources
const DefaultChannels = "\t{ Application.Buffers, MPSoC.CommunicationResources }\n" +
	"\t{ Application.Tasks, MPSoC.ComputationResources }\n"

// ModelParams are the values substituted into a model template
type ModelParams struct {
	Application string
	Nodes       int
	SimTime     string
	Mapping     string
	Processors  string
	Schedules   string
	Priorities  string
	Voltages    string
	Channels    string
}

// NewModelParams renders every attribute map of c as "label := value"
// assignments. Mapping, processor and schedule values are quoted; priorities
// and voltage scales are numeric and stay bare.
func NewModelParams(c space.Configuration, application string, simTime float64) ModelParams {
	return ModelParams{
		Application: application,
		Nodes:       c.Nodes(),
		SimTime:     strconv.FormatFloat(simTime, 'g', -1, 64),
		Mapping:     assignments(c, space.Mapping, true),
		Processors:  assignments(c, space.Processor, true),
		Schedules:   assignments(c, space.Schedule, true),
		Priorities:  assignments(c, space.Priority, false),
		Voltages:    assignments(c, space.Voltage, false),
		Channels:    DefaultChannels,
	}
}

func assignments(c space.Configuration, d space.Dimension, quoted bool) string {
	var b strings.Builder
	for _, k := range c.Keys(d) {
		v, _ := c.Value(d, k)
		if quoted {
			v = strconv.Quote(v)
		}
		fmt.Fprintf(&b, "\t\t%s := %s,\n", k, v)
	}
	return b.String()
}

// LoadTemplate parses a model template file
func LoadTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model template: %w", err)
	}
	return ParseTemplate(path, string(data))
}

// ParseTemplate parses model template text
func ParseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model template: %w", err)
	}
	return tmpl, nil
}

// RenderModel fills the template with the parameters
func RenderModel(tmpl *template.Template, params ModelParams) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, fmt.Errorf("failed to render model: %w", err)
	}
	return buf.Bytes(), nil
}

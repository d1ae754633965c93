// Package validator checks CI workflow files whose steps embed JSON settings
// for the Gemini CLI action. Every file is parsed as YAML, every
// `with.settings` string is parsed as JSON, and the notable fields of each
// settings object are reported.
package validator

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNoWorkflows is returned when the pattern matches no file.
var ErrNoWorkflows = errors.New("no workflow files found")

// Issue is a single validation failure with its source position. Line and
// Column are 1-based and zero when unknown.
type Issue struct {
	Job     string
	Line    int
	Column  int
	Offset  int64
	Message string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Job != "" {
		b.WriteString("job '" + i.Job + "': ")
	}
	if i.Line > 0 {
		b.WriteString("line " + strconv.Itoa(i.Line))
		if i.Column > 0 {
			b.WriteString(", column " + strconv.Itoa(i.Column))
		}
		b.WriteString(": ")
	}
	if i.Offset > 0 {
		b.WriteString("position " + strconv.Itoa(int(i.Offset)) + ": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// JobSettings is what a valid settings string of one step declares.
type JobSettings struct {
	Job string
	// Length is the size of the raw settings string in bytes.
	Length int
	// MaxSessionTurns is the raw JSON value of model.maxSessionTurns, or
	// "not set" when the model object lacks it. Empty when there is no
	// model object.
	MaxSessionTurns string
	HasModel        bool
	// MCPServers are the sorted names under mcpServers.
	MCPServers    []string
	HasMCPServers bool
	// CoreTools is the number of entries in tools.core.
	CoreTools int
	HasTools  bool
}

// FileResult is the outcome of validating one workflow file.
type FileResult struct {
	Path     string
	Settings []JobSettings
	Issues   []Issue
}

// Name returns the base name of the workflow file.
func (f FileResult) Name() string {
	return filepath.Base(f.Path)
}

// Valid reports whether the file had no issue.
func (f FileResult) Valid() bool {
	return len(f.Issues) == 0
}

// Result aggregates every validated file.
type Result struct {
	Files []FileResult
}

// Valid reports whether every file is valid.
func (r *Result) Valid() bool {
	for _, f := range r.Files {
		if !f.Valid() {
			return false
		}
	}
	return true
}

// ValidateDir validates every file in dir matching pattern, in name order.
// All files are checked before returning.
func ValidateDir(dir, pattern string) (*Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "bad pattern %q", pattern)
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(ErrNoWorkflows, "%s", filepath.Join(dir, pattern))
	}
	sort.Strings(paths)

	result := &Result{Files: make([]FileResult, 0, len(paths))}
	for _, p := range paths {
		result.Files = append(result.Files, ValidateFile(p))
	}
	return result, nil
}

// ValidateFile validates a single workflow file. Errors are reported in the
// result rather than returned.
func ValidateFile(path string) FileResult {
	res := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Issues = append(res.Issues, Issue{Message: err.Error()})
		return res
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		res.Issues = append(res.Issues, Issue{Message: "YAML parsing error: " + err.Error()})
		return res
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		res.Issues = append(res.Issues, Issue{Message: "empty workflow document"})
		return res
	}

	var wf workflow
	if err := doc.Decode(&wf); err != nil {
		res.Issues = append(res.Issues, Issue{Line: doc.Content[0].Line, Message: "unexpected workflow structure: " + err.Error()})
		return res
	}

	for _, j := range wf.Jobs {
		for _, st := range j.Steps {
			node, ok := st.With["settings"]
			if !ok {
				continue
			}
			settings, issue := parseSettings(j.name, node)
			if issue != nil {
				res.Issues = append(res.Issues, *issue)
				continue
			}
			res.Settings = append(res.Settings, settings)
		}
	}
	return res
}

// workflow is the part of a GitHub Actions workflow the validator reads.
type workflow struct {
	Jobs jobs `yaml:"jobs"`
}

type job struct {
	name  string
	Steps []step `yaml:"steps"`
}

type step struct {
	With map[string]yaml.Node `yaml:"with"`
}

// jobs decodes the jobs mapping preserving document order.
type jobs []job

func (js *jobs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: jobs must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var j job
		if err := node.Content[i+1].Decode(&j); err != nil {
			return err
		}
		j.name = node.Content[i].Value
		*js = append(*js, j)
	}
	return nil
}

// objectFields are the settings keys reported per job. When present each
// must hold a JSON object.
var objectFields = []string{"model", "mcpServers", "tools"}

func parseSettings(jobName string, node yaml.Node) (JobSettings, *Issue) {
	if node.Kind != yaml.ScalarNode {
		return JobSettings{}, &Issue{Job: jobName, Line: node.Line, Column: node.Column, Message: "settings must be a JSON string"}
	}
	raw := node.Value

	var root json.RawMessage
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return JobSettings{}, jsonIssue(jobName, node, raw, err)
	}

	js := JobSettings{Job: jobName, Length: len(raw)}
	invalid := func(msg string) (JobSettings, *Issue) {
		return JobSettings{}, &Issue{Job: jobName, Line: node.Line, Column: node.Column, Message: msg}
	}

	switch jsonKind(root) {
	case '[':
		// A list has none of the reported fields.
		return js, nil
	case '{':
	default:
		return invalid("settings must be a JSON object or array")
	}

	var settings map[string]json.RawMessage
	if err := json.Unmarshal(root, &settings); err != nil {
		return JobSettings{}, jsonIssue(jobName, node, raw, err)
	}

	fields := make(map[string]map[string]json.RawMessage, len(objectFields))
	for _, key := range objectFields {
		v, ok := settings[key]
		if !ok {
			continue
		}
		if jsonKind(v) != '{' {
			return invalid(key + " must be a JSON object, got " + string(bytes.TrimSpace(v)))
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err != nil {
			return invalid(key + ": " + err.Error())
		}
		fields[key] = obj
	}

	if model, ok := fields["model"]; ok {
		js.HasModel = true
		js.MaxSessionTurns = "not set"
		if v, ok := model["maxSessionTurns"]; ok {
			js.MaxSessionTurns = string(bytes.TrimSpace(v))
		}
	}
	if servers, ok := fields["mcpServers"]; ok {
		js.HasMCPServers = true
		for name := range servers {
			js.MCPServers = append(js.MCPServers, name)
		}
		sort.Strings(js.MCPServers)
	}
	if tools, ok := fields["tools"]; ok {
		js.HasTools = true
		if core, ok := tools["core"]; ok {
			var list []json.RawMessage
			if jsonKind(core) != '[' || json.Unmarshal(core, &list) != nil {
				return invalid("tools.core must be a JSON array, got " + string(bytes.TrimSpace(core)))
			}
			js.CoreTools = len(list)
		}
	}
	return js, nil
}

// jsonKind returns the first significant byte of a JSON value: '{', '[',
// '"', 'n' for null and so on.
func jsonKind(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

// jsonIssue converts a decode error into an Issue positioned in the
// workflow file.
func jsonIssue(jobName string, node yaml.Node, raw string, err error) *Issue {
	issue := &Issue{Job: jobName, Message: "JSON error: " + err.Error()}
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset > 0 {
		issue.Offset = offset
		line, col := position(raw, offset)
		issue.Line = node.Line + line - 1
		if node.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			// Block scalar content starts on the line after the indicator.
			issue.Line++
		} else if line == 1 {
			col += node.Column - 1
		}
		issue.Column = col
	}
	return issue
}

// position converts a decoder offset into s to the 1-based line and column
// of the offending byte. The decoder reports offsets just past that byte.
func position(s string, offset int64) (line, col int) {
	offset--
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(s)) {
		offset = int64(len(s))
	}
	prefix := s[:offset]
	line = strings.Count(prefix, "\n") + 1
	col = len(prefix) - strings.LastIndex(prefix, "\n")
	return line, col
}

// Log writes a human readable report of r to log.
func (r *Result) Log(log logrus.FieldLogger) {
	for _, f := range r.Files {
		flog := log.WithField("file", f.Name())
		for _, s := range f.Settings {
			flog.Infof("job '%s': valid JSON settings (%d chars)", s.Job, s.Length)
			if s.HasModel {
				flog.Infof("  maxSessionTurns: %s", s.MaxSessionTurns)
			}
			if s.HasMCPServers {
				flog.Infof("  MCP servers: %s", strings.Join(s.MCPServers, ", "))
			}
			if s.HasTools {
				flog.Infof("  core tools: %d commands", s.CoreTools)
			}
		}
		for _, i := range f.Issues {
			flog.Error(i.String())
		}
		if f.Valid() && len(f.Settings) == 0 {
			flog.Info("no Gemini settings found (might be a dispatcher workflow)")
		}
	}
	if r.Valid() {
		log.Infof("all %d Gemini workflows are valid", len(r.Files))
	} else {
		log.Error("some workflows have errors")
	}
}

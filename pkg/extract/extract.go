// Package extract derives per-function records from Solidity sources.
//
// For every function-like member of every container it records the exact
// source fragment and the ordered list of outgoing calls, keyed by
// "Container.member". It also records each container's declared kind.
//
// Extraction is best effort: a source unit that fails to parse is skipped
// with a parse warning, and a function whose call scan fails keeps an empty
// call list with a call-scan warning. Neither aborts the batch.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/solidity"
)

// Unit is one source file.
type Unit struct {
	Path string
	Text string
}

// FunctionRecord is what extraction knows about one function.
type FunctionRecord struct {
	Key       string // "Container.member"
	Container string
	Name      string
	Source    *string // nil when the function has no source location
	Calls     []callgraph.Call
}

// Records is the result of extracting a batch of units.
type Records struct {
	Functions map[string]*FunctionRecord
	Kinds     map[string]callgraph.ContainerKind
	Order     []string // function keys in first-seen order
}

// NewRecords returns empty Records.
func NewRecords() *Records {
	return &Records{
		Functions: make(map[string]*FunctionRecord),
		Kinds:     make(map[string]callgraph.ContainerKind),
	}
}

// Lookup returns the record for key.
func (r *Records) Lookup(key string) (*FunctionRecord, bool) {
	if r == nil {
		return nil, false
	}
	fr, ok := r.Functions[key]
	return fr, ok
}

// Kind returns the container kind for name, defaulting to a plain contract.
func (r *Records) Kind(name string) callgraph.ContainerKind {
	if r != nil {
		if k, ok := r.Kinds[name]; ok {
			return k
		}
	}
	return callgraph.KindContract
}

func (r *Records) put(fr *FunctionRecord) {
	if _, seen := r.Functions[fr.Key]; !seen {
		r.Order = append(r.Order, fr.Key)
	}
	r.Functions[fr.Key] = fr
}

// Extractor runs extraction over a batch of units.
type Extractor struct {
	Logger *log.Logger
}

// New returns an Extractor logging to logger. A nil logger discards output.
func New(logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Extractor{Logger: logger}
}

// Extract parses every unit and merges the records. Later units overwrite
// earlier ones on key collisions.
func (e *Extractor) Extract(units []Unit) (*Records, []errors.Warning) {
	rec := NewRecords()
	var warnings []errors.Warning
	for _, u := range units {
		unit, err := solidity.Parse(u.Text, solidity.Options{Loc: true})
		if err != nil {
			e.Logger.Warn("skipping unparseable source", "path", u.Path, "err", err)
			warnings = append(warnings, errors.Warnf(errors.WarnParse, u.Path, "%v", err))
			continue
		}
		warnings = append(warnings, e.collect(u, unit, rec)...)
	}
	e.Logger.Debug("extracted functions", "units", len(units), "functions", len(rec.Functions), "containers", len(rec.Kinds))
	return rec, warnings
}

// collect records every container and function of a parsed unit.
func (e *Extractor) collect(u Unit, unit *solidity.SourceUnit, rec *Records) []errors.Warning {
	var warnings []errors.Warning
	lines := splitLines(u.Text)
	for _, c := range unit.Contracts {
		rec.Kinds[c.Name] = containerKind(c.Kind)
		for _, fn := range c.Functions {
			name := memberName(fn)
			if name == "" {
				continue
			}
			fr := &FunctionRecord{
				Key:       c.Name + "." + name,
				Container: c.Name,
				Name:      name,
			}
			if loc := fn.Loc(); loc != nil {
				src := sourceText(lines, loc.Start.Line, loc.End.Line)
				fr.Source = &src
				calls, err := scanCalls(fn, loc.Start.Line)
				if err != nil {
					e.Logger.Warn("call scan failed", "function", fr.Key, "path", u.Path, "err", err)
					warnings = append(warnings, errors.Warnf(errors.WarnCallScan, fr.Key, "%v", err))
					calls = nil
				}
				fr.Calls = calls
			}
			rec.put(fr)
		}
	}
	return warnings
}

// memberName returns the declared name or the role-derived name for
// unnamed members, in constructor, fallback, receive priority.
func memberName(fn *solidity.FunctionDefinition) string {
	switch {
	case fn.Name != "":
		return fn.Name
	case fn.IsConstructor:
		return "constructor"
	case fn.IsFallback:
		return "fallback"
	case fn.IsReceive:
		return "receive"
	}
	return ""
}

func containerKind(k solidity.ContractKind) callgraph.ContainerKind {
	switch k {
	case solidity.KindInterface:
		return callgraph.KindInterface
	case solidity.KindLibrary:
		return callgraph.KindLibrary
	default:
		return callgraph.KindContract
	}
}

// scanCalls lists the calls in fn whose callee is a bare name or a member
// access, in pre-order.
func scanCalls(fn *solidity.FunctionDefinition, startLine int) (calls []callgraph.Call, err error) {
	defer func() {
		if r := recover(); r != nil {
			calls, err = nil, fmt.Errorf("scan aborted: %v", r)
		}
	}()
	solidity.Inspect(fn, func(n solidity.Node) bool {
		call, ok := n.(*solidity.FunctionCall)
		if !ok {
			return true
		}
		name, ok := calleeName(call.Callee)
		if !ok {
			return true
		}
		calls = append(calls, callgraph.Call{Name: name, Line: call.Loc().Start.Line - startLine})
		return true
	})
	return calls, nil
}

func calleeName(callee solidity.Expr) (string, bool) {
	switch c := callee.(type) {
	case *solidity.MemberAccess:
		return c.Member, true
	case *solidity.Identifier:
		return c.Name, true
	default:
		return "", false
	}
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// sourceText returns lines [start-1, end) joined by newlines, with 1-based
// inclusive start and end, clamped to the file.
func sourceText(lines []string, start, end int) string {
	from := max(start-1, 0)
	to := min(end, len(lines))
	if from >= to {
		return ""
	}
	return strings.Join(lines[from:to], "\n")
}

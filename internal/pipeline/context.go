package pipeline

import (
	"bytes"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/translate"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one translation unit through the stages.
type PipelineContext struct {
	FilePath   string
	SourceCode string
	Options    *config.Options

	Reporter *diagnostics.Reporter
	Errors   []*diagnostics.DiagnosticError

	// Output is the generated C source.
	Output bytes.Buffer
	// Records lists the translated statements in source order.
	Records []translate.Record
	UnitID  string
}

// NewPipelineContext returns a context for source read from standard
// input with default options.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		Options:    config.Default(),
		Reporter:   diagnostics.NewReporter(""),
		UnitID:     translate.UnitID("<stdin>").String(),
	}
}

// NewFileContext returns a context for the file at path.
func NewFileContext(path, source string, opts *config.Options) *PipelineContext {
	if opts == nil {
		opts = config.Default()
	}
	return &PipelineContext{
		FilePath:   path,
		SourceCode: source,
		Options:    opts,
		Reporter:   diagnostics.NewReporter(path),
		UnitID:     translate.UnitID(path).String(),
	}
}

// SyncErrors copies the reporter's diagnostics into Errors.
func (ctx *PipelineContext) SyncErrors() {
	ctx.Errors = ctx.Reporter.Errors
}

package parser

import (
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Reporter == nil {
		ctx.Reporter = diagnostics.NewReporter(ctx.FilePath)
	}

	parser := New(ctx.SourceCode, ctx.FilePath, ctx.Options, ctx.Reporter, &ctx.Output)
	parser.Translate()
	ctx.Records = parser.Records()

	// Later stages look at ctx.Errors before the pipeline syncs them.
	ctx.SyncErrors()
	return ctx
}

package manifest

import (
	"context"

	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/pipeline"
	"github.com/funvibe/esqlpp/internal/token"
	"github.com/funvibe/esqlpp/internal/translate"
)

// Processor stores the unit's statement records when a manifest path is
// configured. It records nothing for a unit that failed to translate.
type Processor struct{}

func (mp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Options == nil || ctx.Options.Manifest == "" || ctx.Reporter.Count() > 0 {
		return ctx
	}
	if err := Record(context.Background(), ctx.Options.Manifest, Unit{
		ID:   ctx.UnitID,
		File: ctx.FilePath,
	}, ctx.Records); err != nil {
		ctx.Reporter.Add(diagnostics.NewError(diagnostics.ErrM001, token.Token{}, err.Error()))
	}
	return ctx
}

// Record opens the manifest at path, stores one unit and closes it.
func Record(ctx context.Context, path string, unit Unit, records []translate.Record) error {
	store, err := Open(ctx, path)
	if err != nil {
		return err
	}
	if err := store.RecordUnit(ctx, unit, records); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}
